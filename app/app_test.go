package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/config"
)

func TestNewEngineWritesLogFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.IntSizeBits = 128
	cfg.LogFile = filepath.Join(t.TempDir(), "vdf.log")

	e, err := NewEngine(cfg)
	require.NoError(t, err)

	out, err := e.Generate(context.Background(), []byte("app"), 20, 128)
	require.NoError(t, err)

	ok, err := e.Verify([]byte("app"), out, 20, 128)
	require.NoError(t, err)
	assert.True(t, ok)

	contents, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "generated vdf output")
}

func TestNewDebugEngine(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.ProofStrategy = "longdivision"

	e, err := NewDebugEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2048, e.IntSizeBits())

	cfg.Engine.VerifyWorkers = 0
	_, err = NewDebugEngine(cfg)
	assert.Error(t, err)
}
