package engine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/config"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/engine"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/vdf"
)

const testBits = 128

func testConfig() *config.EngineConfig {
	cfg := config.DefaultConfig().Engine
	cfg.IntSizeBits = testBits
	return cfg
}

func newTestEngine(
	t *testing.T,
	cfg *config.EngineConfig,
) (*engine.Engine, *engine.Metrics) {
	t.Helper()

	metrics, err := engine.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	e, err := engine.NewEngine(cfg, zaptest.NewLogger(t), clock.NewMock(), metrics)
	require.NoError(t, err)

	return e, metrics
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()

	metric := &dto.Metric{}
	require.NoError(t, h.Write(metric))
	return metric.GetHistogram().GetSampleCount()
}

func TestNewEngineDefaults(t *testing.T) {
	e, err := engine.NewEngine(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, vdf.GroupClass, e.GroupKind())
	assert.Equal(t, 2048, e.IntSizeBits())

	size, err := e.OutputSize(2048)
	require.NoError(t, err)
	assert.Equal(t, 516, size)

	cfg := testConfig()
	cfg.Group = "ecc"
	_, err = engine.NewEngine(cfg, nil, nil, nil)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))
}

func TestGenerateVerify(t *testing.T) {
	for _, strategy := range []string{"windowed", "longdivision"} {
		for _, group := range []string{"classgroup", "rsa"} {
			cfg := testConfig()
			cfg.Group = group
			cfg.ProofStrategy = strategy
			e, metrics := newTestEngine(t, cfg)

			seed := []byte("engine " + group)
			out, err := e.Generate(context.Background(), seed, 100, testBits)
			require.NoError(t, err, "%s %s", group, strategy)

			size, err := e.OutputSize(testBits)
			require.NoError(t, err)
			assert.Len(t, out, size)

			ok, err := e.Verify(seed, out, 100, testBits)
			require.NoError(t, err)
			assert.True(t, ok, "%s %s", group, strategy)

			ok, err = e.Verify(seed, out, 101, testBits)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMisses))
			assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheHits))
			assert.Equal(t, 100.0, testutil.ToFloat64(metrics.Squarings))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Generations.WithLabelValues("ok")))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Verifications.WithLabelValues("accepted")))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Verifications.WithLabelValues("rejected")))
			assert.Equal(t, uint64(1), histogramCount(t, metrics.GenerateDuration))
			assert.Equal(t, uint64(2), histogramCount(t, metrics.VerifyDuration))
		}
	}
}

func TestGenerateDeterministicAcrossEngines(t *testing.T) {
	a, _ := newTestEngine(t, testConfig())
	b, _ := newTestEngine(t, testConfig())

	outA, err := a.Generate(context.Background(), []byte("same"), 64, testBits)
	require.NoError(t, err)
	outB, err := b.Generate(context.Background(), []byte("same"), 64, testBits)
	require.NoError(t, err)

	assert.Equal(t, outA, outB)
}

func TestVerifyMalformed(t *testing.T) {
	e, metrics := newTestEngine(t, testConfig())

	ok, err := e.Verify([]byte("seed"), make([]byte, 10), 1000, testBits)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.Verify([]byte("seed"), nil, 1000, testBits)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Verifications.WithLabelValues("rejected")))

	_, err = e.Verify([]byte("seed"), make([]byte, 10), 1000, 127)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Verifications.WithLabelValues("error")))

	_, err = e.Verify([]byte("seed"), make([]byte, 10), 0, testBits)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))
}

func TestGenerateCanceled(t *testing.T) {
	e, metrics := newTestEngine(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Generate(ctx, []byte("seed"), 1000, testBits)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Generations.WithLabelValues("canceled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Squarings))
}

func TestGenerateRejectsParameters(t *testing.T) {
	e, metrics := newTestEngine(t, testConfig())

	_, err := e.Generate(context.Background(), []byte("seed"), 0, testBits)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))

	_, err = e.Generate(context.Background(), []byte("seed"), 10, 4097)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))

	_, err = e.Generate(context.Background(), nil, 10, testBits)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Generations.WithLabelValues("error")))
}

func TestGenerateFromContinuesChain(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	seed := []byte("chain")
	size, err := e.OutputSize(testBits)
	require.NoError(t, err)

	first, err := e.Generate(context.Background(), seed, 40, testBits)
	require.NoError(t, err)
	y := first[:size/2]

	second, err := e.GenerateFrom(context.Background(), seed, y, 40, testBits)
	require.NoError(t, err)

	ok, err := e.VerifyFrom(seed, y, second, 40, testBits)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Verify(seed, second, 40, testBits)
	require.NoError(t, err)
	assert.False(t, ok)

	// two links of 40 reach the same element as one chain of 80
	direct, err := e.Generate(context.Background(), seed, 80, testBits)
	require.NoError(t, err)
	assert.Equal(t, direct[:size/2], second[:size/2])

	_, err = e.GenerateFrom(context.Background(), seed, []byte{1, 2, 3}, 40, testBits)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))

	ok, err = e.VerifyFrom(seed, []byte{1, 2, 3}, second, 40, testBits)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBatch(t *testing.T) {
	e, metrics := newTestEngine(t, testConfig())

	requests := []engine.VerifyRequest{}
	want := []bool{}
	for i := 0; i < 6; i++ {
		seed := []byte(fmt.Sprintf("batch %d", i))
		out, err := e.Generate(context.Background(), seed, 30, testBits)
		require.NoError(t, err)

		if i%3 == 2 {
			out[0] ^= 0xff
		}

		requests = append(requests, engine.VerifyRequest{
			Seed:        seed,
			Output:      out,
			Iterations:  30,
			IntSizeBits: testBits,
		})
		want = append(want, i%3 != 2)
	}

	results, err := e.VerifyBatch(context.Background(), requests)
	require.NoError(t, err)
	assert.Equal(t, want, results)
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.Verifications.WithLabelValues("accepted")))

	requests = append(requests, engine.VerifyRequest{
		Seed:        []byte("bad"),
		Output:      requests[0].Output,
		Iterations:  30,
		IntSizeBits: 127,
	})
	_, err = e.VerifyBatch(context.Background(), requests)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))

	results, err = e.VerifyBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVerifyBatchCanceled(t *testing.T) {
	e, _ := newTestEngine(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.VerifyBatch(ctx, []engine.VerifyRequest{{
		Seed:        []byte("seed"),
		Output:      make([]byte, 10),
		Iterations:  10,
		IntSizeBits: testBits,
	}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParameterCacheEviction(t *testing.T) {
	cfg := testConfig()
	cfg.ParameterCacheSize = 1
	e, metrics := newTestEngine(t, cfg)

	for _, seed := range []string{"a", "b", "a", "a"} {
		_, err := e.Group([]byte(seed), testBits)
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHits))
}

func TestConfiguredModulus(t *testing.T) {
	reference, err := vdf.DeriveRSAGroup([]byte("audited"), 256)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Group = "rsa"
	cfg.RSAModulus = reference.Modulus().Text(16)
	e, _ := newTestEngine(t, cfg)

	g, err := e.Group([]byte("request seed"), 256)
	require.NoError(t, err)
	assert.Equal(t, 0, reference.Modulus().Cmp(g.(*vdf.RSAGroup).Modulus()))

	out, err := e.Generate(context.Background(), []byte("request seed"), 50, 256)
	require.NoError(t, err)
	ok, err := e.Verify([]byte("request seed"), out, 50, 256)
	require.NoError(t, err)
	assert.True(t, ok)

	size, err := e.OutputSize(testBits)
	require.NoError(t, err)
	assert.Equal(t, 64, size)

	_, err = e.Group([]byte("request seed"), 512)
	assert.True(t, errors.Is(err, vdf.ErrInvalidParameter))
}

func TestProgressLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	clk := clock.NewMock()

	cfg := testConfig()
	cfg.ProgressInterval = 25
	e, err := engine.NewEngine(cfg, zap.New(core), clk, nil)
	require.NoError(t, err)

	clk.Add(time.Minute)
	_, err = e.Generate(context.Background(), []byte("progress"), 100, testBits)
	require.NoError(t, err)

	progress := logs.FilterMessage("vdf progress").All()
	require.Len(t, progress, 4)
	assert.Equal(t, uint64(100), progress[3].ContextMap()["done"])
	assert.Len(t, logs.FilterMessage("generated vdf output").All(), 1)
}

func TestMetricsReuseRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := engine.NewMetrics(reg)
	require.NoError(t, err)
	b, err := engine.NewMetrics(reg)
	require.NoError(t, err)

	a.CacheHits.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(b.CacheHits))

	// the two vecs have no children yet
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
