// Package engine runs VDF generation and verification with cached group
// parameters, structured logging and metrics.
package engine

import (
	"context"
	"encoding/binary"
	"math/big"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/config"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/vdf"
)

type Engine struct {
	logger   *zap.Logger
	clock    clock.Clock
	metrics  *Metrics
	config   *config.EngineConfig
	kind     vdf.GroupKind
	strategy vdf.ProofStrategy
	modulus  *big.Int
	groups   *lru.Cache[[32]byte, vdf.Group]
}

// VerifyRequest is one entry of a batch verification. A nil Base verifies
// from the group's generator.
type VerifyRequest struct {
	Seed        []byte
	Base        []byte
	Output      []byte
	Iterations  uint64
	IntSizeBits int
}

func NewEngine(
	cfg *config.EngineConfig,
	logger *zap.Logger,
	clk clock.Clock,
	metrics *Metrics,
) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig().Engine
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "new engine")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if clk == nil {
		clk = clock.New()
	}

	if metrics == nil {
		var err error
		if metrics, err = NewMetrics(nil); err != nil {
			return nil, errors.Wrap(err, "new engine")
		}
	}

	kind, _ := vdf.ParseGroupKind(cfg.Group)
	strategy, _ := vdf.ParseProofStrategy(cfg.ProofStrategy)
	modulus, _ := cfg.Modulus()

	groups, err := lru.New[[32]byte, vdf.Group](cfg.ParameterCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new engine")
	}

	return &Engine{
		logger:   logger,
		clock:    clk,
		metrics:  metrics,
		config:   cfg,
		kind:     kind,
		strategy: strategy,
		modulus:  modulus,
		groups:   groups,
	}, nil
}

func (e *Engine) GroupKind() vdf.GroupKind {
	return e.kind
}

// IntSizeBits is the configured default security parameter.
func (e *Engine) IntSizeBits() int {
	return e.config.IntSizeBits
}

// Group returns the parameters for seed at the given size, deriving them on
// first use. A configured rsa modulus fixes the size to its bit length.
func (e *Engine) Group(seed []byte, intSizeBits int) (vdf.Group, error) {
	key := e.cacheKey(seed, intSizeBits)
	if g, ok := e.groups.Get(key); ok {
		e.metrics.CacheHits.Inc()
		return g, nil
	}

	e.metrics.CacheMisses.Inc()

	var (
		g   vdf.Group
		err error
	)
	if e.kind == vdf.GroupRSA && e.modulus != nil {
		if e.modulus.BitLen() != intSizeBits {
			return nil, errors.Wrapf(
				vdf.ErrInvalidParameter,
				"group: configured modulus has %d bits, want %d",
				e.modulus.BitLen(),
				intSizeBits,
			)
		}
		g, err = vdf.NewRSAGroup(e.modulus, seed)
	} else {
		g, err = vdf.Derive(e.kind, seed, intSizeBits)
	}
	if err != nil {
		return nil, errors.Wrap(err, "group")
	}

	e.groups.Add(key, g)
	return g, nil
}

func (e *Engine) cacheKey(seed []byte, intSizeBits int) [32]byte {
	h := sha3.New256()
	h.Write([]byte(e.kind))
	h.Write(binary.BigEndian.AppendUint32(nil, uint32(intSizeBits)))
	h.Write(seed)

	key := [32]byte{}
	copy(key[:], h.Sum(nil))
	return key
}

// OutputSize is the encoded length of y || pi for the given size.
func (e *Engine) OutputSize(intSizeBits int) (int, error) {
	if e.kind == vdf.GroupRSA && e.modulus != nil {
		intSizeBits = e.modulus.BitLen()
	}

	size, err := vdf.OutputSizeFor(e.kind, intSizeBits)
	return size, errors.Wrap(err, "output size")
}

// Generate computes y = g^(2^T) for the generator derived from seed and
// returns y || pi.
func (e *Engine) Generate(
	ctx context.Context,
	seed []byte,
	iterations uint64,
	intSizeBits int,
) ([]byte, error) {
	out, err := e.GenerateFrom(ctx, seed, nil, iterations, intSizeBits)
	return out, errors.Wrap(err, "generate")
}

// GenerateFrom continues a chain from a previously produced element (the y
// of an earlier output). A nil base starts from the group's generator.
func (e *Engine) GenerateFrom(
	ctx context.Context,
	seed []byte,
	base []byte,
	iterations uint64,
	intSizeBits int,
) ([]byte, error) {
	if iterations == 0 {
		return nil, errors.Wrap(vdf.ErrInvalidParameter, "generate from: zero iterations")
	}

	g, err := e.Group(seed, intSizeBits)
	if err != nil {
		e.metrics.Generations.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "generate from")
	}

	x := g.Generator()
	if base != nil {
		if x, err = g.Decode(base); err != nil {
			e.metrics.Generations.WithLabelValues("error").Inc()
			return nil, errors.Wrap(vdf.ErrInvalidParameter, "generate from: base element")
		}
	}

	e.logger.Debug(
		"starting vdf generation",
		zap.String("group", string(g.Kind())),
		zap.Int("int_size_bits", intSizeBits),
		zap.Uint64("iterations", iterations),
	)

	start := e.clock.Now()
	out, err := vdf.Generate(ctx, g, x, iterations, vdf.GenerateOptions{
		Strategy:      e.strategy,
		Progress:      e.progress(start),
		ProgressEvery: e.config.ProgressInterval,
	})
	elapsed := e.clock.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			e.metrics.Generations.WithLabelValues("canceled").Inc()
			e.logger.Info(
				"vdf generation canceled",
				zap.Uint64("iterations", iterations),
				zap.Duration("elapsed", elapsed),
			)
		} else {
			e.metrics.Generations.WithLabelValues("error").Inc()
			e.logger.Error(
				"vdf generation failed",
				zap.Uint64("iterations", iterations),
				zap.Error(err),
			)
		}

		return nil, errors.Wrap(err, "generate from")
	}

	e.metrics.Generations.WithLabelValues("ok").Inc()
	e.metrics.Squarings.Add(float64(iterations))
	e.metrics.GenerateDuration.Observe(elapsed.Seconds())
	e.logger.Info(
		"generated vdf output",
		zap.String("group", string(g.Kind())),
		zap.Int("int_size_bits", intSizeBits),
		zap.Uint64("iterations", iterations),
		zap.Duration("elapsed", elapsed),
	)

	return out.Bytes(), nil
}

func (e *Engine) progress(start time.Time) vdf.ProgressFunc {
	if e.config.ProgressInterval == 0 {
		return nil
	}

	return func(done, total uint64) {
		e.logger.Info(
			"vdf progress",
			zap.Uint64("done", done),
			zap.Uint64("total", total),
			zap.Duration("elapsed", e.clock.Since(start)),
		)
	}
}

// Verify checks output against the generator derived from seed. A false
// result means the proof was rejected; an error means the check could not
// be carried out.
func (e *Engine) Verify(
	seed []byte,
	output []byte,
	iterations uint64,
	intSizeBits int,
) (bool, error) {
	ok, err := e.VerifyFrom(seed, nil, output, iterations, intSizeBits)
	return ok, errors.Wrap(err, "verify")
}

func (e *Engine) VerifyFrom(
	seed []byte,
	base []byte,
	output []byte,
	iterations uint64,
	intSizeBits int,
) (bool, error) {
	if iterations == 0 {
		return false, errors.Wrap(vdf.ErrInvalidParameter, "verify from: zero iterations")
	}

	g, err := e.Group(seed, intSizeBits)
	if err != nil {
		e.metrics.Verifications.WithLabelValues("error").Inc()
		return false, errors.Wrap(err, "verify from")
	}

	start := e.clock.Now()
	defer func() {
		e.metrics.VerifyDuration.Observe(e.clock.Since(start).Seconds())
	}()

	x := g.Generator()
	if base != nil {
		if x, err = g.Decode(base); err != nil {
			e.metrics.Verifications.WithLabelValues("rejected").Inc()
			e.logger.Debug("rejecting vdf output", zap.Error(err))
			return false, nil
		}
	}

	if !vdf.VerifyOutput(g, x, output, iterations) {
		e.metrics.Verifications.WithLabelValues("rejected").Inc()
		e.logger.Debug(
			"rejecting vdf output",
			zap.Uint64("iterations", iterations),
			zap.Int("output_length", len(output)),
		)
		return false, nil
	}

	e.metrics.Verifications.WithLabelValues("accepted").Inc()
	return true, nil
}

// VerifyBatch verifies independent requests in parallel, bounded by the
// configured worker count. results[i] belongs to requests[i].
func (e *Engine) VerifyBatch(
	ctx context.Context,
	requests []VerifyRequest,
) ([]bool, error) {
	results := make([]bool, len(requests))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.config.VerifyWorkers)

	for i := range requests {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r := requests[i]
			ok, err := e.VerifyFrom(r.Seed, r.Base, r.Output, r.Iterations, r.IntSizeBits)
			if err != nil {
				e.logger.Error(
					"could not verify batch entry",
					zap.Int("index", i),
					zap.Error(err),
				)
				return errors.Wrapf(err, "verify batch: request %d", i)
			}

			results[i] = ok
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "verify batch")
	}

	return results, nil
}
