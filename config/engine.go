package config

import (
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/vdf"
)

type EngineConfig struct {
	// Either "classgroup" or "rsa"
	Group         string `yaml:"group"`
	IntSizeBits   int    `yaml:"intSizeBits"`
	ProofStrategy string `yaml:"proofStrategy"`
	// Number of derived groups kept in memory, keyed by seed and size
	ParameterCacheSize int `yaml:"parameterCacheSize"`
	VerifyWorkers      int `yaml:"verifyWorkers"`
	// Logs chain progress every n squarings; zero disables it
	ProgressInterval uint64 `yaml:"progressInterval"`
	// Hex encoded modulus for the rsa group. When set it replaces the
	// modulus derived from the seed, which is not guaranteed to be hard to
	// factor.
	RSAModulus string `yaml:"rsaModulus"`
}

func (c *EngineConfig) Validate() error {
	if _, err := vdf.ParseGroupKind(c.Group); err != nil {
		return errors.Wrap(err, "engine config")
	}

	if _, err := vdf.ParseProofStrategy(c.ProofStrategy); err != nil {
		return errors.Wrap(err, "engine config")
	}

	if c.IntSizeBits < vdf.MinIntSizeBits || c.IntSizeBits > vdf.MaxIntSizeBits {
		return errors.Wrapf(
			vdf.ErrInvalidParameter,
			"engine config: intSizeBits %d",
			c.IntSizeBits,
		)
	}

	if c.ParameterCacheSize < 1 {
		return errors.Wrap(vdf.ErrInvalidParameter, "engine config: parameterCacheSize")
	}

	if c.VerifyWorkers < 1 {
		return errors.Wrap(vdf.ErrInvalidParameter, "engine config: verifyWorkers")
	}

	if c.RSAModulus != "" {
		if _, err := c.Modulus(); err != nil {
			return errors.Wrap(err, "engine config")
		}
	}

	return nil
}

// Modulus parses RSAModulus, returning nil when none is configured.
func (c *EngineConfig) Modulus() (*big.Int, error) {
	if c.RSAModulus == "" {
		return nil, nil
	}

	n, ok := new(big.Int).SetString(c.RSAModulus, 16)
	if !ok || n.Sign() <= 0 {
		return nil, errors.Wrap(vdf.ErrInvalidParameter, "rsaModulus is not hex")
	}

	return n, nil
}
