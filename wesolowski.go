// Package wesolowski computes and verifies Wesolowski verifiable delay
// functions. A VDF output for (input, iterations, intSizeBits) is the value
// y = g^(2^iterations) in a group derived from input, followed by a proof
// that lets anyone check y without redoing the squarings.
//
// The group is the class group of an imaginary quadratic order whose
// discriminant is derived from input, so no party holds a trapdoor.
package wesolowski

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/engine"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/vdf"
)

// ErrInvalidArgumentType is returned for arguments of the wrong shape:
// non-positive iteration counts and bit sizes outside [128, 4096]. No work
// is done when it is returned.
var ErrInvalidArgumentType = errors.New("invalid argument type")

var (
	defaultEngineOnce sync.Once
	defaultEngine     *engine.Engine
	defaultEngineErr  error
)

func getEngine() (*engine.Engine, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine, defaultEngineErr = engine.NewEngine(nil, nil, nil, nil)
	})

	return defaultEngine, defaultEngineErr
}

func validateArguments(iterations int, intSizeBits int) error {
	if iterations <= 0 {
		return errors.Wrapf(ErrInvalidArgumentType, "iterations %d", iterations)
	}

	if intSizeBits < vdf.MinIntSizeBits || intSizeBits > vdf.MaxIntSizeBits {
		return errors.Wrapf(
			ErrInvalidArgumentType,
			"intSizeBits %d outside [%d, %d]",
			intSizeBits,
			vdf.MinIntSizeBits,
			vdf.MaxIntSizeBits,
		)
	}

	return nil
}

// OutputSize is the byte length of a VDF output for intSizeBits; 516 for
// 2048.
func OutputSize(intSizeBits int) (int, error) {
	if err := validateArguments(1, intSizeBits); err != nil {
		return 0, err
	}

	size, err := vdf.OutputSizeFor(vdf.GroupClass, intSizeBits)
	return size, errors.Wrap(err, "output size")
}

// GenerateVDF runs iterations sequential squarings from the base element
// derived from input and returns y || proof.
func GenerateVDF(input string, iterations, intSizeBits int) ([]byte, error) {
	return GenerateVDFContext(context.Background(), input, iterations, intSizeBits)
}

// GenerateVDFContext is GenerateVDF with cancellation. The context is
// checked between squarings; a canceled run returns no output.
func GenerateVDFContext(
	ctx context.Context,
	input string,
	iterations, intSizeBits int,
) ([]byte, error) {
	return generate(ctx, input, nil, iterations, intSizeBits)
}

// GenerateVDFIteration continues from base, the y half of an earlier output
// for the same input, so outputs can be chained.
func GenerateVDFIteration(
	ctx context.Context,
	input string,
	base []byte,
	iterations, intSizeBits int,
) ([]byte, error) {
	if base == nil {
		base = []byte{}
	}

	return generate(ctx, input, base, iterations, intSizeBits)
}

func generate(
	ctx context.Context,
	input string,
	base []byte,
	iterations, intSizeBits int,
) ([]byte, error) {
	if err := validateArguments(iterations, intSizeBits); err != nil {
		return nil, err
	}

	e, err := getEngine()
	if err != nil {
		return nil, errors.Wrap(err, "generate vdf")
	}

	out, err := e.GenerateFrom(
		ctx,
		[]byte(input),
		base,
		uint64(iterations),
		intSizeBits,
	)
	return out, errors.Wrap(err, "generate vdf")
}

// VerifyVDF reports whether vdfOutput is a valid output for input. A wrong
// length or undecodable output is a rejection (false), not an error; errors
// are reserved for invalid arguments and engine faults.
func VerifyVDF(
	input string,
	vdfOutput []byte,
	iterations, intSizeBits int,
) (bool, error) {
	return verify(input, nil, vdfOutput, iterations, intSizeBits)
}

// VerifyVDFIteration verifies an output produced by GenerateVDFIteration
// from base.
func VerifyVDFIteration(
	input string,
	base []byte,
	vdfOutput []byte,
	iterations, intSizeBits int,
) (bool, error) {
	if base == nil {
		base = []byte{}
	}

	return verify(input, base, vdfOutput, iterations, intSizeBits)
}

func verify(
	input string,
	base []byte,
	vdfOutput []byte,
	iterations, intSizeBits int,
) (bool, error) {
	if err := validateArguments(iterations, intSizeBits); err != nil {
		return false, err
	}

	size, err := OutputSize(intSizeBits)
	if err != nil {
		return false, err
	}

	if len(vdfOutput) != size {
		return false, nil
	}

	e, err := getEngine()
	if err != nil {
		return false, errors.Wrap(err, "verify vdf")
	}

	ok, err := e.VerifyFrom(
		[]byte(input),
		base,
		vdfOutput,
		uint64(iterations),
		intSizeBits,
	)
	return ok, errors.Wrap(err, "verify vdf")
}

// GenerateVDFHex is GenerateVDF with a hex encoded result.
func GenerateVDFHex(input string, iterations, intSizeBits int) (string, error) {
	out, err := GenerateVDF(input, iterations, intSizeBits)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(out), nil
}

// VerifyVDFHex is VerifyVDF for a hex encoded output. Output that is not
// valid hex is rejected like any other malformed output.
func VerifyVDFHex(
	input string,
	vdfOutputHex string,
	iterations, intSizeBits int,
) (bool, error) {
	if err := validateArguments(iterations, intSizeBits); err != nil {
		return false, err
	}

	out, err := hex.DecodeString(vdfOutputHex)
	if err != nil {
		return false, nil
	}

	return VerifyVDF(input, out, iterations, intSizeBits)
}
