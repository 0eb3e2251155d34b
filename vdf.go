//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package wesolowski

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

var ErrAlreadyStarted = errors.New("vdf already started")

// VDF runs one generation in the background. The output is delivered once on
// the output channel, which is closed afterwards; a failed or canceled run
// closes the channel without a value and reports the cause through Err.
type VDF struct {
	input       string
	iterations  int
	intSizeBits int

	started  atomic.Bool
	finished atomic.Bool

	mu     sync.Mutex
	output []byte
	err    error

	outputChan chan []byte
}

// New create a new instance of VDF.
func New(input string, iterations, intSizeBits int) *VDF {
	return &VDF{
		input:       input,
		iterations:  iterations,
		intSizeBits: intSizeBits,
		outputChan:  make(chan []byte, 1),
	}
}

// GetOutputChannel returns the vdf output channel. The output is the
// serialized y followed by the serialized proof.
func (v *VDF) GetOutputChannel() <-chan []byte {
	return v.outputChan
}

// Execute runs the VDF until it's finished and puts the result into the
// output channel.
func (v *VDF) Execute() error {
	return v.execute(context.Background(), nil)
}

// ExecuteIteration is Execute continuing from base, the y half of an earlier
// output for the same input.
func (v *VDF) ExecuteIteration(base []byte) error {
	return v.execute(context.Background(), iterationBase(base))
}

// Start runs the VDF in a new goroutine. Canceling ctx stops the squaring
// chain at the next step.
func (v *VDF) Start(ctx context.Context) error {
	return v.start(ctx, nil)
}

// StartIteration is Start continuing from base.
func (v *VDF) StartIteration(ctx context.Context, base []byte) error {
	return v.start(ctx, iterationBase(base))
}

func (v *VDF) start(ctx context.Context, base []byte) error {
	if !v.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	go v.run(ctx, base)
	return nil
}

func (v *VDF) execute(ctx context.Context, base []byte) error {
	if !v.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	return v.run(ctx, base)
}

// iterationBase keeps a nil base distinguishable from "start at the
// generator".
func iterationBase(base []byte) []byte {
	if base == nil {
		return []byte{}
	}

	return append([]byte{}, base...)
}

func (v *VDF) run(ctx context.Context, base []byte) error {
	out, err := generate(ctx, v.input, base, v.iterations, v.intSizeBits)

	v.mu.Lock()
	v.output = out
	v.err = err
	v.mu.Unlock()
	v.finished.Store(true)

	if err == nil {
		v.outputChan <- out
	}
	close(v.outputChan)

	return err
}

// Verify runs the verification of a generated output against this
// instance's input and parameters.
func (v *VDF) Verify(output []byte) (bool, error) {
	return VerifyVDF(v.input, output, v.iterations, v.intSizeBits)
}

// VerifyIteration verifies an output chained from base.
func (v *VDF) VerifyIteration(base, output []byte) (bool, error) {
	return VerifyVDFIteration(v.input, base, output, v.iterations, v.intSizeBits)
}

// IsFinished returns whether the vdf execution is finished or not.
func (v *VDF) IsFinished() bool {
	return v.finished.Load()
}

// GetOutput returns the vdf output, which is nil until the vdf finished
// successfully.
func (v *VDF) GetOutput() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.output
}

func (v *VDF) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.err
}
