// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/pkg/errors"

	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

// ErrOutOfGas is returned when a call exceeds its gas limit.
var ErrOutOfGas = errors.New("out of gas")

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

type vmError struct {
	cause error
}

// frame is shared by all environments of one call stack.
type frame struct {
	gasLimit uint64
	gasUsed  uint64
	events   tx.Events
	entered  map[thor.Address]bool
}

// Environment an env to execute native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   thor.Address
	frame    *frame
}

// New create a new env for a top level call issued by caller.
// A zero gasLimit means unlimited.
func New(state *state.State, blockCtx *BlockContext, caller thor.Address, gasLimit uint64) *Environment {
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		frame: &frame{
			gasLimit: gasLimit,
			entered:  make(map[thor.Address]bool),
		},
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() thor.Address        { return env.caller }
func (env *Environment) Now() uint64                 { return env.blockCtx.Time }
func (env *Environment) GasUsed() uint64             { return env.frame.gasUsed }
func (env *Environment) Events() tx.Events           { return env.frame.events }

// Nested returns an env for a call made by the contract at addr.
// Gas, events and the reentrancy set are shared with the parent.
func (env *Environment) Nested(addr thor.Address) *Environment {
	return &Environment{
		state:    env.state,
		blockCtx: env.blockCtx,
		caller:   addr,
		frame:    env.frame,
	}
}

// UseGas charges gas, it panics with out of gas if the limit is exceeded.
// The panic is recovered by Call.
func (env *Environment) UseGas(gas uint64) {
	f := env.frame
	if f.gasLimit > 0 && (gas > f.gasLimit || f.gasUsed > f.gasLimit-gas) {
		f.gasUsed = f.gasLimit
		panic(&vmError{ErrOutOfGas})
	}
	f.gasUsed += gas
}

// Log emits an event and charges for it.
func (env *Environment) Log(address thor.Address, topics []thor.Bytes32, data []byte) {
	env.UseGas(thor.LogGas + thor.LogTopicGas*uint64(len(topics)) + thor.LogDataGas*uint64(len(data)))
	env.frame.events = append(env.frame.events, &tx.Event{
		Address: address,
		Topics:  topics,
		Data:    data,
	})
}

// Enter marks addr as executing. It fails if addr is already on the call stack.
// The returned exit func must be called once the execution of addr ends.
func (env *Environment) Enter(addr thor.Address) (exit func(), ok bool) {
	if env.frame.entered[addr] {
		return nil, false
	}
	env.frame.entered[addr] = true
	return func() { delete(env.frame.entered, addr) }, true
}

// Atomic runs fn. If fn fails or panics, storage writes and events produced
// by fn are discarded.
func (env *Environment) Atomic(fn func() error) (err error) {
	checkpoint := env.state.NewCheckpoint()
	nEvents := len(env.frame.events)

	revert := func() {
		env.state.RevertTo(checkpoint)
		env.frame.events = env.frame.events[:nEvents]
	}
	defer func() {
		if e := recover(); e != nil {
			revert()
			panic(e)
		}
	}()
	if err = fn(); err != nil {
		revert()
	}
	return
}

// Stop aborts execution with vmerr.
func (env *Environment) Stop(vmerr error) {
	panic(&vmError{vmerr})
}

// Call runs proc, converting aborts raised by UseGas or Stop into errors.
// Other panics are propagated.
func (env *Environment) Call(proc func(env *Environment) error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*vmError); ok {
				err = rec.cause
			} else {
				panic(e)
			}
		}
	}()
	return proc(env)
}
