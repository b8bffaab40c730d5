// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64

	stateProcs []func(state *state.State) error
	calls      []call
}

type call struct {
	caller thor.Address
	proc   func(env *xenv.Environment) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a contract call issued by caller.
func (b *Builder) Call(caller thor.Address, proc func(env *xenv.Environment) error) *Builder {
	b.calls = append(b.calls, call{caller, proc})
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (thor.Bytes32, error) {
	kv, err := lvldb.NewMem()
	if err != nil {
		return thor.Bytes32{}, err
	}
	defer kv.Close()

	events, err := b.Build(state.New(kv))
	if err != nil {
		return thor.Bytes32{}, err
	}
	data, err := rlp.EncodeToBytes(events)
	if err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "encode events")
	}
	return thor.Blake2b(thor.Uint64Bytes(b.timestamp), data), nil
}

// Build runs the state processes then the calls at the genesis time and commits the state.
func (b *Builder) Build(st *state.State) (events tx.Events, err error) {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}

	blockCtx := &xenv.BlockContext{Time: b.timestamp}
	for i, call := range b.calls {
		env := xenv.New(st, blockCtx, call.caller, 0)
		if err := env.Call(call.proc); err != nil {
			return nil, errors.Wrapf(err, "call %d", i)
		}
		events = append(events, env.Events()...)
	}

	if err := st.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	return events, nil
}
