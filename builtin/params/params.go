// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/builtin/solidity"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

var (
	PeriodLength       = solidity.NewConfigVariable("period-length", thor.KeyPeriodLength, thor.DefaultPeriodLength)
	MaxLockDuration    = solidity.NewConfigVariable("max-lock-duration", thor.KeyMaxLockDuration, thor.DefaultMaxLockDuration)
	MaxCheckpointSteps = solidity.NewConfigVariable("max-checkpoint-steps", thor.KeyMaxCheckpointSteps, thor.DefaultMaxCheckpointSteps)
	// WithdrawToOwner sends withdrawn tokens to the position owner instead of the caller when nonzero.
	WithdrawToOwner = solidity.NewConfigVariable("withdraw-to-owner", thor.KeyWithdrawToOwner, 0)
)

// Params binder of `Params` contract.
type Params struct {
	addr  thor.Address
	state *state.State
}

func New(addr thor.Address, state *state.State) *Params {
	return &Params{addr, state}
}

// Get native way to get param.
func (p *Params) Get(key thor.Bytes32) (*big.Int, error) {
	var v big.Int
	err := p.state.DecodeStorage(p.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get param")
	}
	return &v, nil
}

// Set native way to set param.
func (p *Params) Set(key thor.Bytes32, value *big.Int) error {
	err := p.state.EncodeStorage(p.addr, key, func() ([]byte, error) {
		if value.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
	return errors.Wrap(err, "failed to set param")
}

// Config is the snapshot of protocol params a call runs with.
type Config struct {
	PeriodLength       uint64
	MaxLockDuration    uint64
	MaxCheckpointSteps uint64
	WithdrawToOwner    bool
}

// Config loads every param, falling back to defaults for unset ones.
func (p *Params) Config() Config {
	return Config{
		PeriodLength:       PeriodLength.Load(p.state, p.addr),
		MaxLockDuration:    MaxLockDuration.Load(p.state, p.addr),
		MaxCheckpointSteps: MaxCheckpointSteps.Load(p.state, p.addr),
		WithdrawToOwner:    WithdrawToOwner.Load(p.state, p.addr) != 0,
	}
}

// PeriodStart rounds t down to the start of its period.
func (c Config) PeriodStart(t uint64) uint64 {
	return thor.PeriodStart(t, c.PeriodLength)
}
