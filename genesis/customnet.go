// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/builtin/emission"
	"github.com/vechain/vevote/builtin/params"
	"github.com/vechain/vevote/builtin/solidity"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime uint64 `yaml:"launchTime"`
	// InitialPeriodStart is the first voting period, defaults to the period of the launch time.
	InitialPeriodStart *uint64        `yaml:"initialPeriodStart,omitempty"`
	Owner              thor.Address   `yaml:"owner"`
	Accounts           []Account      `yaml:"accounts"`
	BribeTokens        []BribeToken   `yaml:"bribeTokens,omitempty"`
	Candidates         []thor.Bytes32 `yaml:"candidates,omitempty"`
	Params             Params         `yaml:"params,omitempty"`
	Emission           *Emission      `yaml:"emission,omitempty"`
}

// Account is a balance of the locked token or of a bribe token.
type Account struct {
	Address thor.Address `yaml:"address"`
	Balance *Amount      `yaml:"balance"`
}

// BribeToken is a token deployed at genesis and allowed as bribe.
type BribeToken struct {
	Address  thor.Address `yaml:"address"`
	Accounts []Account    `yaml:"accounts,omitempty"`
}

// Params overrides the protocol params, unset ones keep their defaults.
type Params struct {
	PeriodLength       *uint64 `yaml:"periodLength,omitempty"`
	MaxLockDuration    *uint64 `yaml:"maxLockDuration,omitempty"`
	MaxCheckpointSteps *uint64 `yaml:"maxCheckpointSteps,omitempty"`
	WithdrawToOwner    bool    `yaml:"withdrawToOwner,omitempty"`
}

// Emission configures the emission scheduler. The treasury must hold the
// whole schedule, it is approved to the scheduler at genesis.
type Emission struct {
	Treasury thor.Address `yaml:"treasury"`
	Sink     thor.Address `yaml:"sink"`
	Schedule []Step       `yaml:"schedule"`
}

type Step struct {
	Weeks      uint64  `yaml:"weeks"`
	WeeklyRate *Amount `yaml:"weeklyRate"`
}

// Amount is a token amount, written as a decimal or 0x prefixed hex string.
type Amount big.Int

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, ok := math.ParseBig256(node.Value)
	if !ok {
		return fmt.Errorf("invalid amount %q at line %d", node.Value, node.Line)
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	return (*big.Int)(a).String(), nil
}

func (a *Amount) Big() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// LoadCustomGenesis reads a yaml genesis file.
func LoadCustomGenesis(path string) (*CustomGenesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var gen CustomGenesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	return &gen, nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.Owner.IsZero() {
		return nil, errors.New("owner must be set")
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		State(func(state *state.State) error {
			p := builtin.Params.Native(state)
			set := func(v *solidity.ConfigVariable, value *uint64) error {
				if value == nil {
					return nil
				}
				if *value == 0 {
					return fmt.Errorf("%s must not be zero", v.Name())
				}
				return p.Set(v.Key(), new(big.Int).SetUint64(*value))
			}
			if err := set(params.PeriodLength, gen.Params.PeriodLength); err != nil {
				return err
			}
			if err := set(params.MaxLockDuration, gen.Params.MaxLockDuration); err != nil {
				return err
			}
			if err := set(params.MaxCheckpointSteps, gen.Params.MaxCheckpointSteps); err != nil {
				return err
			}
			if gen.Params.WithdrawToOwner {
				return p.Set(params.WithdrawToOwner.Key(), big.NewInt(1))
			}
			return nil
		})

	if err := mint(builder, builtin.Token.Address, gen.Accounts); err != nil {
		return nil, err
	}

	builtins := make(map[thor.Address]string)
	for name, addr := range builtin.Addresses() {
		builtins[addr] = name
	}
	for _, bt := range gen.BribeTokens {
		if name, ok := builtins[bt.Address]; ok {
			return nil, fmt.Errorf("bribe token %s: address taken by %s", bt.Address, name)
		}
		if err := mint(builder, bt.Address, bt.Accounts); err != nil {
			return nil, err
		}
	}

	initialPeriodStart := gen.LaunchTime
	if gen.InitialPeriodStart != nil {
		initialPeriodStart = *gen.InitialPeriodStart
	}
	builder.Call(gen.Owner, func(env *xenv.Environment) error {
		e := builtin.Election.Native(env)
		if err := e.Initialize(gen.Owner, initialPeriodStart); err != nil {
			return err
		}
		for _, c := range gen.Candidates {
			if err := e.EnableCandidate(c); err != nil {
				return errors.Wrapf(err, "candidate %s", c)
			}
		}
		for _, bt := range gen.BribeTokens {
			if err := e.EnableBribeToken(bt.Address); err != nil {
				return errors.Wrapf(err, "bribe token %s", bt.Address)
			}
		}
		return nil
	})

	if em := gen.Emission; em != nil {
		schedule := make(emission.Schedule, 0, len(em.Schedule))
		for _, s := range em.Schedule {
			schedule = append(schedule, emission.Step{Weeks: s.Weeks, WeeklyRate: s.WeeklyRate.Big()})
		}
		if err := schedule.Validate(); err != nil {
			return nil, errors.Wrap(err, "emission schedule")
		}
		builder.Call(thor.Address{}, func(env *xenv.Environment) error {
			return builtin.Emission.Native(env).Initialize(em.Treasury, em.Sink, gen.LaunchTime, schedule)
		})
		builder.Call(em.Treasury, func(env *xenv.Environment) error {
			return builtin.Token.Native(env).Approve(builtin.Emission.Address, schedule.Total())
		})
	}

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, "customnet"}, nil
}

func mint(builder *Builder, token thor.Address, accounts []Account) error {
	for _, a := range accounts {
		if a.Balance == nil || a.Balance.Big().Sign() < 1 {
			return fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
		builder.Call(thor.Address{}, func(env *xenv.Environment) error {
			return builtin.Token.At(token, env).Mint(a.Address, a.Balance.Big())
		})
	}
	return nil
}
