// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package emission

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/builtin/reverts"
	"github.com/vechain/vevote/builtin/solidity"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

var (
	logger = log.WithContext("pkg", "emission")

	ErrNotTreasury        = reverts.New("NotTreasury")
	ErrAlreadyInitialized = reverts.New("AlreadyInitialized")
	ErrInvalidSchedule    = reverts.New("InvalidSchedule")
	ErrZeroAddress        = reverts.New("ZeroAddress")

	EmissionPulledEvent = tx.EventID("EmissionPulled(address,address,uint256,uint256)")

	slotTreasury = nameToSlot("treasury")
	slotSink     = nameToSlot("sink")
	slotLaunch   = nameToSlot("launch")
	slotSchedule = nameToSlot("schedule")
	slotPulled   = nameToSlot("pulled")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.Blake2b([]byte(name))
}

// Token is the emitted token. TransferFrom acts with the emission address as spender.
type Token interface {
	TransferFrom(from, to thor.Address, amount *big.Int) error
}

// Emission releases tokens from the treasury to the rewards sink following a
// weekly schedule. Whatever accrued and was not pulled yet is pending.
type Emission struct {
	addr     thor.Address
	env      *xenv.Environment
	token    Token
	treasury *solidity.Address
	sink     *solidity.Address
	launch   *solidity.Raw[uint64]
	schedule *solidity.Raw[Schedule]
	pulled   *solidity.Uint256
}

func New(addr thor.Address, env *xenv.Environment, token Token) *Emission {
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	return &Emission{
		addr:     addr,
		env:      env,
		token:    token,
		treasury: solidity.NewAddress(sctx, slotTreasury),
		sink:     solidity.NewAddress(sctx, slotSink),
		launch:   solidity.NewRaw[uint64](sctx, slotLaunch),
		schedule: solidity.NewRaw[Schedule](sctx, slotSchedule),
		pulled:   solidity.NewUint256(sctx, slotPulled),
	}
}

func (e *Emission) Address() thor.Address {
	return e.addr
}

// Initialize stores the schedule. Only used when building genesis.
func (e *Emission) Initialize(treasury, sink thor.Address, launch uint64, schedule Schedule) error {
	current, err := e.treasury.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get treasury")
	}
	if !current.IsZero() {
		return ErrAlreadyInitialized
	}
	if treasury.IsZero() || sink.IsZero() {
		return ErrZeroAddress
	}
	if err := schedule.Validate(); err != nil {
		return err
	}
	e.treasury.Set(treasury)
	e.sink.Set(sink)
	if err := e.launch.Upsert(launch); err != nil {
		return errors.Wrap(err, "failed to set launch time")
	}
	if err := e.schedule.Upsert(schedule); err != nil {
		return errors.Wrap(err, "failed to set schedule")
	}
	logger.Info("emission initialized", "treasury", treasury, "sink", sink, "launch", launch, "total", schedule.Total())
	return nil
}

// Accrued returns the amount emitted from launch until t.
func (e *Emission) Accrued(t uint64) (*big.Int, error) {
	launch, err := e.LaunchTime()
	if err != nil {
		return nil, err
	}
	if t <= launch {
		return new(big.Int), nil
	}
	schedule, err := e.Schedule()
	if err != nil {
		return nil, err
	}
	return schedule.Accrued(t - launch), nil
}

// Pending returns what accrued until now and has not been pulled.
func (e *Emission) Pending() (*big.Int, error) {
	accrued, err := e.Accrued(e.env.Now())
	if err != nil {
		return nil, err
	}
	pulled, err := e.Pulled()
	if err != nil {
		return nil, err
	}
	return accrued.Sub(accrued, pulled), nil
}

// Pull moves everything pending from the treasury to the sink and returns the
// amount moved. Only the treasury can pull, and it must have approved the
// emission contract.
func (e *Emission) Pull() (*big.Int, error) {
	logger.Debug("pulling emission", "caller", e.env.Caller())

	var amount *big.Int
	exit, ok := e.env.Enter(e.addr)
	if !ok {
		recordCall("pull", reverts.ErrReentrancy)
		return nil, reverts.ErrReentrancy
	}
	defer exit()

	err := e.env.Atomic(func() error {
		treasury, err := e.treasury.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get treasury")
		}
		if treasury != e.env.Caller() {
			return ErrNotTreasury
		}
		if amount, err = e.Pending(); err != nil || amount.Sign() == 0 {
			return err
		}
		if err := e.pulled.Add(amount); err != nil {
			return errors.Wrap(err, "failed to add pulled")
		}
		sink, err := e.sink.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get sink")
		}
		if err := e.token.TransferFrom(treasury, sink, amount); err != nil {
			return err
		}
		total, err := e.Pulled()
		if err != nil {
			return err
		}
		data, err := rlp.EncodeToBytes(&Pulled{amount, total})
		if err != nil {
			return errors.Wrap(err, "failed to encode event")
		}
		e.env.Log(e.addr, []thor.Bytes32{
			EmissionPulledEvent,
			thor.BytesToBytes32(treasury.Bytes()),
			thor.BytesToBytes32(sink.Bytes()),
		}, data)
		return nil
	})
	recordCall("pull", err)
	if err != nil {
		logger.Info("pull emission failed", "error", err)
		return nil, err
	}
	metricPulled().Add(1)
	logger.Info("pulled emission", "amount", amount)
	return amount, nil
}

func (e *Emission) Treasury() (thor.Address, error) {
	return e.treasury.Get()
}

func (e *Emission) Sink() (thor.Address, error) {
	return e.sink.Get()
}

func (e *Emission) LaunchTime() (uint64, error) {
	launch, err := e.launch.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get launch time")
	}
	return launch, nil
}

func (e *Emission) Schedule() (Schedule, error) {
	schedule, err := e.schedule.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get schedule")
	}
	return schedule, nil
}

// Pulled returns the total amount pulled so far.
func (e *Emission) Pulled() (*big.Int, error) {
	pulled, err := e.pulled.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pulled")
	}
	return pulled, nil
}
