// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"math/big"

	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/builtin/reverts"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

var logger = log.WithContext("pkg", "election")

var (
	ErrNotOwner                     = reverts.New("NotOwner")
	ErrNotAuthorized                = reverts.New("NotAuthorized")
	ErrLengthMismatch               = reverts.New("LengthMismatch")
	ErrAlreadyVoted                 = reverts.New("AlreadyVoted")
	ErrNoVotingPower                = reverts.New("NoVotingPower")
	ErrZeroTotalWeight              = reverts.New("ZeroTotalWeight")
	ErrOverflow                     = reverts.New("Overflow")
	ErrInvalidCandidate             = reverts.New("InvalidCandidate")
	ErrInvalidBribeToken            = reverts.New("InvalidBribeToken")
	ErrAlreadyEnabled               = reverts.New("AlreadyEnabled")
	ErrNotEnabled                   = reverts.New("NotEnabled")
	ErrPeriodNotClosed              = reverts.New("PeriodNotClosed")
	ErrTimestampPrecedesFirstPeriod = reverts.New("TimestampPrecedesFirstPeriod")
	ErrAlreadyInitialized           = reverts.New("AlreadyInitialized")
	ErrZeroAddress                  = reverts.New("ZeroAddress")
)

// Escrow is the voting escrow the election reads voting power and authorization from.
type Escrow interface {
	IsAuthorized(actor thor.Address, id uint64) (bool, error)
	BalanceOfAt(id uint64, t uint64) (*big.Int, error)
	OwnerOf(id uint64) (thor.Address, error)
}

// Token is a bribe token.
type Token interface {
	Transfer(to thor.Address, amount *big.Int) error
	TransferFrom(from, to thor.Address, amount *big.Int) error
}

// Tokens resolves a bribe token by address, the token must act with the
// election address as its caller.
type Tokens func(addr thor.Address) Token

// Election tallies per period votes of escrow positions for candidates and
// splits bribes among the voters of a candidate.
type Election struct {
	addr         thor.Address
	env          *xenv.Environment
	storage      *storage
	escrow       Escrow
	tokens       Tokens
	periodLength uint64
	now          uint64
}

func New(addr thor.Address, env *xenv.Environment, escrow Escrow, tokens Tokens, periodLength uint64) *Election {
	return &Election{
		addr:         addr,
		env:          env,
		storage:      newStorage(addr, env.State(), gascharger.New(env)),
		escrow:       escrow,
		tokens:       tokens,
		periodLength: periodLength,
		now:          env.Now(),
	}
}

func (e *Election) Address() thor.Address {
	return e.addr
}

// PeriodStart rounds t down to the start of its period.
func (e *Election) PeriodStart(t uint64) uint64 {
	return thor.PeriodStart(t, e.periodLength)
}

func (e *Election) guarded(method string, fn func() error) error {
	exit, ok := e.env.Enter(e.addr)
	if !ok {
		recordCall(method, reverts.ErrReentrancy)
		return reverts.ErrReentrancy
	}
	defer exit()

	err := e.env.Atomic(fn)
	recordCall(method, err)
	return err
}

// Initialize sets the owner and the start of the first period. It can only run once.
func (e *Election) Initialize(owner thor.Address, initialPeriodStart uint64) error {
	return e.guarded("initialize", func() error {
		current, err := e.storage.GetOwner()
		if err != nil {
			return err
		}
		if !current.IsZero() {
			return ErrAlreadyInitialized
		}
		if owner.IsZero() {
			return ErrZeroAddress
		}
		e.storage.SetOwner(owner)
		if err := e.storage.SetInitialPeriodStart(e.PeriodStart(initialPeriodStart)); err != nil {
			return err
		}
		logger.Info("initialized", "owner", owner, "initialPeriodStart", e.PeriodStart(initialPeriodStart))
		return e.emit(OwnershipTransferredEvent, nil, thor.Bytes32{}, addrTopic(owner))
	})
}

func (e *Election) onlyOwner() error {
	owner, err := e.storage.GetOwner()
	if err != nil {
		return err
	}
	if owner != e.env.Caller() {
		return ErrNotOwner
	}
	return nil
}

func (e *Election) TransferOwnership(newOwner thor.Address) error {
	logger.Debug("transferring ownership", "caller", e.env.Caller(), "newOwner", newOwner)
	return e.guarded("transferOwnership", func() error {
		if err := e.onlyOwner(); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return ErrZeroAddress
		}
		e.storage.SetOwner(newOwner)
		return e.emit(OwnershipTransferredEvent, nil, addrTopic(e.env.Caller()), addrTopic(newOwner))
	})
}

func (e *Election) EnableCandidate(candidate thor.Bytes32) error {
	return e.toggleCandidate("enableCandidate", candidate, true)
}

func (e *Election) DisableCandidate(candidate thor.Bytes32) error {
	return e.toggleCandidate("disableCandidate", candidate, false)
}

func (e *Election) toggleCandidate(method string, candidate thor.Bytes32, enable bool) error {
	logger.Debug("toggling candidate", "candidate", candidate, "enable", enable)
	err := e.guarded(method, func() error {
		if err := e.onlyOwner(); err != nil {
			return err
		}
		enabled, err := e.storage.IsCandidate(candidate)
		if err != nil {
			return err
		}
		if err := checkToggle(enabled, enable); err != nil {
			return err
		}
		if err := e.storage.SetCandidate(candidate, enable); err != nil {
			return err
		}
		ev := CandidateEnabledEvent
		if !enable {
			ev = CandidateDisabledEvent
		}
		return e.emit(ev, nil, candidate)
	})
	if err != nil {
		logger.Info("toggle candidate failed", "candidate", candidate, "error", err)
		return err
	}
	logger.Info("toggled candidate", "candidate", candidate, "enabled", enable)
	return nil
}

func (e *Election) EnableBribeToken(token thor.Address) error {
	return e.toggleBribeToken("enableBribeToken", token, true)
}

func (e *Election) DisableBribeToken(token thor.Address) error {
	return e.toggleBribeToken("disableBribeToken", token, false)
}

func (e *Election) toggleBribeToken(method string, token thor.Address, enable bool) error {
	logger.Debug("toggling bribe token", "token", token, "enable", enable)
	err := e.guarded(method, func() error {
		if err := e.onlyOwner(); err != nil {
			return err
		}
		enabled, err := e.storage.IsBribeToken(token)
		if err != nil {
			return err
		}
		if err := checkToggle(enabled, enable); err != nil {
			return err
		}
		if err := e.storage.SetBribeToken(token, enable); err != nil {
			return err
		}
		ev := BribeTokenEnabledEvent
		if !enable {
			ev = BribeTokenDisabledEvent
		}
		return e.emit(ev, nil, addrTopic(token))
	})
	if err != nil {
		logger.Info("toggle bribe token failed", "token", token, "error", err)
		return err
	}
	logger.Info("toggled bribe token", "token", token, "enabled", enable)
	return nil
}

func checkToggle(enabled, enable bool) error {
	switch {
	case enabled && enable:
		return ErrAlreadyEnabled
	case !enabled && !enable:
		return ErrNotEnabled
	}
	return nil
}

func (e *Election) authorize(id uint64) error {
	ok, err := e.escrow.IsAuthorized(e.env.Caller(), id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}
