// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math"
	"math/big"

	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/builtin/params"
	"github.com/vechain/vevote/builtin/reverts"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

var logger = log.WithContext("pkg", "escrow")

var (
	ErrZeroAmount              = reverts.New("ZeroAmount")
	ErrUnlockNotInFuture       = reverts.New("UnlockNotInFuture")
	ErrLockTooLong             = reverts.New("LockTooLong")
	ErrLockedIndefinitely      = reverts.New("LockedIndefinitely")
	ErrLockExpired             = reverts.New("LockExpired")
	ErrNotLockedIndefinitely   = reverts.New("NotLockedIndefinitely")
	ErrLockNotExpired          = reverts.New("LockNotExpired")
	ErrUnlockTimeNotIncreasing = reverts.New("UnlockTimeNotIncreasing")
	ErrSamePosition            = reverts.New("SamePosition")
	ErrNoLockFound             = reverts.New("NoLockFound")
	ErrNotAuthorized           = reverts.New("NotAuthorized")
	ErrNonexistentPosition     = reverts.New("NonexistentPosition")
	ErrTimeBeforeCheckpoint    = reverts.New("TimeBeforeCheckpoint")
)

// Token is the locked asset.
type Token interface {
	Transfer(to thor.Address, amount *big.Int) error
	TransferFrom(from, to thor.Address, amount *big.Int) error
}

// Ownership tracks who owns positions and who may act on them.
type Ownership interface {
	OwnerOf(id uint64) (thor.Address, error)
	IsAuthorized(spender thor.Address, id uint64) (bool, error)
	Mint(to thor.Address, id uint64) error
	Burn(id uint64) error
}

// Escrow locks tokens into positions whose voting weight decays linearly
// until the lock end, or stays constant while locked indefinitely.
// Collaborators must act with the escrow address as their caller.
type Escrow struct {
	addr    thor.Address
	env     *xenv.Environment
	storage *storage
	token   Token
	nft     Ownership
	cfg     params.Config
	now     uint64

	// global checkpoint of the running call, recorded once it succeeds
	checkpointed bool
	steps        uint64
	epoch        uint64
}

func New(addr thor.Address, env *xenv.Environment, token Token, nft Ownership, cfg params.Config) *Escrow {
	return &Escrow{
		addr:    addr,
		env:     env,
		storage: newStorage(addr, env.State(), gascharger.New(env)),
		token:   token,
		nft:     nft,
		cfg:     cfg,
		now:     env.Now(),
	}
}

func (e *Escrow) Address() thor.Address {
	return e.addr
}

// guarded runs a mutating entry point, it fails on reentry and leaves no effect on failure.
func (e *Escrow) guarded(method string, fn func() error) error {
	exit, ok := e.env.Enter(e.addr)
	if !ok {
		recordCall(method, reverts.ErrReentrancy)
		return reverts.ErrReentrancy
	}
	defer exit()

	e.checkpointed = false
	err := e.env.Atomic(fn)
	recordCall(method, err)
	if err == nil && e.checkpointed {
		metricCheckpointSteps().Observe(int64(e.steps))
		metricGlobalEpoch().Set(int64(e.epoch))
	}
	return err
}

// CreateLock locks amount from the caller until periodStart(now + duration), the position is owned by the caller.
func (e *Escrow) CreateLock(amount *big.Int, duration uint64) (uint64, error) {
	return e.CreateLockFor(amount, duration, e.env.Caller())
}

// CreateLockFor locks amount from the caller into a new position owned by recipient.
func (e *Escrow) CreateLockFor(amount *big.Int, duration uint64, recipient thor.Address) (uint64, error) {
	caller := e.env.Caller()
	logger.Debug("creating lock", "provider", caller, "recipient", recipient, "amount", amount, "duration", duration)

	var id uint64
	err := e.guarded("createLock", func() error {
		if amount == nil || amount.Sign() <= 0 {
			return ErrZeroAmount
		}
		if duration > math.MaxUint64-e.now {
			return ErrLockTooLong
		}
		unlock := e.cfg.PeriodStart(e.now + duration)
		if unlock <= e.now {
			return ErrUnlockNotInFuture
		}
		if unlock > e.now+e.cfg.MaxLockDuration {
			return ErrLockTooLong
		}

		var err error
		if id, err = e.storage.NextPositionID(); err != nil {
			return err
		}
		if err := e.nft.Mint(recipient, id); err != nil {
			return err
		}
		locked, prev, err := e.deposit(id, amount, unlock, emptyLocked())
		if err != nil {
			return err
		}
		if err := e.emit(LockCreatedEvent, &LockCreated{amount, locked.End, e.now}, addrTopic(caller), idTopic(id), addrTopic(recipient)); err != nil {
			return err
		}
		return e.emitSupply(prev, new(big.Int).Add(prev, amount))
	})
	if err != nil {
		logger.Info("create lock failed", "provider", caller, "error", err)
		return 0, err
	}
	logger.Info("created lock", "id", id, "recipient", recipient)
	return id, nil
}

// DepositFor adds amount from the caller to an unexpired decaying lock, the end is unchanged.
func (e *Escrow) DepositFor(id uint64, amount *big.Int) error {
	caller := e.env.Caller()
	logger.Debug("depositing", "provider", caller, "id", id, "amount", amount)

	err := e.guarded("depositFor", func() error {
		if err := e.authorize(id); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrZeroAmount
		}
		old, err := e.storage.GetLocked(id)
		if err != nil {
			return err
		}
		if old.Amount.Sign() == 0 {
			return ErrNoLockFound
		}
		if old.IsIndefinite {
			return ErrLockedIndefinitely
		}
		if old.End <= e.now {
			return ErrLockExpired
		}
		locked, prev, err := e.deposit(id, amount, 0, old)
		if err != nil {
			return err
		}
		if err := e.emit(DepositEvent, &Deposit{amount, locked.End, e.now}, addrTopic(caller), idTopic(id)); err != nil {
			return err
		}
		return e.emitSupply(prev, new(big.Int).Add(prev, amount))
	})
	if err != nil {
		logger.Info("deposit failed", "id", id, "error", err)
		return err
	}
	logger.Info("deposited", "id", id, "amount", amount)
	return nil
}

// IncreaseUnlockTime moves the end of a decaying lock to periodStart(newEnd).
func (e *Escrow) IncreaseUnlockTime(id uint64, newEnd uint64) error {
	caller := e.env.Caller()
	logger.Debug("increasing unlock time", "caller", caller, "id", id, "end", newEnd)

	err := e.guarded("increaseUnlockTime", func() error {
		if err := e.authorize(id); err != nil {
			return err
		}
		old, err := e.storage.GetLocked(id)
		if err != nil {
			return err
		}
		if old.IsIndefinite {
			return ErrLockedIndefinitely
		}
		if old.End <= e.now {
			return ErrLockExpired
		}
		if old.Amount.Sign() == 0 {
			return ErrNoLockFound
		}
		unlock := e.cfg.PeriodStart(newEnd)
		if unlock <= old.End {
			return ErrUnlockTimeNotIncreasing
		}
		if unlock > e.now+e.cfg.MaxLockDuration {
			return ErrLockTooLong
		}
		if _, _, err := e.deposit(id, new(big.Int), unlock, old); err != nil {
			return err
		}
		return e.emit(UnlockTimeIncreasedEvent, &UnlockTimeIncreased{unlock, e.now}, addrTopic(caller), idTopic(id))
	})
	if err != nil {
		logger.Info("increase unlock time failed", "id", id, "error", err)
		return err
	}
	logger.Info("increased unlock time", "id", id)
	return nil
}

// deposit adds amount to the lock and moves its end to unlock if nonzero.
// It returns the new lock and the supply before the deposit.
func (e *Escrow) deposit(id uint64, amount *big.Int, unlock uint64, old *Locked) (*Locked, *big.Int, error) {
	supply, err := e.storage.GetSupply()
	if err != nil {
		return nil, nil, err
	}
	prev := new(big.Int).Set(supply)
	e.storage.SetSupply(supply.Add(supply, amount))

	locked := old.Copy()
	locked.Amount.Add(locked.Amount, amount)
	if unlock != 0 {
		locked.End = unlock
	}
	if err := e.storage.SetLocked(id, locked); err != nil {
		return nil, nil, err
	}
	if err := e.checkpoint(id, old, locked); err != nil {
		return nil, nil, err
	}
	if amount.Sign() != 0 {
		if err := e.token.TransferFrom(e.env.Caller(), e.addr, amount); err != nil {
			return nil, nil, err
		}
	}
	return locked, prev, nil
}

// Withdraw burns an expired position and returns its tokens.
// Tokens go to the caller, or to the position owner when withdraw-to-owner is set.
func (e *Escrow) Withdraw(id uint64) error {
	caller := e.env.Caller()
	logger.Debug("withdrawing", "caller", caller, "id", id)

	var amount *big.Int
	err := e.guarded("withdraw", func() error {
		if err := e.authorize(id); err != nil {
			return err
		}
		old, err := e.storage.GetLocked(id)
		if err != nil {
			return err
		}
		if old.IsIndefinite {
			return ErrLockedIndefinitely
		}
		if e.now < old.End {
			return ErrLockNotExpired
		}
		amount = old.Amount

		recipient := caller
		if e.cfg.WithdrawToOwner {
			if recipient, err = e.OwnerOf(id); err != nil {
				return err
			}
		}
		if err := e.nft.Burn(id); err != nil {
			return err
		}
		if err := e.storage.SetLocked(id, emptyLocked()); err != nil {
			return err
		}
		supply, err := e.storage.GetSupply()
		if err != nil {
			return err
		}
		prev := new(big.Int).Set(supply)
		e.storage.SetSupply(supply.Sub(supply, amount))
		if err := e.checkpoint(id, old, emptyLocked()); err != nil {
			return err
		}
		if err := e.token.Transfer(recipient, amount); err != nil {
			return err
		}
		if err := e.emit(WithdrawEvent, &Withdraw{amount, e.now}, addrTopic(caller), idTopic(id), addrTopic(recipient)); err != nil {
			return err
		}
		return e.emitSupply(prev, supply)
	})
	if err != nil {
		logger.Info("withdraw failed", "id", id, "error", err)
		return err
	}
	logger.Info("withdrew", "id", id, "amount", amount)
	return nil
}

// LockIndefinite stops the decay of a lock, its weight stays at the locked amount.
func (e *Escrow) LockIndefinite(id uint64) error {
	caller := e.env.Caller()
	logger.Debug("locking indefinitely", "caller", caller, "id", id)

	err := e.guarded("lockIndefinite", func() error {
		if err := e.authorize(id); err != nil {
			return err
		}
		old, err := e.storage.GetLocked(id)
		if err != nil {
			return err
		}
		if old.IsIndefinite {
			return ErrLockedIndefinitely
		}
		if old.End <= e.now {
			return ErrLockExpired
		}
		if old.Amount.Sign() == 0 {
			return ErrNoLockFound
		}
		if err := e.storage.AddIndefinite(old.Amount); err != nil {
			return err
		}
		locked := old.Copy()
		locked.End = 0
		locked.IsIndefinite = true
		if err := e.checkpoint(id, old, locked); err != nil {
			return err
		}
		if err := e.storage.SetLocked(id, locked); err != nil {
			return err
		}
		return e.emit(LockIndefiniteEvent, &LockIndefinite{locked.Amount, e.now}, addrTopic(caller), idTopic(id))
	})
	if err != nil {
		logger.Info("lock indefinite failed", "id", id, "error", err)
		return err
	}
	logger.Info("locked indefinitely", "id", id)
	return nil
}

// UnlockIndefinite restarts the decay of an indefinite lock with the longest duration.
func (e *Escrow) UnlockIndefinite(id uint64) error {
	caller := e.env.Caller()
	logger.Debug("unlocking indefinite", "caller", caller, "id", id)

	err := e.guarded("unlockIndefinite", func() error {
		if err := e.authorize(id); err != nil {
			return err
		}
		old, err := e.storage.GetLocked(id)
		if err != nil {
			return err
		}
		if !old.IsIndefinite {
			return ErrNotLockedIndefinitely
		}
		if err := e.storage.SubIndefinite(old.Amount); err != nil {
			return err
		}
		locked := old.Copy()
		locked.End = e.cfg.PeriodStart(e.now + e.cfg.MaxLockDuration)
		locked.IsIndefinite = false
		if err := e.checkpoint(id, old, locked); err != nil {
			return err
		}
		if err := e.storage.SetLocked(id, locked); err != nil {
			return err
		}
		return e.emit(UnlockIndefiniteEvent, &UnlockIndefinite{locked.Amount, locked.End, e.now}, addrTopic(caller), idTopic(id))
	})
	if err != nil {
		logger.Info("unlock indefinite failed", "id", id, "error", err)
		return err
	}
	logger.Info("unlocked indefinite", "id", id)
	return nil
}

// Merge burns from and folds its amount into to. The merged lock ends at the
// later of both ends, unless to is indefinite.
func (e *Escrow) Merge(from, to uint64) error {
	caller := e.env.Caller()
	logger.Debug("merging", "caller", caller, "from", from, "to", to)

	err := e.guarded("merge", func() error {
		if from == to {
			return ErrSamePosition
		}
		if err := e.authorize(from); err != nil {
			return err
		}
		if err := e.authorize(to); err != nil {
			return err
		}
		oldTo, err := e.storage.GetLocked(to)
		if err != nil {
			return err
		}
		if oldTo.End <= e.now && !oldTo.IsIndefinite {
			return ErrLockExpired
		}
		oldFrom, err := e.storage.GetLocked(from)
		if err != nil {
			return err
		}
		if oldFrom.IsIndefinite {
			return ErrLockedIndefinitely
		}
		end := max(oldFrom.End, oldTo.End)

		if err := e.storage.SetLocked(from, emptyLocked()); err != nil {
			return err
		}
		if err := e.checkpoint(from, oldFrom, emptyLocked()); err != nil {
			return err
		}
		if err := e.nft.Burn(from); err != nil {
			return err
		}

		locked := oldTo.Copy()
		locked.Amount.Add(locked.Amount, oldFrom.Amount)
		if locked.IsIndefinite {
			if err := e.storage.AddIndefinite(oldFrom.Amount); err != nil {
				return err
			}
		} else {
			locked.End = end
		}
		if err := e.checkpoint(to, oldTo, locked); err != nil {
			return err
		}
		if err := e.storage.SetLocked(to, locked); err != nil {
			return err
		}
		return e.emit(MergeEvent, &Merge{oldFrom.Amount, oldTo.Amount, locked.Amount, locked.End, e.now},
			addrTopic(caller), idTopic(from), idTopic(to))
	})
	if err != nil {
		logger.Info("merge failed", "from", from, "to", to, "error", err)
		return err
	}
	logger.Info("merged", "from", from, "to", to)
	return nil
}

// Checkpoint brings the global checkpoint series up to now.
func (e *Escrow) Checkpoint() error {
	return e.guarded("checkpoint", func() error {
		return e.checkpoint(0, emptyLocked(), emptyLocked())
	})
}

func (e *Escrow) authorize(id uint64) error {
	ok, err := e.IsAuthorized(e.env.Caller(), id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// IsAuthorized reports whether actor may act on position id.
func (e *Escrow) IsAuthorized(actor thor.Address, id uint64) (bool, error) {
	ok, err := e.nft.IsAuthorized(actor, id)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return false, ErrNonexistentPosition
		}
		return false, err
	}
	return ok, nil
}

func (e *Escrow) OwnerOf(id uint64) (thor.Address, error) {
	owner, err := e.nft.OwnerOf(id)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return thor.Address{}, ErrNonexistentPosition
		}
		return thor.Address{}, err
	}
	return owner, nil
}
