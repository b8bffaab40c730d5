// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
)

// userPoint computes the point of a lock at now.
func (e *Escrow) userPoint(l *Locked) *Point {
	p := emptyPoint()
	if l.IsIndefinite {
		p.IndefiniteAmount.Set(l.Amount)
		return p
	}
	if l.End > e.now && l.Amount.Sign() > 0 {
		p.Slope.Quo(l.Amount, new(big.Int).SetUint64(e.cfg.MaxLockDuration))
		p.Bias.Mul(p.Slope, new(big.Int).SetUint64(l.End-e.now))
	}
	return p
}

// checkpoint records the transition of position id from oldLocked to newLocked.
// A zero id only brings the global series up to now.
func (e *Escrow) checkpoint(id uint64, oldLocked, newLocked *Locked) error {
	var (
		uOld      = emptyPoint()
		uNew      = emptyPoint()
		oldDSlope = new(big.Int)
		newDSlope = new(big.Int)
		err       error
	)

	if id != 0 {
		uOld = e.userPoint(oldLocked)
		uNew = e.userPoint(newLocked)

		if oldDSlope, err = e.storage.GetSlopeChange(oldLocked.End); err != nil {
			return err
		}
		if newLocked.End != 0 {
			if newLocked.End == oldLocked.End {
				newDSlope.Set(oldDSlope)
			} else if newDSlope, err = e.storage.GetSlopeChange(newLocked.End); err != nil {
				return err
			}
		}
	}

	epoch, err := e.storage.GetEpoch()
	if err != nil {
		return err
	}
	lastPoint := emptyPoint()
	lastPoint.Timestamp = e.now
	if epoch > 0 {
		if lastPoint, err = e.storage.GetPoint(epoch); err != nil {
			return err
		}
		if e.now < lastPoint.Timestamp {
			return ErrTimeBeforeCheckpoint
		}
	}

	steps := uint64(0)
	lastCheckpoint := lastPoint.Timestamp
	ti := e.cfg.PeriodStart(lastCheckpoint)
	for i := uint64(0); i < e.cfg.MaxCheckpointSteps; i++ {
		ti += e.cfg.PeriodLength
		dSlope := new(big.Int)
		if ti > e.now {
			ti = e.now
		} else if dSlope, err = e.storage.GetSlopeChange(ti); err != nil {
			return err
		}
		elapsed := new(big.Int).SetUint64(ti - lastCheckpoint)
		lastPoint.Bias.Sub(lastPoint.Bias, elapsed.Mul(elapsed, lastPoint.Slope))
		lastPoint.Slope.Add(lastPoint.Slope, dSlope)
		clampZero(lastPoint.Bias)
		clampZero(lastPoint.Slope)
		lastCheckpoint = ti
		lastPoint.Timestamp = ti
		epoch++
		steps++
		if ti == e.now {
			break
		}
		if err := e.storage.SetPoint(epoch, lastPoint.Copy()); err != nil {
			return err
		}
	}
	if lastPoint.Timestamp < e.now {
		logger.Warn("global checkpoint is stale", "timestamp", lastPoint.Timestamp, "now", e.now, "steps", steps)
	}

	if id != 0 {
		lastPoint.Slope.Add(lastPoint.Slope, new(big.Int).Sub(uNew.Slope, uOld.Slope))
		lastPoint.Bias.Add(lastPoint.Bias, new(big.Int).Sub(uNew.Bias, uOld.Bias))
		clampZero(lastPoint.Bias)
		clampZero(lastPoint.Slope)
	}
	indefinite, err := e.storage.GetIndefinite()
	if err != nil {
		return err
	}
	lastPoint.IndefiniteAmount = indefinite

	overwrite := false
	if epoch != 1 {
		prev, err := e.storage.GetPoint(epoch - 1)
		if err != nil {
			return err
		}
		overwrite = prev.Timestamp == e.now
	}
	if overwrite {
		if err := e.storage.SetPoint(epoch-1, lastPoint); err != nil {
			return err
		}
	} else {
		if err := e.storage.SetEpoch(epoch); err != nil {
			return err
		}
		if err := e.storage.SetPoint(epoch, lastPoint); err != nil {
			return err
		}
	}
	e.checkpointed, e.steps, e.epoch = true, steps, epoch
	if overwrite {
		e.epoch--
	}

	if id == 0 {
		return nil
	}

	if oldLocked.End > e.now {
		oldDSlope.Add(oldDSlope, uOld.Slope)
		if newLocked.End == oldLocked.End {
			oldDSlope.Sub(oldDSlope, uNew.Slope)
		}
		if err := e.storage.SetSlopeChange(oldLocked.End, oldDSlope); err != nil {
			return err
		}
	}
	if newLocked.End > e.now && newLocked.End > oldLocked.End {
		newDSlope.Sub(newDSlope, uNew.Slope)
		if err := e.storage.SetSlopeChange(newLocked.End, newDSlope); err != nil {
			return err
		}
	}

	uNew.Timestamp = e.now
	userEpoch, err := e.storage.GetUserPointEpoch(id)
	if err != nil {
		return err
	}
	if userEpoch != 0 {
		latest, err := e.storage.GetUserPoint(id, userEpoch)
		if err != nil {
			return err
		}
		if latest.Timestamp == e.now {
			return e.storage.SetUserPoint(id, userEpoch, uNew)
		}
	}
	userEpoch++
	if err := e.storage.SetUserPointEpoch(id, userEpoch); err != nil {
		return err
	}
	return e.storage.SetUserPoint(id, userEpoch, uNew)
}

// pastGlobalIndex returns the epoch of the last global point at or before t, 0 if none.
func (e *Escrow) pastGlobalIndex(t uint64) (uint64, error) {
	epoch, err := e.storage.GetEpoch()
	if err != nil {
		return 0, err
	}
	return e.search(epoch, t, e.storage.GetPoint)
}

// pastUserIndex returns the epoch of the last point of id at or before t, 0 if none.
func (e *Escrow) pastUserIndex(id, t uint64) (uint64, error) {
	epoch, err := e.storage.GetUserPointEpoch(id)
	if err != nil {
		return 0, err
	}
	return e.search(epoch, t, func(i uint64) (*Point, error) {
		return e.storage.GetUserPoint(id, i)
	})
}

// search binary searches the series [1, latest] for the last point at or before t.
func (e *Escrow) search(latest, t uint64, get func(uint64) (*Point, error)) (uint64, error) {
	if latest == 0 {
		return 0, nil
	}
	p, err := get(latest)
	if err != nil {
		return 0, err
	}
	if p.Timestamp <= t {
		return latest, nil
	}
	if p, err = get(1); err != nil {
		return 0, err
	}
	if p.Timestamp > t {
		return 0, nil
	}

	lower, upper := uint64(0), latest-1
	for upper > lower {
		center := upper - (upper-lower)/2
		if p, err = get(center); err != nil {
			return 0, err
		}
		switch {
		case p.Timestamp == t:
			return center, nil
		case p.Timestamp < t:
			lower = center
		default:
			upper = center - 1
		}
	}
	return lower, nil
}

// balanceAt returns the voting weight of id at t.
func (e *Escrow) balanceAt(id, t uint64) (*big.Int, error) {
	epoch, err := e.pastUserIndex(id, t)
	if err != nil {
		return nil, err
	}
	if epoch == 0 {
		return new(big.Int), nil
	}
	p, err := e.storage.GetUserPoint(id, epoch)
	if err != nil {
		return nil, err
	}
	if p.IndefiniteAmount.Sign() != 0 {
		return p.IndefiniteAmount, nil
	}
	return clampZero(p.decayed(t)), nil
}

// supplyAt returns the total voting weight at t.
// It steps forward from the last global point before t applying scheduled slope changes.
func (e *Escrow) supplyAt(t uint64) (*big.Int, error) {
	epoch, err := e.pastGlobalIndex(t)
	if err != nil {
		return nil, err
	}
	if epoch == 0 {
		return new(big.Int), nil
	}
	last, err := e.storage.GetPoint(epoch)
	if err != nil {
		return nil, err
	}

	ti := e.cfg.PeriodStart(last.Timestamp)
	for i := uint64(0); i < e.cfg.MaxCheckpointSteps; i++ {
		ti += e.cfg.PeriodLength
		dSlope := new(big.Int)
		if ti > t {
			ti = t
		} else if dSlope, err = e.storage.GetSlopeChange(ti); err != nil {
			return nil, err
		}
		last.Bias = last.decayed(ti)
		if ti == t {
			break
		}
		last.Slope.Add(last.Slope, dSlope)
		last.Timestamp = ti
	}
	return clampZero(last.Bias).Add(last.Bias, last.IndefiniteAmount), nil
}
