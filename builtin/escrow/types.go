// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
)

// Locked is the lock record of a position.
// End is a period boundary, or zero when the lock is indefinite.
type Locked struct {
	Amount       *big.Int
	End          uint64
	IsIndefinite bool
}

func emptyLocked() *Locked {
	return &Locked{Amount: new(big.Int)}
}

func (l *Locked) Copy() *Locked {
	return &Locked{
		Amount:       new(big.Int).Set(l.Amount),
		End:          l.End,
		IsIndefinite: l.IsIndefinite,
	}
}

func (l *Locked) IsEmpty() bool {
	return l.Amount.Sign() == 0 && l.End == 0 && !l.IsIndefinite
}

// Point is a checkpoint of voting weight.
// Bias is the weight at Timestamp, decaying by Slope per second after it.
// IndefiniteAmount never decays.
type Point struct {
	Bias             *big.Int
	Slope            *big.Int
	Timestamp        uint64
	IndefiniteAmount *big.Int
}

func emptyPoint() *Point {
	return &Point{
		Bias:             new(big.Int),
		Slope:            new(big.Int),
		IndefiniteAmount: new(big.Int),
	}
}

func (p *Point) Copy() *Point {
	return &Point{
		Bias:             new(big.Int).Set(p.Bias),
		Slope:            new(big.Int).Set(p.Slope),
		Timestamp:        p.Timestamp,
		IndefiniteAmount: new(big.Int).Set(p.IndefiniteAmount),
	}
}

// decayed returns bias - slope * (t - p.Timestamp), it may be negative.
func (p *Point) decayed(t uint64) *big.Int {
	dt := new(big.Int).Sub(new(big.Int).SetUint64(t), new(big.Int).SetUint64(p.Timestamp))
	return dt.Sub(p.Bias, dt.Mul(dt, p.Slope))
}

func clampZero(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		return x.SetUint64(0)
	}
	return x
}
