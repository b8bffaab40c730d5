// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
)

func (e *Escrow) Locked(id uint64) (*Locked, error) {
	return e.storage.GetLocked(id)
}

// Supply returns the total amount of tokens locked.
func (e *Escrow) Supply() (*big.Int, error) {
	return e.storage.GetSupply()
}

func (e *Escrow) Epoch() (uint64, error) {
	return e.storage.GetEpoch()
}

func (e *Escrow) PointHistory(epoch uint64) (*Point, error) {
	return e.storage.GetPoint(epoch)
}

func (e *Escrow) UserPointEpoch(id uint64) (uint64, error) {
	return e.storage.GetUserPointEpoch(id)
}

func (e *Escrow) UserPointHistory(id, epoch uint64) (*Point, error) {
	return e.storage.GetUserPoint(id, epoch)
}

func (e *Escrow) SlopeChange(t uint64) (*big.Int, error) {
	return e.storage.GetSlopeChange(t)
}

func (e *Escrow) IndefiniteLockBalance() (*big.Int, error) {
	return e.storage.GetIndefinite()
}

// BalanceOfAt returns the voting weight of position id at timestamp t.
func (e *Escrow) BalanceOfAt(id uint64, t uint64) (*big.Int, error) {
	return e.balanceAt(id, t)
}

func (e *Escrow) BalanceOf(id uint64) (*big.Int, error) {
	return e.balanceAt(id, e.now)
}

// TotalSupplyAt returns the sum of voting weights at timestamp t.
func (e *Escrow) TotalSupplyAt(t uint64) (*big.Int, error) {
	return e.supplyAt(t)
}

func (e *Escrow) TotalSupply() (*big.Int, error) {
	return e.supplyAt(e.now)
}
