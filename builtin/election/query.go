// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"math/big"

	"github.com/vechain/vevote/thor"
)

func (e *Election) Owner() (thor.Address, error) {
	return e.storage.GetOwner()
}

func (e *Election) InitialPeriodStart() (uint64, error) {
	return e.storage.GetInitialPeriodStart()
}

func (e *Election) IsCandidate(candidate thor.Bytes32) (bool, error) {
	return e.storage.IsCandidate(candidate)
}

func (e *Election) IsBribeToken(token thor.Address) (bool, error) {
	return e.storage.IsBribeToken(token)
}

func (e *Election) LastVoteTime(id uint64) (uint64, error) {
	return e.storage.GetLastVoteTime(id)
}

// Votes returns the votes candidate received in the period of t.
func (e *Election) Votes(candidate thor.Bytes32, t uint64) (*big.Int, error) {
	v, err := e.storage.GetVotes(candidate, e.PeriodStart(t))
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// PositionVotes returns the votes position id gave candidate in the period of t.
func (e *Election) PositionVotes(id uint64, candidate thor.Bytes32, t uint64) (*big.Int, error) {
	v, err := e.storage.GetPositionVotes(id, candidate, e.PeriodStart(t))
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// Bribes returns the bribe pool of (token, candidate) in the period of t.
func (e *Election) Bribes(token thor.Address, candidate thor.Bytes32, t uint64) (*big.Int, error) {
	v, err := e.storage.GetBribes(token, candidate, e.PeriodStart(t))
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}
