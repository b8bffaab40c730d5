// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/vevote/thor"
)

// Vote splits the voting power position id had at the start of the current
// period among candidates, proportionally to weights. Each share is rounded
// down on its own and the remainder is dropped.
// A position votes at most once per period, even if every share rounds to zero.
func (e *Election) Vote(id uint64, candidates []thor.Bytes32, weights []*big.Int) error {
	caller := e.env.Caller()
	logger.Debug("voting", "voter", caller, "id", id, "candidates", len(candidates))

	err := e.guarded("vote", func() error {
		return e.vote(id, candidates, weights)
	})
	if err != nil {
		logger.Info("vote failed", "id", id, "error", err)
		return err
	}
	metricVotesCast().Add(1)
	logger.Info("voted", "id", id)
	return nil
}

func (e *Election) vote(id uint64, candidates []thor.Bytes32, weights []*big.Int) error {
	if err := e.authorize(id); err != nil {
		return err
	}
	if len(candidates) != len(weights) {
		return ErrLengthMismatch
	}

	period := e.PeriodStart(e.now)
	last, err := e.storage.GetLastVoteTime(id)
	if err != nil {
		return err
	}
	if last >= period {
		return ErrAlreadyVoted
	}

	balance, err := e.escrow.BalanceOfAt(id, period)
	if err != nil {
		return err
	}
	if balance.Sign() == 0 {
		return ErrNoVotingPower
	}
	power, overflow := uint256.FromBig(balance)
	if overflow {
		return ErrOverflow
	}

	ws := make([]*uint256.Int, len(weights))
	total := new(uint256.Int)
	for i, w := range weights {
		if w == nil || w.Sign() < 0 {
			return ErrOverflow
		}
		if ws[i], overflow = uint256.FromBig(w); overflow {
			return ErrOverflow
		}
		if _, overflow = total.AddOverflow(total, ws[i]); overflow {
			return ErrOverflow
		}
	}
	if total.IsZero() {
		return ErrZeroTotalWeight
	}

	for i, candidate := range candidates {
		ok, err := e.storage.IsCandidate(candidate)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCandidate
		}

		votes, overflow := new(uint256.Int).MulOverflow(power, ws[i])
		if overflow {
			return ErrOverflow
		}
		votes.Div(votes, total)
		if votes.IsZero() {
			continue
		}

		tally, err := e.storage.GetVotes(candidate, period)
		if err != nil {
			return err
		}
		if _, overflow := tally.AddOverflow(tally, votes); overflow {
			return ErrOverflow
		}
		if err := e.storage.SetVotes(candidate, period, tally); err != nil {
			return err
		}

		own, err := e.storage.GetPositionVotes(id, candidate, period)
		if err != nil {
			return err
		}
		if _, overflow := own.AddOverflow(own, votes); overflow {
			return ErrOverflow
		}
		if err := e.storage.SetPositionVotes(id, candidate, period, own); err != nil {
			return err
		}

		if err := e.emit(VotedEvent, &Voted{votes.ToBig(), period, e.now},
			addrTopic(e.env.Caller()), idTopic(id), candidate); err != nil {
			return err
		}
	}
	return e.storage.SetLastVoteTime(id, e.now)
}
