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

// AddBribe pulls amount of token from the caller into the bribe pool of
// candidate for the current period. A zero amount does nothing.
func (e *Election) AddBribe(token thor.Address, amount *big.Int, candidate thor.Bytes32) error {
	caller := e.env.Caller()
	logger.Debug("adding bribe", "sender", caller, "token", token, "amount", amount, "candidate", candidate)

	err := e.guarded("addBribe", func() error {
		ok, err := e.storage.IsBribeToken(token)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidBribeToken
		}
		if ok, err = e.storage.IsCandidate(candidate); err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCandidate
		}
		if amount == nil || amount.Sign() == 0 {
			return nil
		}
		value, overflow := uint256.FromBig(amount)
		if overflow || amount.Sign() < 0 {
			return ErrOverflow
		}

		period := e.PeriodStart(e.now)
		pool, err := e.storage.GetBribes(token, candidate, period)
		if err != nil {
			return err
		}
		if _, overflow := pool.AddOverflow(pool, value); overflow {
			return ErrOverflow
		}
		if err := e.storage.SetBribes(token, candidate, period, pool); err != nil {
			return err
		}
		if err := e.tokens(token).TransferFrom(caller, e.addr, amount); err != nil {
			return err
		}
		return e.emit(BribeAddedEvent, &BribeAdded{amount, period}, addrTopic(caller), addrTopic(token), candidate)
	})
	if err != nil {
		logger.Info("add bribe failed", "token", token, "candidate", candidate, "error", err)
		return err
	}
	metricBribesAdded().Add(1)
	logger.Info("added bribe", "token", token, "candidate", candidate, "amount", amount)
	return nil
}

// ClaimBribes pays the caller the share position id earned of every bribe pool
// of bribeTokens x candidates, for every closed period from periodStart(from)
// to periodStart(until). Shares already paid are skipped, so claiming is
// idempotent. It returns the amount paid per bribe token.
func (e *Election) ClaimBribes(id uint64, bribeTokens []thor.Address, candidates []thor.Bytes32, from, until uint64) ([]*big.Int, error) {
	caller := e.env.Caller()
	logger.Debug("claiming bribes", "claimant", caller, "id", id, "from", from, "until", until)

	paid := make([]*big.Int, len(bribeTokens))
	claims := 0
	err := e.guarded("claimBribes", func() error {
		if err := e.authorize(id); err != nil {
			return err
		}
		last := e.PeriodStart(until)
		if last >= e.PeriodStart(e.now) {
			return ErrPeriodNotClosed
		}
		first := e.PeriodStart(from)
		if _, _, err := e.claimIndex(first); err != nil {
			return err
		}

		owed := make([]*uint256.Int, len(bribeTokens))
		for i := range owed {
			owed[i] = new(uint256.Int)
		}
		for period := first; period <= last; period += e.periodLength {
			for i, token := range bribeTokens {
				for _, candidate := range candidates {
					amount, ok, err := e.share(id, token, candidate, period)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
					if err := e.setClaimed(id, token, candidate, period); err != nil {
						return err
					}
					if _, overflow := owed[i].AddOverflow(owed[i], amount); overflow {
						return ErrOverflow
					}
					if err := e.emit(BribeClaimedEvent, &BribeClaimed{candidate, amount.ToBig(), period},
						addrTopic(caller), idTopic(id), addrTopic(token)); err != nil {
						return err
					}
					claims++
				}
			}
		}

		for i, token := range bribeTokens {
			paid[i] = owed[i].ToBig()
			if owed[i].IsZero() {
				continue
			}
			if err := e.tokens(token).Transfer(caller, paid[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("claim bribes failed", "id", id, "error", err)
		return nil, err
	}
	metricBribesClaimed().Add(int64(claims))
	logger.Info("claimed bribes", "id", id, "claimant", caller)
	return paid, nil
}

// share computes what position id is owed from the pool of (token, candidate, period).
// ok is false when there is nothing to claim: an empty pool, no votes, or already claimed.
func (e *Election) share(id uint64, token thor.Address, candidate thor.Bytes32, period uint64) (*uint256.Int, bool, error) {
	pool, err := e.storage.GetBribes(token, candidate, period)
	if err != nil || pool.IsZero() {
		return nil, false, err
	}
	total, err := e.storage.GetVotes(candidate, period)
	if err != nil || total.IsZero() {
		return nil, false, err
	}
	own, err := e.storage.GetPositionVotes(id, candidate, period)
	if err != nil || own.IsZero() {
		return nil, false, err
	}
	claimed, err := e.isClaimed(id, token, candidate, period)
	if err != nil || claimed {
		return nil, false, err
	}

	amount, overflow := new(uint256.Int).MulOverflow(pool, own)
	if overflow {
		return nil, false, ErrOverflow
	}
	return amount.Div(amount, total), true, nil
}

// claimIndex locates the claim bit of period: the word and the bit inside it.
func (e *Election) claimIndex(period uint64) (word uint64, bit uint, err error) {
	initial, err := e.storage.GetInitialPeriodStart()
	if err != nil {
		return 0, 0, err
	}
	if period < initial {
		return 0, 0, ErrTimestampPrecedesFirstPeriod
	}
	idx := (period - initial) / e.periodLength
	return idx / 256, uint(idx % 256), nil
}

func (e *Election) isClaimed(id uint64, token thor.Address, candidate thor.Bytes32, period uint64) (bool, error) {
	word, bit, err := e.claimIndex(period)
	if err != nil {
		return false, err
	}
	bits, err := e.storage.GetClaimWord(id, token, candidate, word)
	if err != nil {
		return false, err
	}
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), bit)
	return !mask.And(mask, bits).IsZero(), nil
}

func (e *Election) setClaimed(id uint64, token thor.Address, candidate thor.Bytes32, period uint64) error {
	word, bit, err := e.claimIndex(period)
	if err != nil {
		return err
	}
	bits, err := e.storage.GetClaimWord(id, token, candidate, word)
	if err != nil {
		return err
	}
	bits.Or(bits, new(uint256.Int).Lsh(uint256.NewInt(1), bit))
	return e.storage.SetClaimWord(id, token, candidate, word, bits)
}

// IsClaimed reports whether position id was paid its share of (token, candidate) for the period of t.
func (e *Election) IsClaimed(id uint64, token thor.Address, candidate thor.Bytes32, t uint64) (bool, error) {
	return e.isClaimed(id, token, candidate, e.PeriodStart(t))
}

// Claimable returns what position id could claim from (token, candidate) for the period of t.
func (e *Election) Claimable(id uint64, token thor.Address, candidate thor.Bytes32, t uint64) (*big.Int, error) {
	period := e.PeriodStart(t)
	if _, _, err := e.claimIndex(period); err != nil {
		return nil, err
	}
	amount, ok, err := e.share(id, token, candidate, period)
	if err != nil {
		return nil, err
	}
	if !ok {
		return new(big.Int), nil
	}
	return amount.ToBig(), nil
}
