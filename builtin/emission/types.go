// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package emission

import (
	"math/big"

	"github.com/vechain/vevote/thor"
)

// Step emits WeeklyRate per week for Weeks weeks.
type Step struct {
	Weeks      uint64
	WeeklyRate *big.Int
}

// Schedule is a list of steps run back to back from launch. Nothing is
// emitted after the last step.
type Schedule []Step

// Validate checks every step lasts at least a week and rates never increase.
func (s Schedule) Validate() error {
	var prev *big.Int
	for _, step := range s {
		if step.Weeks == 0 || step.WeeklyRate == nil || step.WeeklyRate.Sign() < 0 {
			return ErrInvalidSchedule
		}
		if prev != nil && step.WeeklyRate.Cmp(prev) > 0 {
			return ErrInvalidSchedule
		}
		prev = step.WeeklyRate
	}
	return nil
}

// Accrued returns the amount emitted elapsed seconds after launch.
// Within a week the rate accrues linearly per second, rounded down.
func (s Schedule) Accrued(elapsed uint64) *big.Int {
	total := new(big.Int)
	for _, step := range s {
		span := step.Weeks * thor.Week
		if elapsed >= span {
			total.Add(total, new(big.Int).Mul(step.WeeklyRate, new(big.Int).SetUint64(step.Weeks)))
			elapsed -= span
			continue
		}
		x := new(big.Int).Mul(step.WeeklyRate, new(big.Int).SetUint64(elapsed))
		return total.Add(total, x.Quo(x, new(big.Int).SetUint64(thor.Week)))
	}
	return total
}

// Total is what the whole schedule emits.
func (s Schedule) Total() *big.Int {
	total := new(big.Int)
	for _, step := range s {
		total.Add(total, new(big.Int).Mul(step.WeeklyRate, new(big.Int).SetUint64(step.Weeks)))
	}
	return total
}

// Pulled is the data of EmissionPulledEvent, topics are treasury and sink.
type Pulled struct {
	Amount *big.Int
	Total  *big.Int
}
