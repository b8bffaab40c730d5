// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Gas prices of native storage access.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
	LogGas         uint64 = 375
	LogTopicGas    uint64 = 375
	LogDataGas     uint64 = 8
)

// Protocol constants and defaults of governance params.
const (
	// Week is the unit of the emission schedule.
	Week uint64 = 7 * 24 * 60 * 60

	// DefaultPeriodLength is the length of a voting period, lock expiries are rounded down to it.
	DefaultPeriodLength uint64 = 2 * Week
	// DefaultMaxLockDuration is the longest decay a lock can have, about two years.
	DefaultMaxLockDuration uint64 = 2 * 365 * 24 * 60 * 60
	// DefaultMaxCheckpointSteps bounds the periods a single global checkpoint walks through.
	DefaultMaxCheckpointSteps uint64 = 255
)

// Keys of governance params.
var (
	KeyPeriodLength       = BytesToBytes32([]byte("period-length"))
	KeyMaxLockDuration    = BytesToBytes32([]byte("max-lock-duration"))
	KeyMaxCheckpointSteps = BytesToBytes32([]byte("max-checkpoint-steps"))
	KeyWithdrawToOwner    = BytesToBytes32([]byte("withdraw-to-owner"))
)

// PeriodStart rounds t down to the start of its period.
func PeriodStart(t, periodLength uint64) uint64 {
	return t / periodLength * periodLength
}
