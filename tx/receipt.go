// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/vevote/thor"
)

// Receipt represents the results of a call.
type Receipt struct {
	// sequence number of the call
	Number uint32
	// the account that issued the call
	Caller thor.Address
	// the called contract
	To thor.Address
	// gas used by the call
	GasUsed uint64
	// if the call reverted
	Reverted bool
	// revert reason, empty when succeeded
	RevertReason string
	// block time at which the call executed
	Timestamp uint64
	// events produced, always empty for reverted calls
	Events Events
}
