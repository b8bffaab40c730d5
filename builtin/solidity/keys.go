// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "github.com/vechain/vevote/thor"

// Uint64Key is a mapping key for counters, ids and timestamps.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return thor.Uint64Bytes(uint64(k))
}
