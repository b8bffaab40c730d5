// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/vevote/thor"
)

type gasCounter uint64

func (g *gasCounter) UseGas(gas uint64) { *g += gasCounter(gas) }

func TestCharger(t *testing.T) {
	var used gasCounter
	c := New(&used)

	c.Charge(2 * thor.SstoreSetGas)
	c.Charge(thor.SstoreResetGas)
	c.Charge(3 * thor.SloadGas)
	c.Charge(7)
	c.ChargeLog(thor.LogGas)

	total := 2*thor.SstoreSetGas + thor.SstoreResetGas + 3*thor.SloadGas + 7
	assert.Equal(t, total, uint64(used))
	assert.Equal(t, total+thor.LogGas, c.TotalGas())
	assert.Contains(t, c.Breakdown(), "SSTORE_SET: 2 ops")
	assert.Contains(t, c.Breakdown(), "SLOAD: 3 ops")
	assert.Contains(t, c.Breakdown(), "CUSTOM: 7 gas")

	recorder := New(nil)
	recorder.Charge(thor.SloadGas)
	assert.Equal(t, thor.SloadGas, recorder.TotalGas())
}
