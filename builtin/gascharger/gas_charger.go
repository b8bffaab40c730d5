// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"fmt"

	"github.com/vechain/vevote/thor"
)

// GasUser is what the charger forwards gas to, usually an *xenv.Environment.
type GasUser interface {
	UseGas(gas uint64)
}

// Charger forwards gas to the env and keeps a breakdown per storage op.
type Charger struct {
	env            GasUser
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	logGas         uint64
	customGas      uint64
	totalGas       uint64
}

// New creates a charger. A nil env only records.
func New(env GasUser) *Charger {
	return &Charger{env: env}
}

func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	case gas == 0:
	case gas%thor.SstoreSetGas == 0:
		c.sstoreSetOps += gas / thor.SstoreSetGas
	case gas%thor.SstoreResetGas == 0:
		c.sstoreResetOps += gas / thor.SstoreResetGas
	case gas%thor.SloadGas == 0:
		c.sloadOps += gas / thor.SloadGas
	default:
		c.customGas += gas
	}

	if c.env != nil {
		c.env.UseGas(gas)
	}
}

// ChargeLog records gas spent on events, which the env charges by itself.
func (c *Charger) ChargeLog(gas uint64) {
	c.logGas += gas
	c.totalGas += gas
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | LOG: %d gas | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*thor.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*thor.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*thor.SstoreResetGas,
		c.logGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}
