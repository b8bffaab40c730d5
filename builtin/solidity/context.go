// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

// Context is the storage of one builtin contract. Storage access is charged to charger.
type Context struct {
	address thor.Address
	state   *state.State
	charger *gascharger.Charger
}

func NewContext(address thor.Address, state *state.State, charger *gascharger.Charger) *Context {
	return &Context{
		address: address,
		state:   state,
		charger: charger,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger.Charge(gas)
	}
}

// slots converts an encoded length to the number of 32 bytes words it occupies.
func slots(length int) uint64 {
	return (uint64(length) + 31) / 32
}
