// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/vevote/thor"
)

type contract struct {
	name    string
	Address thor.Address
}

func newContract(name string) *contract {
	return &contract{
		name,
		thor.BytesToAddress([]byte(name)),
	}
}

func (c *contract) Name() string {
	return c.name
}

// Addresses returns the address of every builtin contract by name.
func Addresses() map[string]thor.Address {
	addrs := make(map[string]thor.Address)
	for _, c := range []*contract{
		Params.contract,
		Token.contract,
		Position.contract,
		Escrow.contract,
		Election.contract,
		Emission.contract,
	} {
		addrs[c.name] = c.Address
	}
	return addrs
}
