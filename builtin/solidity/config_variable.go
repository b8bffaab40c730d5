// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

var logger = log.WithContext("pkg", "solidity")

// ConfigVariable is a protocol constant with a default, overridable through the params contract.
type ConfigVariable struct {
	key          thor.Bytes32
	name         string
	defaultValue uint64
}

func NewConfigVariable(name string, key thor.Bytes32, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		key:          key,
		name:         name,
		defaultValue: defaultValue,
	}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Key() thor.Bytes32 {
	return c.key
}

func (c *ConfigVariable) Default() uint64 {
	return c.defaultValue
}

// Load reads the override stored by the params contract at paramsAddr.
// A zero or unreadable value falls back to the default.
// Reads are not charged, the value is a protocol constant for the call.
func (c *ConfigVariable) Load(st *state.State, paramsAddr thor.Address) uint64 {
	var v big.Int
	err := st.DecodeStorage(paramsAddr, c.key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	if err != nil {
		logger.Warn("failed to read config value", "name", c.name, "error", err)
		return c.defaultValue
	}
	if v.Sign() == 0 || !v.IsUint64() {
		return c.defaultValue
	}
	logger.Trace("config value overridden", "name", c.name, "value", v.Uint64())
	return v.Uint64()
}
