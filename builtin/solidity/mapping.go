// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/vevote/thor"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded, absent keys read as the zero value of V.
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		m.context.UseGas(slots(len(raw)) * thor.SloadGas)
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Insert stores a value under a key known to be empty.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	return m.set(key, value, thor.SstoreSetGas)
}

// Update overwrites the value of an existing key.
func (m *Mapping[K, V]) Update(key K, value V) error {
	return m.set(key, value, thor.SstoreResetGas)
}

// Set stores value, charging as a fresh slot if newValue is true.
func (m *Mapping[K, V]) Set(key K, value V, newValue bool) error {
	if newValue {
		return m.Insert(key, value)
	}
	return m.Update(key, value)
}

// Delete clears the key. Clearing is free.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func (m *Mapping[K, V]) set(key K, value V, gasPerSlot uint64) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(&value)
		if err != nil {
			return nil, err
		}
		m.context.UseGas(slots(len(val)) * gasPerSlot)
		return val, nil
	})
}
