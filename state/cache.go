// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
)

const defaultCacheSize = 4096

// slotCache keeps committed slot values. An absent slot is cached as an empty value.
type slotCache struct {
	lru *lru.Cache
}

func newSlotCache(size int) *slotCache {
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &slotCache{c}
}

// getOrLoad returns the committed value of key, calling load on miss.
// Failed loads are not cached.
func (c *slotCache) getOrLoad(key storageKey, load func(storageKey) (rlp.RawValue, error)) (rlp.RawValue, error) {
	if v, ok := c.lru.Get(key); ok {
		metricStorageAccess().AddWithLabel(1, map[string]string{"result": "hit"})
		return v.(rlp.RawValue), nil
	}
	metricStorageAccess().AddWithLabel(1, map[string]string{"result": "miss"})
	v, err := load(key)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, v)
	return v, nil
}

// update refreshes slots just written to the store.
func (c *slotCache) update(changes map[storageKey]rlp.RawValue) {
	for k, v := range changes {
		c.lru.Add(k, v)
	}
}

func (c *slotCache) len() int {
	return c.lru.Len()
}
