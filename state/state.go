// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state keeps the storage of builtin contracts.
//
// Every contract owns a flat key space of 32 bytes slots. Values are kept in
// their rlp form. Changes are journaled in memory and can be reverted to any
// checkpoint, until Commit flushes them into the backing kv store.
package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/vevote/kv"
	"github.com/vechain/vevote/stackedmap"
	"github.com/vechain/vevote/thor"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}

// State manages the storage of all contracts.
type State struct {
	store kv.Store
	cache *slotCache
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object on top of store.
func New(store kv.Store) *State {
	s := &State{
		store: store,
		cache: newSlotCache(defaultCacheSize),
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New[storageKey, rlp.RawValue](s.load)
}

// load implements stackedmap.MapGetter on committed data.
func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	raw, err := s.cache.getOrLoad(key, s.loadFromStore)
	if err != nil {
		return nil, false, err
	}
	return raw, len(raw) > 0, nil
}

func (s *State) loadFromStore(key storageKey) (rlp.RawValue, error) {
	data, err := s.store.Get(key.dbKey())
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Changes returns the number of distinct slots touched since the last commit.
func (s *State) Changes() int {
	return len(s.changes())
}

func (s *State) changes() map[storageKey]rlp.RawValue {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return changes
}

// Commit writes all journaled changes into the store in one batch and
// drops the journal. Checkpoints taken before are no longer valid.
func (s *State) Commit() error {
	changes := s.changes()
	if len(changes) == 0 {
		return nil
	}

	batch := s.store.NewBatch()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.dbKey())
		} else {
			err = batch.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	s.cache.update(changes)
	metricStorageWrites().Add(int64(len(changes)))
	s.reset()
	return nil
}

// ForEachStorage iterates committed slots of addr. Uncommitted changes are not visited.
func (s *State) ForEachStorage(addr thor.Address, cb func(key thor.Bytes32, raw rlp.RawValue) bool) error {
	iter := kv.Bucket(addr.Bytes()).NewStore(s.store).Iterate(kv.Range{})
	defer iter.Release()
	for iter.Next() {
		if !cb(thor.BytesToBytes32(iter.Key()), iter.Value()) {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return &Error{err}
	}
	return nil
}
