// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/builtin/solidity"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

var (
	slotLocked           = nameToSlot("locked")
	slotSupply           = nameToSlot("supply")
	slotEpoch            = nameToSlot("epoch")
	slotPointHistory     = nameToSlot("point-history")
	slotUserPointEpoch   = nameToSlot("user-point-epoch")
	slotUserPointHistory = nameToSlot("user-point-history")
	slotSlopeChanges     = nameToSlot("slope-changes")
	slotIndefinite       = nameToSlot("indefinite-lock-balance")
	slotPositionCounter  = nameToSlot("position-counter")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

type userPointKey struct {
	id, epoch uint64
}

func (k userPointKey) Bytes() []byte {
	return append(thor.Uint64Bytes(k.id), thor.Uint64Bytes(k.epoch)...)
}

// storage represents the root storage for the escrow contract.
type storage struct {
	locked           *solidity.Mapping[solidity.Uint64Key, *Locked]
	supply           *solidity.Uint256
	epoch            *solidity.Raw[uint64]
	pointHistory     *solidity.Mapping[solidity.Uint64Key, *Point]
	userPointEpoch   *solidity.Mapping[solidity.Uint64Key, uint64]
	userPointHistory *solidity.Mapping[userPointKey, *Point]
	slopeChanges     *solidity.Mapping[solidity.Uint64Key, *solidity.Int]
	indefinite       *solidity.Uint256
	positionCounter  *solidity.Raw[uint64]
}

func newStorage(addr thor.Address, state *state.State, charger *gascharger.Charger) *storage {
	context := solidity.NewContext(addr, state, charger)
	return &storage{
		locked:           solidity.NewMapping[solidity.Uint64Key, *Locked](context, slotLocked),
		supply:           solidity.NewUint256(context, slotSupply),
		epoch:            solidity.NewRaw[uint64](context, slotEpoch),
		pointHistory:     solidity.NewMapping[solidity.Uint64Key, *Point](context, slotPointHistory),
		userPointEpoch:   solidity.NewMapping[solidity.Uint64Key, uint64](context, slotUserPointEpoch),
		userPointHistory: solidity.NewMapping[userPointKey, *Point](context, slotUserPointHistory),
		slopeChanges:     solidity.NewMapping[solidity.Uint64Key, *solidity.Int](context, slotSlopeChanges),
		indefinite:       solidity.NewUint256(context, slotIndefinite),
		positionCounter:  solidity.NewRaw[uint64](context, slotPositionCounter),
	}
}

// GetLocked returns the lock of id, an empty lock if there is none.
func (s *storage) GetLocked(id uint64) (*Locked, error) {
	l, err := s.locked.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get lock")
	}
	if l == nil {
		return emptyLocked(), nil
	}
	return l, nil
}

func (s *storage) SetLocked(id uint64, l *Locked) error {
	if l.IsEmpty() {
		s.locked.Delete(solidity.Uint64Key(id))
		return nil
	}
	if err := s.locked.Update(solidity.Uint64Key(id), l); err != nil {
		return errors.Wrap(err, "failed to set lock")
	}
	return nil
}

func (s *storage) GetSupply() (*big.Int, error) {
	v, err := s.supply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get supply")
	}
	return v, nil
}

func (s *storage) SetSupply(v *big.Int) {
	s.supply.Set(v)
}

func (s *storage) GetEpoch() (uint64, error) {
	v, err := s.epoch.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get epoch")
	}
	return v, nil
}

func (s *storage) SetEpoch(v uint64) error {
	if err := s.epoch.Upsert(v); err != nil {
		return errors.Wrap(err, "failed to set epoch")
	}
	return nil
}

// GetPoint returns the global point at epoch, an empty point if not written.
func (s *storage) GetPoint(epoch uint64) (*Point, error) {
	p, err := s.pointHistory.Get(solidity.Uint64Key(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get point")
	}
	if p == nil {
		return emptyPoint(), nil
	}
	return p, nil
}

func (s *storage) SetPoint(epoch uint64, p *Point) error {
	if err := s.pointHistory.Update(solidity.Uint64Key(epoch), p); err != nil {
		return errors.Wrap(err, "failed to set point")
	}
	return nil
}

func (s *storage) GetUserPointEpoch(id uint64) (uint64, error) {
	v, err := s.userPointEpoch.Get(solidity.Uint64Key(id))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get user point epoch")
	}
	return v, nil
}

func (s *storage) SetUserPointEpoch(id, epoch uint64) error {
	if err := s.userPointEpoch.Update(solidity.Uint64Key(id), epoch); err != nil {
		return errors.Wrap(err, "failed to set user point epoch")
	}
	return nil
}

func (s *storage) GetUserPoint(id, epoch uint64) (*Point, error) {
	p, err := s.userPointHistory.Get(userPointKey{id, epoch})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user point")
	}
	if p == nil {
		return emptyPoint(), nil
	}
	return p, nil
}

func (s *storage) SetUserPoint(id, epoch uint64, p *Point) error {
	if err := s.userPointHistory.Update(userPointKey{id, epoch}, p); err != nil {
		return errors.Wrap(err, "failed to set user point")
	}
	return nil
}

// GetSlopeChange returns the signed slope delta scheduled at t.
func (s *storage) GetSlopeChange(t uint64) (*big.Int, error) {
	v, err := s.slopeChanges.Get(solidity.Uint64Key(t))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get slope change")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v.Big(), nil
}

func (s *storage) SetSlopeChange(t uint64, delta *big.Int) error {
	if delta.Sign() == 0 {
		s.slopeChanges.Delete(solidity.Uint64Key(t))
		return nil
	}
	if err := s.slopeChanges.Update(solidity.Uint64Key(t), solidity.NewInt(delta)); err != nil {
		return errors.Wrap(err, "failed to set slope change")
	}
	return nil
}

func (s *storage) GetIndefinite() (*big.Int, error) {
	v, err := s.indefinite.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get indefinite lock balance")
	}
	return v, nil
}

func (s *storage) AddIndefinite(v *big.Int) error {
	if err := s.indefinite.Add(v); err != nil {
		return errors.Wrap(err, "failed to add indefinite lock balance")
	}
	return nil
}

func (s *storage) SubIndefinite(v *big.Int) error {
	if err := s.indefinite.Sub(v); err != nil {
		return errors.Wrap(err, "failed to sub indefinite lock balance")
	}
	return nil
}

// NextPositionID increments the position counter, ids start at 1.
func (s *storage) NextPositionID() (uint64, error) {
	id, err := s.positionCounter.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get position counter")
	}
	id++
	if err := s.positionCounter.Upsert(id); err != nil {
		return 0, errors.Wrap(err, "failed to set position counter")
	}
	return id, nil
}
