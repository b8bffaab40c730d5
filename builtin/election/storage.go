// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/builtin/solidity"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

var (
	slotOwner              = nameToSlot("owner")
	slotInitialPeriodStart = nameToSlot("initial-period-start")
	slotCandidates         = nameToSlot("candidates")
	slotBribeTokens        = nameToSlot("bribe-tokens")
	slotLastVoteTime       = nameToSlot("last-vote-time")
	slotVotes              = nameToSlot("votes")
	slotPositionVotes      = nameToSlot("position-votes")
	slotBribes             = nameToSlot("bribes")
	slotClaims             = nameToSlot("claims")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// votesKey is (candidate, period).
type votesKey struct {
	candidate thor.Bytes32
	period    uint64
}

func (k votesKey) Bytes() []byte {
	return append(k.candidate.Bytes(), thor.Uint64Bytes(k.period)...)
}

// positionVotesKey is (position, candidate, period).
type positionVotesKey struct {
	id        uint64
	candidate thor.Bytes32
	period    uint64
}

func (k positionVotesKey) Bytes() []byte {
	b := append(thor.Uint64Bytes(k.id), k.candidate.Bytes()...)
	return append(b, thor.Uint64Bytes(k.period)...)
}

// bribesKey is (bribe token, candidate, period).
type bribesKey struct {
	token     thor.Address
	candidate thor.Bytes32
	period    uint64
}

func (k bribesKey) Bytes() []byte {
	b := append(k.token.Bytes(), k.candidate.Bytes()...)
	return append(b, thor.Uint64Bytes(k.period)...)
}

// claimsKey addresses a word of 256 claim bits of (position, bribe token, candidate).
type claimsKey struct {
	id        uint64
	token     thor.Address
	candidate thor.Bytes32
	word      uint64
}

func (k claimsKey) Bytes() []byte {
	b := append(thor.Uint64Bytes(k.id), k.token.Bytes()...)
	b = append(b, k.candidate.Bytes()...)
	return append(b, thor.Uint64Bytes(k.word)...)
}

type storage struct {
	owner              *solidity.Address
	initialPeriodStart *solidity.Raw[uint64]
	candidates         *solidity.Mapping[thor.Bytes32, bool]
	bribeTokens        *solidity.Mapping[thor.Address, bool]
	lastVoteTime       *solidity.Mapping[solidity.Uint64Key, uint64]
	votes              *solidity.Mapping[votesKey, *uint256.Int]
	positionVotes      *solidity.Mapping[positionVotesKey, *uint256.Int]
	bribes             *solidity.Mapping[bribesKey, *uint256.Int]
	claims             *solidity.Mapping[claimsKey, *uint256.Int]
}

func newStorage(addr thor.Address, state *state.State, charger *gascharger.Charger) *storage {
	context := solidity.NewContext(addr, state, charger)
	return &storage{
		owner:              solidity.NewAddress(context, slotOwner),
		initialPeriodStart: solidity.NewRaw[uint64](context, slotInitialPeriodStart),
		candidates:         solidity.NewMapping[thor.Bytes32, bool](context, slotCandidates),
		bribeTokens:        solidity.NewMapping[thor.Address, bool](context, slotBribeTokens),
		lastVoteTime:       solidity.NewMapping[solidity.Uint64Key, uint64](context, slotLastVoteTime),
		votes:              solidity.NewMapping[votesKey, *uint256.Int](context, slotVotes),
		positionVotes:      solidity.NewMapping[positionVotesKey, *uint256.Int](context, slotPositionVotes),
		bribes:             solidity.NewMapping[bribesKey, *uint256.Int](context, slotBribes),
		claims:             solidity.NewMapping[claimsKey, *uint256.Int](context, slotClaims),
	}
}

func (s *storage) GetOwner() (thor.Address, error) {
	owner, err := s.owner.Get()
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return owner, nil
}

func (s *storage) SetOwner(owner thor.Address) {
	s.owner.Set(owner)
}

func (s *storage) GetInitialPeriodStart() (uint64, error) {
	v, err := s.initialPeriodStart.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get initial period start")
	}
	return v, nil
}

func (s *storage) SetInitialPeriodStart(v uint64) error {
	if err := s.initialPeriodStart.Upsert(v); err != nil {
		return errors.Wrap(err, "failed to set initial period start")
	}
	return nil
}

func (s *storage) IsCandidate(candidate thor.Bytes32) (bool, error) {
	v, err := s.candidates.Get(candidate)
	if err != nil {
		return false, errors.Wrap(err, "failed to get candidate")
	}
	return v, nil
}

func (s *storage) SetCandidate(candidate thor.Bytes32, enabled bool) error {
	if err := s.candidates.Update(candidate, enabled); err != nil {
		return errors.Wrap(err, "failed to set candidate")
	}
	return nil
}

func (s *storage) IsBribeToken(token thor.Address) (bool, error) {
	v, err := s.bribeTokens.Get(token)
	if err != nil {
		return false, errors.Wrap(err, "failed to get bribe token")
	}
	return v, nil
}

func (s *storage) SetBribeToken(token thor.Address, enabled bool) error {
	if err := s.bribeTokens.Update(token, enabled); err != nil {
		return errors.Wrap(err, "failed to set bribe token")
	}
	return nil
}

func (s *storage) GetLastVoteTime(id uint64) (uint64, error) {
	v, err := s.lastVoteTime.Get(solidity.Uint64Key(id))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get last vote time")
	}
	return v, nil
}

func (s *storage) SetLastVoteTime(id, t uint64) error {
	if err := s.lastVoteTime.Update(solidity.Uint64Key(id), t); err != nil {
		return errors.Wrap(err, "failed to set last vote time")
	}
	return nil
}

// tallies are stored as 256-bit words, missing entries read as zero.
func getTally[K solidity.Key](m *solidity.Mapping[K, *uint256.Int], key K, what string) (*uint256.Int, error) {
	v, err := m.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get "+what)
	}
	if v == nil {
		return new(uint256.Int), nil
	}
	return v, nil
}

func setTally[K solidity.Key](m *solidity.Mapping[K, *uint256.Int], key K, v *uint256.Int, what string) error {
	if err := m.Update(key, v); err != nil {
		return errors.Wrap(err, "failed to set "+what)
	}
	return nil
}

func (s *storage) GetVotes(candidate thor.Bytes32, period uint64) (*uint256.Int, error) {
	return getTally(s.votes, votesKey{candidate, period}, "votes")
}

func (s *storage) SetVotes(candidate thor.Bytes32, period uint64, v *uint256.Int) error {
	return setTally(s.votes, votesKey{candidate, period}, v, "votes")
}

func (s *storage) GetPositionVotes(id uint64, candidate thor.Bytes32, period uint64) (*uint256.Int, error) {
	return getTally(s.positionVotes, positionVotesKey{id, candidate, period}, "position votes")
}

func (s *storage) SetPositionVotes(id uint64, candidate thor.Bytes32, period uint64, v *uint256.Int) error {
	return setTally(s.positionVotes, positionVotesKey{id, candidate, period}, v, "position votes")
}

func (s *storage) GetBribes(token thor.Address, candidate thor.Bytes32, period uint64) (*uint256.Int, error) {
	return getTally(s.bribes, bribesKey{token, candidate, period}, "bribes")
}

func (s *storage) SetBribes(token thor.Address, candidate thor.Bytes32, period uint64, v *uint256.Int) error {
	return setTally(s.bribes, bribesKey{token, candidate, period}, v, "bribes")
}

func (s *storage) GetClaimWord(id uint64, token thor.Address, candidate thor.Bytes32, word uint64) (*uint256.Int, error) {
	return getTally(s.claims, claimsKey{id, token, candidate, word}, "claims")
}

func (s *storage) SetClaimWord(id uint64, token thor.Address, candidate thor.Bytes32, word uint64, v *uint256.Int) error {
	return setTally(s.claims, claimsKey{id, token, candidate, word}, v, "claims")
}
