// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

var (
	CandidateEnabledEvent     = tx.EventID("CandidateEnabled(bytes32)")
	CandidateDisabledEvent    = tx.EventID("CandidateDisabled(bytes32)")
	BribeTokenEnabledEvent    = tx.EventID("BribeTokenEnabled(address)")
	BribeTokenDisabledEvent   = tx.EventID("BribeTokenDisabled(address)")
	OwnershipTransferredEvent = tx.EventID("OwnershipTransferred(address,address)")
	VotedEvent                = tx.EventID("Voted(address,uint256,bytes32,uint256,uint256,uint256)")
	BribeAddedEvent           = tx.EventID("BribeAdded(address,address,bytes32,uint256,uint256)")
	BribeClaimedEvent         = tx.EventID("BribeClaimed(address,uint256,address,bytes32,uint256,uint256)")
)

// Voted is the data of VotedEvent, topics are voter, position and candidate.
type Voted struct {
	Votes     *big.Int
	Period    uint64
	Timestamp uint64
}

// BribeAdded is the data of BribeAddedEvent, topics are sender, bribe token and candidate.
type BribeAdded struct {
	Amount *big.Int
	Period uint64
}

// BribeClaimed is the data of BribeClaimedEvent, topics are claimant, position and bribe token.
type BribeClaimed struct {
	Candidate thor.Bytes32
	Amount    *big.Int
	Period    uint64
}

func addrTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

func idTopic(id uint64) thor.Bytes32 {
	return thor.BytesToBytes32(thor.Uint64Bytes(id))
}

func (e *Election) emit(id thor.Bytes32, data any, topics ...thor.Bytes32) error {
	var enc []byte
	if data != nil {
		var err error
		if enc, err = rlp.EncodeToBytes(data); err != nil {
			return errors.Wrap(err, "failed to encode event")
		}
	}
	e.env.Log(e.addr, append([]thor.Bytes32{id}, topics...), enc)
	return nil
}
