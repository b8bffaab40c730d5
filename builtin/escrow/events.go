// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

var (
	LockCreatedEvent         = tx.EventID("LockCreated(address,uint256,address,uint256,uint256,uint256)")
	DepositEvent             = tx.EventID("Deposit(address,uint256,uint256,uint256,uint256)")
	UnlockTimeIncreasedEvent = tx.EventID("UnlockTimeIncreased(address,uint256,uint256,uint256)")
	WithdrawEvent            = tx.EventID("Withdraw(address,uint256,address,uint256,uint256)")
	MergeEvent               = tx.EventID("Merge(address,uint256,uint256,uint256,uint256,uint256,uint256,uint256)")
	LockIndefiniteEvent      = tx.EventID("LockIndefinite(address,uint256,uint256,uint256)")
	UnlockIndefiniteEvent    = tx.EventID("UnlockIndefinite(address,uint256,uint256,uint256,uint256)")
	SupplyEvent              = tx.EventID("Supply(uint256,uint256)")
)

// LockCreated is the data of LockCreatedEvent, topics are provider, id and recipient.
type LockCreated struct {
	Amount    *big.Int
	End       uint64
	Timestamp uint64
}

// Deposit is the data of DepositEvent, topics are provider and id.
type Deposit struct {
	Amount    *big.Int
	End       uint64
	Timestamp uint64
}

// UnlockTimeIncreased is the data of UnlockTimeIncreasedEvent, topics are provider and id.
type UnlockTimeIncreased struct {
	End       uint64
	Timestamp uint64
}

// Withdraw is the data of WithdrawEvent, topics are provider, id and recipient.
type Withdraw struct {
	Amount    *big.Int
	Timestamp uint64
}

// Merge is the data of MergeEvent, topics are sender, from and to.
type Merge struct {
	AmountFrom  *big.Int
	AmountTo    *big.Int
	AmountFinal *big.Int
	End         uint64
	Timestamp   uint64
}

// LockIndefinite is the data of LockIndefiniteEvent, topics are sender and id.
type LockIndefinite struct {
	Amount    *big.Int
	Timestamp uint64
}

// UnlockIndefinite is the data of UnlockIndefiniteEvent, topics are sender and id.
type UnlockIndefinite struct {
	Amount    *big.Int
	End       uint64
	Timestamp uint64
}

// Supply is the data of SupplyEvent.
type Supply struct {
	Prev    *big.Int
	Current *big.Int
}

func addrTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

func idTopic(id uint64) thor.Bytes32 {
	return thor.BytesToBytes32(thor.Uint64Bytes(id))
}

func (e *Escrow) emit(id thor.Bytes32, data any, topics ...thor.Bytes32) error {
	enc, err := rlp.EncodeToBytes(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	e.env.Log(e.addr, append([]thor.Bytes32{id}, topics...), enc)
	return nil
}

func (e *Escrow) emitSupply(prev, current *big.Int) error {
	return e.emit(SupplyEvent, &Supply{Prev: prev, Current: current})
}
