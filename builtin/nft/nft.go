// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/builtin/gascharger"
	"github.com/vechain/vevote/builtin/reverts"
	"github.com/vechain/vevote/builtin/solidity"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

var (
	logger = log.WithContext("pkg", "nft")

	ErrNonexistentToken = reverts.New("NonexistentToken")
	ErrTokenExists      = reverts.New("TokenExists")
	ErrNotAuthorized    = reverts.New("NotAuthorized")
	ErrNotMinter        = reverts.New("NotMinter")
	ErrIncorrectOwner   = reverts.New("IncorrectOwner")
	ErrZeroAddress      = reverts.New("ZeroAddress")

	TransferEvent       = tx.EventID("Transfer(address,address,uint256)")
	ApprovalEvent       = tx.EventID("Approval(address,address,uint256)")
	ApprovalForAllEvent = tx.EventID("ApprovalForAll(address,address,bool)")

	slotOwners    = thor.Blake2b([]byte("owners"))
	slotApprovals = thor.Blake2b([]byte("approvals"))
	slotOperators = thor.Blake2b([]byte("operators"))
	slotBalances  = thor.Blake2b([]byte("balances"))
)

type operatorKey struct {
	owner, operator thor.Address
}

func (k operatorKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.operator.Bytes()...)
}

// NFT tracks ownership and approvals of non-fungible tokens.
// Only the minter can create and destroy tokens.
type NFT struct {
	addr      thor.Address
	env       *xenv.Environment
	minter    thor.Address
	owners    *solidity.Mapping[solidity.Uint64Key, thor.Address]
	approvals *solidity.Mapping[solidity.Uint64Key, thor.Address]
	operators *solidity.Mapping[operatorKey, bool]
	balances  *solidity.Mapping[thor.Address, uint64]
}

func New(addr thor.Address, env *xenv.Environment, minter thor.Address) *NFT {
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	return &NFT{
		addr:      addr,
		env:       env,
		minter:    minter,
		owners:    solidity.NewMapping[solidity.Uint64Key, thor.Address](sctx, slotOwners),
		approvals: solidity.NewMapping[solidity.Uint64Key, thor.Address](sctx, slotApprovals),
		operators: solidity.NewMapping[operatorKey, bool](sctx, slotOperators),
		balances:  solidity.NewMapping[thor.Address, uint64](sctx, slotBalances),
	}
}

func (n *NFT) Address() thor.Address {
	return n.addr
}

func (n *NFT) OwnerOf(id uint64) (thor.Address, error) {
	owner, err := n.owners.Get(solidity.Uint64Key(id))
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get owner")
	}
	if owner.IsZero() {
		return thor.Address{}, ErrNonexistentToken
	}
	return owner, nil
}

func (n *NFT) BalanceOf(owner thor.Address) (uint64, error) {
	bal, err := n.balances.Get(owner)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (n *NFT) GetApproved(id uint64) (thor.Address, error) {
	if _, err := n.OwnerOf(id); err != nil {
		return thor.Address{}, err
	}
	approved, err := n.approvals.Get(solidity.Uint64Key(id))
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get approval")
	}
	return approved, nil
}

func (n *NFT) IsApprovedForAll(owner, operator thor.Address) (bool, error) {
	ok, err := n.operators.Get(operatorKey{owner, operator})
	if err != nil {
		return false, errors.Wrap(err, "failed to get operator")
	}
	return ok, nil
}

// IsAuthorized reports whether spender is the owner of id, approved for id,
// or an operator of the owner.
func (n *NFT) IsAuthorized(spender thor.Address, id uint64) (bool, error) {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return false, err
	}
	return n.isAuthorized(owner, spender, id)
}

func (n *NFT) isAuthorized(owner, spender thor.Address, id uint64) (bool, error) {
	if spender == owner {
		return true, nil
	}
	// unset approvals read as the zero address
	if spender.IsZero() {
		return false, nil
	}
	approved, err := n.approvals.Get(solidity.Uint64Key(id))
	if err != nil {
		return false, errors.Wrap(err, "failed to get approval")
	}
	if approved == spender {
		return true, nil
	}
	return n.IsApprovedForAll(owner, spender)
}

// Approve lets to transfer id. The caller must be the owner or one of its operators.
func (n *NFT) Approve(to thor.Address, id uint64) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	caller := n.env.Caller()
	if caller != owner {
		ok, err := n.IsApprovedForAll(owner, caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}
	}
	if err := n.approvals.Update(solidity.Uint64Key(id), to); err != nil {
		return errors.Wrap(err, "failed to set approval")
	}
	n.env.Log(n.addr, []thor.Bytes32{ApprovalEvent, addrTopic(owner), addrTopic(to), idTopic(id)}, nil)
	return nil
}

func (n *NFT) SetApprovalForAll(operator thor.Address, approved bool) error {
	owner := n.env.Caller()
	if err := n.operators.Update(operatorKey{owner, operator}, approved); err != nil {
		return errors.Wrap(err, "failed to set operator")
	}
	data, err := rlp.EncodeToBytes(approved)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	n.env.Log(n.addr, []thor.Bytes32{ApprovalForAllEvent, addrTopic(owner), addrTopic(operator)}, data)
	return nil
}

func (n *NFT) TransferFrom(from, to thor.Address, id uint64) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	return n.env.Atomic(func() error {
		owner, err := n.OwnerOf(id)
		if err != nil {
			return err
		}
		if owner != from {
			return ErrIncorrectOwner
		}
		ok, err := n.isAuthorized(owner, n.env.Caller(), id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}
		n.approvals.Delete(solidity.Uint64Key(id))
		if err := n.addBalance(from, -1); err != nil {
			return err
		}
		if err := n.addBalance(to, 1); err != nil {
			return err
		}
		if err := n.owners.Update(solidity.Uint64Key(id), to); err != nil {
			return errors.Wrap(err, "failed to set owner")
		}
		n.env.Log(n.addr, []thor.Bytes32{TransferEvent, addrTopic(from), addrTopic(to), idTopic(id)}, nil)
		return nil
	})
}

// Mint creates id owned by to.
func (n *NFT) Mint(to thor.Address, id uint64) error {
	if n.env.Caller() != n.minter {
		return ErrNotMinter
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	owner, err := n.owners.Get(solidity.Uint64Key(id))
	if err != nil {
		return errors.Wrap(err, "failed to get owner")
	}
	if !owner.IsZero() {
		return ErrTokenExists
	}
	if err := n.owners.Insert(solidity.Uint64Key(id), to); err != nil {
		return errors.Wrap(err, "failed to set owner")
	}
	if err := n.addBalance(to, 1); err != nil {
		return err
	}
	logger.Debug("minted", "id", id, "to", to)
	n.env.Log(n.addr, []thor.Bytes32{TransferEvent, {}, addrTopic(to), idTopic(id)}, nil)
	return nil
}

// Burn destroys id.
func (n *NFT) Burn(id uint64) error {
	if n.env.Caller() != n.minter {
		return ErrNotMinter
	}
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	n.approvals.Delete(solidity.Uint64Key(id))
	n.owners.Delete(solidity.Uint64Key(id))
	if err := n.addBalance(owner, -1); err != nil {
		return err
	}
	logger.Debug("burned", "id", id, "owner", owner)
	n.env.Log(n.addr, []thor.Bytes32{TransferEvent, addrTopic(owner), {}, idTopic(id)}, nil)
	return nil
}

func (n *NFT) addBalance(owner thor.Address, delta int) error {
	bal, err := n.BalanceOf(owner)
	if err != nil {
		return err
	}
	if delta < 0 {
		bal--
	} else {
		bal++
	}
	if err := n.balances.Update(owner, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

func addrTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

func idTopic(id uint64) thor.Bytes32 {
	return thor.BytesToBytes32(thor.Uint64Bytes(id))
}
