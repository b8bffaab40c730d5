// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

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
	logger = log.WithContext("pkg", "token")

	ErrInsufficientBalance   = reverts.New("InsufficientBalance")
	ErrInsufficientAllowance = reverts.New("InsufficientAllowance")
	ErrZeroAddress           = reverts.New("ZeroAddress")
	ErrNegativeAmount        = reverts.New("NegativeAmount")

	TransferEvent = tx.EventID("Transfer(address,address,uint256)")
	ApprovalEvent = tx.EventID("Approval(address,address,uint256)")

	slotBalances    = nameToSlot("balances")
	slotAllowances  = nameToSlot("allowances")
	slotTotalSupply = nameToSlot("total-supply")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.Blake2b([]byte(name))
}

type allowanceKey struct {
	owner, spender thor.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token is a fungible token bound to an address. Every method acts on behalf of
// the caller of the environment it was created with.
type Token struct {
	addr        thor.Address
	env         *xenv.Environment
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
	totalSupply *solidity.Uint256
}

func New(addr thor.Address, env *xenv.Environment) *Token {
	sctx := solidity.NewContext(addr, env.State(), gascharger.New(env))
	return &Token{
		addr:        addr,
		env:         env,
		balances:    solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func (t *Token) Address() thor.Address {
	return t.addr
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	allowance, err := t.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	if allowance == nil {
		return new(big.Int), nil
	}
	return allowance, nil
}

func (t *Token) TotalSupply() (*big.Int, error) {
	supply, err := t.totalSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total supply")
	}
	return supply, nil
}

// Transfer moves amount from the caller to the recipient.
func (t *Token) Transfer(to thor.Address, amount *big.Int) error {
	return t.env.Atomic(func() error {
		return t.transfer(t.env.Caller(), to, amount)
	})
}

// TransferFrom moves amount from the owner to the recipient, spending the
// caller's allowance unless the caller is the owner.
func (t *Token) TransferFrom(from, to thor.Address, amount *big.Int) error {
	return t.env.Atomic(func() error {
		if amount.Sign() < 0 {
			return ErrNegativeAmount
		}
		spender := t.env.Caller()
		if spender != from {
			allowance, err := t.Allowance(from, spender)
			if err != nil {
				return err
			}
			if allowance.Cmp(amount) < 0 {
				return ErrInsufficientAllowance
			}
			if err := t.allowances.Update(allowanceKey{from, spender}, allowance.Sub(allowance, amount)); err != nil {
				return errors.Wrap(err, "failed to set allowance")
			}
		}
		return t.transfer(from, to, amount)
	})
}

// Approve sets the amount spender may move out of the caller's balance.
func (t *Token) Approve(spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	owner := t.env.Caller()
	if err := t.allowances.Update(allowanceKey{owner, spender}, new(big.Int).Set(amount)); err != nil {
		return errors.Wrap(err, "failed to set allowance")
	}
	return t.emit(ApprovalEvent, owner, spender, amount)
}

// Mint credits amount to the recipient. Only used when building genesis.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Update(to, bal.Add(bal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return errors.Wrap(err, "failed to add total supply")
	}
	logger.Debug("minted", "token", t.addr, "to", to, "amount", amount)
	return t.emit(TransferEvent, thor.Address{}, to, amount)
}

func (t *Token) transfer(from, to thor.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.balances.Update(from, fromBal.Sub(fromBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Update(to, toBal.Add(toBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return t.emit(TransferEvent, from, to, amount)
}

func (t *Token) emit(id thor.Bytes32, a, b thor.Address, amount *big.Int) error {
	data, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}
	t.env.Log(t.addr, []thor.Bytes32{id, thor.BytesToBytes32(a.Bytes()), thor.BytesToBytes32(b.Bytes())}, data)
	return nil
}
