// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/builtin/nft"
	"github.com/vechain/vevote/builtin/params"
	"github.com/vechain/vevote/builtin/token"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

const (
	period = thor.DefaultPeriodLength
	maxDur = thor.DefaultMaxLockDuration
	// genesis is a period boundary.
	genesis = 1000 * period
)

var (
	escrowAddr = thor.BytesToAddress([]byte("escrow"))
	tokenAddr  = thor.BytesToAddress([]byte("token"))
	nftAddr    = thor.BytesToAddress([]byte("nft"))

	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
	carol = thor.BytesToAddress([]byte("carol"))
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type harness struct {
	t   *testing.T
	st  *state.State
	now uint64
	cfg params.Config
}

func newHarness(t *testing.T) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{
		t:   t,
		st:  state.New(db),
		now: genesis,
		cfg: params.Config{
			PeriodLength:       period,
			MaxLockDuration:    maxDur,
			MaxCheckpointSteps: thor.DefaultMaxCheckpointSteps,
		},
	}
	for _, addr := range []thor.Address{alice, bob, carol} {
		h.fund(addr, ether(1_000_000))
	}
	return h
}

func (h *harness) env(caller thor.Address) *xenv.Environment {
	return xenv.New(h.st, &xenv.BlockContext{Time: h.now}, caller, 0)
}

func (h *harness) escrow(caller thor.Address) *Escrow {
	env := h.env(caller)
	nested := env.Nested(escrowAddr)
	return New(escrowAddr, env, token.New(tokenAddr, nested), nft.New(nftAddr, nested, escrowAddr), h.cfg)
}

func (h *harness) token(caller thor.Address) *token.Token {
	return token.New(tokenAddr, h.env(caller))
}

func (h *harness) fund(addr thor.Address, amount *big.Int) {
	require.NoError(h.t, h.token(thor.Address{}).Mint(addr, amount))
	require.NoError(h.t, h.token(addr).Approve(escrowAddr, amount))
}

func (h *harness) balanceOf(addr thor.Address) *big.Int {
	bal, err := h.token(addr).BalanceOf(addr)
	require.NoError(h.t, err)
	return bal
}

func (h *harness) lock(owner thor.Address, amount *big.Int, duration uint64) uint64 {
	id, err := h.escrow(owner).CreateLock(amount, duration)
	require.NoError(h.t, err)
	return id
}

func (h *harness) votingPower(id uint64, t uint64) *big.Int {
	v, err := h.escrow(alice).BalanceOfAt(id, t)
	require.NoError(h.t, err)
	return v
}

func (h *harness) totalSupply(t uint64) *big.Int {
	v, err := h.escrow(alice).TotalSupplyAt(t)
	require.NoError(h.t, err)
	return v
}

func (h *harness) locked(id uint64) *Locked {
	l, err := h.escrow(alice).Locked(id)
	require.NoError(h.t, err)
	return l
}

// expectedBias is the weight of a decaying lock of amount ending at end, seen at t.
func expectedBias(amount *big.Int, end, t uint64) *big.Int {
	if t >= end {
		return new(big.Int)
	}
	slope := new(big.Int).Quo(amount, new(big.Int).SetUint64(maxDur))
	return slope.Mul(slope, new(big.Int).SetUint64(end-t))
}
