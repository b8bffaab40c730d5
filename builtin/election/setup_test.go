// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/builtin/reverts"
	"github.com/vechain/vevote/builtin/token"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

const (
	period = thor.DefaultPeriodLength
	// genesis is a period boundary.
	genesis = 1000 * period
)

var (
	electionAddr = thor.BytesToAddress([]byte("election"))
	bribeA       = thor.BytesToAddress([]byte("bribe-a"))
	bribeB       = thor.BytesToAddress([]byte("bribe-b"))

	owner = thor.BytesToAddress([]byte("owner"))
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
	carol = thor.BytesToAddress([]byte("carol"))

	candidateX = thor.BytesToBytes32([]byte("candidate-x"))
	candidateY = thor.BytesToBytes32([]byte("candidate-y"))
	candidateZ = thor.BytesToBytes32([]byte("candidate-z"))
)

var errNonexistent = reverts.New("NonexistentPosition")

// fakeEscrow gives positions a constant voting power.
type fakeEscrow struct {
	owners   map[uint64]thor.Address
	approved map[uint64]thor.Address
	power    map[uint64]*big.Int
	queried  []uint64
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{
		owners:   make(map[uint64]thor.Address),
		approved: make(map[uint64]thor.Address),
		power:    make(map[uint64]*big.Int),
	}
}

func (f *fakeEscrow) add(id uint64, owner thor.Address, power int64) {
	f.owners[id] = owner
	f.power[id] = big.NewInt(power)
}

func (f *fakeEscrow) IsAuthorized(actor thor.Address, id uint64) (bool, error) {
	owner, ok := f.owners[id]
	if !ok {
		return false, errNonexistent
	}
	return actor == owner || actor == f.approved[id], nil
}

func (f *fakeEscrow) BalanceOfAt(id uint64, t uint64) (*big.Int, error) {
	f.queried = append(f.queried, t)
	if p, ok := f.power[id]; ok {
		return new(big.Int).Set(p), nil
	}
	return new(big.Int), nil
}

func (f *fakeEscrow) OwnerOf(id uint64) (thor.Address, error) {
	owner, ok := f.owners[id]
	if !ok {
		return thor.Address{}, errNonexistent
	}
	return owner, nil
}

type harness struct {
	t      *testing.T
	st     *state.State
	now    uint64
	escrow func(env *xenv.Environment) Escrow
	tokens func(env *xenv.Environment) Tokens
}

func newHarness(t *testing.T, escrow Escrow) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{
		t:      t,
		st:     state.New(db),
		now:    genesis,
		escrow: func(*xenv.Environment) Escrow { return escrow },
		tokens: func(env *xenv.Environment) Tokens {
			nested := env.Nested(electionAddr)
			return func(addr thor.Address) Token { return token.New(addr, nested) }
		},
	}

	require.NoError(t, h.election(owner).Initialize(owner, genesis))
	e := h.election(owner)
	require.NoError(t, e.EnableCandidate(candidateX))
	require.NoError(t, e.EnableCandidate(candidateY))
	require.NoError(t, e.EnableBribeToken(bribeA))
	require.NoError(t, e.EnableBribeToken(bribeB))

	for _, tk := range []thor.Address{bribeA, bribeB} {
		require.NoError(t, token.New(tk, h.env(thor.Address{})).Mint(carol, big.NewInt(1_000_000)))
		require.NoError(t, token.New(tk, h.env(carol)).Approve(electionAddr, big.NewInt(1_000_000)))
	}
	return h
}

func (h *harness) env(caller thor.Address) *xenv.Environment {
	return xenv.New(h.st, &xenv.BlockContext{Time: h.now}, caller, 0)
}

func (h *harness) election(caller thor.Address) *Election {
	env := h.env(caller)
	return New(electionAddr, env, h.escrow(env), h.tokens(env), period)
}

func (h *harness) balanceOf(tk, addr thor.Address) *big.Int {
	bal, err := token.New(tk, h.env(addr)).BalanceOf(addr)
	require.NoError(h.t, err)
	return bal
}

func (h *harness) vote(caller thor.Address, id uint64, candidates []thor.Bytes32, weights ...int64) {
	require.NoError(h.t, h.election(caller).Vote(id, candidates, bigs(weights...)))
}

func (h *harness) bribe(tk thor.Address, amount int64, candidate thor.Bytes32) {
	require.NoError(h.t, h.election(carol).AddBribe(tk, big.NewInt(amount), candidate))
}

func (h *harness) claim(caller thor.Address, id uint64, tokens []thor.Address, candidates []thor.Bytes32, from, until uint64) []*big.Int {
	paid, err := h.election(caller).ClaimBribes(id, tokens, candidates, from, until)
	require.NoError(h.t, err)
	return paid
}

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

// amounts turns paid amounts into int64s for comparison.
func amounts(paid []*big.Int) []int64 {
	out := make([]int64, len(paid))
	for i, p := range paid {
		out[i] = p.Int64()
	}
	return out
}
