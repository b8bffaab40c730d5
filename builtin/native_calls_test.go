// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/builtin/election"
	"github.com/vechain/vevote/builtin/escrow"
	"github.com/vechain/vevote/builtin/token"
	"github.com/vechain/vevote/genesis"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

type ctest struct {
	rt         *runtime.Runtime
	to, caller thor.Address
}

type ccase struct {
	rt         *runtime.Runtime
	to, caller thor.Address
	name       string
	args       any
	events     tx.Events
	checkLogs  bool

	output *string
	err    error
}

func (c *ctest) Case(name string, args any) *ccase {
	return &ccase{
		rt:     c.rt,
		to:     c.to,
		caller: c.caller,
		name:   name,
		args:   args,
	}
}

func (c *ccase) To(to thor.Address) *ccase {
	c.to = to
	return c
}

func (c *ccase) Caller(caller thor.Address) *ccase {
	c.caller = caller
	return c
}

func (c *ccase) ShouldError(err error) *ccase {
	c.err = err
	return c
}

func (c *ccase) ShouldLog(events ...*tx.Event) *ccase {
	c.events = events
	c.checkLogs = true
	return c
}

// ShouldOutput expects the json encoding of the output.
func (c *ccase) ShouldOutput(output string) *ccase {
	c.output = &output
	return c
}

func (c *ccase) Assert(t *testing.T) *ccase {
	method, ok := builtin.FindMethod(c.to, c.name)
	require.True(t, ok, "should have method %s", c.name)

	var args json.RawMessage
	if c.args != nil {
		data, err := json.Marshal(c.args)
		require.NoError(t, err, "should encode args")
		args = data
	}

	var out any
	proc := func(env *xenv.Environment) (err error) {
		out, err = method.Call(env, c.to, args)
		return err
	}

	var (
		err      error
		receipt  *tx.Receipt
		numberAt = c.rt.Number()
	)
	if method.View() {
		err = c.rt.View(c.caller, proc)
		assert.Equal(t, numberAt, c.rt.Number(), "view should not execute")
	} else {
		receipt, err = c.rt.Execute(c.caller, c.to, proc)
	}

	if c.err != nil {
		assert.ErrorIs(t, err, c.err)
		if receipt != nil {
			assert.True(t, receipt.Reverted)
			assert.Empty(t, receipt.Events)
		}
		return c
	}
	require.NoError(t, err)

	if c.output != nil {
		data, err := json.Marshal(out)
		require.NoError(t, err)
		assert.JSONEq(t, *c.output, string(data))
	}
	if c.checkLogs {
		require.NotNil(t, receipt)
		assert.Equal(t, c.events, receipt.Events)
	}
	return c
}

type fixture struct {
	rt   *runtime.Runtime
	now  uint64
	accs []genesis.DevAccount
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	gene := genesis.NewDevnet()
	_, err = gene.Build(st)
	require.NoError(t, err)

	f := &fixture{now: gene.LaunchTime(), accs: genesis.DevAccounts()}
	f.rt = runtime.New(st, runtime.Options{Clock: func() uint64 { return f.now }})
	return f
}

func (f *fixture) test(to thor.Address, caller thor.Address) *ctest {
	return &ctest{f.rt, to, caller}
}

func TestParamsNative(t *testing.T) {
	f := newFixture(t)
	test := f.test(builtin.Params.Address, thor.Address{})

	test.Case("get", thor.KeyPeriodLength).
		ShouldOutput("0").
		Assert(t)
	test.Case("config", nil).
		ShouldOutput(`{"PeriodLength":1209600,"MaxLockDuration":63072000,"MaxCheckpointSteps":255,"WithdrawToOwner":false}`).
		Assert(t)
}

func TestTokenNative(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.accs[1].Address, f.accs[2].Address
	test := f.test(builtin.Token.Address, alice)

	test.Case("transfer", map[string]any{"to": bob, "amount": "0x64"}).
		ShouldLog(&tx.Event{
			Address: builtin.Token.Address,
			Topics: []thor.Bytes32{
				thor.Keccak256([]byte("Transfer(address,address,uint256)")),
				thor.BytesToBytes32(alice.Bytes()),
				thor.BytesToBytes32(bob.Bytes()),
			},
			Data: []byte{0x64},
		}).
		Assert(t)
	test.Case("balanceOf", map[string]any{"owner": bob}).
		ShouldOutput("1000000000000000000000000100").
		Assert(t)

	// any other address is a token
	test.Case("balanceOf", map[string]any{"owner": bob}).
		To(genesis.DevBribeTokens[0]).
		ShouldOutput("1000000000000000000000000").
		Assert(t)
	test.Case("transfer", map[string]any{"to": bob, "amount": "1000000000000000000000001"}).
		To(genesis.DevBribeTokens[0]).
		ShouldError(token.ErrInsufficientBalance).
		Assert(t)
}

func TestNativeErrors(t *testing.T) {
	f := newFixture(t)
	test := f.test(builtin.Escrow.Address, f.accs[1].Address)

	_, ok := builtin.FindMethod(builtin.Escrow.Address, "mint")
	assert.False(t, ok)

	test.Case("createLock", nil).
		ShouldError(builtin.ErrBadArgs).
		Assert(t)
	test.Case("createLock", map[string]any{"amount": "ten", "duration": 1}).
		ShouldError(builtin.ErrBadArgs).
		Assert(t)
	test.Case("createLock", map[string]any{"amount": "0", "duration": thor.Week}).
		ShouldError(escrow.ErrZeroAmount).
		Assert(t)
}

func TestOutOfGas(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db)
	gene := genesis.NewDevnet()
	_, err = gene.Build(st)
	require.NoError(t, err)

	rt := runtime.New(st, runtime.Options{GasLimit: 100, Clock: gene.LaunchTime})
	test := &ctest{rt, builtin.Token.Address, genesis.DevAccounts()[1].Address}
	test.Case("transfer", map[string]any{"to": genesis.DevAccounts()[2].Address, "amount": "1"}).
		ShouldError(xenv.ErrOutOfGas).
		Assert(t)
}

func TestVoteAndClaimNative(t *testing.T) {
	f := newFixture(t)
	alice := f.accs[1].Address
	period := thor.DefaultPeriodLength
	candidate := genesis.DevCandidates[0]
	bribeToken := genesis.DevBribeTokens[0]

	f.test(builtin.Token.Address, alice).
		Case("approve", map[string]any{"spender": builtin.Escrow.Address, "amount": "1000000000000000000000"}).
		Assert(t)

	esc := f.test(builtin.Escrow.Address, alice)
	esc.Case("createLock", map[string]any{"amount": "1000000000000000000000", "duration": 52 * period}).
		ShouldOutput("1").
		Assert(t)
	esc.Case("ownerOf", map[string]any{"id": 1}).
		ShouldOutput(`"` + alice.String() + `"`).
		Assert(t)
	esc.Case("isAuthorized", map[string]any{"actor": f.accs[2].Address, "id": 1}).
		ShouldOutput("false").
		Assert(t)

	f.now = thor.PeriodStart(f.now, period) + period
	el := f.test(builtin.Election.Address, alice)
	el.Case("vote", map[string]any{"id": 1, "candidates": []thor.Bytes32{candidate}, "weights": []string{"1"}}).
		Assert(t)
	el.Case("vote", map[string]any{"id": 1, "candidates": []thor.Bytes32{candidate}, "weights": []string{"1"}}).
		ShouldError(election.ErrAlreadyVoted).
		Assert(t)

	f.test(bribeToken, alice).
		Case("approve", map[string]any{"spender": builtin.Election.Address, "amount": "500"}).
		Assert(t)
	el.Case("addBribe", map[string]any{"token": bribeToken, "amount": "500", "candidate": candidate}).
		Assert(t)
	el.Case("claimBribes", map[string]any{
		"id": 1, "tokens": []thor.Address{bribeToken}, "candidates": []thor.Bytes32{candidate},
		"from": f.now, "until": f.now,
	}).
		ShouldError(election.ErrPeriodNotClosed).
		Assert(t)

	voted := f.now
	f.now += period
	el.Case("claimable", map[string]any{"id": 1, "token": bribeToken, "candidate": candidate, "t": voted}).
		ShouldOutput("500").
		Assert(t)
	el.Case("claimBribes", map[string]any{
		"id": 1, "tokens": []thor.Address{bribeToken}, "candidates": []thor.Bytes32{candidate},
		"from": voted, "until": voted,
	}).
		ShouldOutput("[500]").
		Assert(t)
	el.Case("isClaimed", map[string]any{"id": 1, "token": bribeToken, "candidate": candidate, "t": voted}).
		ShouldOutput("true").
		Assert(t)
}
