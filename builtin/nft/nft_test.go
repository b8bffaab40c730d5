// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

var (
	nftAddr = thor.BytesToAddress([]byte("nft"))
	minter  = thor.BytesToAddress([]byte("minter"))
	alice   = thor.BytesToAddress([]byte("alice"))
	bob     = thor.BytesToAddress([]byte("bob"))
	carol   = thor.BytesToAddress([]byte("carol"))
)

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func nftAs(st *state.State, caller thor.Address) *NFT {
	return New(nftAddr, xenv.New(st, &xenv.BlockContext{Time: 1000}, caller, 0), minter)
}

func TestMintBurn(t *testing.T) {
	st := newState(t)

	assert.ErrorIs(t, nftAs(st, alice).Mint(alice, 1), ErrNotMinter)

	m := nftAs(st, minter)
	require.NoError(t, m.Mint(alice, 1))
	assert.ErrorIs(t, m.Mint(bob, 1), ErrTokenExists)

	owner, err := m.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	bal, err := m.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bal)

	assert.ErrorIs(t, nftAs(st, alice).Burn(1), ErrNotMinter)
	require.NoError(t, m.Burn(1))

	_, err = m.OwnerOf(1)
	assert.ErrorIs(t, err, ErrNonexistentToken)
	bal, err = m.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)

	assert.ErrorIs(t, m.Burn(1), ErrNonexistentToken)
}

func TestAuthorization(t *testing.T) {
	st := newState(t)
	require.NoError(t, nftAs(st, minter).Mint(alice, 1))
	require.NoError(t, nftAs(st, minter).Mint(alice, 2))

	n := nftAs(st, alice)
	tests := []struct {
		name    string
		spender thor.Address
		id      uint64
		want    bool
	}{
		{"owner", alice, 1, true},
		{"stranger", bob, 1, false},
		{"stranger other id", carol, 2, false},
		{"zero address", thor.Address{}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := n.IsAuthorized(tt.spender, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := n.IsAuthorized(alice, 3)
	assert.ErrorIs(t, err, ErrNonexistentToken)

	// approval is per token
	require.NoError(t, n.Approve(bob, 1))
	ok, err := n.IsAuthorized(bob, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = n.IsAuthorized(bob, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	// operators cover every token of the owner
	require.NoError(t, n.SetApprovalForAll(carol, true))
	ok, err = n.IsAuthorized(carol, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, nftAs(st, bob).Approve(bob, 2), ErrNotAuthorized)
	require.NoError(t, nftAs(st, carol).Approve(bob, 2))
	approved, err := n.GetApproved(2)
	require.NoError(t, err)
	assert.Equal(t, bob, approved)
}

func TestTransferFrom(t *testing.T) {
	st := newState(t)
	require.NoError(t, nftAs(st, minter).Mint(alice, 1))

	assert.ErrorIs(t, nftAs(st, bob).TransferFrom(alice, bob, 1), ErrNotAuthorized)
	assert.ErrorIs(t, nftAs(st, alice).TransferFrom(bob, carol, 1), ErrIncorrectOwner)

	require.NoError(t, nftAs(st, alice).Approve(bob, 1))
	require.NoError(t, nftAs(st, bob).TransferFrom(alice, carol, 1))

	n := nftAs(st, carol)
	owner, err := n.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, carol, owner)

	// approval is cleared on transfer
	approved, err := n.GetApproved(1)
	require.NoError(t, err)
	assert.True(t, approved.IsZero())

	bal, err := n.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)
	bal, err = n.BalanceOf(carol)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bal)
}
