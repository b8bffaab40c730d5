// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

var (
	alice    = thor.BytesToAddress([]byte("alice"))
	bob      = thor.BytesToAddress([]byte("bob"))
	escrow   = thor.BytesToAddress([]byte("VotingEscrow"))
	election = thor.BytesToAddress([]byte("Election"))
	depositT = tx.EventID("Deposit(address,uint256,uint256,uint256,uint256,uint8)")
	votedT   = tx.EventID("Voted(address,uint256,bytes32,uint256,uint256)")
)

func newReceipt(caller, to thor.Address, ts uint64, events ...*tx.Event) *tx.Receipt {
	return &tx.Receipt{
		Caller:    caller,
		To:        to,
		GasUsed:   21000,
		Timestamp: ts,
		Events:    events,
	}
}

func fixture(t *testing.T) *LogDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	aliceTopic := thor.BytesToBytes32(alice.Bytes())
	bobTopic := thor.BytesToBytes32(bob.Bytes())

	require.NoError(t, db.Write(1, newReceipt(alice, escrow, 100,
		&tx.Event{Address: escrow, Topics: []thor.Bytes32{depositT, aliceTopic}, Data: []byte("deposit-1")},
	)))
	require.NoError(t, db.Write(2, newReceipt(bob, escrow, 200,
		&tx.Event{Address: escrow, Topics: []thor.Bytes32{depositT, bobTopic}, Data: []byte("deposit-2")},
	)))
	require.NoError(t, db.Write(3, newReceipt(alice, election, 300,
		&tx.Event{Address: election, Topics: []thor.Bytes32{votedT, aliceTopic}},
		&tx.Event{Address: election, Topics: []thor.Bytes32{votedT, aliceTopic}, Data: []byte{1}},
	)))
	require.NoError(t, db.Write(4, &tx.Receipt{
		Caller:       bob,
		To:           election,
		Timestamp:    400,
		Reverted:     true,
		RevertReason: "builtin: already voted",
	}))
	return db
}

func TestFilterEvents(t *testing.T) {
	db := fixture(t)
	ctx := context.Background()
	aliceTopic := thor.BytesToBytes32(alice.Bytes())

	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, uint32(1), all[0].Number)
	assert.Equal(t, []byte("deposit-1"), all[0].Data)
	assert.Equal(t, depositT, *all[0].Topics[0])
	assert.Nil(t, all[0].Topics[2])
	assert.Equal(t, uint32(3), all[3].Number)
	assert.Equal(t, uint32(1), all[3].Index)
	assert.Nil(t, all[2].Data)

	tests := []struct {
		name   string
		filter *EventFilter
		want   []uint32
	}{
		{
			"by address",
			&EventFilter{CriteriaSet: []*EventCriteria{{Address: &escrow}}},
			[]uint32{1, 2},
		},
		{
			"by topic",
			&EventFilter{CriteriaSet: []*EventCriteria{{Topics: [5]*thor.Bytes32{nil, &aliceTopic}}}},
			[]uint32{1, 3, 3},
		},
		{
			"criteria are or-ed",
			&EventFilter{CriteriaSet: []*EventCriteria{
				{Address: &election},
				{Topics: [5]*thor.Bytes32{&depositT, &aliceTopic}},
			}},
			[]uint32{1, 3, 3},
		},
		{
			"number range",
			&EventFilter{Range: &Range{Unit: Number, From: 2, To: 3}},
			[]uint32{2, 3, 3},
		},
		{
			"time range",
			&EventFilter{Range: &Range{Unit: Time, From: 150, To: 250}},
			[]uint32{2},
		},
		{
			"open range",
			&EventFilter{Range: &Range{Unit: Number, From: 3}},
			[]uint32{3, 3},
		},
		{
			"desc with limit",
			&EventFilter{Order: DESC, Options: &Options{Offset: 1, Limit: 2}},
			[]uint32{3, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.FilterEvents(ctx, tt.filter)
			require.NoError(t, err)
			var got []uint32
			for _, ev := range events {
				got = append(got, ev.Number)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterCalls(t *testing.T) {
	db := fixture(t)
	ctx := context.Background()

	calls, err := db.FilterCalls(ctx, nil)
	require.NoError(t, err)
	require.Len(t, calls, 4)
	assert.False(t, calls[0].Reverted)
	assert.Empty(t, calls[0].RevertReason)
	assert.True(t, calls[3].Reverted)
	assert.Equal(t, "builtin: already voted", calls[3].RevertReason)
	assert.Equal(t, uint64(21000), calls[0].GasUsed)

	calls, err = db.FilterCalls(ctx, &CallFilter{Caller: &alice})
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, uint32(1), calls[0].Number)
	assert.Equal(t, uint32(3), calls[1].Number)

	calls, err = db.FilterCalls(ctx, &CallFilter{To: &election, Order: DESC})
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, uint32(4), calls[0].Number)
}

func TestNewestNumber(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	n, err := db.NewestNumber()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.Write(7, newReceipt(alice, escrow, 1)))
	n, err = db.NewestNumber()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), n)
}

func TestWriteTooManyTopics(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	ev := &tx.Event{Address: escrow, Topics: make([]thor.Bytes32, 6)}
	assert.Equal(t, errTooManyTopics, db.Write(1, newReceipt(alice, escrow, 1, ev)))

	calls, err := db.FilterCalls(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestRewriteReplacesCall(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(1, newReceipt(alice, escrow, 1)))
	// a call replayed under the same number replaces the first write
	require.NoError(t, db.Write(1, newReceipt(bob, election, 2)))

	calls, err := db.FilterCalls(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, bob, calls[0].Caller)
	assert.Equal(t, election, calls[0].To)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(5, newReceipt(alice, escrow, 1)))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	n, err := db.NewestNumber()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), n)
}

func TestCanceledContext(t *testing.T) {
	db := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.FilterEvents(ctx, &EventFilter{})
	assert.Error(t, err)
}
