// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

var (
	alice    = thor.BytesToAddress([]byte("alice"))
	contract = thor.BytesToAddress([]byte("contract"))
	slot     = thor.BytesToBytes32([]byte("slot"))
)

type memWriter struct {
	numbers  []uint32
	receipts []*tx.Receipt
}

func (w *memWriter) Write(number uint32, r *tx.Receipt) error {
	w.numbers = append(w.numbers, number)
	w.receipts = append(w.receipts, r)
	return nil
}

func newRuntime(t *testing.T, clock Clock, gasLimit uint64) (*Runtime, *state.State, *memWriter) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	w := &memWriter{}
	return New(st, Options{GasLimit: gasLimit, Clock: clock, Writer: w}), st, w
}

func TestExecuteCommits(t *testing.T) {
	rt, st, w := newRuntime(t, func() uint64 { return 1000 }, 0)

	ch := make(chan *tx.Receipt, 1)
	sub := rt.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	receipt, err := rt.Execute(alice, contract, func(env *xenv.Environment) error {
		assert.Equal(t, alice, env.Caller())
		assert.Equal(t, uint64(1000), env.Now())
		env.State().SetStorage(contract, slot, thor.BytesToBytes32([]byte{1}))
		env.Log(contract, []thor.Bytes32{tx.EventID("Set()")}, nil)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, receipt.Reverted)
	assert.Len(t, receipt.Events, 1)
	assert.Equal(t, 0, st.Changes())

	v, _ := st.GetStorage(contract, slot)
	assert.Equal(t, thor.BytesToBytes32([]byte{1}), v)
	assert.Equal(t, []uint32{1}, w.numbers)
	assert.Equal(t, uint32(1), receipt.Number)
	assert.Equal(t, receipt, <-ch)
}

func TestExecuteReverts(t *testing.T) {
	rt, st, _ := newRuntime(t, func() uint64 { return 1000 }, 0)

	boom := errors.New("boom")
	receipt, err := rt.Execute(alice, contract, func(env *xenv.Environment) error {
		env.State().SetStorage(contract, slot, thor.BytesToBytes32([]byte{1}))
		env.Log(contract, nil, nil)
		return boom
	})
	assert.Equal(t, boom, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "boom", receipt.RevertReason)
	assert.Empty(t, receipt.Events)

	v, _ := st.GetStorage(contract, slot)
	assert.True(t, v.IsZero())
}

func TestExecuteOutOfGas(t *testing.T) {
	rt, st, _ := newRuntime(t, func() uint64 { return 1000 }, thor.SstoreSetGas)

	receipt, err := rt.Execute(alice, contract, func(env *xenv.Environment) error {
		env.State().SetStorage(contract, slot, thor.BytesToBytes32([]byte{1}))
		env.UseGas(thor.SstoreSetGas)
		env.UseGas(thor.SstoreSetGas)
		return nil
	})
	assert.Equal(t, xenv.ErrOutOfGas, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, thor.SstoreSetGas, receipt.GasUsed)

	v, _ := st.GetStorage(contract, slot)
	assert.True(t, v.IsZero())
}

func TestClockNeverGoesBack(t *testing.T) {
	times := []uint64{100, 90, 120}
	i := 0
	rt, _, _ := newRuntime(t, func() uint64 {
		now := times[i]
		i++
		return now
	}, 0)

	var seen []uint64
	for range times {
		_, err := rt.Execute(alice, contract, func(env *xenv.Environment) error {
			seen = append(seen, env.Now())
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{100, 100, 120}, seen)
	assert.Equal(t, uint32(3), rt.Number())
}

func TestViewDiscardsWrites(t *testing.T) {
	rt, st, _ := newRuntime(t, func() uint64 { return 1000 }, 0)

	err := rt.View(alice, func(env *xenv.Environment) error {
		env.State().SetStorage(contract, slot, thor.BytesToBytes32([]byte{1}))
		return nil
	})
	require.NoError(t, err)

	v, _ := st.GetStorage(contract, slot)
	assert.True(t, v.IsZero())
}

func TestNumberResumes(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	w := &memWriter{}
	rt := New(state.New(db), Options{Writer: w, Number: 41})
	_, err = rt.Execute(alice, contract, func(*xenv.Environment) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []uint32{42}, w.numbers)
}

func TestRestartKeepsClockMonotonic(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	rt := New(state.New(db), Options{Clock: func() uint64 { return 1000 }})
	_, err = rt.Execute(alice, contract, func(*xenv.Environment) error { return nil })
	require.NoError(t, err)
	_, err = rt.Execute(alice, contract, func(*xenv.Environment) error { return errors.New("boom") })
	require.Error(t, err)

	// reopen the state with the wall clock set back
	st := state.New(db)
	head, err := LoadHead(st)
	require.NoError(t, err)
	assert.Equal(t, Head{Number: 2, Time: 1000}, head)

	rt = New(st, Options{Clock: func() uint64 { return 900 }, Number: head.Number, Time: head.Time})
	receipt, err := rt.Execute(alice, contract, func(env *xenv.Environment) error {
		assert.Equal(t, uint64(1000), env.Now())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), receipt.Number)
	assert.Equal(t, uint64(1000), receipt.Timestamp)
}

func TestLoadHeadFresh(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	head, err := LoadHead(state.New(db))
	require.NoError(t, err)
	assert.Equal(t, Head{}, head)
}

func TestStalledSubscriberDoesNotHoldLock(t *testing.T) {
	rt, _, _ := newRuntime(t, func() uint64 { return 1000 }, 0)

	ch := make(chan *tx.Receipt)
	sub := rt.SubscribeReceipts(ch)
	defer sub.Unsubscribe()

	executed := make(chan struct{})
	go func() {
		defer close(executed)
		rt.Execute(alice, contract, func(*xenv.Environment) error { return nil })
	}()

	// the call is done and waits on the subscriber, views still run
	require.Eventually(t, func() bool { return rt.Number() == 1 }, time.Second, time.Millisecond)
	viewed := make(chan error, 1)
	go func() { viewed <- rt.View(alice, func(*xenv.Environment) error { return nil }) }()
	select {
	case err := <-viewed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("view blocked by a stalled subscriber")
	}

	r := <-ch
	assert.Equal(t, uint32(1), r.Number)
	<-executed
}
