// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/api/types"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

var (
	alice    = thor.BytesToAddress([]byte("alice"))
	escrow   = thor.BytesToAddress([]byte("VotingEscrow"))
	election = thor.BytesToAddress([]byte("Election"))
	votedT   = tx.EventID("Voted(address,uint256,bytes32,uint256,uint256)")
	otherT   = tx.EventID("Other()")
)

func newServer(t *testing.T) (*runtime.Runtime, *httptest.Server, *Subscriptions) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt := runtime.New(state.New(db), runtime.Options{Clock: func() uint64 { return 1000 }})
	subs := New(rt, []string{"*"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return rt, ts, subs
}

func dial(t *testing.T, ts *httptest.Server, path, query string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: path, RawQuery: query}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func emit(t *testing.T, rt *runtime.Runtime, to thor.Address, revert bool, topics ...thor.Bytes32) {
	_, err := rt.Execute(alice, to, func(env *xenv.Environment) error {
		for _, topic := range topics {
			env.Log(to, []thor.Bytes32{topic}, []byte{1})
		}
		if revert {
			return assert.AnError
		}
		return nil
	})
	if revert {
		require.Error(t, err)
	} else {
		require.NoError(t, err)
	}
}

func TestSubscribeEvent(t *testing.T) {
	rt, ts, _ := newServer(t)
	conn := dial(t, ts, "/subscriptions/event", "addr="+election.String()+"&t0="+votedT.String())

	emit(t, rt, escrow, false, votedT)
	emit(t, rt, election, true, votedT)
	emit(t, rt, election, false, otherT, votedT)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev types.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, election, ev.Address)
	assert.Equal(t, []thor.Bytes32{votedT}, ev.Topics)
	require.NotNil(t, ev.Meta)
	assert.Equal(t, uint32(3), ev.Meta.Number)
	assert.Equal(t, uint32(1), ev.Meta.Index)
	assert.Equal(t, alice, ev.Meta.Caller)
	assert.Equal(t, uint64(1000), ev.Meta.Time)
}

func TestSubscribeReceipt(t *testing.T) {
	rt, ts, _ := newServer(t)
	conn := dial(t, ts, "/subscriptions/receipt", "to="+escrow.String())

	emit(t, rt, election, false)
	emit(t, rt, escrow, false, otherT)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var r types.Receipt
	require.NoError(t, json.Unmarshal(msg, &r))
	assert.Equal(t, uint32(2), r.Number)
	assert.Equal(t, escrow, r.To)
	assert.Len(t, r.Events, 1)
}

func TestSubscribeBadQuery(t *testing.T) {
	_, ts, _ := newServer(t)

	for _, query := range []string{"addr=0x1", "t1=zz"} {
		u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/event", RawQuery: query}
		_, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
		assert.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestClose(t *testing.T) {
	_, ts, subs := newServer(t)
	conn := dial(t, ts, "/subscriptions/receipt", "")

	subs.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestEventFilterMatch(t *testing.T) {
	ev := &tx.Event{Address: escrow, Topics: []thor.Bytes32{votedT}}

	assert.True(t, (&EventFilter{}).match(ev))
	assert.True(t, (&EventFilter{Address: &escrow}).match(ev))
	assert.False(t, (&EventFilter{Address: &election}).match(ev))
	assert.True(t, (&EventFilter{Topics: [5]*thor.Bytes32{&votedT}}).match(ev))
	assert.False(t, (&EventFilter{Topics: [5]*thor.Bytes32{&otherT}}).match(ev))
	assert.False(t, (&EventFilter{Topics: [5]*thor.Bytes32{nil, &votedT}}).match(ev))
}

func TestRelayNeverBlocksFeed(t *testing.T) {
	in := make(chan *tx.Receipt)
	out := make(chan *tx.Receipt, 2)
	slow := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go relay(in, out, slow, stop)

	// nobody reads out, every send must still be taken
	for i := range 5 {
		select {
		case in <- &tx.Receipt{Number: uint32(i)}:
		case <-time.After(time.Second):
			t.Fatalf("send %d blocked", i)
		}
	}
	select {
	case <-slow:
	case <-time.After(time.Second):
		t.Fatal("slow not signaled")
	}
	require.Len(t, out, 2)
	assert.Equal(t, uint32(0), (<-out).Number)
	assert.Equal(t, uint32(1), (<-out).Number)
}

func TestSlowSubscriberDoesNotStallCalls(t *testing.T) {
	rt, ts, _ := newServer(t)
	// never read, so the server side fills up
	dial(t, ts, "/subscriptions/receipt", "")
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range backlog * 4 {
			if _, err := rt.Execute(alice, escrow, func(*xenv.Environment) error { return nil }); err != nil {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("calls stalled behind a subscriber")
	}
	assert.Equal(t, uint32(backlog*4), rt.Number())
}
