// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/api/restutil"
	"github.com/vechain/vevote/api/types"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/tx"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Receipts buffered for a subscriber before it is dropped as too slow.
	backlog = 64
)

var errSlowSubscriber = errors.New("subscriber too slow")

var logger = log.WithContext("pkg", "subscriptions")

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the subscriptions endpoint, origins is the list of allowed
// origins where "*" allows any.
func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				origin = strings.ToLower(origin)
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// convert turns a receipt into the messages to deliver.
type convert func(*tx.Receipt) []any

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req.URL.Query())
	if err != nil {
		return restutil.BadRequest(err)
	}
	return s.serve(w, req, "event", func(r *tx.Receipt) []any {
		var msgs []any
		for i, ev := range r.Events {
			if filter.match(ev) {
				msgs = append(msgs, types.ConvertEvent(ev, &types.LogMeta{
					Number: r.Number,
					Index:  uint32(i),
					Time:   r.Timestamp,
					Caller: r.Caller,
				}))
			}
		}
		return msgs
	})
}

func (s *Subscriptions) handleSubjectReceipt(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseReceiptFilter(req.URL.Query())
	if err != nil {
		return restutil.BadRequest(err)
	}
	return s.serve(w, req, "receipt", func(r *tx.Receipt) []any {
		if !filter.match(r) {
			return nil
		}
		return []any{types.ConvertReceipt(r)}
	})
}

func (s *Subscriptions) serve(w http.ResponseWriter, req *http.Request, subject string, conv convert) error {
	var (
		in       = make(chan *tx.Receipt)
		receipts = make(chan *tx.Receipt, backlog)
		slow     = make(chan struct{})
		stop     = make(chan struct{})
	)
	defer close(stop)
	// subscribe before upgrading, so no receipt after the handshake is missed
	sub := s.rt.SubscribeReceipts(in)
	defer sub.Unsubscribe()
	go relay(in, receipts, slow, stop)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	metricActiveWebsocketGauge().AddWithLabel(1, map[string]string{"subject": subject})
	defer metricActiveWebsocketGauge().AddWithLabel(-1, map[string]string{"subject": subject})

	closed := make(chan struct{})
	// start read loop to handle close event and pongs
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read err", "err", err)
				return
			}
		}
	}()

	if err := s.pipe(conn, subject, receipts, slow, sub.Err(), closed, conv); err != nil {
		logger.Debug("error in websocket", "err", err)
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""), time.Now().Add(writeWait))
	} else {
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	}
	conn.Close()
	<-closed
	return nil
}

func (s *Subscriptions) pipe(
	conn *websocket.Conn,
	subject string,
	receipts <-chan *tx.Receipt,
	slow <-chan struct{},
	subErr <-chan error,
	closed <-chan struct{},
	conv convert,
) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case err := <-subErr:
			return err
		case <-slow:
			return errSlowSubscriber
		case r := <-receipts:
			if r.Reverted {
				continue
			}
			for _, msg := range conv(r) {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
				metricWebsocketMessageCounter().AddWithLabel(1, map[string]string{"subject": subject})
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// relay moves receipts from the runtime feed to out and never blocks the feed.
// Once out is full, slow is closed and later receipts are dropped until stop.
func relay(in <-chan *tx.Receipt, out chan<- *tx.Receipt, slow chan<- struct{}, stop <-chan struct{}) {
	lagging := false
	for {
		select {
		case <-stop:
			return
		case r := <-in:
			if lagging {
				continue
			}
			select {
			case out <- r:
			default:
				lagging = true
				close(slow)
			}
		}
	}
}

// Close closes all subscriptions and waits for the hijacked connections to finish.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectEvent))
	sub.Path("/receipt").
		Methods(http.MethodGet).
		Name("WS /subscriptions/receipt").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectReceipt))
}
