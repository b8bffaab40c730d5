// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/thor"
)

// CallRoute is the route name of contract calls, whose bodies are logged decoded.
const CallRoute = "POST /calls"

// callFields is the part of a call request worth a log line. Args can be large and are left out.
type callFields struct {
	Caller thor.Address `json:"caller"`
	To     thor.Address `json:"to"`
	Method string       `json:"method"`
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// RequestLoggerMiddleware logs every request when enabled, or only those slower than
// slowQueriesThreshold when it is positive.
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled.Load() && slowQueriesThreshold == 0 {
				next.ServeHTTP(w, r)
				return
			}
			// the body can only be read once, put it back for the next handler
			var body []byte
			if r.Body != nil {
				var err error
				if body, err = io.ReadAll(r.Body); err != nil {
					logger.Warn("unexpected body read error", "err", err)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			start := time.Now()
			sw := &statusWriter{w, http.StatusOK}
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			if !enabled.Load() && duration <= slowQueriesThreshold {
				return
			}
			ctx := []any{
				"DurationMs", duration.Milliseconds(),
				"URI", r.URL.String(),
				"Method", r.Method,
				"Status", sw.status,
			}
			if route := mux.CurrentRoute(r); route != nil && route.GetName() == CallRoute {
				var call callFields
				if err := json.Unmarshal(body, &call); err == nil {
					ctx = append(ctx, "caller", call.Caller, "to", call.To, "call", call.Method)
				}
			} else if len(body) > 0 {
				ctx = append(ctx, "Body", string(body))
			}
			logger.Info("API Request", ctx...)
		})
	}
}
