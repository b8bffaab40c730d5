// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/thor"
)

// mockLogger records the context of Info and Warn calls
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (m *mockLogger) Handler() slog.Handler { return nil }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func newRouter(logger log.Logger, enabled bool, threshold time.Duration, h http.HandlerFunc) *mux.Router {
	flag := &atomic.Bool{}
	flag.Store(enabled)
	router := mux.NewRouter()
	router.Use(RequestLoggerMiddleware(logger, flag, threshold))
	router.Path("/calls").Methods(http.MethodPost).Name(CallRoute).HandlerFunc(h)
	router.Path("/logs/event").Methods(http.MethodPost).Name("POST /logs/event").HandlerFunc(h)
	return router
}

func TestRequestLoggerHandler(t *testing.T) {
	echo := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{"enabled", echo, true, 0, true},
		{"disabled", echo, false, 0, false},
		{"disabled fast query", echo, false, time.Second, false},
		{"disabled slow query", slow, false, 5 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			body := `{"method":"locked"}`
			req := httptest.NewRequest(http.MethodPost, "/logs/event", strings.NewReader(body))
			rec := httptest.NewRecorder()
			newRouter(logger, tt.enabled, tt.threshold, tt.handler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "/logs/event")
			assert.Contains(t, logger.loggedData, http.MethodPost)
			assert.Contains(t, logger.loggedData, body)
		})
	}

	// the body is still readable by the wrapped handler
	rec := httptest.NewRecorder()
	newRouter(&mockLogger{}, true, 0, echo).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logs/event", strings.NewReader("body")))
	assert.Equal(t, "body", rec.Body.String())
}

func TestRequestLoggerDecodesCalls(t *testing.T) {
	alice := thor.BytesToAddress([]byte("alice"))
	escrow := thor.BytesToAddress([]byte("VotingEscrow"))
	reject := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}

	logger := &mockLogger{}
	body := fmt.Sprintf(`{"caller":"%v","to":"%v","method":"createLock","args":{"value":"0x1"}}`, alice, escrow)
	rec := httptest.NewRecorder()
	newRouter(logger, true, 0, reject).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, logger.loggedData, alice)
	assert.Contains(t, logger.loggedData, escrow)
	assert.Contains(t, logger.loggedData, "createLock")
	assert.Contains(t, logger.loggedData, http.StatusBadRequest)
	// args are not logged
	assert.NotContains(t, logger.loggedData, body)
	assert.NotContains(t, logger.loggedData, "Body")

	// an undecodable call is still logged, without call fields
	logger = &mockLogger{}
	newRouter(logger, true, 0, reject).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader("{")))
	assert.Contains(t, logger.loggedData, "/calls")
	assert.NotContains(t, logger.loggedData, "caller")
}
