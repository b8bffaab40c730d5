// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/api/restutil"
	"github.com/vechain/vevote/api/types"
	"github.com/vechain/vevote/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{
		db,
		logsLimit,
	}
}

// checkOptions enforces the limit, a nil options is set to the limit +1
// to detect whether there are more logs than the limit.
func (l *Logs) checkOptions(opts **Options) error {
	if *opts == nil {
		*opts = &Options{Limit: l.limit + 1}
		return nil
	}
	if (*opts).Limit > l.limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	if (*opts).Offset > math.MaxInt64 {
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	return nil
}

func (l *Logs) checkResultSize(n int) error {
	if n > int(l.limit) {
		return restutil.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	return nil
}

func (l *Logs) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := l.checkOptions(&filter.Options); err != nil {
		return err
	}
	ef, err := convertEventFilter(&filter)
	if err != nil {
		return restutil.BadRequest(err)
	}

	events, err := l.db.FilterEvents(req.Context(), ef)
	if err != nil {
		return err
	}
	if err := l.checkResultSize(len(events)); err != nil {
		return err
	}
	out := make([]*types.Event, len(events))
	for i, ev := range events {
		out[i] = types.ConvertLoggedEvent(ev)
	}
	return restutil.WriteJSON(w, out)
}

func (l *Logs) handleFilterCalls(w http.ResponseWriter, req *http.Request) error {
	var filter CallFilter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := l.checkOptions(&filter.Options); err != nil {
		return err
	}
	cf, err := convertCallFilter(&filter)
	if err != nil {
		return restutil.BadRequest(err)
	}

	calls, err := l.db.FilterCalls(req.Context(), cf)
	if err != nil {
		return err
	}
	if err := l.checkResultSize(len(calls)); err != nil {
		return err
	}
	out := make([]*types.Call, len(calls))
	for i, c := range calls {
		out[i] = types.ConvertCall(c)
	}
	return restutil.WriteJSON(w, out)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleFilterEvents))
	sub.Path("/call").
		Methods(http.MethodPost).
		Name("POST /logs/call").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleFilterCalls))
}
