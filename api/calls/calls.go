// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/api/middleware"
	"github.com/vechain/vevote/api/restutil"
	"github.com/vechain/vevote/api/types"
	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

// Request invokes method of the contract at To on behalf of Caller.
type Request struct {
	Caller thor.Address    `json:"caller"`
	To     thor.Address    `json:"to"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Result of a call. Receipt is absent for view methods.
type Result struct {
	Output       any            `json:"output"`
	Reverted     bool           `json:"reverted"`
	RevertReason string         `json:"revertReason,omitempty"`
	Receipt      *types.Receipt `json:"receipt,omitempty"`
}

type Calls struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Calls {
	return &Calls{rt}
}

func (c *Calls) handleCall(w http.ResponseWriter, req *http.Request) error {
	var body Request
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Method == "" {
		return restutil.BadRequest(errors.New("method: required"))
	}
	method, ok := builtin.FindMethod(body.To, body.Method)
	if !ok {
		return restutil.NotFound(fmt.Errorf("method %q not found at %v", body.Method, body.To))
	}

	var output any
	proc := func(env *xenv.Environment) (err error) {
		output, err = method.Call(env, body.To, body.Args)
		return err
	}

	var result Result
	if method.View() {
		if err := c.rt.View(body.Caller, proc); err != nil {
			if errors.Is(err, builtin.ErrBadArgs) {
				return restutil.BadRequest(err)
			}
			result.Reverted = true
			result.RevertReason = err.Error()
		}
	} else {
		receipt, err := c.rt.Execute(body.Caller, body.To, proc)
		if receipt == nil {
			return err
		}
		if errors.Is(err, builtin.ErrBadArgs) {
			return restutil.BadRequest(err)
		}
		result.Receipt = types.ConvertReceipt(receipt)
		result.Reverted = receipt.Reverted
		result.RevertReason = receipt.RevertReason
	}
	if !result.Reverted {
		result.Output = output
	}
	return restutil.WriteJSON(w, &result)
}

func (c *Calls) handleContracts(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, builtin.Addresses())
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name(middleware.CallRoute).
		HandlerFunc(restutil.WrapHandlerFunc(c.handleCall))
	sub.Path("/contracts").
		Methods(http.MethodGet).
		Name("GET /calls/contracts").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleContracts))
}
