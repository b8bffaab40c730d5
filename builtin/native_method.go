// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

// ErrBadArgs is returned when the arguments of a call can not be decoded.
var ErrBadArgs = errors.New("native call: bad args")

type argsError struct{ err error }

// nativeMethod describes a contract method callable by name.
type nativeMethod struct {
	name string
	view bool
	run  func(env *env) (any, error)
}

func (n *nativeMethod) Name() string { return n.name }

// View reports whether the method only reads state.
func (n *nativeMethod) View() bool { return n.view }

// Call runs the method on the contract at to, on behalf of the caller of xenv.
func (n *nativeMethod) Call(xenv *xenv.Environment, to thor.Address, args json.RawMessage) (out any, err error) {
	defer func() {
		// handle panic in env.Args, other panics belong to the environment
		if e := recover(); e != nil {
			ae, ok := e.(*argsError)
			if !ok {
				panic(e)
			}
			out, err = nil, errors.Wrap(ErrBadArgs, ae.err.Error())
		}
	}()
	return n.run(&env{xenv, to, args})
}

// env of native call invocation.
type env struct {
	*xenv.Environment
	to   thor.Address
	args json.RawMessage
}

// Args unpack the json args into v.
func (e *env) Args(v any) {
	if len(e.args) == 0 {
		panic(&argsError{errors.New("missing args")})
	}
	if err := json.Unmarshal(e.args, v); err != nil {
		panic(&argsError{err})
	}
}

func toBig(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

func toBigs(vs []*math.HexOrDecimal256) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = toBig(v)
	}
	return out
}
