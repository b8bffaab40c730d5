// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime serializes calls into the builtin contracts.
//
// Every call observes a single block time, runs against the shared state and
// either commits all its writes or none of them.
package runtime

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
	"github.com/vechain/vevote/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// Clock returns the current unix time in seconds.
type Clock func() uint64

// SystemClock reads the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// ReceiptWriter persists receipts of committed calls.
type ReceiptWriter interface {
	Write(number uint32, receipt *tx.Receipt) error
}

// headAddr keeps the number and time of the last call in the state, so a
// restarted runtime never hands out an earlier time.
var (
	headAddr      = thor.BytesToAddress([]byte("Runtime"))
	headNumberKey = thor.BytesToBytes32([]byte("number"))
	headTimeKey   = thor.BytesToBytes32([]byte("time"))
)

// Head is the number and time of the last executed call.
type Head struct {
	Number uint32
	Time   uint64
}

// LoadHead reads the head committed with the last call, zero for a fresh state.
func LoadHead(st *state.State) (Head, error) {
	number, err := st.GetStorage(headAddr, headNumberKey)
	if err != nil {
		return Head{}, errors.Wrap(err, "get head number")
	}
	t, err := st.GetStorage(headAddr, headTimeKey)
	if err != nil {
		return Head{}, errors.Wrap(err, "get head time")
	}
	return Head{
		Number: uint32(binary.BigEndian.Uint64(number[24:])),
		Time:   binary.BigEndian.Uint64(t[24:]),
	}, nil
}

func (rt *Runtime) setHead(number uint32, t uint64) {
	rt.state.SetStorage(headAddr, headNumberKey, thor.BytesToBytes32(thor.Uint64Bytes(uint64(number))))
	rt.state.SetStorage(headAddr, headTimeKey, thor.BytesToBytes32(thor.Uint64Bytes(t)))
}

// Options of the runtime.
type Options struct {
	// GasLimit caps the gas of each call, zero means unlimited.
	GasLimit uint64
	// Clock defaults to SystemClock.
	Clock Clock
	// Writer is optional.
	Writer ReceiptWriter
	// Number of the last call executed before, numbering resumes after it.
	Number uint32
	// Time of the last call executed before, the clock is never read below it.
	Time uint64
}

// Runtime is to support call execution.
type Runtime struct {
	mu       sync.Mutex
	state    *state.State
	gasLimit uint64
	clock    Clock
	writer   ReceiptWriter

	number   uint32
	lastTime uint64

	receiptFeed event.Feed
}

// New create a Runtime object.
func New(state *state.State, opts Options) *Runtime {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Runtime{
		state:    state,
		gasLimit: opts.GasLimit,
		clock:    clock,
		writer:   opts.Writer,
		number:   opts.Number,
		lastTime: opts.Time,
	}
}

// Number returns the number of the last executed call.
func (rt *Runtime) Number() uint32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.number
}

// now reads the clock, never going backwards.
func (rt *Runtime) now() uint64 {
	now := rt.clock()
	if now < rt.lastTime {
		now = rt.lastTime
	}
	rt.lastTime = now
	return now
}

// Execute runs proc as a call issued by caller to the contract at to.
// All state writes of the call are committed when proc succeeds, discarded otherwise.
// The returned error is the one that reverted the call.
func (rt *Runtime) Execute(caller, to thor.Address, proc func(env *xenv.Environment) error) (*tx.Receipt, error) {
	receipt, callErr, err := rt.execute(caller, to, proc)
	if err != nil {
		return nil, err
	}
	// subscribers are served outside the lock, a slow one must not hold up other calls
	rt.receiptFeed.Send(receipt)
	return receipt, callErr
}

func (rt *Runtime) execute(caller, to thor.Address, proc func(env *xenv.Environment) error) (receipt *tx.Receipt, callErr, err error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.number++
	blockCtx := &xenv.BlockContext{Number: rt.number, Time: rt.now()}
	env := xenv.New(rt.state, blockCtx, caller, rt.gasLimit)

	checkpoint := rt.state.NewCheckpoint()
	callErr = env.Call(proc)

	receipt = &tx.Receipt{
		Number:    blockCtx.Number,
		Caller:    caller,
		To:        to,
		GasUsed:   env.GasUsed(),
		Timestamp: blockCtx.Time,
	}
	if callErr != nil {
		rt.state.RevertTo(checkpoint)
		receipt.Reverted = true
		receipt.RevertReason = callErr.Error()
	} else {
		receipt.Events = env.Events()
	}
	rt.setHead(blockCtx.Number, blockCtx.Time)
	if err := rt.state.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "commit state")
	}
	if callErr != nil {
		metricCallCount().AddWithLabel(1, map[string]string{"result": "reverted"})
		logger.Debug("call reverted", "number", blockCtx.Number, "caller", caller, "to", to, "err", callErr)
	} else {
		metricCallCount().AddWithLabel(1, map[string]string{"result": "ok"})
	}
	metricCallGas().Observe(int64(receipt.GasUsed))

	if rt.writer != nil {
		if err := rt.writer.Write(blockCtx.Number, receipt); err != nil {
			logger.Warn("failed to write receipt", "number", blockCtx.Number, "err", err)
		}
	}
	return receipt, callErr, nil
}

// View runs proc against the current state at the current time and discards all its writes.
func (rt *Runtime) View(caller thor.Address, proc func(env *xenv.Environment) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	blockCtx := &xenv.BlockContext{Number: rt.number, Time: rt.now()}
	env := xenv.New(rt.state, blockCtx, caller, rt.gasLimit)

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return env.Call(proc)
}

// SubscribeReceipts registers ch to receive the receipt of every executed call.
func (rt *Runtime) SubscribeReceipts(ch chan<- *tx.Receipt) event.Subscription {
	return rt.receiptFeed.Subscribe(ch)
}
