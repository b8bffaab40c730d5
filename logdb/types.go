// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/vevote/thor"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Number  uint32
	Index   uint32
	Time    uint64
	Caller  thor.Address // who issued the call
	Address thor.Address // always a contract address
	Topics  [5]*thor.Bytes32
	Data    []byte
}

// Call is the receipt of an executed call.
type Call struct {
	Number       uint32
	Time         uint64
	Caller       thor.Address
	To           thor.Address
	GasUsed      uint64
	Reverted     bool
	RevertReason string
}

type RangeType string

const (
	Number RangeType = "number"
	Time   RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address // always a contract address
	Topics  [5]*thor.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

// CallFilter matches calls by caller and target, nil fields match any.
type CallFilter struct {
	Caller  *thor.Address
	To      *thor.Address
	Range   *Range
	Options *Options
	Order   Order
}
