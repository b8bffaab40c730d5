// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/vevote/logdb"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

// LogMeta locates an event.
type LogMeta struct {
	Number uint32       `json:"number"`
	Index  uint32       `json:"index"`
	Time   uint64       `json:"time"`
	Caller thor.Address `json:"caller"`
}

type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
	Meta    *LogMeta       `json:"meta,omitempty"`
}

type Receipt struct {
	Number       uint32       `json:"number"`
	Caller       thor.Address `json:"caller"`
	To           thor.Address `json:"to"`
	GasUsed      uint64       `json:"gasUsed"`
	Reverted     bool         `json:"reverted"`
	RevertReason string       `json:"revertReason,omitempty"`
	Timestamp    uint64       `json:"timestamp"`
	Events       []*Event     `json:"events"`
}

// ConvertReceipt converts a receipt into its json form, events carry no meta.
func ConvertReceipt(r *tx.Receipt) *Receipt {
	out := &Receipt{
		Number:       r.Number,
		Caller:       r.Caller,
		To:           r.To,
		GasUsed:      r.GasUsed,
		Reverted:     r.Reverted,
		RevertReason: r.RevertReason,
		Timestamp:    r.Timestamp,
		Events:       make([]*Event, len(r.Events)),
	}
	for i, ev := range r.Events {
		out.Events[i] = ConvertEvent(ev, nil)
	}
	return out
}

func ConvertEvent(ev *tx.Event, meta *LogMeta) *Event {
	topics := ev.Topics
	if topics == nil {
		topics = []thor.Bytes32{}
	}
	return &Event{
		Address: ev.Address,
		Topics:  topics,
		Data:    ev.Data,
		Meta:    meta,
	}
}

// ConvertLoggedEvent converts an event read from the log db.
func ConvertLoggedEvent(ev *logdb.Event) *Event {
	out := &Event{
		Address: ev.Address,
		Topics:  make([]thor.Bytes32, 0, len(ev.Topics)),
		Data:    ev.Data,
		Meta: &LogMeta{
			Number: ev.Number,
			Index:  ev.Index,
			Time:   ev.Time,
			Caller: ev.Caller,
		},
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			out.Topics = append(out.Topics, *topic)
		}
	}
	return out
}

type Call struct {
	Number       uint32       `json:"number"`
	Time         uint64       `json:"time"`
	Caller       thor.Address `json:"caller"`
	To           thor.Address `json:"to"`
	GasUsed      uint64       `json:"gasUsed"`
	Reverted     bool         `json:"reverted"`
	RevertReason string       `json:"revertReason,omitempty"`
}

func ConvertCall(c *logdb.Call) *Call {
	return &Call{
		Number:       c.Number,
		Time:         c.Time,
		Caller:       c.Caller,
		To:           c.To,
		GasUsed:      c.GasUsed,
		Reverted:     c.Reverted,
		RevertReason: c.RevertReason,
	}
}
