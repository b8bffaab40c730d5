// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/vevote/thor"
)

// Event represents a contract event log.
// The first topic is the event id, the remaining ones are indexed arguments.
type Event struct {
	// address of the contract that generates the event
	Address thor.Address
	// list of topics provided by the contract.
	Topics []thor.Bytes32
	// supplied by the contract, usually rlp-encoded
	Data []byte
}

// ID returns the event id, or the zero value if the event has no topic.
func (e *Event) ID() thor.Bytes32 {
	if len(e.Topics) == 0 {
		return thor.Bytes32{}
	}
	return e.Topics[0]
}

// Events slice of event logs.
type Events []*Event

// Filter returns events emitted by addr carrying the given id.
func (evs Events) Filter(addr thor.Address, id thor.Bytes32) Events {
	var out Events
	for _, ev := range evs {
		if ev.Address == addr && ev.ID() == id {
			out = append(out, ev)
		}
	}
	return out
}

// EventID computes the id topic of an event from its signature.
func EventID(signature string) thor.Bytes32 {
	return thor.Keccak256([]byte(signature))
}
