// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/url"

	"github.com/pkg/errors"

	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

// EventFilter contains options for contract event filtering.
type EventFilter struct {
	Address *thor.Address // restricts matches to events created by specific contracts
	Topics  [5]*thor.Bytes32
}

func (ef *EventFilter) match(event *tx.Event) bool {
	if (ef.Address != nil) && (*ef.Address != event.Address) {
		return false
	}
	for i, topic := range ef.Topics {
		if topic == nil {
			continue
		}
		if len(event.Topics) <= i || *topic != event.Topics[i] {
			return false
		}
	}
	return true
}

// ReceiptFilter matches receipts by caller and called contract.
type ReceiptFilter struct {
	Caller *thor.Address
	To     *thor.Address
}

func (rf *ReceiptFilter) match(r *tx.Receipt) bool {
	if rf.Caller != nil && *rf.Caller != r.Caller {
		return false
	}
	if rf.To != nil && *rf.To != r.To {
		return false
	}
	return true
}

func parseAddress(query url.Values, key string) (*thor.Address, error) {
	s := query.Get(key)
	if s == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return nil, errors.WithMessage(err, key)
	}
	return &addr, nil
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	addr, err := parseAddress(query, "addr")
	if err != nil {
		return nil, err
	}
	filter := &EventFilter{Address: addr}
	for i, key := range []string{"t0", "t1", "t2", "t3", "t4"} {
		s := query.Get(key)
		if s == "" {
			continue
		}
		topic, err := thor.ParseBytes32(s)
		if err != nil {
			return nil, errors.WithMessage(err, key)
		}
		filter.Topics[i] = &topic
	}
	return filter, nil
}

func parseReceiptFilter(query url.Values) (*ReceiptFilter, error) {
	caller, err := parseAddress(query, "caller")
	if err != nil {
		return nil, err
	}
	to, err := parseAddress(query, "to")
	if err != nil {
		return nil, err
	}
	return &ReceiptFilter{caller, to}, nil
}
