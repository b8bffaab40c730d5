// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"

	"github.com/vechain/vevote/logdb"
	"github.com/vechain/vevote/thor"
)

type Range struct {
	Unit logdb.RangeType `json:"unit"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	Topic0  *thor.Bytes32 `json:"topic0"`
	Topic1  *thor.Bytes32 `json:"topic1"`
	Topic2  *thor.Bytes32 `json:"topic2"`
	Topic3  *thor.Bytes32 `json:"topic3"`
	Topic4  *thor.Bytes32 `json:"topic4"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

type CallFilter struct {
	Caller  *thor.Address `json:"caller"`
	To      *thor.Address `json:"to"`
	Range   *Range        `json:"range"`
	Options *Options      `json:"options"`
	Order   logdb.Order   `json:"order"`
}

func convertRange(r *Range) (*logdb.Range, error) {
	if r == nil {
		return nil, nil
	}
	out := &logdb.Range{Unit: logdb.Number, To: math.MaxUint64}
	switch r.Unit {
	case "", logdb.Number:
	case logdb.Time:
		out.Unit = logdb.Time
	default:
		return nil, fmt.Errorf("range.unit: unknown %q", r.Unit)
	}
	if r.From != nil {
		out.From = *r.From
	}
	if r.To != nil {
		out.To = *r.To
	}
	if out.From > out.To {
		return nil, fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	return out, nil
}

func convertOrder(o logdb.Order) (logdb.Order, error) {
	switch o {
	case "", logdb.ASC:
		return logdb.ASC, nil
	case logdb.DESC:
		return logdb.DESC, nil
	}
	return "", fmt.Errorf("order: unknown %q", o)
}

func convertEventFilter(f *EventFilter) (*logdb.EventFilter, error) {
	r, err := convertRange(f.Range)
	if err != nil {
		return nil, err
	}
	order, err := convertOrder(f.Order)
	if err != nil {
		return nil, err
	}
	out := &logdb.EventFilter{
		Range:   r,
		Options: &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit},
		Order:   order,
	}
	for i, c := range f.CriteriaSet {
		// {} is accepted and matches every event
		if c == nil {
			return nil, fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
		out.CriteriaSet = append(out.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Topics:  [5]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3, c.Topic4},
		})
	}
	return out, nil
}

func convertCallFilter(f *CallFilter) (*logdb.CallFilter, error) {
	r, err := convertRange(f.Range)
	if err != nil {
		return nil, err
	}
	order, err := convertOrder(f.Order)
	if err != nil {
		return nil, err
	}
	return &logdb.CallFilter{
		Caller:  f.Caller,
		To:      f.To,
		Range:   r,
		Options: &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit},
		Order:   order,
	}, nil
}
