// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/golang/snappy"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/tx"
)

var errTooManyTopics = errors.New("too many topics")

type LogDB struct {
	path          string
	db            *sql.DB
	stmts         *writeStmts
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory db exists per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(callTableSchema + eventTableSchema); err != nil {
		return nil, err
	}

	stmts, err := prepareWriteStmts(db)
	if err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmts:         stmts,
		driverVersion: driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmts.close()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// NewestNumber returns the number of the latest written call, 0 when empty.
func (db *LogDB) NewestNumber() (uint32, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM call").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).Number(), nil
}

// Write stores the receipt and its events of the call numbered number.
func (db *LogDB) Write(number uint32, receipt *tx.Receipt) error {
	for _, ev := range receipt.Events {
		if len(ev.Topics) > 5 {
			return errTooManyTopics
		}
	}
	return db.execInTx(func(sqlTx *sql.Tx) error {
		callStmt, eventStmt := db.stmts.in(sqlTx)
		var reason any
		if receipt.Reverted {
			reason = receipt.RevertReason
		}
		if _, err := callStmt.Exec(
			newSequence(number, 0),
			number,
			receipt.Timestamp,
			receipt.Caller.Bytes(),
			receipt.To.Bytes(),
			receipt.GasUsed,
			receipt.Reverted,
			reason,
		); err != nil {
			return err
		}

		for i, ev := range receipt.Events {
			var topics [5]any
			for j := range ev.Topics {
				topics[j] = ev.Topics[j].Bytes()
			}
			var data []byte
			if len(ev.Data) > 0 {
				data = snappy.Encode(nil, ev.Data)
			}
			if _, err := eventStmt.Exec(
				newSequence(number, uint32(i)),
				receipt.Timestamp,
				receipt.Caller.Bytes(),
				ev.Address.Bytes(),
				topics[0],
				topics[1],
				topics[2],
				topics[3],
				topics[4],
				data,
			); err != nil {
				return err
			}
		}
		metricEventsWritten().Add(int64(len(receipt.Events)))
		return nil
	})
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) (err error) {
	sqlTx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(sqlTx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

// rangeCondition appends the range of r over the seq (number) or time column.
func rangeCondition(r *Range, where []string, args []any) ([]string, []any) {
	if r == nil {
		return where, args
	}
	if r.Unit == Time {
		where = append(where, "time >= ?")
		args = append(args, min(r.From, math.MaxInt64))
		if r.To >= r.From {
			where = append(where, "time <= ?")
			args = append(args, min(r.To, math.MaxInt64))
		}
		return where, args
	}
	where = append(where, "seq >= ?")
	args = append(args, newSequence(uint32(min(r.From, math.MaxUint32)), 0))
	if r.To >= r.From {
		where = append(where, "seq <= ?")
		args = append(args, newSequence(uint32(min(r.To, math.MaxUint32)), math.MaxInt32))
	}
	return where, args
}

func buildQuery(table string, where []string, order Order, options *Options, args []any) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if order == DESC {
		b.WriteString(" ORDER BY seq DESC")
	} else {
		b.WriteString(" ORDER BY seq ASC")
	}
	if options != nil {
		b.WriteString(" LIMIT ?, ?")
		args = append(args, options.Offset, options.Limit)
	}
	return b.String(), args
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		where []string
		args  []any
	)
	where, args = rangeCondition(filter.Range, where, args)

	var alternatives []string
	for _, criteria := range filter.CriteriaSet {
		conds := []string{"1"}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			conds = append(conds, "address = ?")
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				conds = append(conds, fmt.Sprintf("topic%d = ?", j))
			}
		}
		alternatives = append(alternatives, "("+strings.Join(conds, " AND ")+")")
	}
	if len(alternatives) > 0 {
		where = append(where, "("+strings.Join(alternatives, " OR ")+")")
	}

	query, args := buildQuery("event", where, filter.Order, filter.Options, args)
	return db.queryEvents(ctx, query, args...)
}

func (db *LogDB) FilterCalls(ctx context.Context, filter *CallFilter) ([]*Call, error) {
	if filter == nil {
		return db.queryCalls(ctx, "SELECT * FROM call ORDER BY seq ASC")
	}
	metricsHandleCommon(filter.Options, filter.Order, 0, "call")

	var (
		where []string
		args  []any
	)
	where, args = rangeCondition(filter.Range, where, args)
	if filter.Caller != nil {
		where = append(where, "caller = ?")
		args = append(args, filter.Caller.Bytes())
	}
	if filter.To != nil {
		where = append(where, "target = ?")
		args = append(args, filter.To.Bytes())
	}

	query, args := buildQuery("call", where, filter.Order, filter.Options, args)
	return db.queryCalls(ctx, query, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     int64
			time    uint64
			caller  []byte
			address []byte
			topics  [5][]byte
			data    []byte
		)
		if err := rows.Scan(
			&seq,
			&time,
			&caller,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Number:  sequence(seq).Number(),
			Index:   sequence(seq).Index(),
			Time:    time,
			Caller:  thor.BytesToAddress(caller),
			Address: thor.BytesToAddress(address),
		}
		if len(data) > 0 {
			if event.Data, err = snappy.Decode(nil, data); err != nil {
				return nil, errors.Wrap(err, "decode event data")
			}
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryCalls(ctx context.Context, query string, args ...any) ([]*Call, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []*Call
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq      int64
			number   uint32
			time     uint64
			caller   []byte
			target   []byte
			gasUsed  uint64
			reverted bool
			reason   sql.NullString
		)
		if err := rows.Scan(&seq, &number, &time, &caller, &target, &gasUsed, &reverted, &reason); err != nil {
			return nil, err
		}
		calls = append(calls, &Call{
			Number:       number,
			Time:         time,
			Caller:       thor.BytesToAddress(caller),
			To:           thor.BytesToAddress(target),
			GasUsed:      gasUsed,
			Reverted:     reverted,
			RevertReason: reason.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}
