// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "database/sql"

const (
	insertCallQuery  = "INSERT OR REPLACE INTO call(seq, number, time, caller, target, gasUsed, reverted, revertReason) VALUES(?, ?, ?, ?, ?, ?, ?, ?)"
	insertEventQuery = "INSERT OR REPLACE INTO event(seq, time, caller, address, topic0, topic1, topic2, topic3, topic4, data) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
)

// writeStmts are the statements Write runs for every receipt.
type writeStmts struct {
	call  *sql.Stmt
	event *sql.Stmt
}

func prepareWriteStmts(db *sql.DB) (*writeStmts, error) {
	call, err := db.Prepare(insertCallQuery)
	if err != nil {
		return nil, err
	}
	event, err := db.Prepare(insertEventQuery)
	if err != nil {
		call.Close()
		return nil, err
	}
	return &writeStmts{call, event}, nil
}

// in binds the statements to sqlTx.
func (s *writeStmts) in(sqlTx *sql.Tx) (call, event *sql.Stmt) {
	return sqlTx.Stmt(s.call), sqlTx.Stmt(s.event)
}

func (s *writeStmts) close() {
	_ = s.call.Close()
	_ = s.event.Close()
}
