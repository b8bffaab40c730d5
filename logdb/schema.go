// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq is newSequence(number, index) of the row, calls use index 0.
const (
	callTableSchema = `CREATE TABLE IF NOT EXISTS call (
	seq INTEGER PRIMARY KEY,
	number INTEGER NOT NULL,
	time INTEGER NOT NULL,
	caller BLOB NOT NULL,
	target BLOB NOT NULL,
	gasUsed INTEGER NOT NULL,
	reverted INTEGER NOT NULL,
	revertReason TEXT
);
CREATE INDEX IF NOT EXISTS callTimeIndex ON call(time);
CREATE INDEX IF NOT EXISTS callCallerIndex ON call(caller);
`

	eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	time INTEGER NOT NULL,
	caller BLOB NOT NULL,
	address BLOB NOT NULL,
	topic0 BLOB,
	topic1 BLOB,
	topic2 BLOB,
	topic3 BLOB,
	topic4 BLOB,
	data BLOB
);
CREATE INDEX IF NOT EXISTS eventTimeIndex ON event(time);
CREATE INDEX IF NOT EXISTS eventAddressIndex ON event(address);
CREATE INDEX IF NOT EXISTS eventTopic0Index ON event(topic0);
CREATE INDEX IF NOT EXISTS eventTopic1Index ON event(topic1);
CREATE INDEX IF NOT EXISTS eventTopic2Index ON event(topic2);
CREATE INDEX IF NOT EXISTS eventTopic3Index ON event(topic3);
`
)
