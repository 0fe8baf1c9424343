// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// create a table for selection events
const selectionTableSchema = `
create table if not exists selection (
	blockNumber decimal(32,0),
	blockTime decimal(32,0),
	sessionIndex decimal(32,0),
	eventIndex integer,
	name varchar(32),
	addr blob(20),
	amount blob,
	count decimal(32,0)
);

CREATE INDEX if not exists selectionBlockNumberIndex on selection(blockNumber);
CREATE INDEX if not exists selectionSessionIndex on selection(sessionIndex);
CREATE INDEX if not exists selectionNameIndex on selection(name);
CREATE INDEX if not exists selectionAddrIndex on selection(addr);
`

// create a table for author rewards
const rewardTableSchema = `
create table if not exists reward (
	blockNumber decimal(32,0),
	blockTime decimal(32,0),
	sessionIndex decimal(32,0),
	author blob(20),
	amount blob
);

CREATE INDEX if not exists rewardBlockNumberIndex on reward(blockNumber);
CREATE INDEX if not exists rewardAuthorIndex on reward(author);
`
