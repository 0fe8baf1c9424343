// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages accounts and contract-style storage.
// It follows the flow as below:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ batch write ]
//	          |
//	  [ account cache ]
//	          |
//	 [ key-value store ]
//
// All reads pass through the stacked map so uncommitted writes are
// visible; Commit flushes the journal in one batch.
package state
