// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/remora-chain/remora/metrics"

var metricAccountLoads = metrics.LazyLoadCounterVec("state_account_load_count", []string{"outcome"})
