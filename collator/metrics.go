// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import "github.com/remora-chain/remora/metrics"

var (
	metricRegistrations   = metrics.LazyLoadCounterVec("collator_registration_count", []string{"origin"})
	metricRemovals        = metrics.LazyLoadCounterVec("collator_removal_count", []string{"reason"})
	metricCandidateCount  = metrics.LazyLoadGauge("collator_candidate_count")
	metricAuthorityCount  = metrics.LazyLoadGauge("collator_authority_count")
	metricSessionDuration = metrics.LazyLoadHistogram("collator_session_assembly_duration_ms", metrics.Bucket10s)
	metricRewards         = metrics.LazyLoadCounterVec("collator_reward_count", []string{"outcome"})
	metricSchedCache      = metrics.LazyLoadGaugeVec("collator_sched_cache_count", []string{"event"})
)
