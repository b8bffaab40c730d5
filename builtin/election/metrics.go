// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package election

import "github.com/vechain/vevote/metrics"

var (
	metricCalls         = metrics.LazyLoadCounterVec("election_call_count", []string{"method", "result"})
	metricVotesCast     = metrics.LazyLoadCounter("election_votes_cast_count")
	metricBribesAdded   = metrics.LazyLoadCounter("election_bribes_added_count")
	metricBribesClaimed = metrics.LazyLoadCounter("election_bribes_claimed_count")
)

func recordCall(method string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": result})
}
