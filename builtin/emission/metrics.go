// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package emission

import "github.com/vechain/vevote/metrics"

var (
	metricPulled = metrics.LazyLoadCounter("emission_pull_count")
	metricCalls  = metrics.LazyLoadCounterVec("emission_call_count", []string{"method", "result"})
)

func recordCall(method string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": result})
}
