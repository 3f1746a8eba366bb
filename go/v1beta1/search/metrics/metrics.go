// Copyright 2021 The Rode Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchkit"

// Serialization results
const (
	ResultOK                 = "ok"
	ResultMalformedFilter    = "malformed_filter"
	ResultUnknownAggregation = "unknown_aggregation"
	ResultError              = "error"
)

type Metrics struct {
	Serializations *prometheus.CounterVec
	SearchDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Serializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serializations_total",
			Help:      "Search states serialized into query documents, by result.",
		}, []string{"result"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent executing searches against Elasticsearch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.Serializations, m.SearchDuration)

	return m
}

func (m *Metrics) ObserveSerialization(result string) {
	m.Serializations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSearch(start time.Time) {
	m.SearchDuration.Observe(time.Since(start).Seconds())
}
