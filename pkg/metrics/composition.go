// Copyright 2025 Arcade Team
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
	"github.com/prometheus/client_golang/prometheus"
)

// CompositionRecorder counts container resolutions by the link of the
// resolver chain that answered them, and usage counter increments by counter
// expression. It satisfies compose.MetricsRecorder.
type CompositionRecorder struct {
	resolutions *prometheus.CounterVec
	increments  *prometheus.CounterVec
}

// NewCompositionRecorder creates unregistered composition collectors.
func NewCompositionRecorder() *CompositionRecorder {
	return &CompositionRecorder{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compose_resolutions_total",
				Help: "Total number of container resolutions by answering source",
			},
			[]string{"source"},
		),
		increments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usage_counter_increments_total",
				Help: "Total number of usage counter increments",
			},
			[]string{"counter"},
		),
	}
}

// Collectors returns the collectors to register.
func (r *CompositionRecorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.resolutions, r.increments}
}

// RecordResolution records a resolution answered by source.
func (r *CompositionRecorder) RecordResolution(source string) {
	r.resolutions.WithLabelValues(source).Inc()
}

// RecordIncrement records an increment of counter.
func (r *CompositionRecorder) RecordIncrement(counter string) {
	r.increments.WithLabelValues(counter).Inc()
}

// SetupCompositionMetrics registers the recorder's collectors on server.
func SetupCompositionMetrics(server *Server, r *CompositionRecorder) error {
	for _, c := range r.Collectors() {
		if err := server.RegisterCollector(c); err != nil {
			return err
		}
	}
	return nil
}
