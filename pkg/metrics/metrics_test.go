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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositionRecorder(t *testing.T) {
	r := NewCompositionRecorder()
	r.RecordResolution("catalog")
	r.RecordResolution("catalog")
	r.RecordResolution("miss")
	r.RecordIncrement("NumberOfLogins")

	assert.InDelta(t, 2, testutil.ToFloat64(r.resolutions.WithLabelValues("catalog")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.resolutions.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.increments.WithLabelValues("NumberOfLogins")), 0)
}

func TestNewMetricsServer_RegistersCompositionCollectors(t *testing.T) {
	r := NewCompositionRecorder()
	server, err := NewMetricsServer(MetricsConfig{}, r)
	require.NoError(t, err)
	r.RecordResolution("composed")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `compose_resolutions_total{source="composed"} 1`)

	_, err = NewMetricsServer(MetricsConfig{}, r)
	require.NoError(t, err, "fresh server has its own registry")
	assert.Error(t, SetupCompositionMetrics(server, r), "collectors are registered once per server")
}

func TestServer_DisabledStartIsNoop(t *testing.T) {
	server := NewServer(MetricsConfig{Enable: false})
	require.NoError(t, server.Start())
	require.NoError(t, server.Stop(t.Context()))
}
