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

package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceConfig_SetDefaults(t *testing.T) {
	tests := []struct {
		name         string
		in           TraceConfig
		wantEndpoint string
	}{
		{name: "none", in: TraceConfig{}, wantEndpoint: ""},
		{name: "grpc", in: TraceConfig{ExporterType: "otlp-grpc"}, wantEndpoint: "localhost:4317"},
		{name: "http", in: TraceConfig{ExporterType: "otlp-http"}, wantEndpoint: "localhost:4318"},
		{name: "explicit", in: TraceConfig{ExporterType: "otlp-http", Endpoint: "collector:4318"}, wantEndpoint: "collector:4318"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.SetDefaults()
			assert.Equal(t, tt.wantEndpoint, cfg.Endpoint)
			assert.Equal(t, "extension-host", cfg.ServiceName)
			assert.Equal(t, 5*time.Second, cfg.BatchConfig.BatchTimeout)
		})
	}
}

func TestTraceConfig_BareNumberTimeoutsAreSeconds(t *testing.T) {
	cfg := TraceConfig{BatchConfig: BatchConfig{BatchTimeout: 10, ExportTimeout: 3}}
	cfg.SetDefaults()
	assert.Equal(t, 10*time.Second, cfg.BatchConfig.BatchTimeout)
	assert.Equal(t, 3*time.Second, cfg.BatchConfig.ExportTimeout)
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(t.Context(), TraceConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))

	_, span := GetTracer("test").Start(t.Context(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestInit_UnsupportedExporter(t *testing.T) {
	_, err := Init(t.Context(), TraceConfig{Enabled: true, ExporterType: "jaeger"})
	assert.ErrorContains(t, err, "unsupported exporter type")
}
