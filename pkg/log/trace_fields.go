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

package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WithTrace decorates l with the trace and span ids of the span stored in
// ctx. Loggers that cannot carry fields are returned as is.
func WithTrace(ctx context.Context, l ILogger) ILogger {
	fields := TraceFields(ctx)
	if len(fields) == 0 {
		return l
	}
	if s, ok := l.(*zap.SugaredLogger); ok {
		return s.With(fields...)
	}
	return l
}

// TraceFields returns trace_id/span_id key-value pairs for the span in ctx.
// Ended spans still carry a valid span context, so ids are reported for them too.
func TraceFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	fields := []any{
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	}
	if spanCtx.TraceFlags() != 0 {
		fields = append(fields, "trace_flags", uint8(spanCtx.TraceFlags()))
	}
	return fields
}
