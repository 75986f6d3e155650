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

// Package usage provides the usage tracker composed at bootstrap. It does not
// report anywhere: counters are validated, logged and counted locally.
package usage

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/pkg/log"
)

// Recorder receives one call per accepted increment. counter is the
// MeasuresModel field the expression names, or ExpressionCounter for anything
// more complex, so the set of values stays bounded.
type Recorder interface {
	RecordIncrement(counter string)
}

// ExpressionCounter is reported for counters that are not a single field.
const ExpressionCounter = "expression"

var measureFields = func() map[string]struct{} {
	fields := make(map[string]struct{})
	for _, f := range reflect.VisibleFields(reflect.TypeFor[services.MeasuresModel]()) {
		fields[f.Name] = struct{}{}
	}
	return fields
}()

type counterProgram struct {
	program *vm.Program
	label   string
}

// NoopTracker implements services.UsageTracker.
type NoopTracker struct {
	logger   log.ILogger
	recorder Recorder
	programs sync.Map // counter expression -> *counterProgram
}

var _ services.UsageTracker = (*NoopTracker)(nil)

// NewNoopTracker creates a tracker. recorder may be nil.
func NewNoopTracker(logger log.ILogger, recorder Recorder) *NoopTracker {
	return &NoopTracker{logger: log.OrGlobal(logger), recorder: recorder}
}

// IncrementCounter accepts an expression selecting an integer field of
// services.MeasuresModel and completes immediately.
func (t *NoopTracker) IncrementCounter(ctx context.Context, counter string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp, err := t.compile(counter)
	if err != nil {
		return err
	}
	t.logger.Infow("increment counter", "counter", counter)
	if t.recorder != nil {
		t.recorder.RecordIncrement(cp.label)
	}
	return nil
}

// Value evaluates counter against model.
func (t *NoopTracker) Value(counter string, model services.MeasuresModel) (int, error) {
	cp, err := t.compile(counter)
	if err != nil {
		return 0, err
	}
	out, err := expr.Run(cp.program, model)
	if err != nil {
		return 0, fmt.Errorf("evaluate counter %q: %w", counter, err)
	}
	return out.(int), nil
}

func (t *NoopTracker) compile(counter string) (*counterProgram, error) {
	if p, ok := t.programs.Load(counter); ok {
		return p.(*counterProgram), nil
	}
	program, err := expr.Compile(counter, expr.Env(services.MeasuresModel{}), expr.AsInt())
	if err != nil {
		return nil, fmt.Errorf("invalid counter %q: %w", counter, err)
	}
	cp := &counterProgram{program: program, label: ExpressionCounter}
	if name := strings.TrimSpace(counter); isMeasure(name) {
		cp.label = name
	}
	actual, _ := t.programs.LoadOrStore(counter, cp)
	return actual.(*counterProgram), nil
}

func isMeasure(name string) bool {
	_, ok := measureFields[name]
	return ok
}
