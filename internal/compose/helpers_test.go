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

package compose

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{ id int64 }

func (g *englishGreeter) Greet() string { return "hello" }

type clock interface {
	Now() int64
}

type fixedClock struct{}

func (fixedClock) Now() int64 { return 42 }

type reporter struct {
	clock clock
}

var greeterIDs atomic.Int64

func newGreeterExport(opts ...ExportOption) *Export {
	return Provide(func(Resolver) (greeter, error) {
		return &englishGreeter{id: greeterIDs.Add(1)}, nil
	}, opts...)
}

func failingLoader(msg string) TypeLoader {
	return func() (*Export, error) {
		return nil, errors.New(msg)
	}
}

func exportLoader(e *Export) TypeLoader {
	return func() (*Export, error) {
		return e, nil
	}
}

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}
