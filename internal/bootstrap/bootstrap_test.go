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

package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/host"
	"github.com/go-arcade/composition/internal/keychain"
	"github.com/go-arcade/composition/internal/login"
	"github.com/go-arcade/composition/internal/oauth"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/internal/twofactor"
	"github.com/go-arcade/composition/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type solutionService interface{ SolutionPath() string }

type openSolution struct{}

func (openSolution) SolutionPath() string { return "/src/app.sln" }

type fixture struct {
	logger    *zap.SugaredLogger
	logs      *observer.ObservedLogs
	host      *host.Services
	locator   *views.Locator
	twoFactor int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		logger:  zap.New(core).Sugar(),
		logs:    logs,
		host:    host.NewServices(),
		locator: &views.Locator{},
	}
	require.NoError(t, host.AddService[solutionService](f.host, openSolution{}))
	return f
}

func (f *fixture) config() Config {
	return Config{
		Client:  login.ClientConfig{ClientID: "cid", MachineFingerprint: "fp"},
		Logger:  f.logger,
		Locator: f.locator,
	}
}

func (f *fixture) defaultProvider() compose.ExportProvider {
	return host.NewExportProvider(f.logger, f.host)
}

func (f *fixture) assemblies() []compose.Assembly {
	return []compose.Assembly{
		keychain.Assembly(keychain.Conf{}, "fp", f.logger),
		oauth.Assembly(oauth.Conf{}, f.logger),
		compose.NewAssembly("twofactor",
			compose.Provide(func(compose.Resolver) (services.TwoFactorChallengeHandler, error) {
				f.twoFactor++
				return twofactor.NewHandler(func(context.Context, string) (string, error) { return "123456", nil }, f.logger), nil
			}),
		),
		views.Assembly(nil),
	}
}

func TestCreateCompositionContainer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	f := newFixture(t)
	c, err := CreateCompositionContainer(t.Context(), f.defaultProvider(), f.config(), f.assemblies()...)
	require.NoError(t, err)

	sp, err := compose.GetExportedValue[services.GitHubServiceProvider](c)
	require.NoError(t, err)
	assert.Same(t, c, sp.ExportProvider())

	tracker, err := services.Get[services.UsageTracker](sp)
	require.NoError(t, err)
	assert.NoError(t, tracker.IncrementCounter(t.Context(), "NumberOfStartups"))

	manager, err := services.Get[services.LoginManager](sp)
	require.NoError(t, err)
	assert.IsType(t, &login.Manager{}, manager)
	assert.Zero(t, f.twoFactor, "two-factor handler is resolved on first use only")

	installed, ok := f.locator.FactoryProvider()
	require.True(t, ok)
	factory, err := compose.GetExportedValue[services.ViewViewModelFactory](c)
	require.NoError(t, err)
	assert.Same(t, factory, installed)

	solution, err := services.Get[solutionService](sp)
	require.NoError(t, err)
	assert.Equal(t, "/src/app.sln", solution.SolutionPath())

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		"bootstrap.catalog",
		"bootstrap.container",
		"bootstrap.service provider",
		"bootstrap.usage tracker",
		"bootstrap.login manager",
		"bootstrap.view locator",
		"CreateCompositionContainer",
	}, names)
	created := f.logs.FilterMessage("composition container created").All()
	require.Len(t, created, 1)
	root := recorder.Ended()[len(names)-1]
	assert.Equal(t, root.SpanContext().TraceID().String(), created[0].ContextMap()["trace_id"])
	assert.Equal(t, root.SpanContext().SpanID().String(), created[0].ContextMap()["span_id"])
}

func TestCreateCompositionContainer_ToleratesPartiallyLoadedAssembly(t *testing.T) {
	f := newFixture(t)
	partial := compose.NewLazyAssembly("partial",
		func() (*compose.Export, error) { return nil, errors.New("missing dependency") },
		func() (*compose.Export, error) { return compose.ProvideValue[solutionService](openSolution{}), nil },
	)

	c, err := CreateCompositionContainer(t.Context(), f.defaultProvider(), f.config(), append(f.assemblies(), partial)...)
	require.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("failed to load type").Len())

	_, err = compose.GetExportedValue[solutionService](c)
	assert.NoError(t, err)
}

func TestCreateCompositionContainer_SecondRunFailsAtViewLocator(t *testing.T) {
	f := newFixture(t)
	_, err := CreateCompositionContainer(t.Context(), f.defaultProvider(), f.config(), f.assemblies()...)
	require.NoError(t, err)
	first, _ := f.locator.FactoryProvider()

	_, err = CreateCompositionContainer(t.Context(), f.defaultProvider(), f.config(), f.assemblies()...)
	require.ErrorIs(t, err, compose.ErrSlotAlreadySet)
	assert.ErrorContains(t, err, "bootstrap view locator")

	still, _ := f.locator.FactoryProvider()
	assert.Same(t, first, still)
}

func TestCreateCompositionContainer_Failures(t *testing.T) {
	f := newFixture(t)
	withoutKeychain := f.assemblies()[1:]
	cancelled, cancel := context.WithCancel(t.Context())
	cancel()

	tests := []struct {
		name       string
		ctx        context.Context
		provider   compose.ExportProvider
		assemblies []compose.Assembly
		step       string
		want       error
	}{
		{
			name:       "cancelled context",
			ctx:        cancelled,
			provider:   f.defaultProvider(),
			assemblies: f.assemblies(),
			step:       "bootstrap catalog",
			want:       context.Canceled,
		},
		{
			name:       "no host services",
			ctx:        t.Context(),
			assemblies: f.assemblies(),
			step:       "bootstrap service provider",
			want:       compose.ErrNotFound,
		},
		{
			name:       "missing keychain",
			ctx:        t.Context(),
			provider:   f.defaultProvider(),
			assemblies: withoutKeychain,
			step:       "bootstrap login manager",
			want:       compose.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locator := &views.Locator{}
			cfg := f.config()
			cfg.Locator = locator

			c, err := CreateCompositionContainer(tt.ctx, tt.provider, cfg, tt.assemblies...)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorContains(t, err, tt.step)
			_, installed := locator.FactoryProvider()
			assert.False(t, installed)
		})
	}
}

func TestDescribeCatalog(t *testing.T) {
	f := newFixture(t)
	entries, err := DescribeCatalog(t.Context(), f.logger, f.assemblies()...)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, CatalogEntry{Assembly: "keychain", Contract: "services.Keychain", Shared: true}, entries[0])
	assert.Equal(t, "views", entries[3].Assembly)
}

func TestCreateCompositionContainer_DefaultsToProcessLocator(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.Locator = nil

	c, err := CreateCompositionContainer(t.Context(), f.defaultProvider(), cfg, f.assemblies()...)
	require.NoError(t, err)

	installed, ok := views.Default().FactoryProvider()
	require.True(t, ok)
	factory, err := compose.GetExportedValue[services.ViewViewModelFactory](c)
	require.NoError(t, err)
	assert.Same(t, factory, installed)
}
