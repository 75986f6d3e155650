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

// Package bootstrap builds the composition container the extension runs on.
package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/login"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/internal/usage"
	"github.com/go-arcade/composition/internal/views"
	"github.com/go-arcade/composition/pkg/id"
	"github.com/go-arcade/composition/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/go-arcade/composition/internal/bootstrap"

// Config carries what the bootstrap singletons need besides the container.
type Config struct {
	Client login.ClientConfig
	Logger log.ILogger
	// Resolutions and Usage receive metrics; both are optional.
	Resolutions compose.MetricsRecorder
	Usage       usage.Recorder
	// Locator receives the view model factory; nil means the process-wide
	// locator, set through views.InitializeFactoryProvider.
	Locator *views.Locator
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// CreateCompositionContainer builds a catalog from assemblies, creates the
// container over it with defaultProvider as fallback, composes the service
// provider bridge, usage tracker and login manager, and installs the view
// model factory into the view locator. Any failing step aborts the sequence.
func CreateCompositionContainer(
	ctx context.Context,
	defaultProvider compose.ExportProvider,
	cfg Config,
	assemblies ...compose.Assembly,
) (*compose.Container, error) {
	logger := log.OrGlobal(cfg.Logger)
	installFactory := views.InitializeFactoryProvider
	if cfg.Locator != nil {
		installFactory = cfg.Locator.Initialize
	}
	bootstrapID := id.GetUlid()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "CreateCompositionContainer")
	defer span.End()
	span.SetAttributes(
		attribute.String("bootstrap.id", bootstrapID),
		attribute.Int("bootstrap.assemblies", len(assemblies)),
	)

	var (
		catalog   *compose.AggregateCatalog
		container *compose.Container
	)

	steps := []step{
		{"catalog", func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			children, err := compose.BuildCatalogs(ctx, logger, assemblies...)
			if err != nil {
				return err
			}
			cs := make([]compose.Catalog, 0, len(children))
			for _, c := range children {
				cs = append(cs, c)
			}
			catalog = compose.NewAggregateCatalog(logger, cs...)
			return nil
		}},
		{"container", func(context.Context) error {
			opts := []compose.Option{
				compose.WithDefaultProvider(defaultProvider),
				compose.WithLogger(logger),
			}
			if cfg.Resolutions != nil {
				opts = append(opts, compose.WithMetrics(cfg.Resolutions))
			}
			container = compose.NewContainer(catalog, opts...)
			return nil
		}},
		{"service provider", func(context.Context) error {
			sp, err := services.NewServiceProvider(container, logger)
			if err != nil {
				return err
			}
			return compose.ComposeExportedValue[services.GitHubServiceProvider](container, sp)
		}},
		{"usage tracker", func(context.Context) error {
			tracker := usage.NewNoopTracker(logger, cfg.Usage)
			return compose.ComposeExportedValue[services.UsageTracker](container, tracker)
		}},
		{"login manager", func(context.Context) error {
			manager, err := createLoginManager(container, cfg.Client, logger)
			if err != nil {
				return err
			}
			return compose.ComposeExportedValue[services.LoginManager](container, manager)
		}},
		{"view locator", func(context.Context) error {
			factory, err := compose.GetExportedValue[services.ViewViewModelFactory](container)
			if err != nil {
				return err
			}
			return installFactory(factory)
		}},
	}

	tlog := log.WithTrace(ctx, logger)
	for _, s := range steps {
		if err := runStep(ctx, s); err != nil {
			tlog.Errorw("bootstrap failed", "bootstrap_id", bootstrapID, "step", s.name, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, s.name)
			return nil, err
		}
	}

	tlog.Infow("composition container created",
		"bootstrap_id", bootstrapID,
		"assemblies", len(assemblies),
		"exports", len(catalog.All()),
	)
	return container, nil
}

func runStep(ctx context.Context, s step) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "bootstrap."+s.name)
	defer span.End()
	if err := s.run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("bootstrap %s: %w", s.name, err)
	}
	return nil
}

// createLoginManager resolves the login collaborators. The two-factor handler
// is resolved on first use only.
func createLoginManager(c *compose.Container, client login.ClientConfig, logger log.ILogger) (*login.Manager, error) {
	keychain, err := compose.GetExportedValue[services.Keychain](c)
	if err != nil {
		return nil, err
	}
	listener, err := compose.GetExportedValue[services.OAuthCallbackListener](c)
	if err != nil {
		return nil, err
	}
	twoFactor := sync.OnceValues(func() (services.TwoFactorChallengeHandler, error) {
		return compose.GetExportedValue[services.TwoFactorChallengeHandler](c)
	})
	return login.NewManager(client, keychain, twoFactor, listener, logger)
}
