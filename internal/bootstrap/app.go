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
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/metrics"
	"github.com/go-arcade/composition/pkg/trace"
)

// App is the running extension host.
type App struct {
	Container *compose.Container
	Provider  services.GitHubServiceProvider
	Metrics   *metrics.Server
	Logger    log.ILogger
}

// NewApp initializes tracing and bootstraps the container. The returned
// cleanup releases everything NewApp started.
func NewApp(
	ctx context.Context,
	defaultProvider compose.ExportProvider,
	cfg Config,
	assemblies []compose.Assembly,
	server *metrics.Server,
	traceConf trace.TraceConfig,
) (*App, func(), error) {
	logger := log.OrGlobal(cfg.Logger)

	shutdownTrace, err := trace.Init(ctx, traceConf)
	if err != nil {
		return nil, nil, err
	}

	container, err := CreateCompositionContainer(ctx, defaultProvider, cfg, assemblies...)
	if err != nil {
		_ = shutdownTrace(context.Background())
		return nil, nil, err
	}
	provider, err := compose.GetExportedValue[services.GitHubServiceProvider](container)
	if err != nil {
		_ = shutdownTrace(context.Background())
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			logger.Errorw("metrics server shutdown error", "error", err)
		}
		if l, found, _ := services.TryGet[services.OAuthCallbackListener](provider); found {
			if s, ok := l.(interface{ Shutdown(context.Context) error }); ok {
				if err := s.Shutdown(shutdownCtx); err != nil {
					logger.Errorw("oauth listener shutdown error", "error", err)
				}
			}
		}
		if k, found, _ := services.TryGet[services.Keychain](provider); found {
			if c, ok := k.(io.Closer); ok {
				if err := c.Close(); err != nil {
					logger.Errorw("keychain close error", "error", err)
				}
			}
		}
		if err := shutdownTrace(shutdownCtx); err != nil {
			logger.Errorw("tracer provider shutdown error", "error", err)
		}
		_ = log.Sync()
	}

	return &App{
		Container: container,
		Provider:  provider,
		Metrics:   server,
		Logger:    logger,
	}, cleanup, nil
}

// Run starts the metrics endpoint, counts the startup and blocks until the
// process is signalled, then runs cleanup.
func Run(ctx context.Context, app *App, cleanup func()) error {
	defer cleanup()

	if err := app.Metrics.Start(); err != nil {
		return err
	}

	tracker, err := services.Get[services.UsageTracker](app.Provider)
	if err != nil {
		return err
	}
	if err := tracker.IncrementCounter(ctx, "NumberOfStartups"); err != nil {
		app.Logger.Warnw("failed to count startup", "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.Logger.Infow("extension host running")
	<-ctx.Done()
	app.Logger.Infow("shutting down gracefully")
	return nil
}
