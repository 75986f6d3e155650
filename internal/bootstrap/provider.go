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
	"os"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/conf"
	"github.com/go-arcade/composition/internal/host"
	"github.com/go-arcade/composition/internal/twofactor"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet provides the bootstrap inputs and the App.
var ProviderSet = wire.NewSet(
	ProvideAssemblies,
	ProvideDefaultProvider,
	ProvideConfig,
	NewApp,
)

// ProvideAssemblies returns the extension's assemblies with a terminal
// two-factor prompt.
func ProvideAssemblies(app *conf.AppConfig, logger log.ILogger) []compose.Assembly {
	return Assemblies(app, twofactor.ReaderPrompter(os.Stdin, os.Stderr), nil, logger)
}

// ProvideDefaultProvider exposes the host's services as the container's
// fallback export provider.
func ProvideDefaultProvider(logger log.ILogger, locator host.ServiceLocator) compose.ExportProvider {
	return host.NewExportProvider(logger, locator)
}

func ProvideConfig(app *conf.AppConfig, logger log.ILogger, recorder *metrics.CompositionRecorder) Config {
	return Config{
		Client:      app.Client,
		Logger:      logger,
		Resolutions: recorder,
		Usage:       recorder,
	}
}
