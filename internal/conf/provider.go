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

package conf

import (
	"github.com/go-arcade/composition/internal/keychain"
	"github.com/go-arcade/composition/internal/login"
	"github.com/go-arcade/composition/internal/oauth"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/metrics"
	"github.com/go-arcade/composition/pkg/trace"
	"github.com/google/wire"
)

// ProviderSet provides the configuration and its sections.
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideLogConf,
	ProvideClientConfig,
	ProvideKeychainConf,
	ProvideOAuthConf,
	ProvideMetricsConfig,
	ProvideTraceConfig,
)

// ProvideConf loads the configuration file.
func ProvideConf(configFile string) (*AppConfig, error) {
	return LoadConfigFile(configFile)
}

func ProvideLogConf(c *AppConfig) *log.Conf { return &c.Log }

func ProvideClientConfig(c *AppConfig) login.ClientConfig { return c.Client }

func ProvideKeychainConf(c *AppConfig) keychain.Conf { return c.Keychain }

func ProvideOAuthConf(c *AppConfig) oauth.Conf { return c.OAuth }

func ProvideMetricsConfig(c *AppConfig) metrics.MetricsConfig { return c.Metrics }

func ProvideTraceConfig(c *AppConfig) trace.TraceConfig { return c.Trace }
