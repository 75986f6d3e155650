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
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/composition/internal/keychain"
	"github.com/go-arcade/composition/internal/login"
	"github.com/go-arcade/composition/internal/oauth"
	pkgconf "github.com/go-arcade/composition/pkg/conf"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/metrics"
	"github.com/go-arcade/composition/pkg/trace"
)

// EnvPrefix prefixes environment overrides, e.g. EXTENSION_CLIENT_CLIENTID.
const EnvPrefix = "EXTENSION"

type AppConfig struct {
	Log      log.Conf              `mapstructure:"log"`
	Client   login.ClientConfig    `mapstructure:"client"`
	Keychain keychain.Conf         `mapstructure:"keychain"`
	OAuth    oauth.Conf            `mapstructure:"oauth"`
	Metrics  metrics.MetricsConfig `mapstructure:"metrics"`
	Trace    trace.TraceConfig     `mapstructure:"trace"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.output":         "stdout",
		"log.path":           "./logs",
		"log.filename":       "extension.log",
		"log.level":          "INFO",
		"log.keepHours":      7,
		"log.rotateSize":     100,
		"log.rotateNum":      10,
		"oauth.host":         "127.0.0.1",
		"oauth.port":         42549,
		"oauth.callbackPath": "/",
		"metrics.host":       "127.0.0.1",
		"metrics.port":       9464,
		"metrics.path":       "/metrics",
		"trace.exporterType": "none",
	}
}

// LoadConfigFile loads path (TOML) over the compiled-in defaults. An empty
// path loads defaults and environment overrides only.
//
// Changes to the file are unmarshalled into the returned config in place, but
// components copy their section when they are wired, so only the log level
// takes effect without a restart.
func LoadConfigFile(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	_, err := pkgconf.LoadConfigFile(path, cfg, pkgconf.Options{
		EnvPrefix: EnvPrefix,
		Defaults:  defaults(),
		Watch:     true,
		OnChange:  onReload(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg.Client.SetDefaults()
	cfg.Keychain.SetDefaults()
	cfg.OAuth.SetDefaults()
	return cfg, nil
}

func onReload(cfg *AppConfig) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		log.SetLevel(cfg.Log.Level)
		log.Infow("configuration reloaded", "file", e.Name, "level", cfg.Log.Level)
	}
}
