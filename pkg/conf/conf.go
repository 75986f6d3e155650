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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/spf13/viper"
)

// Options controls how a configuration file is read.
type Options struct {
	// EnvPrefix enables environment overrides, e.g. EXTENSION_LOG_LEVEL for log.level.
	EnvPrefix string
	// Defaults are applied before the file is read.
	Defaults map[string]any
	// Watch re-reads the file on change and calls OnChange after a successful unmarshal.
	Watch    bool
	OnChange func(e fsnotify.Event)
}

// LoadConfigFile reads the TOML file at path into cfg, which must be a
// non-nil pointer. An empty path loads defaults and environment only.
func LoadConfigFile(path string, cfg any, opts Options) (*viper.Viper, error) {
	cfgValue := reflect.ValueOf(cfg)
	if cfgValue.Kind() != reflect.Ptr || cfgValue.IsNil() {
		return nil, errors.New("cfg must be a non-nil pointer")
	}

	v := viper.New()
	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	if path != "" && opts.Watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Infow("configuration changed, reloading", "file", e.Name)
			if err := v.Unmarshal(cfg); err != nil {
				log.Errorw("failed to unmarshal configuration file", "file", e.Name, "error", err)
				return
			}
			if opts.OnChange != nil {
				opts.OnChange(e)
			}
		})
		v.WatchConfig()
	}

	return v, nil
}
