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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConf struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`
	Level string `mapstructure:"level"`
}

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeTOML(t, `
level = "debug"

[server]
host = "0.0.0.0"
port = 8080
`)

	var cfg sampleConf
	v, err := LoadConfigFile(path, &cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8080, v.GetInt("server.port"))
}

func TestLoadConfigFile_Defaults(t *testing.T) {
	path := writeTOML(t, `level = "warn"`)

	var cfg sampleConf
	_, err := LoadConfigFile(path, &cfg, Options{
		Defaults: map[string]any{"server.host": "127.0.0.1", "server.port": 9000, "level": "info"},
	})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadConfigFile_EnvOverride(t *testing.T) {
	t.Setenv("SAMPLE_SERVER_PORT", "7000")

	var cfg sampleConf
	_, err := LoadConfigFile("", &cfg, Options{
		EnvPrefix: "SAMPLE",
		Defaults:  map[string]any{"server.port": 9000},
	})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	var cfg sampleConf

	_, err := LoadConfigFile("", cfg, Options{})
	assert.Error(t, err)

	_, err = LoadConfigFile("", (*sampleConf)(nil), Options{})
	assert.Error(t, err)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"), &cfg, Options{})
	assert.ErrorContains(t, err, "failed to read configuration file")
}
