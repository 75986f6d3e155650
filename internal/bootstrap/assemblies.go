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
	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/conf"
	"github.com/go-arcade/composition/internal/keychain"
	"github.com/go-arcade/composition/internal/oauth"
	"github.com/go-arcade/composition/internal/twofactor"
	"github.com/go-arcade/composition/internal/views"
	"github.com/go-arcade/composition/pkg/log"
)

// Assemblies returns the extension's assemblies in catalog order.
func Assemblies(app *conf.AppConfig, prompt twofactor.Prompter, registerViews func(*views.Factory), logger log.ILogger) []compose.Assembly {
	return []compose.Assembly{
		keychain.Assembly(app.Keychain, app.Client.MachineFingerprint, logger),
		oauth.Assembly(app.OAuth, logger),
		twofactor.Assembly(prompt, logger),
		views.Assembly(registerViews),
	}
}
