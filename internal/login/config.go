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

package login

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"
)

// ClientConfig is the registration of this application with the host's API.
type ClientConfig struct {
	ClientID     string `mapstructure:"clientId"`
	ClientSecret string `mapstructure:"clientSecret"`
	// MinimumScopes must all be granted for a login to succeed.
	MinimumScopes   []string `mapstructure:"minimumScopes"`
	RequestedScopes []string `mapstructure:"requestedScopes"`
	// AuthorizationNote labels tokens created by password login.
	AuthorizationNote string `mapstructure:"authorizationNote"`
	// MachineFingerprint makes password-login authorizations unique per machine
	// and keys the keychain encryption.
	MachineFingerprint string        `mapstructure:"machineFingerprint"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// SetDefaults fills unset fields.
func (c *ClientConfig) SetDefaults() {
	if len(c.MinimumScopes) == 0 {
		c.MinimumScopes = []string{"user", "repo", "gist", "write:public_key"}
	}
	if len(c.RequestedScopes) == 0 {
		c.RequestedScopes = []string{"user", "repo", "gist", "write:public_key", "read:org"}
	}
	if c.AuthorizationNote == "" {
		c.AuthorizationNote = "extension-host on " + hostname()
	}
	if c.MachineFingerprint == "" {
		c.MachineFingerprint = MachineFingerprint()
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// MachineFingerprint derives a stable identifier for this machine and user.
func MachineFingerprint() string {
	sum := sha256.Sum256([]byte(hostname() + ":" + os.Getenv("USER") + os.Getenv("USERNAME")))
	return hex.EncodeToString(sum[:])
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
