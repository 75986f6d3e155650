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

package services

import (
	"context"
	"errors"
	"reflect"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/host"
)

// GitHubServiceProvider is the lookup surface used by the rest of the extension.
type GitHubServiceProvider interface {
	compose.Resolver

	// ExportProvider returns the composition container behind the provider.
	ExportProvider() compose.Resolver
	// GetService consults the host's service locator only.
	GetService(serviceType reflect.Type) (any, error)

	// Deprecated: always fails with compose.ErrNotImplemented.
	AddService(serviceType reflect.Type, owner, instance any) error
	// Deprecated: always fails with compose.ErrNotImplemented.
	RemoveService(serviceType reflect.Type, owner any) error
	// Deprecated: always fails with compose.ErrNotImplemented.
	TryGetServiceByType(serviceType reflect.Type) (any, error)
	// Deprecated: always fails with compose.ErrNotImplemented.
	TryGetServiceByName(typeName string) (any, error)
	// Deprecated: always fails with compose.ErrNotImplemented.
	GitServiceProvider() (host.ServiceLocator, error)
	// Deprecated: always fails with compose.ErrNotImplemented.
	SetGitServiceProvider(locator host.ServiceLocator) error
}

// UsageTracker records usage counters. counter is an expression selecting an
// integer field of MeasuresModel, e.g. "NumberOfLogins".
type UsageTracker interface {
	IncrementCounter(ctx context.Context, counter string) error
}

// MeasuresModel is the set of usage counters a counter expression may select.
type MeasuresModel struct {
	NumberOfStartups           int
	NumberOfLogins             int
	NumberOfOAuthLogins        int
	NumberOfTwoFactorLogins    int
	NumberOfClones             int
	NumberOfPullRequestsOpened int
}

// ErrCredentialNotFound is returned by Keychain.Load for unknown hosts.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is what the keychain stores per host.
type Credential struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Keychain stores credentials per host address.
type Keychain interface {
	Load(ctx context.Context, hostAddress string) (Credential, error)
	Save(ctx context.Context, hostAddress string, cred Credential) error
	Delete(ctx context.Context, hostAddress string) error
}

// TwoFactorChallenge describes a second-factor request from the API.
type TwoFactorChallenge struct {
	HostAddress string
	Username    string
	// Method is the delivery method reported by the server: "app" or "sms".
	Method string
	// Retry is set when the previous code was rejected.
	Retry bool
}

// TwoFactorChallengeHandler obtains a one-time code from the user.
type TwoFactorChallengeHandler interface {
	HandleTwoFactorChallenge(ctx context.Context, challenge TwoFactorChallenge) (code string, err error)
}

// OAuthCallbackListener receives the authorization code of a browser based
// OAuth flow.
type OAuthCallbackListener interface {
	// RedirectURL is where the authorization server sends the browser back to.
	RedirectURL() string
	// Listen blocks until a callback carrying state arrives and returns its code.
	Listen(ctx context.Context, state string) (code string, err error)
}

// User is the account a login resolved to.
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginManager signs users in and out of a host.
type LoginManager interface {
	// LoginViaOAuth runs the browser flow; openBrowser is called with the
	// authorization URL.
	LoginViaOAuth(ctx context.Context, hostAddress string, openBrowser func(url string) error) (*User, error)
	// Login signs in with a username and password, answering a second-factor
	// challenge when the server asks for one.
	Login(ctx context.Context, hostAddress, username, password string) (*User, error)
	// LoginFromCache signs in with the credential stored in the keychain.
	LoginFromCache(ctx context.Context, hostAddress string) (*User, error)
	Logout(ctx context.Context, hostAddress string) error
}

// ViewViewModelFactory creates view models and the views that present them.
type ViewViewModelFactory interface {
	CreateViewModel(contract reflect.Type) (any, error)
	CreateView(viewModel any) (any, error)
}
