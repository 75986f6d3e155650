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

// Package login signs users in to GitHub and GitHub Enterprise hosts and keeps
// the resulting token in the keychain.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/pkg/id"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

const maxTwoFactorAttempts = 3

var (
	// ErrBadCredentials is returned when the host rejects the username, password or token.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrIncorrectScopes is returned when the token lacks a minimum scope.
	ErrIncorrectScopes = errors.New("token is missing required scopes")
	// ErrTwoFactorFailed is returned after too many rejected second-factor codes.
	ErrTwoFactorFailed = errors.New("two-factor authentication failed")
)

// TwoFactorHandlerFunc yields the second-factor handler. It is only called
// when a login actually hits a second-factor challenge.
type TwoFactorHandlerFunc func() (services.TwoFactorChallengeHandler, error)

// Manager implements services.LoginManager.
type Manager struct {
	cfg       ClientConfig
	keychain  services.Keychain
	twoFactor TwoFactorHandlerFunc
	listener  services.OAuthCallbackListener
	client    *resty.Client
	logger    log.ILogger
}

var _ services.LoginManager = (*Manager)(nil)

func NewManager(
	cfg ClientConfig,
	keychain services.Keychain,
	twoFactor TwoFactorHandlerFunc,
	listener services.OAuthCallbackListener,
	logger log.ILogger,
) (*Manager, error) {
	if keychain == nil {
		return nil, errors.New("login: keychain is required")
	}
	if twoFactor == nil {
		return nil, errors.New("login: two-factor handler is required")
	}
	if listener == nil {
		return nil, errors.New("login: oauth callback listener is required")
	}
	cfg.SetDefaults()

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("User-Agent", "extension-host").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Manager{
		cfg:       cfg,
		keychain:  keychain,
		twoFactor: twoFactor,
		listener:  listener,
		client:    client,
		logger:    log.OrGlobal(logger),
	}, nil
}

// LoginViaOAuth runs the authorization code flow through the browser.
func (m *Manager) LoginViaOAuth(ctx context.Context, hostAddress string, openBrowser func(url string) error) (*services.User, error) {
	h, err := parseHost(hostAddress)
	if err != nil {
		return nil, err
	}

	conf := &oauth2.Config{
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		RedirectURL:  m.listener.RedirectURL(),
		Scopes:       m.cfg.RequestedScopes,
		Endpoint:     h.endpoint(),
	}

	state := id.GetUUIDWithoutDashes()
	if err := openBrowser(conf.AuthCodeURL(state)); err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	code, err := m.listener.Listen(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("wait for oauth callback: %w", err)
	}

	token, err := conf.Exchange(context.WithValue(ctx, oauth2.HTTPClient, m.client.GetClient()), code)
	if err != nil {
		m.logger.Errorw("failed to exchange token", "host", h.name, "error", err)
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	return m.completeLogin(ctx, h, token.AccessToken)
}

type authorizationRequest struct {
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Note         string   `json:"note"`
	Fingerprint  string   `json:"fingerprint"`
}

type authorization struct {
	Token string `json:"token"`
}

// Login creates (or fetches) an authorization with basic credentials,
// answering second-factor challenges when the host asks for them.
func (m *Manager) Login(ctx context.Context, hostAddress, username, password string) (*services.User, error) {
	h, err := parseHost(hostAddress)
	if err != nil {
		return nil, err
	}

	body := authorizationRequest{
		ClientSecret: m.cfg.ClientSecret,
		Scopes:       m.cfg.RequestedScopes,
		Note:         m.cfg.AuthorizationNote,
		Fingerprint:  m.cfg.MachineFingerprint,
	}
	endpoint := h.apiBase + "/authorizations/clients/" + url.PathEscape(m.cfg.ClientID)

	var otp string
	for attempt := 0; ; attempt++ {
		var auth authorization
		req := m.client.R().
			SetContext(ctx).
			SetBasicAuth(username, password).
			SetBody(body).
			SetResult(&auth)
		if otp != "" {
			req.SetHeader("X-GitHub-OTP", otp)
		}

		resp, err := req.Put(endpoint)
		if err != nil {
			return nil, fmt.Errorf("create authorization: %w", err)
		}

		if resp.StatusCode() == http.StatusUnauthorized {
			method, required := otpRequired(resp.Header())
			if !required {
				return nil, ErrBadCredentials
			}
			if attempt >= maxTwoFactorAttempts {
				return nil, ErrTwoFactorFailed
			}
			otp, err = m.challenge(ctx, services.TwoFactorChallenge{
				HostAddress: h.name,
				Username:    username,
				Method:      method,
				Retry:       otp != "",
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		if resp.IsError() {
			return nil, fmt.Errorf("create authorization: unexpected status %d", resp.StatusCode())
		}
		return m.completeLogin(ctx, h, auth.Token)
	}
}

func (m *Manager) challenge(ctx context.Context, ch services.TwoFactorChallenge) (string, error) {
	handler, err := m.twoFactor()
	if err != nil {
		return "", fmt.Errorf("resolve two-factor handler: %w", err)
	}
	return handler.HandleTwoFactorChallenge(ctx, ch)
}

// LoginFromCache validates the token stored for hostAddress.
func (m *Manager) LoginFromCache(ctx context.Context, hostAddress string) (*services.User, error) {
	h, err := parseHost(hostAddress)
	if err != nil {
		return nil, err
	}
	cred, err := m.keychain.Load(ctx, h.name)
	if err != nil {
		return nil, err
	}
	user, _, err := m.fetchUser(ctx, h, cred.Token)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout forgets the credential stored for hostAddress.
func (m *Manager) Logout(ctx context.Context, hostAddress string) error {
	h, err := parseHost(hostAddress)
	if err != nil {
		return err
	}
	m.logger.Infow("logout", "host", h.name)
	return m.keychain.Delete(ctx, h.name)
}

func (m *Manager) completeLogin(ctx context.Context, h host, token string) (*services.User, error) {
	user, scopes, err := m.fetchUser(ctx, h, token)
	if err != nil {
		return nil, err
	}
	for _, required := range m.cfg.MinimumScopes {
		if !slices.Contains(scopes, required) {
			m.logger.Warnw("token is missing a required scope", "host", h.name, "scope", required, "granted", scopes)
			return nil, fmt.Errorf("%w: %s", ErrIncorrectScopes, required)
		}
	}
	if err := m.keychain.Save(ctx, h.name, services.Credential{Username: user.Login, Token: token}); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	m.logger.Infow("login succeeded", "host", h.name, "user", user.Login)
	return user, nil
}

func (m *Manager) fetchUser(ctx context.Context, h host, token string) (*services.User, []string, error) {
	var user services.User
	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get(h.apiBase + "/user")
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, nil, ErrBadCredentials
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("get user: unexpected status %d", resp.StatusCode())
	}

	var scopes []string
	for _, s := range strings.Split(resp.Header().Get("X-OAuth-Scopes"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return &user, scopes, nil
}

// otpRequired parses "X-GitHub-OTP: required; app".
func otpRequired(h http.Header) (method string, required bool) {
	v := h.Get("X-GitHub-OTP")
	if !strings.HasPrefix(v, "required") {
		return "", false
	}
	if _, m, ok := strings.Cut(v, ";"); ok {
		method = strings.TrimSpace(m)
	}
	return method, true
}

type host struct {
	name    string // normalized, e.g. https://github.com
	web     string
	apiBase string
}

func parseHost(address string) (host, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return host{}, errors.New("login: empty host address")
	}
	if !strings.Contains(address, "://") {
		address = "https://" + address
	}
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return host{}, fmt.Errorf("login: invalid host address %q", address)
	}

	web := u.Scheme + "://" + strings.ToLower(u.Host)
	h := host{name: web, web: web}
	if strings.EqualFold(u.Host, "github.com") || strings.EqualFold(u.Host, "api.github.com") {
		h.name, h.web = "https://github.com", "https://github.com"
		h.apiBase = "https://api.github.com"
	} else {
		h.apiBase = web + "/api/v3"
	}
	return h, nil
}

func (h host) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   h.web + "/login/oauth/authorize",
		TokenURL:  h.web + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}
