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

// Package oauth hosts the loopback endpoint the browser is redirected to at
// the end of an OAuth authorization.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/safe"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

// ErrTimeout is returned when no callback arrives in time.
var ErrTimeout = errors.New("oauth callback timed out")

// Conf configures the callback listener.
type Conf struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	CallbackPath string        `mapstructure:"callbackPath"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SetDefaults fills unset fields.
func (c *Conf) SetDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.CallbackPath == "" {
		c.CallbackPath = "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
}

type result struct {
	code string
	err  error
}

// Listener implements services.OAuthCallbackListener.
type Listener struct {
	conf   Conf
	app    *fiber.App
	logger log.ILogger

	mu      sync.Mutex
	addr    string
	waiters map[string]chan result
}

var _ services.OAuthCallbackListener = (*Listener)(nil)

// NewListener creates a listener; the port is bound on the first Listen.
// Port 0 picks a free port.
func NewListener(conf Conf, logger log.ILogger) *Listener {
	conf.SetDefaults()
	l := &Listener{
		conf:    conf,
		logger:  log.OrGlobal(logger),
		waiters: make(map[string]chan result),
	}

	app := fiber.New(fiber.Config{
		AppName:               "OAuth Callback",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	app.Use(fiberrecover.New())
	app.Get(conf.CallbackPath, l.handleCallback)
	l.app = app
	return l
}

// App exposes the fiber application serving the callback.
func (l *Listener) App() *fiber.App {
	return l.app
}

// RedirectURL returns the callback URL, using the bound port once listening.
func (l *Listener) RedirectURL() string {
	l.mu.Lock()
	addr := l.addr
	l.mu.Unlock()
	if addr == "" {
		addr = net.JoinHostPort(l.conf.Host, fmt.Sprint(l.conf.Port))
	}
	return "http://" + addr + l.conf.CallbackPath
}

// Start binds the listening socket if it is not bound yet.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.addr != "" {
		return nil
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(l.conf.Host, fmt.Sprint(l.conf.Port)))
	if err != nil {
		return fmt.Errorf("oauth: listen: %w", err)
	}
	l.addr = ln.Addr().String()
	l.logger.Infow("oauth callback listener started", "address", l.addr)
	safe.Go(func() {
		if err := l.app.Listener(ln); err != nil {
			l.logger.Errorw("oauth callback listener failed", "error", err)
		}
	})
	return nil
}

// Listen waits for the callback carrying state. A callback that arrives
// before Listen is called is kept until it is collected.
func (l *Listener) Listen(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", errors.New("oauth: empty state")
	}
	if err := l.Start(); err != nil {
		return "", err
	}

	ch := l.waiter(state)
	defer l.forget(state)

	timer := time.NewTimer(l.conf.Timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.code, r.err
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops serving callbacks.
func (l *Listener) Shutdown(ctx context.Context) error {
	return l.app.ShutdownWithContext(ctx)
}

func (l *Listener) handleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing state")
	}

	r := result{code: c.Query("code")}
	if e := c.Query("error"); e != "" {
		r.err = fmt.Errorf("oauth: authorization failed: %s %s", e, c.Query("error_description"))
	} else if r.code == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing code")
	}

	select {
	case l.waiter(state) <- r:
	default:
		return c.Status(fiber.StatusConflict).SendString("callback already received")
	}

	if r.err != nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Authorization was not granted. You can close this window.")
	}
	return c.SendString("Authorization complete. You can close this window.")
}

func (l *Listener) waiter(state string) chan result {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.waiters[state]
	if !ok {
		ch = make(chan result, 1)
		l.waiters[state] = ch
	}
	return ch
}

func (l *Listener) forget(state string) {
	l.mu.Lock()
	delete(l.waiters, state)
	l.mu.Unlock()
}

// Assembly exports a shared Listener under the services.OAuthCallbackListener contract.
func Assembly(conf Conf, logger log.ILogger) compose.Assembly {
	return compose.NewAssembly("oauth",
		compose.Provide(func(compose.Resolver) (services.OAuthCallbackListener, error) {
			return NewListener(conf, logger), nil
		}),
	)
}
