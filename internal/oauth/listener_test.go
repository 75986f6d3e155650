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

package oauth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newListener(t *testing.T, timeout time.Duration) *Listener {
	t.Helper()
	l := NewListener(Conf{Port: 0, Timeout: timeout}, zap.NewNop().Sugar())
	t.Cleanup(func() { _ = l.Shutdown(context.Background()) })
	return l
}

func callback(t *testing.T, l *Listener, query string) (int, string) {
	t.Helper()
	resp, err := l.App().Test(httptest.NewRequest(http.MethodGet, "/?"+query, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestListener_CallbackBeforeListen(t *testing.T) {
	l := newListener(t, time.Second)

	status, body := callback(t, l, "code=abc&state=s1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Authorization complete")

	code, err := l.Listen(t.Context(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
}

func TestListener_CallbackAfterListen(t *testing.T) {
	l := newListener(t, 5*time.Second)
	require.NoError(t, l.Start())

	done := make(chan string, 1)
	go func() {
		code, _ := l.Listen(context.Background(), "s2")
		done <- code
	}()

	resp, err := http.Get(l.RedirectURL() + "?code=xyz&state=s2")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "xyz", <-done)
}

func TestListener_RejectedCallbacks(t *testing.T) {
	l := newListener(t, time.Second)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing state", "code=abc", http.StatusBadRequest},
		{"missing code", "state=s3", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := callback(t, l, tt.query)
			assert.Equal(t, tt.status, status)
		})
	}

	status, _ := callback(t, l, "code=a&state=dup")
	require.Equal(t, http.StatusOK, status)
	status, _ = callback(t, l, "code=b&state=dup")
	assert.Equal(t, http.StatusConflict, status)
}

func TestListener_AuthorizationDenied(t *testing.T) {
	l := newListener(t, time.Second)

	status, _ := callback(t, l, "error=access_denied&state=s4")
	assert.Equal(t, http.StatusUnauthorized, status)

	_, err := l.Listen(t.Context(), "s4")
	assert.ErrorContains(t, err, "access_denied")
}

func TestListener_Timeout(t *testing.T) {
	l := newListener(t, 20*time.Millisecond)
	_, err := l.Listen(t.Context(), "never")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestListener_RedirectURL(t *testing.T) {
	l := NewListener(Conf{Port: 42549, CallbackPath: "/callback"}, zap.NewNop().Sugar())
	assert.Equal(t, "http://127.0.0.1:42549/callback", l.RedirectURL())

	bound := newListener(t, time.Second)
	require.NoError(t, bound.Start())
	assert.True(t, strings.HasPrefix(bound.RedirectURL(), "http://127.0.0.1:"))
	assert.NotEqual(t, "http://127.0.0.1:0/", bound.RedirectURL())
}
