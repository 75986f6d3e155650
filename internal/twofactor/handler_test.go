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

package twofactor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-arcade/composition/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler_ReturnsTrimmedCode(t *testing.T) {
	var out bytes.Buffer
	h := NewHandler(ReaderPrompter(strings.NewReader(" 123456 \n"), &out), zap.NewNop().Sugar())

	code, err := h.HandleTwoFactorChallenge(t.Context(), services.TwoFactorChallenge{
		HostAddress: "github.com",
		Username:    "octocat",
		Method:      "sms",
	})
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, "Enter the two-factor authentication code for octocat on github.com (sent by SMS): ", out.String())
}

func TestHandler_RetryMessage(t *testing.T) {
	var seen string
	h := NewHandler(func(_ context.Context, msg string) (string, error) {
		seen = msg
		return "654321", nil
	}, nil)

	_, err := h.HandleTwoFactorChallenge(t.Context(), services.TwoFactorChallenge{Username: "octocat", HostAddress: "github.com", Retry: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(seen, "The code was not accepted. "))
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		prompt Prompter
		want   error
	}{
		{
			name:   "empty answer",
			prompt: func(context.Context, string) (string, error) { return "  ", nil },
			want:   ErrCancelled,
		},
		{
			name:   "closed input",
			prompt: ReaderPrompter(strings.NewReader(""), io.Discard),
			want:   io.EOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandler(tt.prompt, zap.NewNop().Sugar()).HandleTwoFactorChallenge(t.Context(), services.TwoFactorChallenge{})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
