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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/pkg/log"
)

// ErrCancelled is returned when the user supplies no code.
var ErrCancelled = errors.New("two-factor challenge cancelled")

// Prompter shows message to the user and returns the answer.
type Prompter func(ctx context.Context, message string) (string, error)

// Handler implements services.TwoFactorChallengeHandler on top of a Prompter.
type Handler struct {
	prompt Prompter
	logger log.ILogger
}

var _ services.TwoFactorChallengeHandler = (*Handler)(nil)

func NewHandler(prompt Prompter, logger log.ILogger) *Handler {
	return &Handler{prompt: prompt, logger: log.OrGlobal(logger)}
}

func (h *Handler) HandleTwoFactorChallenge(ctx context.Context, challenge services.TwoFactorChallenge) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h.logger.Infow("two-factor challenge",
		"host", challenge.HostAddress,
		"user", challenge.Username,
		"method", challenge.Method,
		"retry", challenge.Retry,
	)

	code, err := h.prompt(ctx, message(challenge))
	if err != nil {
		return "", fmt.Errorf("prompt for two-factor code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrCancelled
	}
	return code, nil
}

func message(ch services.TwoFactorChallenge) string {
	var b strings.Builder
	if ch.Retry {
		b.WriteString("The code was not accepted. ")
	}
	fmt.Fprintf(&b, "Enter the two-factor authentication code for %s on %s", ch.Username, ch.HostAddress)
	if ch.Method == "sms" {
		b.WriteString(" (sent by SMS)")
	}
	b.WriteString(": ")
	return b.String()
}

// ReaderPrompter writes the message to w and reads one line from r.
func ReaderPrompter(r io.Reader, w io.Writer) Prompter {
	scanner := bufio.NewScanner(r)
	return func(ctx context.Context, msg string) (string, error) {
		if _, err := io.WriteString(w, msg); err != nil {
			return "", err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}
}

// Assembly exports a Handler under the services.TwoFactorChallengeHandler contract.
func Assembly(prompt Prompter, logger log.ILogger) compose.Assembly {
	return compose.NewAssembly("twofactor",
		compose.Provide(func(compose.Resolver) (services.TwoFactorChallengeHandler, error) {
			return NewHandler(prompt, logger), nil
		}),
	)
}
