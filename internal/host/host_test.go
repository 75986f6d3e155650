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

package host

import (
	"testing"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type solution interface {
	Path() string
}

type fakeSolution struct{}

func (fakeSolution) Path() string { return "/src/app.sln" }

func TestServices_AddAndGet(t *testing.T) {
	s := NewServices()
	require.NoError(t, AddService[solution](s, fakeSolution{}))

	v, err := s.GetService(compose.Contract[solution]())
	require.NoError(t, err)
	assert.Equal(t, "/src/app.sln", v.(solution).Path())
	assert.Len(t, s.Types(), 1)
}

func TestServices_Missing(t *testing.T) {
	_, err := NewServices().GetService(compose.Contract[solution]())
	assert.ErrorIs(t, err, compose.ErrNotFound)
}

func TestServices_RejectsMismatch(t *testing.T) {
	err := NewServices().Add(compose.Contract[solution](), "not a solution")
	assert.ErrorIs(t, err, compose.ErrContractMismatch)
}

func TestNewExportProvider_ExportsLocator(t *testing.T) {
	s := NewServices()
	p := NewExportProvider(zap.NewNop().Sugar(), s)

	v, found, err := p.TryGetExportedValue(compose.Import[ServiceLocator]())
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, s, v)

	_, found, err = p.TryGetExportedValue(compose.Import[solution]())
	require.NoError(t, err)
	assert.False(t, found)
}
