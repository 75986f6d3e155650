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

package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_StopsAtFirstHit(t *testing.T) {
	var tried []string
	link := func(name string, found bool, err error) ResolverFunc {
		return func(ImportDefinition) (any, bool, error) {
			tried = append(tried, name)
			if found {
				return name, true, nil
			}
			return nil, false, err
		}
	}

	v, err := Chain(link("local", false, nil), nil, link("ambient", true, nil), link("never", true, nil)).
		Resolve(Import[greeter]())
	require.NoError(t, err)
	assert.Equal(t, "ambient", v)
	assert.Equal(t, []string{"local", "ambient"}, tried)
}

func TestChain_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	chain := Chain(
		func(ImportDefinition) (any, bool, error) { return nil, false, boom },
		func(ImportDefinition) (any, bool, error) { return "unreachable", true, nil },
	)

	_, err := chain.Resolve(Import[greeter]())
	assert.ErrorIs(t, err, boom)
}

func TestChain_EmptyIsNotFound(t *testing.T) {
	_, err := Chain().Resolve(Import[greeter]())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportDefinition_String(t *testing.T) {
	assert.Equal(t, "Contract=compose.greeter", Import[greeter]().String())
	assert.Equal(t, "Contract=compose.greeter, ContractName=formal", ImportNamed[greeter]("formal").String())
}

func TestSlot_SetOnce(t *testing.T) {
	var s Slot[greeter]
	_, ok := s.Get()
	assert.False(t, ok)

	first := &englishGreeter{id: 1}
	require.NoError(t, s.Set(first))
	err := s.Set(&englishGreeter{id: 2})
	require.ErrorIs(t, err, ErrSlotAlreadySet)

	got, ok := s.Get()
	assert.True(t, ok)
	assert.True(t, s.IsSet())
	assert.Same(t, first, got)
}

func TestDetach(t *testing.T) {
	type holder struct{ r Resolver }
	c := newTestContainer(t, []*Export{
		Provide(func(r Resolver) (*holder, error) {
			return &holder{r: Detach(r)}, nil
		}),
	})

	h, err := GetExportedValue[*holder](c)
	require.NoError(t, err)
	assert.Same(t, c, h.r)

	again, err := GetExportedValue[*holder](h.r)
	require.NoError(t, err, "a detached resolver has no construction path")
	assert.Same(t, h, again)
	assert.Same(t, c, Detach(c))
}
