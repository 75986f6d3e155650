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

// Package views maps view models to the views that present them. The view
// locator is created before composition runs, so its factory is installed
// later through a set-once slot.
package views

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/services"
)

var (
	// ErrNotInitialized is returned by Locate before a factory was installed.
	ErrNotInitialized = errors.New("view locator is not initialized")
	// ErrNoView is returned when no view is registered for a view model.
	ErrNoView = errors.New("no view registered for view model")
)

// ViewFunc builds the view for a view model.
type ViewFunc func(viewModel any) (any, error)

type registration struct {
	viewModel reflect.Type
	create    ViewFunc
}

// Factory implements services.ViewViewModelFactory. View models are resolved
// from the container; views come from registered ViewFuncs.
type Factory struct {
	resolver compose.Resolver

	mu    sync.RWMutex
	views []registration
}

var _ services.ViewViewModelFactory = (*Factory)(nil)

func NewFactory(r compose.Resolver) *Factory {
	return &Factory{resolver: r}
}

// RegisterView registers create as the view for view models of type VM. When
// VM is an interface, it serves every view model implementing it that has no
// more specific registration.
func RegisterView[VM any](f *Factory, create func(vm VM) (any, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, registration{
		viewModel: compose.Contract[VM](),
		create: func(vm any) (any, error) {
			return create(vm.(VM))
		},
	})
}

// CreateViewModel resolves a view model by contract.
func (f *Factory) CreateViewModel(contract reflect.Type) (any, error) {
	vm, err := f.resolver.Resolve(compose.ImportDefinition{Contract: contract})
	if err != nil {
		return nil, fmt.Errorf("create view model %s: %w", contract, err)
	}
	return vm, nil
}

// CreateView builds the view for viewModel. An exact type registration wins
// over an interface one; among interface registrations the first wins.
func (f *Factory) CreateView(viewModel any) (any, error) {
	if viewModel == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrNoView)
	}
	t := reflect.TypeOf(viewModel)

	f.mu.RLock()
	var match ViewFunc
	for _, reg := range f.views {
		if reg.viewModel == t {
			match = reg.create
			break
		}
		if match == nil && reg.viewModel.Kind() == reflect.Interface && t.Implements(reg.viewModel) {
			match = reg.create
		}
	}
	f.mu.RUnlock()

	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoView, t)
	}
	return match(viewModel)
}

// Assembly exports a Factory under the services.ViewViewModelFactory
// contract. register adds the views the factory knows.
func Assembly(register func(f *Factory)) compose.Assembly {
	return compose.NewAssembly("views",
		compose.Provide(func(r compose.Resolver) (services.ViewViewModelFactory, error) {
			f := NewFactory(compose.Detach(r))
			if register != nil {
				register(f)
			}
			return f, nil
		}),
	)
}
