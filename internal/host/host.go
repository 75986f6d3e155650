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

// Package host models the plugin host the extension runs inside: a runtime
// typed service locator and the default export provider handed to the
// composition container at startup.
package host

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/pkg/log"
)

// ServiceLocator looks services up by their runtime type.
type ServiceLocator interface {
	GetService(serviceType reflect.Type) (any, error)
}

// Services is the host-wide service registry.
type Services struct {
	mu       sync.RWMutex
	services map[reflect.Type]any
}

func NewServices() *Services {
	return &Services{services: make(map[reflect.Type]any)}
}

// Add registers v as the service for serviceType.
func (s *Services) Add(serviceType reflect.Type, v any) error {
	if serviceType == nil {
		return fmt.Errorf("add service: nil service type")
	}
	if v == nil || !reflect.TypeOf(v).AssignableTo(serviceType) {
		return fmt.Errorf("add service %s: %w", serviceType, compose.ErrContractMismatch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[serviceType] = v
	return nil
}

// AddService registers v under contract T.
func AddService[T any](s *Services, v T) error {
	return s.Add(compose.Contract[T](), v)
}

// GetService returns the service for serviceType or a *compose.NotFoundError.
func (s *Services) GetService(serviceType reflect.Type) (any, error) {
	s.mu.RLock()
	v, ok := s.services[serviceType]
	s.mu.RUnlock()
	if !ok {
		return nil, &compose.NotFoundError{Def: compose.ImportDefinition{Contract: serviceType}}
	}
	return v, nil
}

// Types lists the registered service types sorted by name.
func (s *Services) Types() []reflect.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]reflect.Type, 0, len(s.services))
	for t := range s.services {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

// NewExportProvider returns the host's default export provider. It exports
// locator under the ServiceLocator contract plus any extra host exports.
func NewExportProvider(logger log.ILogger, locator ServiceLocator, exports ...*compose.Export) *compose.Container {
	all := append([]*compose.Export{compose.ProvideValue(locator)}, exports...)
	return compose.NewContainer(
		compose.NewTypeCatalog("host", all...),
		compose.WithLogger(logger),
	)
}
