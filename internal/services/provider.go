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

// Package services holds the capability contracts shared across the extension
// and the service provider that resolves them.
package services

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/host"
	"github.com/go-arcade/composition/pkg/log"
)

// ServiceProvider resolves capabilities from the composition container and
// falls back to the host's service locator.
type ServiceProvider struct {
	container *compose.Container
	ambient   host.ServiceLocator
	logger    log.ILogger
}

var _ GitHubServiceProvider = (*ServiceProvider)(nil)

// NewServiceProvider wraps container. The host service locator is itself
// resolved from container, normally through its default export provider.
func NewServiceProvider(container *compose.Container, logger log.ILogger) (*ServiceProvider, error) {
	ambient, err := compose.GetExportedValue[host.ServiceLocator](container)
	if err != nil {
		return nil, fmt.Errorf("resolve host service locator: %w", err)
	}
	return &ServiceProvider{
		container: container,
		ambient:   ambient,
		logger:    log.OrGlobal(logger),
	}, nil
}

func (sp *ServiceProvider) ExportProvider() compose.Resolver {
	return sp.container
}

// Resolve looks def up in the container, then in the host service locator.
func (sp *ServiceProvider) Resolve(def compose.ImportDefinition) (any, error) {
	v, err := compose.Chain(sp.container.TryGetExportedValue, sp.fromAmbient).Resolve(def)
	if err != nil && compose.IsAbsent(err, def) {
		sp.container.RecordResolution(compose.SourceMiss)
		sp.logger.Warnw("couldn't find service", "type", def.String())
	}
	return v, err
}

func (sp *ServiceProvider) fromAmbient(def compose.ImportDefinition) (any, bool, error) {
	if def.ContractName != "" {
		return nil, false, nil
	}
	v, err := sp.ambient.GetService(def.Contract)
	if err != nil {
		if errors.Is(err, compose.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	sp.container.RecordResolution(compose.SourceProvider)
	return v, true, nil
}

// GetService asks the host service locator only. Runtime typed lookups do not
// consult the container.
func (sp *ServiceProvider) GetService(serviceType reflect.Type) (any, error) {
	return sp.ambient.GetService(serviceType)
}

func (sp *ServiceProvider) AddService(reflect.Type, any, any) error {
	return notImplemented("AddService")
}

func (sp *ServiceProvider) RemoveService(reflect.Type, any) error {
	return notImplemented("RemoveService")
}

func (sp *ServiceProvider) TryGetServiceByType(reflect.Type) (any, error) {
	return nil, notImplemented("TryGetServiceByType")
}

func (sp *ServiceProvider) TryGetServiceByName(string) (any, error) {
	return nil, notImplemented("TryGetServiceByName")
}

func (sp *ServiceProvider) GitServiceProvider() (host.ServiceLocator, error) {
	return nil, notImplemented("GitServiceProvider")
}

func (sp *ServiceProvider) SetGitServiceProvider(host.ServiceLocator) error {
	return notImplemented("SetGitServiceProvider")
}

func notImplemented(member string) error {
	return fmt.Errorf("ServiceProvider.%s: %w", member, compose.ErrNotImplemented)
}

// Get resolves T through sp.
func Get[T any](sp GitHubServiceProvider) (T, error) {
	return compose.GetExportedValue[T](sp)
}

// TryGet resolves T through sp. found is false when T is available nowhere;
// every other failure is returned.
func TryGet[T any](sp GitHubServiceProvider) (v T, found bool, err error) {
	v, err = Get[T](sp)
	if err != nil {
		if compose.IsAbsent(err, compose.Import[T]()) {
			var zero T
			return zero, false, nil
		}
		return v, false, err
	}
	return v, true, nil
}
