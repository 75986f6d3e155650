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
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-arcade/composition/pkg/log"
)

// Resolution sources reported to the MetricsRecorder.
const (
	SourceComposed = "composed"
	SourceCatalog  = "catalog"
	SourceProvider = "provider"
	SourceMiss     = "miss"
)

// MetricsRecorder observes where requests were satisfied.
type MetricsRecorder interface {
	RecordResolution(source string)
}

// Option configures a Container.
type Option func(*Container)

// WithDefaultProvider appends a fallback source consulted after the catalog.
func WithDefaultProvider(p ExportProvider) Option {
	return func(c *Container) {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(l log.ILogger) Option {
	return func(c *Container) {
		c.logger = l
	}
}

// WithMetrics sets the resolution recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// Container resolves contracts from explicitly composed values, then from
// catalog exports, then from the default providers, in that order.
//
// Resolve is safe for concurrent use. Shared catalog exports are instantiated
// once per container.
type Container struct {
	catalog   Catalog
	providers []ExportProvider
	logger    log.ILogger
	metrics   MetricsRecorder

	mu       sync.RWMutex
	composed map[ImportDefinition]any
	named    map[reflect.Type][]ImportDefinition

	cellsMu sync.Mutex
	cells   map[*Export]*cell
}

type cell struct {
	mu    sync.Mutex
	done  bool
	value any
}

// NewContainer creates a container over catalog. A nil catalog is treated as
// an empty one.
func NewContainer(catalog Catalog, opts ...Option) *Container {
	c := &Container{
		composed: make(map[ImportDefinition]any),
		named:    make(map[reflect.Type][]ImportDefinition),
		cells:    make(map[*Export]*cell),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrGlobal(c.logger)
	if catalog == nil {
		catalog = NewAggregateCatalog(c.logger)
	}
	c.catalog = catalog
	return c
}

// Catalog returns the catalog the container was built from.
func (c *Container) Catalog() Catalog {
	return c.catalog
}

// Compose registers value as the resolved value of contract. It shadows any
// catalog export for the same contract.
func (c *Container) Compose(contract reflect.Type, value any) error {
	return c.ComposeNamed(contract, "", value)
}

// ComposeNamed is Compose for a named contract. Like a named catalog export,
// the value also answers unnamed requests for contract when no unnamed value
// was composed; the first named value composed wins.
func (c *Container) ComposeNamed(contract reflect.Type, name string, value any) error {
	def := ImportDefinition{Contract: contract, ContractName: name}
	if contract == nil {
		return fmt.Errorf("compose: nil contract")
	}
	if value == nil || !reflect.TypeOf(value).AssignableTo(contract) {
		return fmt.Errorf("compose: %w", &mismatchError{def: def, value: value})
	}

	c.mu.Lock()
	if _, ok := c.composed[def]; !ok && name != "" {
		c.named[contract] = append(c.named[contract], def)
	}
	c.composed[def] = value
	c.mu.Unlock()

	c.logger.Debugw("composed exported value",
		"contract", contract.String(),
		"type", fmt.Sprintf("%T", value),
	)
	return nil
}

// ComposeExportedValue registers v as the value of contract T.
func ComposeExportedValue[T any](c *Container, v T) error {
	return c.Compose(Contract[T](), v)
}

// Resolve returns the value for def or a *NotFoundError.
func (c *Container) Resolve(def ImportDefinition) (any, error) {
	return c.resolveRecorded(def, nil)
}

// TryGetExportedValue lets a container act as the default provider of another.
// An absent contract is not recorded as a miss, since the caller goes on to
// its next source.
func (c *Container) TryGetExportedValue(def ImportDefinition) (any, bool, error) {
	v, err := c.resolve(def, nil)
	if err != nil {
		if IsAbsent(err, def) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (c *Container) resolve(def ImportDefinition, path []ImportDefinition) (any, error) {
	for _, p := range path {
		if p == def {
			return nil, fmt.Errorf("%w: %s", ErrCycle, formatPath(append(path, def)))
		}
	}

	links := []ResolverFunc{
		c.observe(SourceComposed, c.fromComposed),
		c.observe(SourceCatalog, c.fromCatalog(path)),
	}
	for _, p := range c.providers {
		links = append(links, c.observe(SourceProvider, FromProvider(p)))
	}

	return Chain(links...).Resolve(def)
}

func (c *Container) resolveRecorded(def ImportDefinition, path []ImportDefinition) (any, error) {
	v, err := c.resolve(def, path)
	if err != nil && IsAbsent(err, def) {
		c.RecordResolution(SourceMiss)
	}
	return v, err
}

func (c *Container) fromComposed(def ImportDefinition) (any, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.composed[def]; ok {
		return v, true, nil
	}
	if def.ContractName == "" {
		if named := c.named[def.Contract]; len(named) > 0 {
			return c.composed[named[0]], true, nil
		}
	}
	return nil, false, nil
}

func (c *Container) fromCatalog(path []ImportDefinition) ResolverFunc {
	return func(def ImportDefinition) (any, bool, error) {
		exports := c.catalog.Exports(def)
		if len(exports) == 0 {
			return nil, false, nil
		}
		r := scope{c: c, path: append(path[:len(path):len(path)], def)}
		v, err := c.instantiate(exports[0], r)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
}

func (c *Container) instantiate(e *Export, r Resolver) (any, error) {
	if !e.Shared {
		return c.create(e, r)
	}

	c.cellsMu.Lock()
	cl, ok := c.cells[e]
	if !ok {
		cl = &cell{}
		c.cells[e] = cl
	}
	c.cellsMu.Unlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.done {
		return cl.value, nil
	}
	v, err := c.create(e, r)
	if err != nil {
		return nil, err
	}
	cl.value, cl.done = v, true
	return v, nil
}

func (c *Container) create(e *Export, r Resolver) (any, error) {
	if e.Factory == nil {
		return nil, fmt.Errorf("create export %s: no factory", e)
	}
	v, err := e.Factory(r)
	if err != nil {
		return nil, fmt.Errorf("create export %s: %w", e, err)
	}
	if v == nil || !reflect.TypeOf(v).AssignableTo(e.Contract) {
		return nil, fmt.Errorf("create export %s: %w", e, &mismatchError{
			def:   ImportDefinition{Contract: e.Contract, ContractName: e.Name},
			value: v,
		})
	}
	return v, nil
}

func (c *Container) observe(source string, link ResolverFunc) ResolverFunc {
	if link == nil {
		return nil
	}
	return func(def ImportDefinition) (any, bool, error) {
		v, found, err := link(def)
		if found && err == nil {
			c.RecordResolution(source)
		}
		return v, found, err
	}
}

// RecordResolution reports source to the container's recorder, if any. Callers
// that put their own sources in front of or behind the container use it to
// keep the counts in one place.
func (c *Container) RecordResolution(source string) {
	if c.metrics != nil {
		c.metrics.RecordResolution(source)
	}
}

// scope resolves a factory's dependencies while remembering the path that
// led to the factory.
type scope struct {
	c    *Container
	path []ImportDefinition
}

func (s scope) Resolve(def ImportDefinition) (any, error) {
	return s.c.resolveRecorded(def, s.path)
}

// Detach returns the container behind a factory's resolver. Factories that
// keep their resolver to resolve on demand after construction use it so that
// later requests do not count toward the construction path.
func Detach(r Resolver) Resolver {
	if s, ok := r.(scope); ok {
		return s.c
	}
	return r
}

func formatPath(path []ImportDefinition) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		parts = append(parts, p.Contract.String())
	}
	return strings.Join(parts, " -> ")
}
