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
	"context"
	"errors"
	"fmt"

	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/safe"
	"golang.org/x/sync/errgroup"
)

// Catalog is a collection of exports that can be queried by request.
type Catalog interface {
	Exports(def ImportDefinition) []*Export
	All() []*Export
}

// Assembly is a module that offers a list of exports.
type Assembly interface {
	Name() string
	// Types returns the assembly's exports. A *TypeLoadError means only part
	// of them could be loaded.
	Types() ([]*Export, error)
}

type staticAssembly struct {
	name    string
	exports []*Export
}

// NewAssembly returns an assembly with a fixed export list.
func NewAssembly(name string, exports ...*Export) Assembly {
	return &staticAssembly{name: name, exports: exports}
}

func (a *staticAssembly) Name() string { return a.name }

func (a *staticAssembly) Types() ([]*Export, error) {
	return a.exports, nil
}

// TypeLoader loads one export at runtime.
type TypeLoader func() (*Export, error)

type lazyAssembly struct {
	name    string
	loaders []TypeLoader
}

// NewLazyAssembly returns an assembly whose exports are produced by loaders
// each time Types is called. A loader that fails or panics yields a nil entry
// and a loader error.
func NewLazyAssembly(name string, loaders ...TypeLoader) Assembly {
	return &lazyAssembly{name: name, loaders: loaders}
}

func (a *lazyAssembly) Name() string { return a.name }

func (a *lazyAssembly) Types() ([]*Export, error) {
	types := make([]*Export, len(a.loaders))
	var loaderErrs []error
	for i, load := range a.loaders {
		var e *Export
		err := safe.Call(func() (err error) {
			e, err = load()
			return err
		})
		if err != nil {
			loaderErrs = append(loaderErrs, err)
			continue
		}
		types[i] = e
	}
	if len(loaderErrs) > 0 {
		return types, &TypeLoadError{Assembly: a.name, Types: types, LoaderErrors: loaderErrs}
	}
	return types, nil
}

// TypeCatalog is the ordered export list of a single assembly.
type TypeCatalog struct {
	name    string
	exports []*Export
}

// NewTypeCatalog builds a catalog from exports, skipping nil entries.
func NewTypeCatalog(name string, exports ...*Export) *TypeCatalog {
	kept := make([]*Export, 0, len(exports))
	for _, e := range exports {
		if e != nil {
			kept = append(kept, e)
		}
	}
	return &TypeCatalog{name: name, exports: kept}
}

func (c *TypeCatalog) Name() string { return c.name }

func (c *TypeCatalog) Exports(def ImportDefinition) []*Export {
	var matched []*Export
	for _, e := range c.exports {
		if def.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (c *TypeCatalog) All() []*Export {
	return append([]*Export(nil), c.exports...)
}

// BuildCatalog enumerates asm into a catalog. Partial load failures are
// reported to logger, one entry per failed type, and the types that did load
// are kept. Any other error is returned.
func BuildCatalog(asm Assembly, logger log.ILogger) (*TypeCatalog, error) {
	logger = log.OrGlobal(logger)

	types, err := asm.Types()
	if err != nil {
		var loadErr *TypeLoadError
		if !errors.As(err, &loadErr) {
			return nil, fmt.Errorf("enumerate types of assembly %s: %w", asm.Name(), err)
		}
		for _, le := range loadErr.LoaderErrors {
			logger.Warnw("failed to load type",
				"assembly", asm.Name(),
				"error", le,
			)
		}
		types = loadErr.Types
	}

	return NewTypeCatalog(asm.Name(), types...), nil
}

// BuildCatalogs builds one catalog per assembly concurrently. The result keeps
// the order of asms.
func BuildCatalogs(ctx context.Context, logger log.ILogger, asms ...Assembly) ([]*TypeCatalog, error) {
	catalogs := make([]*TypeCatalog, len(asms))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, asm := range asms {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			c, err := BuildCatalog(asm, logger)
			if err != nil {
				return err
			}
			catalogs[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return catalogs, nil
}
