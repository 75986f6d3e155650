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

// Resolver resolves a request to a value.
type Resolver interface {
	Resolve(def ImportDefinition) (any, error)
}

// ResolverFunc is one link of a resolution chain. found is false when the
// source has nothing for def; err is reserved for real failures.
type ResolverFunc func(def ImportDefinition) (value any, found bool, err error)

// Chain tries resolvers in order and stops at the first one that finds a
// value or fails.
func Chain(resolvers ...ResolverFunc) ResolverFunc {
	return func(def ImportDefinition) (any, bool, error) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			v, found, err := r(def)
			if err != nil {
				return nil, false, err
			}
			if found {
				return v, true, nil
			}
		}
		return nil, false, nil
	}
}

// Resolve adapts the chain to Resolver, turning a miss into a *NotFoundError.
func (f ResolverFunc) Resolve(def ImportDefinition) (any, error) {
	v, found, err := f(def)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Def: def}
	}
	return v, nil
}

// ExportProvider is a resolution source that can report absence without failing.
type ExportProvider interface {
	TryGetExportedValue(def ImportDefinition) (any, bool, error)
}

// FromProvider turns an ExportProvider into a chain link.
func FromProvider(p ExportProvider) ResolverFunc {
	if p == nil {
		return nil
	}
	return p.TryGetExportedValue
}

// GetExportedValue resolves contract T from r.
func GetExportedValue[T any](r Resolver) (T, error) {
	var zero T
	v, err := r.Resolve(Import[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &mismatchError{def: Import[T](), value: v}
	}
	return typed, nil
}

// GetExportedValueOrDefault is GetExportedValue with a miss reported as the
// zero value and a nil error.
func GetExportedValueOrDefault[T any](r Resolver) (T, error) {
	v, err := GetExportedValue[T](r)
	if err != nil && IsAbsent(err, Import[T]()) {
		var zero T
		return zero, nil
	}
	return v, err
}
