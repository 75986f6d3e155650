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
)

// Factory builds the value of an export. r resolves the export's own
// dependencies.
type Factory func(r Resolver) (any, error)

// Export describes a type that offers a contract. Exports are immutable once
// created and are compared by pointer identity.
type Export struct {
	Contract reflect.Type
	Name     string
	Factory  Factory
	Shared   bool
}

func (e *Export) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s (%s)", e.Contract, e.Name)
	}
	return e.Contract.String()
}

// ExportOption customizes an export at declaration time.
type ExportOption func(*Export)

// Named gives the export a contract name in addition to its type.
func Named(name string) ExportOption {
	return func(e *Export) {
		e.Name = name
	}
}

// NonShared makes every resolution build a fresh value.
func NonShared() ExportOption {
	return func(e *Export) {
		e.Shared = false
	}
}

// Provide declares an export of contract T built by factory.
func Provide[T any](factory func(r Resolver) (T, error), opts ...ExportOption) *Export {
	e := &Export{
		Contract: Contract[T](),
		Factory: func(r Resolver) (any, error) {
			return factory(r)
		},
		Shared: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProvideValue declares an export of contract T that always yields v.
func ProvideValue[T any](v T, opts ...ExportOption) *Export {
	return Provide(func(Resolver) (T, error) { return v, nil }, opts...)
}

// Contract returns the contract identity of T. Interface types are returned
// as themselves rather than as their dynamic type.
func Contract[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// ImportDefinition is a request for a contract.
type ImportDefinition struct {
	Contract     reflect.Type
	ContractName string
}

// Import builds the request for contract T.
func Import[T any]() ImportDefinition {
	return ImportDefinition{Contract: Contract[T]()}
}

// ImportNamed builds the request for contract T under a contract name.
func ImportNamed[T any](name string) ImportDefinition {
	return ImportDefinition{Contract: Contract[T](), ContractName: name}
}

func (d ImportDefinition) String() string {
	contract := "<nil>"
	if d.Contract != nil {
		contract = d.Contract.String()
	}
	if d.ContractName == "" {
		return fmt.Sprintf("Contract=%s", contract)
	}
	return fmt.Sprintf("Contract=%s, ContractName=%s", contract, d.ContractName)
}

// Matches reports whether e satisfies the request.
func (d ImportDefinition) Matches(e *Export) bool {
	if e == nil || e.Contract != d.Contract {
		return false
	}
	return d.ContractName == "" || d.ContractName == e.Name
}
