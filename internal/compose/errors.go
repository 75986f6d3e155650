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
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no source can provide the requested contract.
	ErrNotFound = errors.New("export not found")
	// ErrNotImplemented is returned by members kept only for interface compatibility.
	ErrNotImplemented = errors.New("not implemented")
	// ErrCycle is returned when an export depends on itself, directly or not.
	ErrCycle = errors.New("dependency cycle")
	// ErrContractMismatch is returned when a value does not satisfy the contract it is registered or requested for.
	ErrContractMismatch = errors.New("value does not satisfy contract")
	// ErrSlotAlreadySet is returned by Slot.Set after the first successful set.
	ErrSlotAlreadySet = errors.New("slot already set")
)

// NotFoundError reports the request that could not be satisfied.
type NotFoundError struct {
	Def ImportDefinition
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no export for %s", e.Def)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TypeLoadError is returned by Assembly.Types when some of the assembly's
// types could not be loaded. Types holds one entry per type; failed entries
// are nil.
type TypeLoadError struct {
	Assembly     string
	Types        []*Export
	LoaderErrors []error
}

func (e *TypeLoadError) Error() string {
	msgs := make([]string, 0, len(e.LoaderErrors))
	for _, err := range e.LoaderErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("unable to load %d type(s) from assembly %s: %s",
		len(e.LoaderErrors), e.Assembly, strings.Join(msgs, "; "))
}

func (e *TypeLoadError) Unwrap() []error {
	return e.LoaderErrors
}

type mismatchError struct {
	def   ImportDefinition
	value any
}

func (e *mismatchError) Error() string {
	return fmt.Sprintf("%T does not satisfy %s", e.value, e.def)
}

func (e *mismatchError) Unwrap() error {
	return ErrContractMismatch
}

// IsAbsent reports whether err says that def itself could not be found. A
// miss on one of def's dependencies is a failure, not an absence.
func IsAbsent(err error, def ImportDefinition) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Def == def
}
