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
	"sync"
)

// Slot is a set-once holder for a dependency whose consumer is initialized
// before its provider exists.
type Slot[T any] struct {
	mu    sync.RWMutex
	set   bool
	value T
}

// Set stores v. Every call after the first successful one fails with
// ErrSlotAlreadySet and leaves the slot unchanged.
func (s *Slot[T]) Set(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return fmt.Errorf("%w: %s", ErrSlotAlreadySet, Contract[T]())
	}
	s.value, s.set = v, true
	return nil
}

// Get returns the stored value and whether it was set.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// IsSet reports whether Set succeeded.
func (s *Slot[T]) IsSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}
