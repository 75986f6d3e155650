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

package views

import (
	"errors"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/services"
)

// Locator finds the view for a view model using the factory installed at
// bootstrap.
type Locator struct {
	factory compose.Slot[services.ViewViewModelFactory]
}

var defaultLocator Locator

// Default returns the process-wide locator.
func Default() *Locator {
	return &defaultLocator
}

// InitializeFactoryProvider installs f into the process-wide locator. It
// succeeds once per process.
func InitializeFactoryProvider(f services.ViewViewModelFactory) error {
	return defaultLocator.Initialize(f)
}

// Initialize installs f. Later calls fail with compose.ErrSlotAlreadySet.
func (l *Locator) Initialize(f services.ViewViewModelFactory) error {
	if f == nil {
		return errors.New("views: nil view model factory")
	}
	return l.factory.Set(f)
}

// FactoryProvider returns the installed factory.
func (l *Locator) FactoryProvider() (services.ViewViewModelFactory, bool) {
	return l.factory.Get()
}

// Locate returns the view for viewModel.
func (l *Locator) Locate(viewModel any) (any, error) {
	f, ok := l.factory.Get()
	if !ok {
		return nil, ErrNotInitialized
	}
	return f.CreateView(viewModel)
}
