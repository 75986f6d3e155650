//go:build wireinject
// +build wireinject

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

package main

import (
	"context"

	"github.com/go-arcade/composition/internal/bootstrap"
	"github.com/go-arcade/composition/internal/conf"
	"github.com/go-arcade/composition/internal/host"
	"github.com/go-arcade/composition/pkg/log"
	"github.com/go-arcade/composition/pkg/metrics"
	"github.com/google/wire"
)

func initApp(ctx context.Context, configFile string, locator host.ServiceLocator) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		conf.ProviderSet,
		log.ProviderSet,
		metrics.ProviderSet,
		bootstrap.ProviderSet,
	))
}
