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

package bootstrap

import (
	"context"

	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/pkg/log"
)

// CatalogEntry describes one export for listing.
type CatalogEntry struct {
	Assembly string `json:"assembly"`
	Contract string `json:"contract"`
	Name     string `json:"name,omitempty"`
	Shared   bool   `json:"shared"`
}

// DescribeCatalog builds the catalogs of assemblies without composing
// anything and lists their exports in catalog order.
func DescribeCatalog(ctx context.Context, logger log.ILogger, assemblies ...compose.Assembly) ([]CatalogEntry, error) {
	catalogs, err := compose.BuildCatalogs(ctx, log.OrGlobal(logger), assemblies...)
	if err != nil {
		return nil, err
	}
	var entries []CatalogEntry
	for _, c := range catalogs {
		for _, e := range c.All() {
			entries = append(entries, CatalogEntry{
				Assembly: c.Name(),
				Contract: e.Contract.String(),
				Name:     e.Name,
				Shared:   e.Shared,
			})
		}
	}
	return entries, nil
}
