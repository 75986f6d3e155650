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
	"github.com/go-arcade/composition/pkg/log"
)

// AggregateCatalog unions child catalogs. Requests that match nothing in any
// child are reported to the logger.
type AggregateCatalog struct {
	children []Catalog
	logger   log.ILogger
}

// NewAggregateCatalog returns a catalog searching children in order.
func NewAggregateCatalog(logger log.ILogger, children ...Catalog) *AggregateCatalog {
	return &AggregateCatalog{
		children: children,
		logger:   log.OrGlobal(logger),
	}
}

// Children returns the child catalogs.
func (c *AggregateCatalog) Children() []Catalog {
	return append([]Catalog(nil), c.children...)
}

// Exports concatenates the matches of every child, dropping exports already
// contributed by an earlier child.
func (c *AggregateCatalog) Exports(def ImportDefinition) []*Export {
	var merged []*Export
	seen := make(map[*Export]struct{})
	for _, child := range c.children {
		for _, e := range child.Exports(def) {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			merged = append(merged, e)
		}
	}
	if len(merged) == 0 {
		c.logger.Debugw("no exports for request", "request", def.String())
	}
	return merged
}

func (c *AggregateCatalog) All() []*Export {
	var all []*Export
	seen := make(map[*Export]struct{})
	for _, child := range c.children {
		for _, e := range child.All() {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			all = append(all, e)
		}
	}
	return all
}
