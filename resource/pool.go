// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"fmt"
)

// Configuration errors returned by [Validate] and [NewPool].
var (
	ErrNegativeCount = errors.New("all counts must be non-negative integer values")
	ErrNoResources   = errors.New("requires at least one resource")
)

// Validate checks that a pool with the given counts may be built.
func Validate(bottles, openers int) error {
	if bottles < 0 || openers < 0 {
		return fmt.Errorf("%w: bottles=%d openers=%d", ErrNegativeCount, bottles, openers)
	}
	if bottles+openers == 0 {
		return ErrNoResources
	}
	return nil
}

// A Pool is the fixed, ordered collection of resources shared by every
// drinker for the lifetime of a game. The first resources are bottles
// and the remainder are openers. A Pool is never resized.
type Pool struct {
	resources []*Resource
	counts    [2]int
}

// NewPool constructs a Pool with the requested number of bottles and
// openers. A pool lacking one of the kinds is legal; nobody will ever
// be able to drink from it.
func NewPool(bottles, openers int) (*Pool, error) {
	if err := Validate(bottles, openers); err != nil {
		return nil, err
	}
	p := &Pool{resources: make([]*Resource, 0, bottles+openers)}
	for i := 0; i < bottles+openers; i++ {
		kind := Opener
		if i < bottles {
			kind = Bottle
		}
		p.resources = append(p.resources, New(i, kind))
	}
	p.counts[Bottle] = bottles
	p.counts[Opener] = openers
	return p, nil
}

// At returns the resource at the given index.
func (p *Pool) At(idx int) *Resource { return p.resources[idx] }

// Count returns the number of resources of the given kind.
func (p *Pool) Count(kind Kind) int { return p.counts[kind] }

// Len returns the total number of resources.
func (p *Pool) Len() int { return len(p.resources) }

// Resources returns the pool's resources in index order. The slice must
// not be modified.
func (p *Pool) Resources() []*Resource { return p.resources }

// Totals sums the counters of the given kind. Like the per-resource
// accessors, it must only be called once drinking has stopped.
func (p *Pool) Totals(kind Kind) (locked, used int) {
	for _, r := range p.resources {
		if r.kind != kind {
			continue
		}
		locked += r.lockCount
		used += r.useCount
	}
	return locked, used
}
