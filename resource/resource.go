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

// Package resource contains the lockable, typed resources that drinkers
// contend for and the fixed Pool that holds them.
package resource

import (
	"fmt"
	"sync"
)

// Kind identifies one of the two disjoint resource classes.
type Kind int

// The resource kinds. A drinker needs exactly one of each.
const (
	Bottle Kind = iota
	Opener
)

// Other returns the complementary kind.
func (k Kind) Other() Kind {
	if k == Bottle {
		return Opener
	}
	return Bottle
}

func (k Kind) String() string {
	switch k {
	case Bottle:
		return "bottle"
	case Opener:
		return "opener"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Resource is a single mutually-exclusive unit of a given Kind. The
// counters are only mutated while the resource's lock is held.
//
// A Resource should not be copied after it has been created.
type Resource struct {
	id   int
	kind Kind

	mu        sync.Mutex
	lockCount int // Times the lock was acquired.
	useCount  int // Times a drink completed while held.
}

// New constructs an unlocked Resource.
func New(id int, kind Kind) *Resource {
	return &Resource{id: id, kind: kind}
}

// ID returns the resource's identifier within its Pool.
func (r *Resource) ID() int { return r.id }

// Kind returns the resource's class.
func (r *Resource) Kind() Kind { return r.kind }

// Lock blocks until the resource is held by the caller.
func (r *Resource) Lock() {
	r.mu.Lock()
	r.lockCount++
}

// TryLock acquires the resource without blocking. It returns false if
// the resource is held elsewhere.
func (r *Resource) TryLock() bool {
	if !r.mu.TryLock() {
		return false
	}
	r.lockCount++
	return true
}

// Unlock releases the resource.
func (r *Resource) Unlock() { r.mu.Unlock() }

// Use records a completed drink. The caller must hold the lock.
func (r *Resource) Use() { r.useCount++ }

// LockCount returns the number of times the resource was locked,
// whether or not the surrounding acquisition went on to succeed. It
// must not be called while drinkers may still hold the resource.
func (r *Resource) LockCount() int { return r.lockCount }

// UseCount returns the number of drinks that used the resource. It
// must not be called while drinkers may still hold the resource.
func (r *Resource) UseCount() int { return r.useCount }

func (r *Resource) String() string {
	return fmt.Sprintf("%s %d", r.kind, r.id)
}
