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

/*
Package drinker contains the workers of the drinking game and the
protocol they use to share a [resource.Pool].

Each Drinker needs one bottle and one opener at the same time. To get
them without deadlocking against its peers, a drinker blocks on at most
one lock at a time:

  - It picks a random resource from the pool and blocks until it holds
    that resource's lock.
  - It scans the pool in index order for resources of the other kind and
    polls each one with a non-blocking TryLock, stopping at the first
    success.
  - If nothing could be polled, it releases the first resource and
    reports failure.

Because every drinker waits on a single lock and only ever polls for the
second, no cycle of drinkers can be waiting on locks held by one
another. Liveness is not guaranteed: an unlucky drinker may fail
forever.

A Drinker's counters and held resources are mutated only by the
goroutine running it. Callbacks registered through [Events] run on that
goroutine and may inspect the drinker freely.
*/
package drinker

import (
	"fmt"
	"math/rand/v2"

	"github.com/cockroachdb/field-eng-drinkinggame/resource"
	"github.com/cockroachdb/field-eng-drinkinggame/retry"
	"github.com/go-logr/logr"
	"go.uber.org/atomic"
)

// Options configure a Drinker. The zero value drinks without any delay,
// retries failed acquisitions immediately and does not log.
type Options struct {
	// Backoff, if non-nil, paces retries after a failed acquisition. A
	// new strategy is created after every successful drink. If nil, a
	// drinker retries immediately.
	Backoff retry.Factory
	Events  *Events // Optional monitoring callbacks.
	Logger  logr.Logger
	// Seed makes the drinkers' random choices reproducible. Each
	// drinker derives its own generator from the seed and its id. If
	// zero, generators are seeded randomly.
	Seed   uint64
	Timing Timing
}

// A Drinker repeatedly acquires a bottle and an opener, drinks, and
// releases them.
type Drinker struct {
	id         int
	events     *Events
	logger     logr.Logger
	newBackoff retry.Factory
	pool       *resource.Pool
	rand       *rand.Rand // Private to this drinker.
	state      atomic.Int32
	timing     Timing

	// Only accessed from the goroutine running the drinker.
	attempts int
	bottle   *resource.Resource
	drinks   int
	opener   *resource.Resource
}

// New constructs a Drinker that will draw from the given pool. The pool
// must outlive the drinker's goroutine.
func New(id int, pool *resource.Pool, opts *Options) *Drinker {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	var src rand.Source
	if opts.Seed != 0 {
		src = rand.NewPCG(opts.Seed, uint64(id))
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Drinker{
		id:         id,
		events:     opts.Events,
		logger:     logger.WithValues("drinker", id),
		newBackoff: opts.Backoff,
		pool:       pool,
		rand:       rand.New(src),
		timing:     opts.Timing,
	}
}

// NewSet constructs count drinkers, numbered from zero.
func NewSet(count int, pool *resource.Pool, opts *Options) []*Drinker {
	ret := make([]*Drinker, count)
	for i := range ret {
		ret[i] = New(i, pool, opts)
	}
	return ret
}

// ID returns the drinker's identifier.
func (d *Drinker) ID() int { return d.id }

// Attempts returns the number of acquisition attempts, successful or
// not. It must not be called while the drinker is running, except from
// an [Events] callback.
func (d *Drinker) Attempts() int { return d.attempts }

// Drinks returns the number of successful drinks. It must not be called
// while the drinker is running, except from an [Events] callback.
func (d *Drinker) Drinks() int { return d.drinks }

// Holding returns the resource of the given kind that the drinker
// currently holds, or nil. It must only be called from an [Events]
// callback or once the drinker has stopped.
func (d *Drinker) Holding(kind resource.Kind) *resource.Resource {
	return *d.slot(kind)
}

// State returns the drinker's lifecycle state. It is safe to call from
// any goroutine.
func (d *Drinker) State() State { return State(d.state.Load()) }

func (d *Drinker) String() string { return fmt.Sprintf("drinker %d", d.id) }

func (d *Drinker) setState(s State) {
	d.state.Store(int32(s))
	d.events.doState(d, s)
}

func (d *Drinker) slot(kind resource.Kind) **resource.Resource {
	if kind == resource.Bottle {
		return &d.bottle
	}
	return &d.opener
}

// hold binds a locked resource to the matching slot.
func (d *Drinker) hold(r *resource.Resource) {
	slot := d.slot(r.Kind())
	if *slot != nil {
		r.Unlock()
		panic(fmt.Sprintf("%s cannot hold %s: already holding %s", d, r, *slot))
	}
	*slot = r
	d.events.doLocked(d, r)
}

// release unlocks a held resource and clears its slot.
func (d *Drinker) release(r *resource.Resource) {
	d.events.doUnlocking(d, r)
	*d.slot(r.Kind()) = nil
	r.Unlock()
}

// releaseQuietly unlocks whatever the drinker holds without invoking
// any callbacks. It is used to clean up after a panic, which may itself
// have come from a callback.
func (d *Drinker) releaseQuietly() {
	for _, slot := range []**resource.Resource{&d.bottle, &d.opener} {
		if r := *slot; r != nil {
			*slot = nil
			r.Unlock()
		}
	}
}

// releaseAll unlocks whatever the drinker holds, bottle first.
func (d *Drinker) releaseAll() {
	if d.bottle != nil {
		d.release(d.bottle)
	}
	if d.opener != nil {
		d.release(d.opener)
	}
}
