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

// Package barrier coordinates a fixed number of workers and a driver
// through three phases: all workers ready, a one-shot go signal, and all
// workers finished.
//
// The expected call sequence is:
//
//	b := barrier.New(n)
//	// each of n workers:
//	b.RegisterReady()
//	b.AwaitStart()
//	for { ...; if b.Stopping() { break } }
//	b.Deregister()
//	// driver:
//	b.AwaitAllReady()
//	b.SignalGo()
//	... external stop event ...
//	b.RequestStop()
//	b.AwaitAllStopped()
//
// Stopping is cooperative. Workers poll [Barrier.Stopping] at their own
// iteration boundaries; a stop request never interrupts work in
// progress.
package barrier

import (
	"fmt"
	"sync"
)

// A Barrier is internally synchronized and is safe for concurrent use.
// A Barrier should not be copied after it has been created.
type Barrier struct {
	total int

	// live counts registered workers. It rises to total during startup
	// and falls back to zero during shutdown.
	live struct {
		sync.Mutex
		cond  sync.Cond
		count int
	}

	start struct {
		sync.Mutex
		cond sync.Cond
	}
	started Flag // Written while holding start.
	stop    Flag
}

// New constructs a Barrier for the given number of workers.
func New(total int) *Barrier {
	if total < 0 {
		panic(fmt.Sprintf("barrier: negative worker count %d", total))
	}
	b := &Barrier{total: total}
	b.live.cond.L = &b.live.Mutex
	b.start.cond.L = &b.start.Mutex
	return b
}

// Total returns the number of workers the Barrier coordinates.
func (b *Barrier) Total() int { return b.total }

// Live returns the number of currently-registered workers.
func (b *Barrier) Live() int {
	b.live.Lock()
	defer b.live.Unlock()
	return b.live.count
}

// RegisterReady announces that a worker is ready to start. The last
// worker to arrive wakes the driver blocked in [Barrier.AwaitAllReady].
func (b *Barrier) RegisterReady() {
	b.live.Lock()
	defer b.live.Unlock()
	if b.live.count == b.total {
		panic("barrier: more workers registered than expected")
	}
	b.live.count++
	if b.live.count == b.total {
		b.live.cond.Broadcast()
	}
}

// AwaitAllReady blocks until every worker has called
// [Barrier.RegisterReady].
func (b *Barrier) AwaitAllReady() {
	b.live.Lock()
	defer b.live.Unlock()
	for b.live.count < b.total {
		b.live.cond.Wait()
	}
}

// SignalGo releases every worker blocked in [Barrier.AwaitStart]. It
// returns false if the signal had already been given.
func (b *Barrier) SignalGo() bool {
	b.start.Lock()
	defer b.start.Unlock()
	if !b.started.Set() {
		return false
	}
	b.start.cond.Broadcast()
	return true
}

// Started reports whether [Barrier.SignalGo] has been called.
func (b *Barrier) Started() bool { return b.started.IsSet() }

// AwaitStart blocks until [Barrier.SignalGo] has been called.
func (b *Barrier) AwaitStart() {
	if b.started.IsSet() {
		return
	}
	b.start.Lock()
	defer b.start.Unlock()
	for !b.started.IsSet() {
		b.start.cond.Wait()
	}
}

// RequestStop asks all workers to stop at their next iteration
// boundary. It returns false if a stop had already been requested.
func (b *Barrier) RequestStop() bool { return b.stop.Set() }

// Stopping reports whether a stop has been requested. It never blocks
// and is intended to be polled between units of work.
func (b *Barrier) Stopping() bool { return b.stop.IsSet() }

// Deregister announces that a worker has finished. The last worker to
// leave wakes the driver blocked in [Barrier.AwaitAllStopped].
func (b *Barrier) Deregister() {
	b.live.Lock()
	defer b.live.Unlock()
	if b.live.count == 0 {
		panic("barrier: Deregister called without a matching RegisterReady")
	}
	b.live.count--
	if b.live.count == 0 {
		b.live.cond.Broadcast()
	}
}

// AwaitAllStopped blocks until every registered worker has called
// [Barrier.Deregister]. It should be called after
// [Barrier.AwaitAllReady], otherwise it may observe a count of zero
// before any worker has registered.
func (b *Barrier) AwaitAllStopped() {
	b.live.Lock()
	defer b.live.Unlock()
	for b.live.count > 0 {
		b.live.cond.Wait()
	}
}
