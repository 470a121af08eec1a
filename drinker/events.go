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

package drinker

import "github.com/cockroachdb/field-eng-drinkinggame/resource"

// Events provides a [Drinker] with optional callbacks to monitor its
// progress. Every callback runs synchronously on the drinker's own
// goroutine, so they should be cheap.
type Events struct {
	// OnAcquired is called once a drinker holds one of each kind.
	OnAcquired func(d *Drinker)
	// OnDrink is called while both resources are held, after their use
	// counters have been incremented.
	OnDrink func(d *Drinker)
	// OnLocked is called after a locked resource has been bound to the
	// drinker.
	OnLocked func(d *Drinker, r *resource.Resource)
	// OnPause is called after a drink that triggered an extra pause.
	OnPause func(d *Drinker, p Pause)
	// OnState is called on each lifecycle transition.
	OnState func(d *Drinker, s State)
	// OnUnlocking is called immediately before a held resource is
	// unlocked.
	OnUnlocking func(d *Drinker, r *resource.Resource)
}

func (e *Events) doAcquired(d *Drinker) {
	if e != nil && e.OnAcquired != nil {
		e.OnAcquired(d)
	}
}

func (e *Events) doDrink(d *Drinker) {
	if e != nil && e.OnDrink != nil {
		e.OnDrink(d)
	}
}

func (e *Events) doLocked(d *Drinker, r *resource.Resource) {
	if e != nil && e.OnLocked != nil {
		e.OnLocked(d, r)
	}
}

func (e *Events) doPause(d *Drinker, p Pause) {
	if e != nil && e.OnPause != nil {
		e.OnPause(d, p)
	}
}

func (e *Events) doState(d *Drinker, s State) {
	if e != nil && e.OnState != nil {
		e.OnState(d, s)
	}
}

func (e *Events) doUnlocking(d *Drinker, r *resource.Resource) {
	if e != nil && e.OnUnlocking != nil {
		e.OnUnlocking(d, r)
	}
}
