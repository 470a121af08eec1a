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

// TryAcquire attempts to obtain one resource of each kind. On success,
// the drinker holds a bottle and an opener. On failure, it holds
// nothing.
//
// The only blocking step is the lock on the randomly-chosen first
// resource. The second resource is polled, so the caller never waits on
// two locks.
func (d *Drinker) TryAcquire() bool {
	d.attempts++

	resources := d.pool.Resources()
	first := resources[d.rand.IntN(len(resources))]
	first.Lock()
	d.hold(first)

	for _, second := range resources {
		if second == first || second.Kind() == first.Kind() {
			continue
		}
		if !second.TryLock() {
			continue
		}
		d.hold(second)
		d.events.doAcquired(d)
		return true
	}

	d.release(first)
	return false
}
