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

// Package retry provides backoff strategies that pace repeated
// attempts at an operation that failed due to contention.
package retry

import "time"

// Backoff strategy. The interface is shaped after
// https://github.com/sethvargo/go-retry, so its strategies can be used
// directly.
type Backoff interface {
	// Next determines how long to wait before the next attempt. It
	// returns true once the strategy has no further delays to offer.
	Next() (next time.Duration, stop bool)
}

// Factory creates a fresh Backoff. Strategies are stateful, so callers
// obtain a new one whenever they want the delays to start over.
type Factory func() Backoff

// Pause sleeps for the strategy's next delay. It returns false without
// sleeping if the strategy is exhausted or nil.
func Pause(b Backoff) bool {
	if b == nil {
		return false
	}
	delay, stop := b.Next()
	if stop {
		return false
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return true
}
