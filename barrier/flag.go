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

package barrier

import "go.uber.org/atomic"

// A Flag is a boolean that transitions from false to true at most once.
// Setting the flag happens-before any IsSet call that observes it, so
// the flag may be polled without holding a lock.
//
// The zero value is an unset flag.
type Flag struct {
	v atomic.Bool
}

// IsSet reports whether [Flag.Set] has been called.
func (f *Flag) IsSet() bool { return f.v.Load() }

// Set raises the flag. It returns true if this call changed the flag.
func (f *Flag) Set() bool { return f.v.CompareAndSwap(false, true) }
