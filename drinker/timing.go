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

import (
	"math/rand/v2"
	"time"
)

// A Span is a randomized duration in the half-open range
// [Base, Base+Jitter).
type Span struct {
	Base   time.Duration
	Jitter time.Duration
}

func (s Span) draw(r *rand.Rand) time.Duration {
	if s.Jitter <= 0 {
		return s.Base
	}
	return s.Base + time.Duration(r.Int64N(int64(s.Jitter)))
}

// Timing controls how long a drinker sleeps while drinking and during
// its periodic extra pauses. The zero value never sleeps.
type Timing struct {
	Drink    Span // While holding both resources.
	Drunk    Span // After every fifth drink.
	Bathroom Span // After every tenth drink.
}

// DefaultTiming returns the timings of the classic game.
func DefaultTiming() Timing {
	return Timing{
		Drink:    Span{20 * time.Millisecond, 20 * time.Millisecond},
		Drunk:    Span{40 * time.Millisecond, 10 * time.Millisecond},
		Bathroom: Span{60 * time.Millisecond, 10 * time.Millisecond},
	}
}

// Scale returns a copy of the Timing with every duration multiplied by
// the factor.
func (t Timing) Scale(factor float64) Timing {
	scale := func(s Span) Span {
		return Span{
			Base:   time.Duration(float64(s.Base) * factor),
			Jitter: time.Duration(float64(s.Jitter) * factor),
		}
	}
	return Timing{
		Drink:    scale(t.Drink),
		Drunk:    scale(t.Drunk),
		Bathroom: scale(t.Bathroom),
	}
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
