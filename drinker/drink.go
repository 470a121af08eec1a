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

import "fmt"

// Pause identifies the extra rest a drinker takes after some drinks.
type Pause int

// Pause values.
const (
	PauseNone     Pause = iota
	PauseDrunk          // Every fifth drink.
	PauseBathroom       // Every tenth drink.
)

func (p Pause) String() string {
	switch p {
	case PauseNone:
		return "none"
	case PauseDrunk:
		return "drunk"
	case PauseBathroom:
		return "bathroom"
	default:
		return fmt.Sprintf("Pause(%d)", int(p))
	}
}

// Drink consumes the held bottle and opener. The drinker must hold one
// of each; both are released before Drink returns.
func (d *Drinker) Drink() {
	if d.bottle == nil || d.opener == nil {
		panic(fmt.Sprintf("%s cannot drink: bottle=%v opener=%v", d, d.bottle, d.opener))
	}
	drinkTime := d.timing.Drink.draw(d.rand)
	drunkTime := d.timing.Drunk.draw(d.rand)
	bathroomTime := d.timing.Bathroom.draw(d.rand)

	d.bottle.Use()
	d.opener.Use()
	d.events.doDrink(d)

	sleep(drinkTime)

	d.releaseAll()
	d.drinks++

	// Every multiple of ten is also a multiple of five, so the
	// bathroom branch is never taken. The order is intentional.
	pause := PauseNone
	if d.drinks%5 == 0 {
		pause = PauseDrunk
		sleep(drunkTime)
	} else if d.drinks%10 == 0 {
		pause = PauseBathroom
		sleep(bathroomTime)
	}
	if pause != PauseNone {
		d.events.doPause(d, pause)
	}
}

// TryDrink performs one acquisition attempt and, if it succeeds, one
// drink. It reports whether the drinker drank.
func (d *Drinker) TryDrink() bool {
	if !d.TryAcquire() {
		return false
	}
	d.Drink()
	return true
}
