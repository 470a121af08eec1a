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

package game

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cockroachdb/field-eng-drinkinggame/resource"
)

// ErrInconsistent is returned from [Report.Check].
var ErrInconsistent = errors.New("inconsistent results")

// DrinkerResult summarizes one drinker.
type DrinkerResult struct {
	ID     int
	Drinks int
	Tries  int
}

// ResourceResult summarizes one resource.
type ResourceResult struct {
	ID     int
	Kind   resource.Kind
	Locked int
	Used   int
}

// A Report holds the final counters of a game.
type Report struct {
	Drinkers  []DrinkerResult
	Resources []ResourceResult
}

// Report snapshots the counters. It must only be called before
// [Game.Start] or after [Game.Stop].
func (g *Game) Report() *Report {
	ret := &Report{
		Drinkers:  make([]DrinkerResult, 0, len(g.drinkers)),
		Resources: make([]ResourceResult, 0, g.pool.Len()),
	}
	for _, d := range g.drinkers {
		ret.Drinkers = append(ret.Drinkers, DrinkerResult{
			ID:     d.ID(),
			Drinks: d.Drinks(),
			Tries:  d.Attempts(),
		})
	}
	for _, r := range g.pool.Resources() {
		ret.Resources = append(ret.Resources, ResourceResult{
			ID:     r.ID(),
			Kind:   r.Kind(),
			Locked: r.LockCount(),
			Used:   r.UseCount(),
		})
	}
	return ret
}

// Drinks returns the total number of drinks and acquisition attempts.
func (r *Report) Drinks() (drinks, tries int) {
	for _, d := range r.Drinkers {
		drinks += d.Drinks
		tries += d.Tries
	}
	return drinks, tries
}

// Uses returns the total use and lock counts of the given kind.
func (r *Report) Uses(kind resource.Kind) (used, locked int) {
	for _, res := range r.Resources {
		if res.Kind == kind {
			used += res.Used
			locked += res.Locked
		}
	}
	return used, locked
}

// Check verifies the relationships that every game must satisfy: no
// resource was used more often than it was locked, and every drink
// used exactly one bottle and one opener.
func (r *Report) Check() error {
	var errs []error
	for _, res := range r.Resources {
		if res.Locked < res.Used {
			errs = append(errs, fmt.Errorf("%s %d used %d times but locked only %d times",
				res.Kind, res.ID, res.Used, res.Locked))
		}
	}
	drinks, _ := r.Drinks()
	for _, kind := range []resource.Kind{resource.Bottle, resource.Opener} {
		if used, _ := r.Uses(kind); used != drinks {
			errs = append(errs, fmt.Errorf("%d drinks but %d %s uses", drinks, used, kind))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(errs...))
}

// WriteTo prints the report in the layout of the game's results screen.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "*********Drinkers**********")
	for _, d := range r.Drinkers {
		fmt.Fprintf(&buf, "Drinker %d, Drank %d, %d tries\n", d.ID, d.Drinks, d.Tries)
	}
	drinks, tries := r.Drinks()
	fmt.Fprintf(&buf, "Total Drinkers %d, Drinks %d, Resource tries %d\n\n\n",
		len(r.Drinkers), drinks, tries)

	fmt.Fprintln(&buf, "*********Resource Results **********")
	var used, locked int
	for _, res := range r.Resources {
		fmt.Fprintf(&buf, "Resource %d - type:%s , locked %d, used %d\n",
			res.ID, res.Kind, res.Locked, res.Used)
		used += res.Used
		locked += res.Locked
	}
	fmt.Fprintf(&buf, "Total Resources = %d, %d use count, %d locked count\n\n\n",
		len(r.Resources), used, locked)

	return buf.WriteTo(w)
}
