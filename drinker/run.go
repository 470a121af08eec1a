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
	"fmt"

	"github.com/cockroachdb/field-eng-drinkinggame/barrier"
	"github.com/cockroachdb/field-eng-drinkinggame/retry"
)

// State describes where a drinker is in its lifecycle.
type State int32

// The lifecycle states, in order.
const (
	AwaitingReady State = iota
	AwaitingStart
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case AwaitingReady:
		return "awaiting ready"
	case AwaitingStart:
		return "awaiting start"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// A Runner is passed to [Spawn] to execute drinkers concurrently. It is
// satisfied by [golang.org/x/sync/errgroup.Group].
type Runner interface {
	// Go should execute the function in a non-blocking fashion.
	Go(func() error)
}

// Spawn starts the drinker on the runner. The barrier must outlive the
// drinker.
func Spawn(r Runner, d *Drinker, b *barrier.Barrier) {
	r.Go(func() error { return d.Run(b) })
}

// Run registers the drinker with the barrier, waits for the go signal,
// and then drinks until the barrier requests a stop. The stop request
// is only checked between attempts, so an attempt in progress always
// finishes. The drinker deregisters from the barrier before returning.
//
// A panic raised while drinking is recovered, the drinker's resources
// are released, and the panic is returned as an error.
func (d *Drinker) Run(b *barrier.Barrier) error {
	d.logger.V(1).Info("drinker starting")
	defer d.logger.V(1).Info("drinker stopping")

	b.RegisterReady()
	defer b.Deregister()
	defer d.setState(Stopped)

	d.setState(AwaitingStart)
	b.AwaitStart()
	return d.drinkUntilStopped(b)
}

func (d *Drinker) drinkUntilStopped(b *barrier.Barrier) (err error) {
	defer func() {
		x := recover()
		switch t := x.(type) {
		case nil:
		// Success.
		case error:
			err = fmt.Errorf("%s: %w", d, t)
		default:
			err = fmt.Errorf("%s: panic: %v", d, t)
		}
		if err != nil {
			d.releaseQuietly()
		}
	}()

	d.setState(Running)
	var backoff retry.Backoff
	for {
		drank := d.TryDrink()
		if b.Stopping() {
			return nil
		}
		if drank {
			backoff = nil
			continue
		}
		if d.newBackoff != nil {
			if backoff == nil {
				backoff = d.newBackoff()
			}
			retry.Pause(backoff)
		}
	}
}
