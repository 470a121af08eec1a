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
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/field-eng-drinkinggame/resource"
	"github.com/cockroachdb/field-eng-drinkinggame/retry"
	gr "github.com/sethvargo/go-retry"
	"github.com/spf13/pflag"
)

// Backoff strategies accepted by [Config.Backoff].
const (
	BackoffNone        = "none"
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// Configuration errors, in addition to those defined by the resource
// package.
var (
	ErrNegativeDrinkers = errors.New("drinker count must be a non-negative integer value")
	ErrNotInteger       = errors.New("all arguments must be integer values")
	ErrUnknownBackoff   = errors.New("unknown backoff strategy")
)

// Config describes a game.
type Config struct {
	Bottles  int // Number of bottles in the pool.
	Drinkers int // Number of concurrent drinkers.
	Openers  int // Number of openers in the pool.

	Backoff     string        // One of the Backoff constants; empty means none.
	BackoffBase time.Duration // First (or only) retry delay.
	BackoffMax  time.Duration // Ceiling for exponential delays.
	Duration    time.Duration // Stop automatically after this long; 0 waits for the caller.
	Seed        uint64        // Makes random choices reproducible if non-zero.
	TimeScale   float64       // Multiplies the classic drink timings; 0 disables them.
}

// Bind adds flags to the set. The drinker, bottle, and opener counts
// are positional; see [Config.SetCounts].
func (c *Config) Bind(f *pflag.FlagSet) {
	f.StringVar(&c.Backoff, "backoff", BackoffNone,
		"pacing of retries after a failed acquisition: none, constant, or exponential")
	f.DurationVar(&c.BackoffBase, "backoffBase", time.Millisecond,
		"the constant retry delay, or the first exponential delay")
	f.DurationVar(&c.BackoffMax, "backoffMax", 50*time.Millisecond,
		"the largest exponential retry delay")
	f.DurationVar(&c.Duration, "duration", 0,
		"stop drinking after this long instead of waiting for the operator")
	f.Uint64Var(&c.Seed, "seed", 0,
		"seed for the drinkers' random choices; 0 for a random seed")
	f.Float64Var(&c.TimeScale, "timeScale", 1,
		"multiplier for drinking and pause durations; 0 removes all delays")
}

// SetCounts parses the drinker, bottle, and opener counts, in that
// order.
func (c *Config) SetCounts(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected drinkerCount, bottleCount, and openerCount; got %d arguments", len(args))
	}
	dest := []*int{&c.Drinkers, &c.Bottles, &c.Openers}
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrNotInteger, arg)
		}
		*dest[i] = v
	}
	return nil
}

// Preflight validates the configuration. It must succeed before any
// pool or drinker is constructed.
func (c *Config) Preflight() error {
	if c.Drinkers < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDrinkers, c.Drinkers)
	}
	if err := resource.Validate(c.Bottles, c.Openers); err != nil {
		return err
	}
	if c.Duration < 0 {
		return errors.New("duration must not be negative")
	}
	if c.TimeScale < 0 {
		return errors.New("timeScale must not be negative")
	}
	if _, err := c.backoffFactory(); err != nil {
		return err
	}
	return nil
}

// backoffFactory returns nil if failed acquisitions should be retried
// immediately.
func (c *Config) backoffFactory() (retry.Factory, error) {
	base, ceiling := c.BackoffBase, c.BackoffMax
	switch c.Backoff {
	case "", BackoffNone:
		return nil, nil
	case BackoffConstant:
		if base <= 0 {
			return nil, fmt.Errorf("%w: backoffBase must be positive", retry.ErrInvalidArg)
		}
		return func() retry.Backoff { return gr.NewConstant(base) }, nil
	case BackoffExponential:
		if _, err := retry.NewExpBackoff(base, ceiling, 0); err != nil {
			return nil, fmt.Errorf("backoffBase=%s backoffMax=%s: %w", base, ceiling, err)
		}
		return func() retry.Backoff {
			b, _ := retry.NewExpBackoff(base, ceiling, 0)
			return b
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackoff, c.Backoff)
	}
}
