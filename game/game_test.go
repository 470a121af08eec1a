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
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/field-eng-drinkinggame/drinker"
	"github.com/cockroachdb/field-eng-drinkinggame/resource"
	"github.com/cockroachdb/field-eng-drinkinggame/retry"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// stopWithin stops the game, failing the test if shutdown takes longer
// than the limit.
func stopWithin(r *require.Assertions, g *Game, limit time.Duration) *Report {
	type result struct {
		report *Report
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		report, err := g.Stop()
		ch <- result{report, err}
	}()
	select {
	case res := <-ch:
		r.NoError(res.err)
		return res.report
	case <-time.After(limit):
		r.FailNow("game did not stop", "limit %s", limit)
		return nil
	}
}

func TestPreflight(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		msg     string
	}{
		{name: "ok", cfg: Config{Drinkers: 3, Bottles: 1, Openers: 1}},
		{name: "no drinkers", cfg: Config{Bottles: 1}},
		{name: "negative drinkers", cfg: Config{Drinkers: -1, Bottles: 1}, wantErr: ErrNegativeDrinkers},
		{name: "negative bottles", cfg: Config{Bottles: -1, Openers: 2}, wantErr: resource.ErrNegativeCount},
		{name: "no resources", cfg: Config{Drinkers: 2}, wantErr: resource.ErrNoResources},
		{name: "negative duration", cfg: Config{Bottles: 1, Duration: -time.Second}, msg: "duration"},
		{name: "negative scale", cfg: Config{Bottles: 1, TimeScale: -1}, msg: "timeScale"},
		{name: "unknown backoff", cfg: Config{Bottles: 1, Backoff: "linear"}, wantErr: ErrUnknownBackoff},
		{
			name:    "constant without delay",
			cfg:     Config{Bottles: 1, Backoff: BackoffConstant},
			wantErr: retry.ErrInvalidArg,
		},
		{
			name:    "exponential inverted",
			cfg:     Config{Bottles: 1, Backoff: BackoffExponential, BackoffBase: time.Second, BackoffMax: time.Millisecond},
			wantErr: retry.ErrInvalidArg,
		},
		{
			name: "exponential",
			cfg:  Config{Bottles: 1, Backoff: BackoffExponential, BackoffBase: time.Millisecond, BackoffMax: time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			err := tt.cfg.Preflight()
			switch {
			case tt.wantErr != nil:
				a.ErrorIs(err, tt.wantErr)
			case tt.msg != "":
				a.ErrorContains(err, tt.msg)
			default:
				a.NoError(err)
			}
			g, newErr := New(&tt.cfg, nil)
			if err != nil {
				a.Error(newErr)
				a.Nil(g)
			} else {
				a.NoError(newErr)
				a.NotNil(g)
			}
		})
	}
}

func TestSetCounts(t *testing.T) {
	r := require.New(t)

	var cfg Config
	r.NoError(cfg.SetCounts([]string{"5", "2", "3"}))
	r.Equal(5, cfg.Drinkers)
	r.Equal(2, cfg.Bottles)
	r.Equal(3, cfg.Openers)

	r.ErrorIs(cfg.SetCounts([]string{"5", "two", "3"}), ErrNotInteger)
	r.ErrorContains(cfg.SetCounts([]string{"5"}), "got 1 arguments")
}

func TestBind(t *testing.T) {
	r := require.New(t)

	var cfg Config
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.Bind(flags)
	r.NoError(flags.Parse([]string{"--backoff", "constant", "--duration", "2s", "--seed", "9"}))

	r.Equal(BackoffConstant, cfg.Backoff)
	r.Equal(time.Millisecond, cfg.BackoffBase)
	r.Equal(2*time.Second, cfg.Duration)
	r.Equal(uint64(9), cfg.Seed)
	r.Equal(1.0, cfg.TimeScale)

	factory, err := cfg.backoffFactory()
	r.NoError(err)
	delay, stop := factory().Next()
	r.False(stop)
	r.Equal(time.Millisecond, delay)
}

// A game with several drinkers must always shut down when asked.
func TestLiveness(t *testing.T) {
	r := require.New(t)

	g, err := New(&Config{Drinkers: 8, Bottles: 2, Openers: 3, TimeScale: 0.05, Seed: 1}, nil)
	r.NoError(err)

	g.Start()
	g.Start() // No-op.
	time.Sleep(100 * time.Millisecond)
	report := stopWithin(r, g, 5*time.Second)

	r.NoError(report.Check())
	drinks, tries := report.Drinks()
	r.Positive(drinks)
	r.GreaterOrEqual(tries, drinks)

	// Stop is idempotent.
	again := stopWithin(r, g, time.Second)
	r.Equal(report, again)
}

// Without one of the kinds, nobody ever drinks, but the game still
// stops cleanly.
func TestDegeneratePool(t *testing.T) {
	for _, cfg := range []Config{
		{Drinkers: 4, Bottles: 0, Openers: 3},
		{Drinkers: 4, Bottles: 2, Openers: 0},
		{Drinkers: 1, Bottles: 1, Openers: 0},
	} {
		r := require.New(t)
		g, err := New(&cfg, nil)
		r.NoError(err)

		g.Start()
		time.Sleep(20 * time.Millisecond)
		report := stopWithin(r, g, 5*time.Second)

		r.NoError(report.Check())
		for _, d := range report.Drinkers {
			r.Zero(d.Drinks)
			r.Positive(d.Tries)
		}
		for _, res := range report.Resources {
			r.Zero(res.Used)
		}
	}
}

// Three drinkers sharing one bottle and one opener: only one of them
// can be drinking at any instant.
func TestSingleBottleScenario(t *testing.T) {
	r := require.New(t)

	sem := semaphore.NewWeighted(1)
	var overlaps, drinking atomic.Int32
	events := &drinker.Events{
		OnDrink: func(*drinker.Drinker) {
			if !sem.TryAcquire(1) {
				overlaps.Inc()
				return
			}
			drinking.Inc()
		},
		OnUnlocking: func(d *drinker.Drinker, res *resource.Resource) {
			// The bottle is released first at the end of a drink.
			if res.Kind() == resource.Bottle && d.Holding(resource.Opener) != nil &&
				drinking.CompareAndSwap(1, 0) {
				sem.Release(1)
			}
		},
	}

	g, err := New(&Config{Drinkers: 3, Bottles: 1, Openers: 1, TimeScale: 0.02, Seed: 3}, &drinker.Options{Events: events})
	r.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	report, err := g.Run(ctx)
	r.NoError(err)

	r.Zero(overlaps.Load())
	r.NoError(report.Check())
	drinks, _ := report.Drinks()
	r.Positive(drinks)
	bottles, _ := report.Uses(resource.Bottle)
	openers, _ := report.Uses(resource.Opener)
	r.Equal(drinks, bottles)
	r.Equal(drinks, openers)
}

func TestRunDuration(t *testing.T) {
	r := require.New(t)

	g, err := New(&Config{Drinkers: 2, Bottles: 1, Openers: 1, Duration: 20 * time.Millisecond}, nil)
	r.NoError(err)

	start := time.Now()
	report, err := g.Run(context.Background())
	r.NoError(err)
	r.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
	r.Len(report.Drinkers, 2)
	r.Len(report.Resources, 2)
}

func TestBackoffGame(t *testing.T) {
	r := require.New(t)

	g, err := New(&Config{
		Drinkers:    4,
		Bottles:     1,
		Openers:     1,
		Backoff:     BackoffExponential,
		BackoffBase: 100 * time.Microsecond,
		BackoffMax:  2 * time.Millisecond,
		TimeScale:   0.01,
	}, nil)
	r.NoError(err)

	g.Start()
	time.Sleep(50 * time.Millisecond)
	report := stopWithin(r, g, 5*time.Second)
	r.NoError(report.Check())
}

func TestReport(t *testing.T) {
	r := require.New(t)

	report := &Report{
		Drinkers: []DrinkerResult{
			{ID: 0, Drinks: 2, Tries: 5},
			{ID: 1, Drinks: 1, Tries: 1},
		},
		Resources: []ResourceResult{
			{ID: 0, Kind: resource.Bottle, Locked: 4, Used: 3},
			{ID: 1, Kind: resource.Opener, Locked: 5, Used: 3},
		},
	}
	r.NoError(report.Check())

	var buf bytes.Buffer
	n, err := report.WriteTo(&buf)
	r.NoError(err)
	r.Equal(int64(buf.Len()), n)
	r.Equal(`*********Drinkers**********
Drinker 0, Drank 2, 5 tries
Drinker 1, Drank 1, 1 tries
Total Drinkers 2, Drinks 3, Resource tries 6


*********Resource Results **********
Resource 0 - type:bottle , locked 4, used 3
Resource 1 - type:opener , locked 5, used 3
Total Resources = 2, 6 use count, 9 locked count


`, buf.String())

	report.Resources[1].Locked = 2
	report.Resources[0].Used = 1
	err = report.Check()
	r.ErrorIs(err, ErrInconsistent)
	r.ErrorContains(err, "opener 1 used 3 times but locked only 2 times")
	r.ErrorContains(err, "3 drinks but 1 bottle uses")
}
