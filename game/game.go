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

// Package game drives a drinking game: it builds the resource pool and
// the drinkers, releases them together, and collects the results once
// they have been asked to stop.
package game

import (
	"context"

	"github.com/cockroachdb/field-eng-drinkinggame/barrier"
	"github.com/cockroachdb/field-eng-drinkinggame/drinker"
	"github.com/cockroachdb/field-eng-drinkinggame/resource"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// A Game owns the pool, the drinkers, and the barrier that coordinates
// them. Its methods must be called from a single driver goroutine.
type Game struct {
	barrier  *barrier.Barrier
	cfg      *Config
	drinkers []*drinker.Drinker
	logger   logr.Logger
	pool     *resource.Pool
	started  barrier.Flag
	tasks    errgroup.Group
}

// New validates the configuration and constructs a Game. The Events and
// Logger of opts are passed to every drinker; the remaining drinker
// options are derived from the Config.
func New(cfg *Config, opts *drinker.Options) (*Game, error) {
	if err := cfg.Preflight(); err != nil {
		return nil, err
	}
	backoff, err := cfg.backoffFactory()
	if err != nil {
		return nil, err
	}
	pool, err := resource.NewPool(cfg.Bottles, cfg.Openers)
	if err != nil {
		return nil, err
	}

	var dOpts drinker.Options
	if opts != nil {
		dOpts = *opts
	}
	dOpts.Backoff = backoff
	dOpts.Seed = cfg.Seed
	dOpts.Timing = drinker.DefaultTiming().Scale(cfg.TimeScale)

	logger := dOpts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return &Game{
		barrier:  barrier.New(cfg.Drinkers),
		cfg:      cfg,
		drinkers: drinker.NewSet(cfg.Drinkers, pool, &dOpts),
		logger:   logger,
		pool:     pool,
	}, nil
}

// Drinkers returns the game's drinkers.
func (g *Game) Drinkers() []*drinker.Drinker { return g.drinkers }

// Pool returns the game's resources.
func (g *Game) Pool() *resource.Pool { return g.pool }

// Start launches one goroutine per drinker, waits until all of them are
// ready, and then fires the starting gun. Calling Start more than once
// has no effect.
func (g *Game) Start() {
	if !g.started.Set() {
		return
	}
	for _, d := range g.drinkers {
		drinker.Spawn(&g.tasks, d, g.barrier)
	}
	g.barrier.AwaitAllReady()
	g.logger.Info("firing starting gun", "drinkers", len(g.drinkers))
	g.barrier.SignalGo()
}

// Stop asks the drinkers to stop, waits for all of them to finish, and
// returns the results. Drinkers finish their current attempt before
// stopping. The error reports any drinker that failed.
func (g *Game) Stop() (*Report, error) {
	if g.barrier.RequestStop() {
		g.logger.Info("stop requested")
	}
	g.barrier.AwaitAllStopped()
	err := g.tasks.Wait()
	g.logger.Info("all drinkers finished")
	return g.Report(), err
}

// Run starts the game, waits until the context is done or the
// configured Duration has elapsed, and then stops it.
func (g *Game) Run(ctx context.Context) (*Report, error) {
	if g.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Duration)
		defer cancel()
	}
	g.Start()
	<-ctx.Done()
	return g.Stop()
}
