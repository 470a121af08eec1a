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

// Command drinkinggame runs a number of drinkers that contend for a
// shared set of bottles and openers until the operator stops them, then
// prints how often each drinker drank and each resource was used.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/field-eng-drinkinggame/drinker"
	"github.com/cockroachdb/field-eng-drinkinggame/game"
	"github.com/cockroachdb/field-eng-drinkinggame/version"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	defer klog.Flush()
	if err := command().ExecuteContext(context.Background()); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}

func command() *cobra.Command {
	var cfg game.Config
	root := &cobra.Command{
		Use:   "drinkinggame [flags] drinkerCount bottleCount openerCount",
		Short: "drinkers contend for bottles and openers",
		Long: `Each drinker repeatedly grabs one bottle and one opener, drinks, and
puts them back. Drinking stops when Enter is pressed, on SIGINT or
SIGTERM, or once --duration has elapsed.

Flags must precede the counts.`,
		Example: "  drinkinggame 10 3 2\n  drinkinggame --duration 5s --backoff exponential 100 10 10",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SetCounts(args); err != nil {
				return err
			}
			if err := cfg.Preflight(); err != nil {
				return err
			}
			// The configuration is valid, so further errors are not
			// usage errors.
			cmd.SilenceUsage = true
			return run(cmd, &cfg)
		},
	}
	// Stop parsing flags at the first count so that negative counts
	// reach Preflight instead of being read as shorthand flags.
	root.Flags().SetInterspersed(false)
	cfg.Bind(root.Flags())

	goFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Banner())
		},
	})
	return root
}

func run(cmd *cobra.Command, cfg *game.Config) error {
	logger := klog.Background()
	g, err := game.New(cfg, &drinker.Options{Logger: logger})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s starting %d drinker(s), %d bottle(s), %d opener(s)\n",
		cmd.Root().Name(), cfg.Drinkers, cfg.Bottles, cfg.Openers)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Duration == 0 {
		fmt.Fprintln(out, "Press Enter to stop drinking")
		go func() {
			// Any input, including EOF, stops the game.
			_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			stop()
		}()
	}

	report, err := g.Run(ctx)
	if _, writeErr := report.WriteTo(out); writeErr != nil {
		return writeErr
	}
	if err != nil {
		return err
	}
	if err := report.Check(); err != nil {
		logger.Error(err, "results are inconsistent")
		return err
	}
	return nil
}
