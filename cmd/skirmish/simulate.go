package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/roster"
	"github.com/cory-johannsen/skirmish/internal/setup"
	"github.com/cory-johannsen/skirmish/internal/simulation"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		repeat int
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate ENCOUNTER.yaml",
		Short: "Play an encounter to completion with every combatant AI-driven",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			out := cmd.OutOrStdout()
			if quiet {
				out = io.Discard
			}
			return a.simulate(ctx, args[0], repeat, out, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.IntVar(&repeat, "repeat", 1, "number of times to play the encounter")
	f.BoolVar(&quiet, "quiet", false, "print summaries only")
	f.Uint64("seed", 0, "dice seed; 0 uses crypto/rand")
	f.Int("max-rounds", 0, "round limit per encounter")
	f.Bool("journal", false, "record summaries in the database")
	mustBind(a.v, "simulation.seed", f.Lookup("seed"))
	mustBind(a.v, "simulation.max_rounds", f.Lookup("max-rounds"))
	mustBind(a.v, "journal.enabled", f.Lookup("journal"))
	return cmd
}

func (a *app) simulate(ctx context.Context, path string, repeat int, logOut, summaryOut io.Writer) error {
	start := time.Now()
	enc, err := roster.LoadFile(path)
	if err != nil {
		return err
	}
	content, err := setup.LoadContent(a.cfg, a.logger)
	if err != nil {
		return err
	}

	opts := []simulation.Option{
		simulation.WithName(enc.Name),
		simulation.WithMaxRounds(a.cfg.Simulation.MaxRounds),
		simulation.WithLogger(a.logger),
	}
	if a.cfg.Journal.Enabled {
		pool, err := postgres.NewPool(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer pool.Close()
		opts = append(opts, simulation.WithRecorder(postgres.NewJournalRepository(pool.DB())))
	}

	src := setup.Source(a.cfg.Simulation.Seed)
	tally := map[string]int{}
	for i := range max(repeat, 1) {
		s, err := a.playOnce(ctx, content, enc, src, opts)
		if s != nil {
			writeLog(logOut, s)
			writeSummary(summaryOut, i+1, s)
			tally[outcomeKey(s)]++
		}
		if err != nil {
			return err
		}
	}
	if repeat > 1 {
		writeTally(summaryOut, tally, repeat)
	}
	a.logger.Info("simulation complete", zap.Int("runs", max(repeat, 1)), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (a *app) playOnce(ctx context.Context, content *setup.Content, enc *roster.Encounter, src dice.Source, opts []simulation.Option) (*simulation.Summary, error) {
	built, err := setup.Build(content, enc, a.cfg, src, a.logger)
	if err != nil {
		return nil, err
	}
	defer built.Close()
	return simulation.NewRunner(built.Engine, built.Controller, opts...).Run(ctx)
}

func outcomeKey(s *simulation.Summary) string {
	if s.Outcome == simulation.OutcomeVictory {
		return s.Winner + " victory"
	}
	return string(s.Outcome)
}

func writeLog(w io.Writer, s *simulation.Summary) {
	for _, line := range s.Log {
		fmt.Fprintln(w, line)
	}
}

func writeSummary(w io.Writer, run int, s *simulation.Summary) {
	survivors := "none"
	if len(s.Survivors) > 0 {
		survivors = strings.Join(s.Survivors, ", ")
	}
	fmt.Fprintf(w, "run %d [%s]: %s after %d rounds; survivors: %s\n", run, s.ID, outcomeKey(s), s.Rounds, survivors)
}

func writeTally(w io.Writer, tally map[string]int, runs int) {
	keys := make([]string, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-16s %4d (%.1f%%)\n", k, tally[k], 100*float64(tally[k])/float64(runs))
	}
}
