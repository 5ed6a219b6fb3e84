package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dkptally/internal/adapters/catalog"
	rosterfeed "dkptally/internal/adapters/roster"
	"dkptally/internal/testlog"
	"dkptally/pkg/logger"
)

func genCmd() *cobra.Command {
	var (
		outPath    string
		count      int
		seed       int64
		rosterFile string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic raid log for rehearsal",
		Long: `gen writes a timers log full of realistic noise: rotating date grammars,
boss typos, modifier suffixes, subtraction shapes and misspelled names.
Bosses come from the points table and names from the roster file when
available, so the output exercises the same paths as real logs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			cfg := testlog.Config{
				Lines:  count,
				Seed:   seed,
				Bosses: catalogBosses(rt.cfg.BaseDir),
			}
			if rosterFile == "" {
				rosterFile = rt.settings.RosterFile
			}
			if rosterFile != "" {
				names, err := rosterfeed.NewFileProvider(rosterFile).Names(ctx)
				if err != nil {
					rt.log.Warn(ctx, "roster unavailable, using built-in names", logger.Error(err))
				} else {
					cfg.Names = names
				}
			}

			g := testlog.New(cfg)
			text := strings.Join(g.Lines(), "\n") + "\n"

			if outPath == "" {
				fmt.Print(text)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
				return fmt.Errorf("writing log: %w", err)
			}
			st := g.Stats()
			fmt.Printf("wrote %d lines to %s (%d subtraction, %d modifiers, %d misspelled)\n",
				st.Lines, outPath, st.NotLines, st.Modifiers, st.Misspelled)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the log to this file instead of stdout")
	cmd.Flags().IntVar(&count, "lines", 50, "number of lines to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed; 0 derives one from the clock")
	cmd.Flags().StringVar(&rosterFile, "roster-file", "", "draw names from this roster file")

	return cmd
}

// catalogBosses draws the boss pool from the points table, falling back
// to the generator's built-ins when no table is readable. Family bases
// are replaced by concrete variants the table can actually score.
func catalogBosses(baseDir string) []string {
	store, err := catalog.New(baseDir).PointsStore()
	if err != nil {
		return nil
	}

	var bosses []string
	for _, b := range store.Bosses() {
		if _, ok := store.Points(b); ok {
			bosses = append(bosses, b)
		}
	}
	for _, v := range []string{"rings2x5", "rings3x6", "legacy70.5", "legacy155.6", "root", "root2"} {
		if _, ok := store.Points(v); ok {
			bosses = append(bosses, v)
		}
	}
	return bosses
}
