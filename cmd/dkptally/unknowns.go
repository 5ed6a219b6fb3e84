package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dkptally/internal/adapters/catalog"
	app "dkptally/internal/app"
)

func unknownsCmd() *cobra.Command {
	var (
		timersPath string
		startStr   string
		endStr     string
		allEntries bool
		rosterFile string
		sheetID    string
		sheetRange string
	)

	cmd := &cobra.Command{
		Use:   "unknowns",
		Short: "Count the names a scoring pass would prompt for",
		Long: `unknowns dry-runs the pipeline up to name resolution and lists every
distinct token the roster and alias map cannot place. Useful before a
long interactive session to gauge how many prompts are coming.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			if timersPath == "" {
				timersPath = rt.settings.LastTimersPath
			}
			if timersPath == "" {
				return errors.New("no timers log: pass --timers or save one in settings.json")
			}
			lines, err := readLogLines(timersPath)
			if err != nil {
				return err
			}

			provider, err := rt.rosterProvider(rosterFile, sheetID, sheetRange)
			if err != nil {
				return err
			}
			start, end, useAll, err := rt.window(startStr, endStr, allEntries)
			if err != nil {
				return err
			}

			svc := app.New(catalog.New(rt.cfg.BaseDir),
				app.WithRoster(provider),
				app.WithLocation(rt.loc),
				app.WithLogger(rt.log),
			)

			count, tokens, err := svc.EstimateUnknown(ctx, app.Request{
				Lines:  lines,
				Start:  start,
				End:    end,
				UseAll: useAll,
			})
			if err != nil {
				return err
			}

			if count == 0 {
				fmt.Println("every name resolves, no prompts expected")
				return nil
			}
			fmt.Printf("%d unresolved names:\n", count)
			for _, tok := range tokens {
				fmt.Println("  " + tok)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&timersPath, "timers", "", "path to the raw timers log (default: last used)")
	cmd.Flags().StringVar(&startStr, "start", "", "window start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&endStr, "end", "", "window end date, YYYY-MM-DD (exclusive)")
	cmd.Flags().BoolVar(&allEntries, "all", false, "check every line regardless of date")
	cmd.Flags().StringVar(&rosterFile, "roster-file", "", "read the roster from a file, one name per line")
	cmd.Flags().StringVar(&sheetID, "sheet-id", "", "read the roster from this Google spreadsheet")
	cmd.Flags().StringVar(&sheetRange, "sheet-range", "", "roster range inside the spreadsheet")

	return cmd
}
