package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dkptally/internal/adapters/catalog"
	rosterfeed "dkptally/internal/adapters/roster"
	app "dkptally/internal/app"
	"dkptally/internal/domain/resolve"
	"dkptally/internal/domain/sanitize"
	"dkptally/internal/domain/validate"
)

const dateLayout = "2006-01-02"

func calcCmd() *cobra.Command {
	var (
		timersPath string
		startStr   string
		endStr     string
		allEntries bool
		rosterFile string
		sheetID    string
		sheetRange string
		showCounts bool
		save       bool
		assumeYes  bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Score a raid log and report point totals",
		Long: `calc runs the full pipeline over a timers log: sanitize, clip to the
date window, validate, resolve unknown names and tally points. Unknown
names prompt interactively unless --yes discards them. With --save the
scored events are appended to the run history, superseding active events
from earlier runs inside the same window.`,
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

			var resolver resolve.Func = resolve.Discard
			if !assumeYes {
				resolver = newPromptResolver(os.Stdin, os.Stdout)
			}

			svc := app.New(catalog.New(rt.cfg.BaseDir),
				app.WithRoster(provider),
				app.WithResolver(resolver),
				app.WithLocation(rt.loc),
				app.WithLogger(rt.log),
			)

			res, err := svc.Calculate(ctx, app.Request{
				Lines:  lines,
				Start:  start,
				End:    end,
				UseAll: useAll,
			})
			if err != nil {
				return err
			}
			if res.Errors.Any() {
				renderValidationErrors(res.Errors)
				return errors.New("validation failed, fix the log and rerun")
			}

			renderTotals(res)
			if showCounts {
				renderBossCounts(res)
			}

			if save {
				runStart, runEnd := saveWindow(res, start, end)
				meta, err := svc.SaveRun(ctx, res, runStart, runEnd, timersPath)
				if err != nil {
					return err
				}
				fmt.Printf("saved run %s with %d events\n", meta.RunID, meta.EventCount)
			}

			rt.settings.LastTimersPath = timersPath
			if cmd.Flags().Changed("start") {
				rt.settings.StartDate = startStr
			}
			if cmd.Flags().Changed("end") {
				rt.settings.EndDate = endStr
			}
			if cmd.Flags().Changed("all") {
				rt.settings.UseAllEntries = allEntries
			}
			if cmd.Flags().Changed("roster-file") {
				rt.settings.RosterFile = rosterFile
			}
			if cmd.Flags().Changed("sheet-id") {
				rt.settings.SpreadsheetID = sheetID
			}
			if cmd.Flags().Changed("sheet-range") {
				rt.settings.RangeName = sheetRange
			}
			rt.saveSettings(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&timersPath, "timers", "", "path to the raw timers log (default: last used)")
	cmd.Flags().StringVar(&startStr, "start", "", "window start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&endStr, "end", "", "window end date, YYYY-MM-DD (exclusive)")
	cmd.Flags().BoolVar(&allEntries, "all", false, "score every line regardless of date")
	cmd.Flags().StringVar(&rosterFile, "roster-file", "", "read the roster from a file, one name per line")
	cmd.Flags().StringVar(&sheetID, "sheet-id", "", "read the roster from this Google spreadsheet")
	cmd.Flags().StringVar(&sheetRange, "sheet-range", "", "roster range inside the spreadsheet, e.g. \"DKP Sheet!B3:B\"")
	cmd.Flags().BoolVar(&showCounts, "counts", false, "also print the per-player boss kill matrix")
	cmd.Flags().BoolVar(&save, "save", false, "append the scored events to the run history")
	cmd.Flags().BoolVar(&assumeYes, "yes", false, "never prompt; discard every unresolved name")

	return cmd
}

// readLogLines loads a timers log and splits it into raw lines.
func readLogLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timers log: %w", err)
	}
	return strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n"), nil
}

// rosterProvider picks the roster source. Explicit flags win over the
// settings document; a file source wins over a spreadsheet.
func (rt *runtime) rosterProvider(rosterFile, sheetID, sheetRange string) (rosterfeed.Provider, error) {
	switch {
	case rosterFile != "":
		return rosterfeed.NewFileProvider(rosterFile), nil
	case sheetID != "":
		if sheetRange == "" {
			sheetRange = rt.settings.RangeName
		}
		return rosterfeed.NewSheetProvider(sheetID, sheetRange, rosterfeed.WithLogger(rt.log)), nil
	case rt.settings.RosterFile != "":
		return rosterfeed.NewFileProvider(rt.settings.RosterFile), nil
	case rt.settings.SpreadsheetID != "":
		return rosterfeed.NewSheetProvider(rt.settings.SpreadsheetID, rt.settings.RangeName, rosterfeed.WithLogger(rt.log)), nil
	default:
		return nil, errors.New("no roster source: pass --roster-file or --sheet-id, or set one in settings.json")
	}
}

// window resolves the scored date range from flags and settings. Without
// an explicit range the settings window applies; when that is empty too,
// the last seven days ending now.
func (rt *runtime) window(startStr, endStr string, allFlag bool) (start, end time.Time, useAll bool, err error) {
	if startStr == "" && endStr == "" {
		start, end, err = rt.settings.Window(rt.loc)
		if err != nil {
			return start, end, false, err
		}
	} else {
		if startStr != "" {
			start, err = time.ParseInLocation(dateLayout, startStr, rt.loc)
			if err != nil {
				return start, end, false, fmt.Errorf("invalid --start: %w", err)
			}
		}
		if endStr != "" {
			end, err = time.ParseInLocation(dateLayout, endStr, rt.loc)
			if err != nil {
				return start, end, false, fmt.Errorf("invalid --end: %w", err)
			}
		}
	}

	useAll = allFlag || (startStr == "" && endStr == "" && rt.settings.UseAllEntries)
	if !useAll {
		if end.IsZero() {
			end = time.Now().In(rt.loc)
		}
		if start.IsZero() {
			start = end.Add(-sanitize.DefaultWindow)
		}
	}
	return start, end, useAll, nil
}

// saveWindow widens a zero-valued bound to cover the scored events, so
// --all runs still supersede exactly the span they scored.
func saveWindow(res *app.Result, start, end time.Time) (time.Time, time.Time) {
	lo, hi := start, end
	for _, ev := range res.Events {
		if ev.EventTime.IsZero() {
			continue
		}
		if lo.IsZero() || ev.EventTime.Before(lo) {
			lo = ev.EventTime
		}
		if hi.IsZero() || ev.EventTime.After(hi) {
			hi = ev.EventTime
		}
	}
	return lo, hi
}

func renderTotals(res *app.Result) {
	fmt.Printf("%d lines scored, first %q, last %q\n",
		res.Sanity.TotalLines, res.Sanity.FirstEntry, res.Sanity.LastEntry)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"#", "Player", "DKP"})
	for i, t := range res.Totals {
		tw.AppendRow(table.Row{i + 1, t.Name, t.Points})
	}
	tw.Render()

	if len(res.BossList) > 0 {
		fmt.Println("bosses:", strings.Join(res.BossList, ", "))
	}
}

func renderBossCounts(res *app.Result) {
	if len(res.BossList) == 0 {
		return
	}
	header := table.Row{"Player"}
	for _, b := range res.BossList {
		header = append(header, b)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(header)
	for _, t := range res.Totals {
		row := table.Row{t.Name}
		counts := res.BossCounts[t.Name]
		for _, b := range res.BossList {
			if n := counts[b]; n > 0 {
				row = append(row, n)
			} else {
				row = append(row, "")
			}
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func renderValidationErrors(errs *validate.Errors) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Problem", "Lines"})
	for _, cat := range errs.Categories() {
		tw.AppendRow(table.Row{cat.Name, joinLineNumbers(cat.Lines)})
	}
	tw.Render()

	if len(errs.UnknownBosses) == 0 {
		return
	}
	bosses := make([]string, 0, len(errs.UnknownBosses))
	for b := range errs.UnknownBosses {
		bosses = append(bosses, b)
	}
	sort.Strings(bosses)

	bt := table.NewWriter()
	bt.SetOutputMirror(os.Stdout)
	bt.AppendHeader(table.Row{"Unknown Boss", "Lines"})
	for _, b := range bosses {
		bt.AppendRow(table.Row{b, joinLineNumbers(errs.UnknownBosses[b])})
	}
	bt.Render()
}

func joinLineNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
