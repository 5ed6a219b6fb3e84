package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dkptally/internal/adapters/catalog"
	app "dkptally/internal/app"
	"dkptally/internal/domain/ledger"
)

const weekLayout = "2006-01-02"

func weeklyCmd() *cobra.Command {
	var (
		csvPath     string
		showStreaks bool
	)

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Report per-week attendance from the saved run history",
		Long: `weekly buckets every active event into UTC weeks and prints one row per
player per week with their points and boss kills. Superseded events are
excluded, so overlapping re-submissions never double-count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			svc := app.New(catalog.New(rt.cfg.BaseDir), app.WithLogger(rt.log))
			rep, err := svc.Weekly(ctx)
			if err != nil {
				return err
			}
			if len(rep.Weeks) == 0 {
				fmt.Println("no active events in the run history")
				return nil
			}

			tw := table.NewWriter()
			tw.AppendHeader(table.Row{"Week", "Player", "DKP", "Bosses"})
			for _, week := range rep.Weeks {
				buckets := rep.ByWeek[week]
				for _, player := range rep.Players {
					bucket, ok := buckets[player]
					if !ok {
						continue
					}
					tw.AppendRow(table.Row{
						week.Format(weekLayout),
						player,
						bucket.Points,
						bossSummary(bucket.BossCounts, rep.Bosses),
					})
				}
			}

			if csvPath != "" {
				if err := os.WriteFile(csvPath, []byte(tw.RenderCSV()+"\n"), 0o644); err != nil {
					return fmt.Errorf("writing csv: %w", err)
				}
				fmt.Printf("wrote %s\n", csvPath)
			}
			tw.SetOutputMirror(os.Stdout)
			tw.Render()

			if showStreaks {
				renderStreaks(rep, rt.settings.ActivityAThreshold, rt.settings.ActivityAPlusThreshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the report to this file as CSV")
	cmd.Flags().BoolVar(&showStreaks, "streaks", false, "print consecutive-week activity streaks")

	return cmd
}

// bossSummary compacts one bucket's kill counts into "mord x2, necro x1",
// following the report's overall boss order.
func bossSummary(counts map[string]int, order []string) string {
	parts := make([]string, 0, len(counts))
	for _, boss := range order {
		if n := counts[boss]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", boss, n))
		}
	}
	return strings.Join(parts, ", ")
}

func renderStreaks(rep *ledger.WeeklyReport, thresholdA, thresholdAPlus int) {
	streaks := rep.Streaks(thresholdA, thresholdAPlus)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Player", fmt.Sprintf("A (%d+)", thresholdA), fmt.Sprintf("A+ (%d+)", thresholdAPlus)})
	for _, player := range rep.Players {
		s := streaks[player]
		tw.AppendRow(table.Row{player, s.A, s.APlus})
	}
	tw.Render()
}

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List the recorded runs, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}

			svc := app.New(catalog.New(rt.cfg.BaseDir), app.WithLogger(rt.log))
			runs, err := svc.Runs(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Run", "Created (UTC)", "From", "To", "Events", "Source"})
			for _, meta := range runs {
				tw.AppendRow(table.Row{
					meta.RunID,
					meta.CreatedUTC.Format("2006-01-02 15:04"),
					formatBound(meta.StartUTC),
					formatBound(meta.EndUTC),
					meta.EventCount,
					meta.SourcePath,
				})
			}
			tw.Render()
			return nil
		},
	}
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
