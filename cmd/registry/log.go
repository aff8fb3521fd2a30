package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rkstgr/papermake-sub000/renderlog"
)

var (
	logRecentLimit int
	logStatsDays   int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "query the render log",
}

var logRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "list recent render records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRenderLog(cmd.Context(), loadedConfig.RenderLog)
		if err != nil {
			return err
		}

		records, err := store.ListRecent(cmd.Context(), logRecentLimit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, r := range records {
			status := "ok"
			if !r.Success {
				status = "failed: " + r.ErrorText
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n", r.Timestamp.Format("2006-01-02T15:04:05Z"), r.ReferenceText, r.RenderID, r.DurationMS, status)
		}
		return nil
	},
}

var logStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print render volume, per-template, and duration analytics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRenderLog(cmd.Context(), loadedConfig.RenderLog)
		if err != nil {
			return err
		}

		var (
			volume    []renderlog.VolumePoint
			counts    []renderlog.TemplateCount
			durations []renderlog.DurationPoint
		)
		g, gctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			volume, err = store.VolumeOverTime(gctx, logStatsDays)
			return err
		})
		g.Go(func() error {
			var err error
			counts, err = store.PerTemplateCounts(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			durations, err = store.AvgDurationOverTime(gctx, logStatsDays)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		w := cmd.OutOrStdout()

		fmt.Fprintln(w, "render volume:")
		for _, v := range volume {
			fmt.Fprintf(w, "  %s\t%d\n", v.Date.Format("2006-01-02"), v.Renders)
		}

		fmt.Fprintln(w, "renders per template:")
		for _, c := range counts {
			fmt.Fprintf(w, "  %s\t%d\n", c.TemplateName, c.TotalRenders)
		}

		fmt.Fprintln(w, "average duration (successful renders):")
		for _, d := range durations {
			fmt.Fprintf(w, "  %s\t%.1fms\n", d.Date.Format("2006-01-02"), d.AvgDurationMS)
		}
		return nil
	},
}

func init() {
	logRecentCmd.Flags().IntVar(&logRecentLimit, "limit", 20, "maximum number of records to list")
	logStatsCmd.Flags().IntVar(&logStatsDays, "days", 30, "trailing window size in days")
	logCmd.AddCommand(logRecentCmd)
	logCmd.AddCommand(logStatsCmd)
}
