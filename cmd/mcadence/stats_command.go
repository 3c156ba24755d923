package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jingm4128/mcadence/internal/ai"
)

func newStatsCommand(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print this week's productivity statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*configFlag)
			if err != nil {
				return err
			}
			defer env.store.Close()

			ctx := context.Background()
			st := env.store.LoadState(ctx)
			if len(st.Categories) == 0 {
				st.Categories = env.store.LoadCategories(ctx)
			}
			now := env.clk.Now()
			stats := ai.BuildStats(st, ai.Period{
				Start:    env.clk.WeekStart(now),
				End:      env.clk.WeekEnd(now),
				Label:    "this week",
				Timezone: env.clk.Location().String(),
			}, now)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "week of %s (%s)\n\n",
				stats.Period.Start.Format("2006-01-02"), stats.Period.Timezone)

			fmt.Fprintln(out, renderTable(
				[]string{"metric", "value"},
				[][]string{
					{"items", strconv.Itoa(stats.TotalItems)},
					{"checklist done", strconv.Itoa(stats.CompletedChecklist)},
					{"checklist missed", strconv.Itoa(stats.MissedChecklist)},
					{"tracked minutes", strconv.Itoa(stats.TotalTrackedMinutes)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))

			if len(stats.MinutesByCategory) > 0 {
				names := make([]string, 0, len(stats.MinutesByCategory))
				for name := range stats.MinutesByCategory {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, strconv.Itoa(stats.MinutesByCategory[name])})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"category", "minutes"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			if len(stats.StaleItems) > 0 {
				rows := make([][]string, 0, len(stats.StaleItems))
				for _, item := range stats.StaleItems {
					rows = append(rows, []string{item.Title, item.Tab, strconv.Itoa(item.DaysUntouched)})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"stale item", "tab", "days untouched"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
			}
			return nil
		},
	}
	return cmd
}
