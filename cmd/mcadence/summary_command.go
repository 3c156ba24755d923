package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingm4128/mcadence/internal/ai"
	"github.com/jingm4128/mcadence/internal/views"
)

func newSummaryCommand(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Generate an AI-written review of this week's statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*configFlag)
			if err != nil {
				return err
			}
			defer env.store.Close()

			client := env.aiClient()
			if client == nil {
				return fmt.Errorf("%s", ai.UserMessage(ai.ErrNoAPIKey))
			}

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

			markdown, err := client.Summarize(cmd.Context(), stats)
			if err != nil {
				return fmt.Errorf("%s", ai.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderMarkdown(markdown))
			return nil
		},
	}
	return cmd
}
