package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingm4128/mcadence/internal/export"
)

func newImportCommand(configFlag *string) *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Restore from a JSON backup, replacing or merging with current data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := export.ImportMode(modeFlag)
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			backup, err := export.ParseBackup(raw)
			if err != nil {
				return err
			}

			env, err := openEnv(*configFlag)
			if err != nil {
				return err
			}
			defer env.store.Close()

			ctx := context.Background()
			current := env.store.LoadState(ctx)
			merged, err := export.Merge(current, backup, mode)
			if err != nil {
				return err
			}
			if err := env.store.SaveState(ctx, merged); err != nil {
				return err
			}
			if len(merged.Categories) > 0 {
				if err := env.store.SaveCategories(ctx, merged.Categories); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s): %d items, %d log entries\n",
				args[0], mode, len(merged.Items), len(merged.Actions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", string(export.ImportCombine), "import mode: combine or overwrite")
	return cmd
}
