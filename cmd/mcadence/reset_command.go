package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(configFlag *string) *cobra.Command {
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Permanently delete all stored data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yesFlag {
				return fmt.Errorf("reset deletes everything; re-run with --yes to confirm")
			}
			env, err := openEnv(*configFlag)
			if err != nil {
				return err
			}
			defer env.store.Close()

			if err := env.store.Reset(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yesFlag, "yes", false, "confirm the reset")
	return cmd
}
