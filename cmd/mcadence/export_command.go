package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jingm4128/mcadence/internal/export"
)

func newExportCommand(configFlag *string) *cobra.Command {
	var outFlag string
	var csvDirFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup (and optionally CSV files) of all data",
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

			backup := export.NewBackup(st, now)
			raw, err := export.MarshalBackup(backup)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outFlag, append(raw, '\n'), 0o644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d items, %d log entries)\n", outFlag, len(st.Items), len(st.Actions))

			if csvDirFlag == "" {
				return nil
			}
			if err := os.MkdirAll(csvDirFlag, 0o755); err != nil {
				return err
			}
			if err := writeCSVFile(filepath.Join(csvDirFlag, "items.csv"), func(f *os.File) error {
				return export.WriteItemsCSV(f, st.Items)
			}); err != nil {
				return err
			}
			if err := writeCSVFile(filepath.Join(csvDirFlag, "actions.csv"), func(f *os.File) error {
				return export.WriteActionsCSV(f, st.Actions)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n",
				filepath.Join(csvDirFlag, "items.csv"), filepath.Join(csvDirFlag, "actions.csv"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "mcadence-backup.json", "backup file path")
	cmd.Flags().StringVar(&csvDirFlag, "csv", "", "also write items.csv and actions.csv into this directory")
	return cmd
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
