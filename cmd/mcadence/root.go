package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jingm4128/mcadence/internal/ai"
	"github.com/jingm4128/mcadence/internal/clock"
	"github.com/jingm4128/mcadence/internal/config"
	"github.com/jingm4128/mcadence/internal/scheduler"
	"github.com/jingm4128/mcadence/internal/storage"
	"github.com/jingm4128/mcadence/internal/update"
)

const apiKeyEnv = "MCADENCE_API_KEY"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "mcadence",
		Short:         "Terminal tracker for daily routines, goals, and weekly time budgets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(configFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", config.DefaultConfigFileName, "configuration file path")

	rootCmd.AddCommand(newExportCommand(&configFlag))
	rootCmd.AddCommand(newImportCommand(&configFlag))
	rootCmd.AddCommand(newStatsCommand(&configFlag))
	rootCmd.AddCommand(newSummaryCommand(&configFlag))
	rootCmd.AddCommand(newResetCommand(&configFlag))

	return rootCmd
}

// appEnv holds everything a subcommand needs after bootstrap.
type appEnv struct {
	cfg   config.Config
	store *storage.Store
	clk   *clock.Clock
}

func openEnv(configPath string) (*appEnv, error) {
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	settings := store.LoadSettings(context.Background())
	weekStart := cfg.WeekStartDay
	if settings.WeekStartDay >= 0 && settings.WeekStartDay <= 6 {
		weekStart = settings.WeekStartDay
	}
	clk, err := clock.New(cfg.Timezone, weekStart)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &appEnv{cfg: cfg, store: store, clk: clk}, nil
}

func (e *appEnv) aiClient() *ai.Client {
	settings := e.store.LoadAISettings(context.Background())
	if settings.APIKey == "" {
		settings.APIKey = os.Getenv(apiKeyEnv)
	}
	if settings.APIKey == "" {
		return nil
	}
	return ai.NewClient(ai.Config{
		Provider: settings.Provider,
		APIKey:   settings.APIKey,
		Model:    settings.Model,
	})
}

func runApp(configPath string) error {
	env, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer env.store.Close()

	ctx := context.Background()
	settings := env.store.LoadSettings(ctx)
	st := env.store.LoadState(ctx)
	if len(st.Categories) == 0 {
		st.Categories = env.store.LoadCategories(ctx)
	}

	saver := storage.NewDebouncer(env.store, time.Duration(env.cfg.DebounceMillis)*time.Millisecond)
	engine := scheduler.NewEngine(16)
	engine.Start()
	defer engine.Stop()

	m := update.NewModel(update.Runtime{
		Clock:     env.clk,
		Store:     env.store,
		Saver:     saver,
		Engine:    engine,
		Settings:  settings,
		AIClient:  env.aiClient(),
		Initial:   st,
		ActiveTab: env.store.LoadActiveTab(ctx),
	})

	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("mcadence failed: %w", err)
	}
	return saver.Flush()
}
