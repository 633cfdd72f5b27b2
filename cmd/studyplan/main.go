package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"studyplan/internal/config"
	"studyplan/internal/planner"
	"studyplan/internal/reminder"
	"studyplan/internal/storage"
	"studyplan/internal/ui"
)

var Version = "dev"

type app struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "studyplan",
		Short:         "Track study tasks in a list or a week grid",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfigPath+" or the user config dir)")

	root.AddCommand(
		a.listCmd(),
		a.weekCmd(),
		a.addCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.remindCmd(),
	)
	return root
}

func (a *app) loadConfig() (config.Config, error) {
	path := a.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// open wires storage and the reminder scheduler into a planner. A nil
// notifier leaves reminders off.
func (a *app) open(ctx context.Context, cfg config.Config, n reminder.Notifier) (*planner.Planner, error) {
	repo, err := storage.Open(cfg.Storage, cfg.DBPath, cfg.JSONPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	var sched *reminder.Scheduler
	if n != nil {
		sched = reminder.NewScheduler(n,
			reminder.WithLead(cfg.ReminderLead()),
			reminder.WithLogger(log.Default()))
	}
	p, err := planner.New(ctx, repo, sched)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to start planner: %w", err)
	}
	return p, nil
}

func (a *app) runTUI(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "studyplan")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	notifier := reminder.NewChannel(16, cfg.Reminders.Enabled)
	p, err := a.open(ctx, cfg, notifier)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := ui.Run(p, cfg, notifier); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
