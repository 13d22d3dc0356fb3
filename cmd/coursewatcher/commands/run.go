package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"CourseWatcher/internal/app"
	"CourseWatcher/internal/logging"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll all configured courses on the configured schedule until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			application := app.New(cmd.Context(), cfg, cmd.OutOrStdout())
			defer closeApp(application)

			if err := application.Run(cmd.Context()); err != nil {
				application.Logger().Log(context.Background(), logging.LevelCritical, "watcher stopped", "err", err)
				return err
			}
			return nil
		},
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single polling cycle and exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			application := app.New(cmd.Context(), cfg, cmd.OutOrStdout())
			defer closeApp(application)

			_, err := application.RunOnce(cmd.Context())
			return err
		},
	}
}

func closeApp(application *app.Application) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Close(ctx); err != nil {
		application.Logger().Error("shutdown incomplete", "err", err)
	}
}
