// Package commands implements the coursewatcher CLI.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CourseWatcher/internal/config"
)

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "coursewatcher",
		Short:         "coursewatcher polls Moodle course pages and announces new items.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (defaults to $COURSEWATCHER_CONFIG)")

	root.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		newScrapeCmd(),
		newCoursesCmd(),
		newCookieCmd(),
	)
	return root
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func loadConfig(cmd *cobra.Command) config.Config {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
