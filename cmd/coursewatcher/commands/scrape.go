package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"CourseWatcher/internal/app"
	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/usecase"
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <course-url> [--html <saved-page.html>]",
		Short: "Extract one course and print {title: sections} as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			htmlPath, _ := cmd.Flags().GetString("html")
			cfg := loadConfig(cmd)

			title, data, err := usecase.ScrapeCourse(cmd.Context(), app.NewSource(cfg, htmlPath), args[0])
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(map[string]domain.CourseSnapshot{title: data}, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}
	cmd.Flags().String("html", "", "Parse a saved page instead of fetching the URL")
	return cmd
}
