package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"CourseWatcher/internal/infrastructure/storage"
)

func newCookieCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookie",
		Short: "Inspect or replace the stored MoodleSession cookie.",
	}
	cmd.AddCommand(newCookieShowCmd(), newCookieSetCmd())
	return cmd
}

func credentials(cmd *cobra.Command) *storage.CredentialFile {
	return storage.NewCredentialFile(loadConfig(cmd).Files.Cookie)
}

func newCookieShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored session cookie, masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := credentials(cmd).Session(cmd.Context())
			if err != nil {
				return err
			}
			if session == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No MoodleSession cookie set.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "MoodleSession: %s\n", storage.Mask(session))
			return nil
		},
	}
}

func newCookieSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <cookie-json>",
		Short: `Store a full cookie object, e.g. {"name":"MoodleSession","value":"...","domain":"..."}.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credentials(cmd).Set(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "MoodleSession cookie saved.")
			return nil
		},
	}
}
