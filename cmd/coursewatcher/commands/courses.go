package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"CourseWatcher/internal/infrastructure/storage"
)

func newCoursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage the list of polled course URLs.",
	}
	cmd.AddCommand(newCoursesListCmd(), newCoursesAddCmd(), newCoursesRemoveCmd())
	return cmd
}

func courseList(cmd *cobra.Command) *storage.CourseListFile {
	return storage.NewCourseListFile(loadConfig(cmd).Files.CourseList)
}

func newCoursesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show configured course URLs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := courseList(cmd)
			urls, found, err := list.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case !found:
				fmt.Fprintf(out, "No courses configured (%s not found).\n", list.Path())
			case len(urls) == 0:
				fmt.Fprintln(out, "No courses configured.")
			default:
				for i, u := range urls {
					fmt.Fprintf(out, "%d. %s\n", i+1, u)
				}
			}
			return nil
		},
	}
}

func newCoursesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <course-url>",
		Short: "Add a course URL (http(s) with id=<digits>).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := courseList(cmd).Add(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s. Now tracking %d course(s).\n", strings.TrimSpace(args[0]), total)
			return nil
		},
	}
}

func newCoursesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <course-url>",
		Short: "Remove a course URL after confirmation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			out := cmd.OutOrStdout()

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				fmt.Fprintf(out, "Remove %s? [y/N]: ", url)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			total, err := courseList(cmd).Remove(cmd.Context(), url)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %s. %d course(s) remaining.\n", url, total)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
