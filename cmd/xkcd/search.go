package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the archive by title, alt text and transcript",
	Long: `Search the archive through the hosted search index. A query that is
a comic number prints that comic instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		ctrl := e.controller()
		if err := ctrl.FetchBySearchQuery(cmd.Context(), strings.Join(args, " ")); err != nil {
			return err
		}
		state := ctrl.Snapshot()
		printSummary(cmd.OutOrStdout(), state.SearchResults, e.cfg.Locale)
		if state.SearchFailures > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d comics could not be fetched\n", state.SearchFailures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
