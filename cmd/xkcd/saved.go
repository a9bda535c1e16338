package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var savedLimit int

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved comics",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved comics, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		comics, err := e.repo.List(cmd.Context(), savedLimit)
		if err != nil {
			return err
		}
		if len(comics) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved comics.")
			return nil
		}
		printSummary(cmd.OutOrStdout(), comics, e.cfg.Locale)
		return nil
	},
}

var savedAddCmd = &cobra.Command{
	Use:   "add <num>...",
	Short: "Fetch comics and save them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nums := make([]int, 0, len(args))
		for _, arg := range args {
			num, err := parseNum(arg)
			if err != nil {
				return err
			}
			nums = append(nums, num)
		}

		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		ctrl := e.controller()
		if err := ctrl.FetchByNumbers(cmd.Context(), nums); err != nil {
			return err
		}
		state := ctrl.Snapshot()
		if err := e.repo.Save(cmd.Context(), state.SearchResults...); err != nil {
			return err
		}
		for _, c := range state.SearchResults {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved #%d %s\n", c.Num, c.DisplayTitle())
		}
		if state.SearchFailures > 0 {
			return fmt.Errorf("%d of %d comics could not be fetched", state.SearchFailures, len(nums))
		}
		return nil
	},
}

var savedRmCmd = &cobra.Command{
	Use:     "rm <num>",
	Aliases: []string{"remove"},
	Short:   "Remove a saved comic",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := parseNum(args[0])
		if err != nil {
			return err
		}
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.repo.Delete(cmd.Context(), num); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d from saved comics\n", num)
		return nil
	},
}

var savedSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search saved comics offline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		comics, err := e.repo.Search(cmd.Context(), strings.Join(args, " "), savedLimit)
		if err != nil {
			return err
		}
		if len(comics) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No comic found.")
			return nil
		}
		printSummary(cmd.OutOrStdout(), comics, e.cfg.Locale)
		return nil
	},
}

func init() {
	savedCmd.PersistentFlags().IntVarP(&savedLimit, "limit", "n", 100, "maximum number of comics to print")
	savedCmd.AddCommand(savedListCmd, savedAddCmd, savedRmCmd, savedSearchCmd)
	rootCmd.AddCommand(savedCmd)
}
