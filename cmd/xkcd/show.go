package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var showExplain bool

var showCmd = &cobra.Command{
	Use:   "show [num]",
	Short: "Print a comic, the newest when no number is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()

		ctrl := e.controller()
		if len(args) == 0 {
			err = ctrl.FetchNewest(cmd.Context())
		} else {
			var num int
			if num, err = parseNum(args[0]); err != nil {
				return err
			}
			err = ctrl.FetchByNumber(cmd.Context(), num)
		}
		if err != nil {
			return err
		}
		comic, ok := ctrl.Current()
		if !ok {
			return fmt.Errorf("no comic loaded")
		}
		printComic(cmd.OutOrStdout(), comic, e.cfg.Locale)

		if showExplain {
			text, err := ctrl.ResolveExplanation(cmd.Context(), comic.Num)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printExplanation(cmd.OutOrStdout(), text)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showExplain, "explain", "e", false, "also print the explanation")
	rootCmd.AddCommand(showCmd)
}

func parseNum(s string) (int, error) {
	num, err := strconv.Atoi(s)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("invalid comic number: %q", s)
	}
	return num, nil
}
