package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <num>",
	Short: "Print the community explanation of a comic",
	Args:  cobra.ExactArgs(1),
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

		ctrl := e.controller()
		if err := ctrl.FetchByNumber(cmd.Context(), num); err != nil {
			return err
		}
		text, err := ctrl.ResolveExplanation(cmd.Context(), num)
		if err != nil {
			return err
		}
		comic, _ := ctrl.Current()
		fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n", comic.Num, comic.DisplayTitle())
		printExplanation(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
