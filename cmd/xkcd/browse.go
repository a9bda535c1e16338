package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glabrego/xkcd-cli/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [num]",
	Short: "Start the interactive browser, optionally at a comic",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := 0
		if len(args) == 1 {
			num, err := parseNum(args[0])
			if err != nil {
				return err
			}
			start = num
		}
		return runBrowse(cmd.Context(), start)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(ctx context.Context, start int) error {
	e, err := setup(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	model := tui.NewModel(e.controller(), tui.Options{
		Library:    e.repo,
		Images:     e.http,
		Locale:     e.cfg.Locale,
		Log:        e.log,
		StartComic: start,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	e.log.Info("browser closed")
	return nil
}
