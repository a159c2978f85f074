// Package main is the entry point for the terminal quiz.
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"quiz-widget/internal/logger"
	"quiz-widget/internal/quiz"
	"quiz-widget/internal/tui"
	"quiz-widget/internal/widget"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		title   string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "quiz-tui",
		Short: "Play the quiz in the terminal",
		Long: `Play the quiz in the terminal.

Select an option with the arrow keys and space (or its number), then press
enter to lock it in and move on.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				return errors.New("quiz-tui needs an interactive terminal")
			}

			closer := logger.Init(logger.Options{File: logFile, MaxSize: 1, MaxBackups: 2, MaxAge: 30})
			defer closer.Close()

			model := tui.New(quiz.NewDefaultEngine, widget.NewHeader(title))
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return fmt.Errorf("failed to run quiz: %w", err)
			}

			m, ok := final.(tui.Model)
			if !ok {
				return nil
			}
			if err := m.Err(); err != nil {
				return err
			}
			if s := m.Session(); s.Finished {
				fmt.Fprintf(cmd.OutOrStdout(), "Final score: %d\n", s.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "hellno", "project title shown above the quiz")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}

func isTTY() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}
