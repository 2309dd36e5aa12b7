// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package view implements "montage view": an interactive terminal
// viewer for timeline documents. The static renderers in
// lib/timelineui draw the lane strip and supply the theme, fuzzy
// matching, and markdown rendering; this package owns the bubbletea
// model around them.
package view

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/config"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// Command returns the "view" command that launches the interactive
// timeline viewer.
func Command() *cli.Command {
	var themeName string

	return &cli.Command{
		Name:    "view",
		Summary: "Interactive timeline viewer",
		Description: `Open a timeline document in an interactive terminal viewer.

The top of the screen draws the tracks as proportional lanes with the
selected node highlighted. Below it, the left pane lists the
composition hierarchy (j/k to move, h/l to collapse and expand) and
the right pane shows the selected node's ranges, media reference,
markers, and notes. Press / to fuzzy-jump to a node by name, Tab to
switch panes, and q to quit.`,
		Usage: "montage view <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "View a timeline",
				Command:     "montage view cut.mtl",
			},
			{
				Description: "View with the high contrast theme",
				Command:     "montage view cut.mtl --theme high-contrast",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("view", pflag.ContinueOnError)
			flagSet.StringVar(&themeName, "theme", "", "color theme (default: from config)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage view <file> [flags]")
			}

			t, err := document.ReadTimeline(args[0])
			if err != nil {
				return err
			}

			theme, err := resolveTheme(themeName)
			if err != nil {
				return err
			}

			model := NewModel(t, theme)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
			_, err = program.Run()
			return err
		},
	}
}

// resolveTheme picks the color theme: the --theme flag when given
// (unknown names are an error, unlike config where rendering should
// not fail over a cosmetic setting), otherwise the configured theme,
// otherwise the default.
func resolveTheme(flagName string) (timelineui.Theme, error) {
	if flagName != "" {
		theme, ok := timelineui.ThemeNamed(flagName)
		if !ok {
			return timelineui.Theme{}, fmt.Errorf("unknown theme %q (montage or high-contrast)", flagName)
		}
		return theme, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return timelineui.DefaultTheme, nil
	}
	if theme, ok := timelineui.ThemeNamed(cfg.Theme); ok {
		return theme, nil
	}
	return timelineui.DefaultTheme, nil
}
