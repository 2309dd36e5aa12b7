// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/timeline"
	"github.com/montage-foundation/montage/lib/timelineui"
)

// CatCommand returns the "montage cat" command.
func CatCommand() *cli.Command {
	var (
		notes bool
		width int
	)
	return &cli.Command{
		Name:        "cat",
		Summary:     "Print a timeline document",
		Description: "Cat prints a document's source text. Text documents print as\nwritten, comments included; binary documents print as indented\nJSON. On a terminal the output is syntax highlighted.\n\nWith --notes, cat instead collects the editorial notes: \"notes\"\nmetadata on the timeline or any item, and marker comments. Notes\nare markdown and render styled.",
		Usage:       "montage cat <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Print a document",
				Command:     "montage cat cut.mtl",
			},
			{
				Description: "Read the editorial notes",
				Command:     "montage cat cut.mtl --notes",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("cat", pflag.ContinueOnError)
			flags.BoolVar(&notes, "notes", false, "print editorial notes instead of source")
			flags.IntVar(&width, "width", 0, "render width (default: terminal width)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one timeline document\n\nUsage: montage cat <file> [flags]")
			}
			if notes {
				t, err := document.ReadTimeline(args[0])
				if err != nil {
					return err
				}
				return printNotes(t, displayTheme(), displayWidth(width))
			}
			return printSource(args[0])
		},
	}
}

// printSource writes the document text to stdout, highlighted when
// stdout is a terminal.
func printSource(path string) error {
	var source string
	if strings.HasSuffix(path, document.ExtBinary) {
		root, err := document.Read(path)
		if err != nil {
			return err
		}
		data, err := document.WriteBytes(root, 2)
		if err != nil {
			return err
		}
		source = string(data)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source = string(data)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		source = timelineui.HighlightSource(source, "json")
	}
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	_, err := fmt.Print(source)
	return err
}

// printNotes renders the document's notes: the timeline's own "notes"
// metadata, then each item's, then marker comments, in document
// order.
func printNotes(t *timeline.Timeline, theme timelineui.Theme, width int) error {
	var sections []string
	addNote := func(label, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		rendered := timelineui.RenderMarkdown(text, theme, width)
		sections = append(sections, fmt.Sprintf("── %s ──\n\n%s", label, rendered))
	}
	addMarkers := func(label string, item timeline.Item) {
		for _, marker := range item.Markers() {
			addNote(fmt.Sprintf("%s, marker %q %s", label, marker.Name(), marker.MarkedRange()), marker.Comment())
		}
	}

	timelineLabel := "timeline " + quotedName(t.Name())
	if note, ok := t.Metadata()["notes"].(string); ok {
		addNote(timelineLabel, note)
	}
	addMarkers(timelineLabel, t.Tracks())

	items, err := timeline.FindChildren[timeline.Item](t.Tracks(), nil, false)
	if err != nil {
		return err
	}
	for _, item := range items {
		if note, ok := item.Metadata()["notes"].(string); ok {
			addNote(itemLabel(item), note)
		}
		addMarkers(itemLabel(item), item)
	}

	if len(sections) == 0 {
		fmt.Println("No notes found.")
		return nil
	}
	fmt.Println(strings.Join(sections, "\n\n"))
	return nil
}

func itemLabel(item timeline.Item) string {
	kind := "item"
	switch item.(type) {
	case *timeline.Clip:
		kind = "clip"
	case *timeline.Gap:
		kind = "gap"
	case *timeline.Track:
		kind = "track"
	case *timeline.Stack:
		kind = "stack"
	}
	return kind + " " + quotedName(item.Name())
}

func quotedName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return fmt.Sprintf("%q", name)
}
