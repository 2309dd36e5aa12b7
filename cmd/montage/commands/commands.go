// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete montage CLI command tree. The
// editorial verbs (inspect, find, trim) are top-level commands from
// per-area packages; media and bundle group their subcommands under
// one name.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	bundlecmd "github.com/montage-foundation/montage/cmd/montage/bundle"
	"github.com/montage-foundation/montage/cmd/montage/cli"
	editcmd "github.com/montage-foundation/montage/cmd/montage/edit"
	inspectcmd "github.com/montage-foundation/montage/cmd/montage/inspect"
	mediacmd "github.com/montage-foundation/montage/cmd/montage/media"
	querycmd "github.com/montage-foundation/montage/cmd/montage/query"
	viewcmd "github.com/montage-foundation/montage/cmd/montage/view"
	"github.com/montage-foundation/montage/lib/version"
)

// Root builds and returns the complete montage CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "montage",
		Description: `Montage: hierarchical editorial timelines.

Inspect, query, and edit cut documents (.mtl text, .mtlb binary),
keep track of the media they reference, and pack a cut with its
footage into a single portable bundle.`,
		Subcommands: []*cli.Command{
			inspectcmd.InspectCommand(),
			inspectcmd.StatCommand(),
			inspectcmd.CatCommand(),
			querycmd.FindCommand(),
			querycmd.AtCommand(),
			viewcmd.Command(),
			editcmd.NewCommand(),
			editcmd.ConvertCommand(),
			editcmd.TrimCommand(),
			editcmd.FlattenCommand(),
			mediacmd.Command(),
			bundlecmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("montage %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Summarize a cut (tracks, clips, duration)",
				Command:     "montage stat cut.mtl",
			},
			{
				Description: "Render the composition tree",
				Command:     "montage inspect cut.mtl",
			},
			{
				Description: "Browse the cut interactively",
				Command:     "montage view cut.mtl",
			},
			{
				Description: "Every clip in the cut",
				Command:     "montage find cut.mtl --type clip",
			},
			{
				Description: "What plays four seconds in",
				Command:     "montage at cut.mtl 4s",
			},
			{
				Description: "Scaffold a 24 fps document with two video tracks",
				Command:     "montage new cut.mtl --rate 24 --video 2",
			},
			{
				Description: "Keep only the first minute",
				Command:     "montage trim cut.mtl --duration 60s -o short.mtl",
			},
			{
				Description: "Report media files the cut references but cannot read",
				Command:     "montage media missing cut.mtl",
			},
			{
				Description: "Pack the cut and its footage for handoff",
				Command:     "montage bundle create cut.mtl -o review.mtz",
			},
		},
	}
}
