// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/config"
	"github.com/montage-foundation/montage/lib/document"
	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

// NewCommand returns the "montage new" command.
func NewCommand() *cli.Command {
	var (
		name  string
		video int
		audio int
		rate  float64
		start string
	)
	return &cli.Command{
		Name:        "new",
		Summary:     "Scaffold an empty timeline document",
		Description: "New writes an empty timeline with numbered video and audio\ntracks (V1..Vn above A1..An). Track counts and the frame rate\ncome from configuration unless overridden; the global start time\nanchors the document's frame rate.",
		Usage:       "montage new <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "A timeline with the configured track layout",
				Command:     "montage new cut.mtl",
			},
			{
				Description: "Two video tracks at 30 fps, starting at one hour",
				Command:     "montage new cut.mtl --video 2 --rate 30 --start 01:00:00:00",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("new", pflag.ContinueOnError)
			flags.StringVar(&name, "name", "", "timeline name (default: the file name)")
			flags.IntVar(&video, "video", 0, "video track count (default: from config)")
			flags.IntVar(&audio, "audio", 0, "audio track count (default: from config)")
			flags.Float64Var(&rate, "rate", 0, "frame rate (default: from config)")
			flags.StringVar(&start, "start", "", "global start time (default: 00:00:00:00)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected the document path to create\n\nUsage: montage new <file> [flags]")
			}
			path := args[0]
			if err := ensureDocumentPath(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if video <= 0 {
				video = cfg.VideoTracks
			}
			if audio <= 0 {
				audio = cfg.AudioTracks
			}
			if rate <= 0 {
				rate = cfg.FrameRate
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			startTime := opentime.NewRationalTime(0, rate)
			if start != "" {
				startTime, err = cli.ParseTime(start, rate)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
			}

			t := timeline.NewTimeline(name)
			t.SetGlobalStartTime(startTime)
			for index := 1; index <= video; index++ {
				track := timeline.NewTrack(fmt.Sprintf("V%d", index), timeline.TrackKindVideo)
				if err := t.Tracks().AppendChild(track); err != nil {
					return err
				}
			}
			for index := 1; index <= audio; index++ {
				track := timeline.NewTrack(fmt.Sprintf("A%d", index), timeline.TrackKindAudio)
				if err := t.Tracks().AppendChild(track); err != nil {
					return err
				}
			}

			if err := document.Write(path, t, 2); err != nil {
				return err
			}
			logger.Debug("scaffolded timeline", "path", path, "video", video, "audio", audio, "rate", rate)
			fmt.Printf("Created %s: %d video, %d audio @ %g fps\n", path, video, audio, rate)
			return nil
		},
	}
}
