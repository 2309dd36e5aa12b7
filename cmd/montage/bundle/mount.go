// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/bundle"
	bundlefuse "github.com/montage-foundation/montage/lib/bundle/fuse"
)

func mountCommand() *cli.Command {
	var (
		identityPath string
		allowOther   bool
	)
	return &cli.Command{
		Name:        "mount",
		Summary:     "Mount a bundle as a read-only filesystem",
		Description: "Mount serves a bundle through FUSE: the timeline document at\nthe mountpoint root and media under media/, readable by any tool\nwithout extracting the bundle. Entries are decompressed lazily on\nfirst open, so mounting is instant regardless of bundle size.\n\nThe command blocks until interrupted (Ctrl-C) or the filesystem\nis unmounted externally with fusermount -u.",
		Usage:       "montage bundle mount <bundle> <mountpoint> [flags]",
		Examples: []cli.Example{
			{
				Description: "Mount and open the cut in a player",
				Command:     "montage bundle mount cut.mtz /mnt/cut",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("mount", pflag.ContinueOnError)
			flags.StringVar(&identityPath, "identity", "", "age identity file for encrypted bundles (\"-\" reads stdin)")
			flags.BoolVar(&allowOther, "allow-other", false, "let other users read the mount (needs user_allow_other in /etc/fuse.conf)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected a bundle and a mountpoint\n\nUsage: montage bundle mount <bundle> <mountpoint> [flags]")
			}

			reader, err := openBundle(args[0], identityPath)
			if err != nil {
				return err
			}
			defer reader.Close()

			server, err := bundlefuse.Mount(bundlefuse.Options{
				Mountpoint: args[1],
				Reader:     reader,
				AllowOther: allowOther,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Mounted %s at %s. Press Ctrl-C to unmount.\n",
				bundle.FormatID(reader.ID()), args[1])

			// The server exits on external unmount (fusermount -u);
			// an interrupt unmounts it here.
			done := make(chan struct{})
			go func() {
				server.Wait()
				close(done)
			}()

			select {
			case <-ctx.Done():
				if err := server.Unmount(); err != nil {
					return fmt.Errorf("unmounting %s: %w", args[1], err)
				}
				<-done
			case <-done:
			}
			return nil
		},
	}
}
