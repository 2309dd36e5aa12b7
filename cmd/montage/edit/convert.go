// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/document"
)

// ConvertCommand returns the "montage convert" command.
func ConvertCommand() *cli.Command {
	var indent int
	return &cli.Command{
		Name:        "convert",
		Summary:     "Convert a document between text and binary forms",
		Description: "Convert reads a document and writes it under the format the\noutput extension selects: .mtl for JSON, .mtlb for binary.\nConverting .mtl to .mtl normalizes hand-edited files: comments,\ntrailing commas, and key order.",
		Usage:       "montage convert <input> <output>",
		Examples: []cli.Example{
			{
				Description: "Compile a cut for distribution",
				Command:     "montage convert cut.mtl cut.mtlb",
			},
			{
				Description: "Recover an editable form",
				Command:     "montage convert cut.mtlb cut.mtl",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("convert", pflag.ContinueOnError)
			flags.IntVar(&indent, "indent", 2, "JSON indent width")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected an input and an output path\n\nUsage: montage convert <input> <output>")
			}
			input, output := args[0], args[1]
			if err := ensureDocumentPath(output); err != nil {
				return err
			}
			if filepath.Clean(input) == filepath.Clean(output) {
				return fmt.Errorf("input and output are the same file")
			}

			root, err := document.Read(input)
			if err != nil {
				return err
			}
			if err := document.Write(output, root, indent); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}
}
