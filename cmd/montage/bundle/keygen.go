// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/montage-foundation/montage/cmd/montage/cli"
	"github.com/montage-foundation/montage/lib/sealed"
)

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:        "keygen",
		Summary:     "Generate an age keypair for encrypted bundles",
		Description: "Keygen writes a fresh age x25519 identity to a file (mode 0600)\nand prints the matching public key. Give the public key to anyone\nbundling for you; keep the identity file to yourself, it is the\nonly way to open bundles encrypted to it.",
		Usage:       "montage bundle keygen <identity-file>",
		Examples: []cli.Example{
			{
				Description: "Create an identity for this machine",
				Command:     "montage bundle keygen ~/.config/montage/identity.txt",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one identity file path\n\nUsage: montage bundle keygen <identity-file>")
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return err
			}
			defer keypair.Close()

			// O_EXCL refuses to clobber an existing identity; the
			// write goes straight from the locked buffer, no heap
			// copy of the private key.
			file, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return fmt.Errorf("writing identity file: %w", err)
			}
			_, writeErr := file.Write(keypair.PrivateKey.Bytes())
			if writeErr == nil {
				_, writeErr = file.Write([]byte("\n"))
			}
			if closeErr := file.Close(); writeErr == nil {
				writeErr = closeErr
			}
			if writeErr != nil {
				os.Remove(args[0])
				return fmt.Errorf("writing identity file: %w", writeErr)
			}

			fmt.Printf("Identity: %s\n", args[0])
			fmt.Printf("Public key: %s\n", keypair.PublicKey)
			return nil
		},
	}
}
