// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a secret from a file path, or from stdin when
// path is "-". Blank lines and "#" comment lines are skipped and the
// first remaining line, whitespace-trimmed, is the secret; identity
// files written by age-keygen therefore load without editing, since
// their created/public-key header lines are comments.
//
// The returned buffer is mmap-backed (locked into RAM, excluded from
// core dumps) and must be closed by the caller. The intermediate read
// buffer is zeroed before returning.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	defer Zero(data)

	for rest := data; len(rest) > 0; {
		var line []byte
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i+1], rest[i+1:]
		} else {
			line, rest = rest, nil
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		// NewFromBytes copies into locked memory and zeros trimmed;
		// the deferred Zero covers the rest of the read buffer.
		return NewFromBytes(trimmed)
	}
	if path == "-" {
		return nil, fmt.Errorf("stdin held no secret")
	}
	return nil, fmt.Errorf("%s holds no secret", path)
}
