// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromPath_File(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "plain value",
			content:  "AGE-SECRET-KEY-1EXAMPLE",
			expected: "AGE-SECRET-KEY-1EXAMPLE",
		},
		{
			name:     "trailing newline",
			content:  "AGE-SECRET-KEY-1EXAMPLE\n",
			expected: "AGE-SECRET-KEY-1EXAMPLE",
		},
		{
			name:     "surrounding whitespace",
			content:  "  AGE-SECRET-KEY-1EXAMPLE  \n",
			expected: "AGE-SECRET-KEY-1EXAMPLE",
		},
		{
			name: "age-keygen header comments",
			content: "# created: 2026-08-23T10:12:00Z\n" +
				"# public key: age1example\n" +
				"AGE-SECRET-KEY-1EXAMPLE\n",
			expected: "AGE-SECRET-KEY-1EXAMPLE",
		},
		{
			name:     "blank lines before the secret",
			content:  "\n\nAGE-SECRET-KEY-1EXAMPLE\n",
			expected: "AGE-SECRET-KEY-1EXAMPLE",
		},
		{
			name:     "only the first secret line is read",
			content:  "first-line\nsecond-line\n",
			expected: "first-line",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			result, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath() error: %v", err)
			}
			defer result.Close()
			if result.String() != test.expected {
				t.Errorf("ReadFromPath() = %q, want %q", result.String(), test.expected)
			}
		})
	}
}

func TestReadFromPath_FileNotFound(t *testing.T) {
	_, err := ReadFromPath("/nonexistent/path/to/secret")
	if err == nil {
		t.Error("ReadFromPath() with nonexistent file should return error")
	}
}

func TestReadFromPath_NoSecret(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "whitespace only", content: "   \n\t\n"},
		{name: "comments only", content: "# created: today\n# public key: age1example\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "identity")
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}
			if _, err := ReadFromPath(path); err == nil {
				t.Error("ReadFromPath() should error when no secret line exists")
			}
		})
	}
}
