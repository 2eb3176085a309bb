package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndInspect(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "book.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`identifier: urn:test:cli
language: en
title: CLI Book
author: Someone
chapters:
  - title: First
    file: first.md
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "first.md"), []byte("Hello, world\n"), 0o644))

	out := filepath.Join(dir, "out.epub")
	rootCmd.SetArgs([]string{"build", manifest, "-o", out, "--nav-title", "Contents"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, out))

	report := buf.String()
	assert.Contains(t, report, "Format:     EPUB")
	assert.Contains(t, report, "Title:      CLI Book")
	assert.Contains(t, report, "mimetype")
	assert.Contains(t, report, "store")
	assert.Contains(t, report, "epub/content/chapter-1.xhtml")
	assert.Contains(t, report, "Contents: Contents")
	assert.Contains(t, report, "- First -> ")
	assert.NotContains(t, report, "Mimetype:")
}

func TestInspectRejectsNonEPUB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	var buf bytes.Buffer
	err := inspect(&buf, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an EPUB")
}
