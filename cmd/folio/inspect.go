package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"

	"github.com/tsawler/folio/epub"
	"github.com/tsawler/folio/format"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.epub]",
	Short: "Print the structure of an EPUB package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd.OutOrStdout(), args[0])
	},
}

func inspect(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	detected, err := format.DetectFromReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("detecting format: %w", err)
	}
	if detected != format.EPUB {
		return fmt.Errorf("%s: not an EPUB (detected %s)", path, detected)
	}

	hasher := blake3.New()
	if _, err := io.Copy(hasher, io.NewSectionReader(f, 0, info.Size())); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	r, err := epub.OpenReader(f, info.Size())
	if err != nil {
		return err
	}

	meta := r.Metadata()
	fmt.Fprintf(out, "Format:     %s\n", detected)
	fmt.Fprintf(out, "Size:       %d bytes\n", info.Size())
	fmt.Fprintf(out, "BLAKE3:     %s\n", hex.EncodeToString(hasher.Sum(nil)))
	if err := r.CheckMimetype(); err != nil {
		fmt.Fprintf(out, "Mimetype:   %v\n", err)
	}
	fmt.Fprintf(out, "Version:    %s\n", r.Package().Version)
	fmt.Fprintf(out, "Identifier: %s\n", meta.Identifier)
	fmt.Fprintf(out, "Title:      %s\n", meta.Title)
	fmt.Fprintf(out, "Author:     %s\n", strings.Join(meta.Creator, ", "))
	fmt.Fprintf(out, "Language:   %s\n", meta.Language)
	if !meta.Modified.IsZero() {
		fmt.Fprintf(out, "Modified:   %s\n", meta.Modified.Format(time.RFC3339))
	}

	fmt.Fprintln(out, "\nEntries:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range r.Entries() {
		method := "deflate"
		if e.Stored {
			method = "store"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\n", e.Name, method, e.CompressedSize, e.UncompressedSize)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nSpine:")
	for i, ch := range r.Chapters() {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, ch.Href, ch.Title)
	}

	toc := r.TableOfContents()
	fmt.Fprintf(out, "\nContents: %s\n", toc.Title)
	printTOC(out, toc.Entries, 1)
	return nil
}

func printTOC(out io.Writer, entries []epub.TOCEntry, depth int) {
	for _, e := range entries {
		fmt.Fprintf(out, "%s- %s -> %s\n", strings.Repeat("  ", depth), e.Title, e.Href)
		printTOC(out, e.Children, depth+1)
	}
}
