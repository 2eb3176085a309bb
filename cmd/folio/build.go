package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tsawler/folio"
	"github.com/tsawler/folio/book"
)

var (
	outputPath   string
	metadataRoot string
	navTitle     string
)

func init() {
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: manifest name with .epub)")
	addLayoutFlags(buildCmd.Flags())
	rootCmd.AddCommand(buildCmd)
}

// addLayoutFlags registers the flags overriding manifest layout settings.
func addLayoutFlags(fs *pflag.FlagSet) {
	fs.StringVar(&metadataRoot, "metadata-root", "", "Directory holding the package document inside the archive")
	fs.StringVar(&navTitle, "nav-title", "", "Heading of the table of contents")
}

var buildCmd = &cobra.Command{
	Use:   "build [manifest]",
	Short: "Build an EPUB from a YAML or JSONC book manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest := args[0]
		logger := newLogger()

		b, err := book.Load(manifest)
		if err != nil {
			return err
		}

		w := folio.New(b.Document).Logger(logger)
		if root := firstNonEmpty(metadataRoot, b.MetadataRoot); root != "" {
			w = w.MetadataRoot(root)
		}
		if title := firstNonEmpty(navTitle, b.NavTitle); title != "" {
			w = w.NavTitle(title)
		}
		for name, css := range b.Styles {
			w = w.Style(name, css)
		}

		out := outputPath
		if out == "" {
			out = strings.TrimSuffix(manifest, filepath.Ext(manifest)) + ".epub"
		}

		result, err := w.WriteFile(cmd.Context(), out)
		if err != nil {
			return fmt.Errorf("building %s: %w", out, err)
		}

		logger.Info("wrote package",
			"path", out,
			"bytes", result.Bytes,
			"chapters", b.Document.ChapterCount(),
			"blake3", result.Digest)
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
