// Command folio builds EPUB packages from book manifests and inspects
// existing packages.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log each build phase and resource")
}

var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "Package books as EPUB 3 publications",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newLogger returns a text logger on stderr at debug level when --verbose
// is set.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "folio:", err)
		os.Exit(1)
	}
}
