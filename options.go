package folio

import (
	"log/slog"
	"time"

	"github.com/tsawler/folio/epub"
)

// WriteOptions holds configuration for packaging.
type WriteOptions struct {
	// Layout
	metadataRoot string
	navTitle     string

	// Stylesheets by name; nil means the built-in defaults
	styles epub.Stylesheets

	// Ambient
	now    func() time.Time
	logger *slog.Logger
}

// defaultOptions returns the default packaging options.
func defaultOptions() WriteOptions {
	return WriteOptions{
		metadataRoot: epub.DefaultMetadataRoot,
		navTitle:     epub.DefaultNavTitle,
		styles:       nil, // nil means epub.DefaultStylesheets
		now:          time.Now,
		logger:       nil, // nil means slog.Default
	}
}

// clone creates a deep copy of WriteOptions.
func (o WriteOptions) clone() WriteOptions {
	newOpts := WriteOptions{
		metadataRoot: o.metadataRoot,
		navTitle:     o.navTitle,
		now:          o.now,
		logger:       o.logger,
	}

	// Deep copy the stylesheet map
	if o.styles != nil {
		newOpts.styles = o.styles.Clone()
	}

	return newOpts
}

// epubOptions converts to the options of the epub package.
func (o WriteOptions) epubOptions() epub.Options {
	opts := epub.DefaultOptions()
	opts.MetadataRoot = o.metadataRoot
	opts.NavTitle = o.navTitle
	if o.styles != nil {
		opts.Stylesheets = o.styles.Clone()
	}
	if o.now != nil {
		opts.Now = o.now
	}
	if o.logger != nil {
		opts.Logger = o.logger
	}
	return opts
}
