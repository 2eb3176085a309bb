package epub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/tsawler/folio/model"
)

// ErrUnresolvedResource is returned when a resource was referenced during
// collection but never filled in.
var ErrUnresolvedResource = errors.New("epub: resource referenced but never built")

// ContainerPath is the location of the OCF container file mandated by the
// EPUB Open Container Format.
const ContainerPath = "META-INF/container.xml"

// Default option values.
const (
	DefaultMetadataRoot = "epub"
	DefaultNavTitle     = "Table of Contents"
)

// Options configures how a document is laid out in the package.
type Options struct {
	// MetadataRoot is the directory holding the package document, the cover,
	// the navigation document and the stylesheets. Chapters live in its
	// "content" subdirectory.
	MetadataRoot string

	// Stylesheets are referenced by name from the generated documents.
	Stylesheets Stylesheets

	// NavTitle is the heading shown above the table of contents.
	NavTitle string

	// Now supplies the modification timestamp and archive entry times.
	Now func() time.Time

	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MetadataRoot: DefaultMetadataRoot,
		Stylesheets:  DefaultStylesheets(),
		NavTitle:     DefaultNavTitle,
		Now:          time.Now,
		Logger:       slog.Default(),
	}
}

// withDefaults fills zero-valued fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	o.MetadataRoot = strings.Trim(path.Clean("/"+o.MetadataRoot), "/")
	if o.MetadataRoot == "" {
		o.MetadataRoot = def.MetadataRoot
	}
	if o.Stylesheets == nil {
		o.Stylesheets = def.Stylesheets
	}
	if o.NavTitle == "" {
		o.NavTitle = def.NavTitle
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	return o
}

// PackagePath is the location of the package document (OPF).
func (o Options) PackagePath() string {
	return path.Join(o.MetadataRoot, "document.opf")
}

// CoverPath is the location of the cover page.
func (o Options) CoverPath() string {
	return path.Join(o.MetadataRoot, "cover.xhtml")
}

// NavigationPath is the location of the navigation document.
func (o Options) NavigationPath() string {
	return path.Join(o.MetadataRoot, "nav.xhtml")
}

// ContentRoot is the directory holding chapter pages.
func (o Options) ContentRoot() string {
	return path.Join(o.MetadataRoot, "content")
}

// ChapterPath is the location of a chapter page.
func (o Options) ChapterPath(ref model.ChapterRef) string {
	return path.Join(o.ContentRoot(), fmt.Sprintf("chapter-%d.xhtml", ref.Number()))
}

func (o Options) stylesheetPath(name string) string {
	return path.Join(o.MetadataRoot, name+".css")
}

// buildContext carries the state of one collection pass. meta is a copy of
// the document metadata with the language tag canonicalized; the document
// itself is never modified.
type buildContext struct {
	ctx    context.Context
	doc    *model.Document
	meta   model.Metadata
	opts   Options
	graph  *Graph
	logger *slog.Logger
}

// Plan is the fully collected content of one package, ready to be written.
// Nothing in a Plan changes once Collect returns.
type Plan struct {
	opts      Options
	meta      model.Metadata
	modified  time.Time
	resources []Resource
	container []byte
	pkg       []byte
}

// Collect runs the cover, navigation and content builders in that order and
// renders the package descriptors. No output is touched, so a structural
// error here never leaves a partial archive behind.
func Collect(ctx context.Context, doc *model.Document, opts Options) (*Plan, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", model.ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	meta := doc.Metadata
	meta.Subjects = append([]string(nil), doc.Metadata.Subjects...)
	lang, err := meta.CanonicalLanguage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidDocument, err)
	}
	meta.Language = lang

	opts = opts.withDefaults()
	b := &buildContext{
		ctx:    ctx,
		doc:    doc,
		meta:   meta,
		opts:   opts,
		graph:  NewGraph(),
		logger: opts.Logger,
	}

	b.logger.Debug("build phase", "phase", PhaseReset)
	b.graph.Reset()
	b.graph.ensure(opts.PackagePath())

	b.logger.Debug("build phase", "phase", PhaseCollect, "chapters", doc.ChapterCount())
	steps := []struct {
		name string
		fn   func() error
	}{
		{"cover", b.addCover},
		{"navigation", b.addNavigation},
		{"content", b.addContent},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("collecting %s: %w", step.name, err)
		}
	}

	resources, err := b.graph.OrderedDependenciesOf(opts.PackagePath())
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		if r.Content == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedResource, r.Path)
		}
	}

	plan := &Plan{
		opts:      opts,
		meta:      meta,
		modified:  opts.Now().UTC().Truncate(time.Second),
		resources: resources,
	}

	if plan.container, err = containerDocument(opts.PackagePath()); err != nil {
		return nil, err
	}
	if plan.pkg, err = packageDocument(meta, opts.PackagePath(), resources, plan.modified); err != nil {
		return nil, err
	}

	return plan, nil
}

// Resources returns the package resources in manifest order.
func (p *Plan) Resources() []Resource {
	return append([]Resource(nil), p.resources...)
}

// Spine returns the resources of the reading order.
func (p *Plan) Spine() []Resource {
	var spine []Resource
	for _, r := range p.resources {
		if r.InSpine {
			spine = append(spine, r)
		}
	}
	return spine
}

// PackageDocument returns the rendered package document (OPF).
func (p *Plan) PackageDocument() []byte {
	return p.pkg
}

// ContainerDocument returns the rendered META-INF/container.xml.
func (p *Plan) ContainerDocument() []byte {
	return p.container
}

// Metadata returns the metadata recorded in the package, with the language
// tag in canonical form.
func (p *Plan) Metadata() model.Metadata {
	m := p.meta
	m.Subjects = append([]string(nil), p.meta.Subjects...)
	return m
}

// Modified returns the build timestamp recorded in the package.
func (p *Plan) Modified() time.Time {
	return p.modified
}

func dirOf(p string) string {
	return path.Dir(p)
}
