package epub

import (
	"fmt"

	"github.com/tsawler/folio/model"
)

// addPage registers the page and the stylesheets it references. Links are
// added to the head before the page is rendered; each stylesheet is
// registered as a dependency of the page so documents referencing the same
// style name share one resource.
func (b *buildContext) addPage(pg *page) error {
	dir := dirOf(pg.resource.Path)

	var sheets []Resource
	for _, name := range pg.styles {
		css, ok := b.opts.Stylesheets[name]
		if !ok {
			b.logger.Debug("skipping undefined stylesheet", "style", name, "page", pg.resource.Path)
			continue
		}
		sheet := Resource{
			Path:      b.opts.stylesheetPath(name),
			MediaType: MediaTypeCSS,
			Content:   []byte(css),
		}
		if err := pg.link(relativePath(dir, sheet.Path)); err != nil {
			return err
		}
		sheets = append(sheets, sheet)
	}

	content, err := pg.render()
	if err != nil {
		return err
	}
	res := pg.resource
	res.Content = content

	if _, err := b.graph.Upsert(res, b.opts.PackagePath()); err != nil {
		return err
	}
	b.logger.Debug("registered resource", "path", res.Path, "id", res.ManifestID(), "spine", res.InSpine)

	for _, sheet := range sheets {
		if _, err := b.graph.Upsert(sheet, res.Path); err != nil {
			return err
		}
	}
	return nil
}

// addCover registers the cover page.
func (b *buildContext) addCover() error {
	meta := b.meta

	pg := newPage(b.opts.CoverPath(), meta.Language, meta.Title)
	pg.resource.InSpine = true
	pg.styles = []string{StyleGlobal, StyleCover}

	section := element("section", "class", "cover")
	section.AppendChild(textElement("h1", meta.Title, "class", "cover__title"))
	section.AppendChild(textElement("h2", meta.Author, "class", "cover__author"))
	pg.body = append(pg.body, section)

	return b.addPage(pg)
}

// addNavigation registers the navigation document. Chapters it links to are
// registered as placeholders first; the chapter pass fills them in.
func (b *buildContext) addNavigation() error {
	meta := b.meta
	navPath := b.opts.NavigationPath()
	navDir := dirOf(navPath)

	pg := newPage(navPath, meta.Language, meta.Title)
	pg.resource.Properties = "nav"
	pg.resource.InSpine = true
	pg.styles = []string{StyleGlobal, StyleNavigation}

	nav := element("nav", "epub:type", "toc", "id", "toc")
	nav.AppendChild(textElement("h2", b.opts.NavTitle))
	list := element("ol", "id", "tocList", "class", "toc")

	var placeholders []Resource
	for _, ref := range b.doc.Refs() {
		chapterPath := b.opts.ChapterPath(ref)
		li := element("li", "id", ChapterID(ref))
		li.AppendChild(textElement("a", ref.Title(), "href", relativePath(navDir, chapterPath)))
		list.AppendChild(li)

		if !b.graph.Contains(chapterPath) {
			placeholders = append(placeholders, Resource{
				Path:      chapterPath,
				ID:        ChapterID(ref),
				MediaType: MediaTypeXHTML,
			})
		}
	}
	nav.AppendChild(list)
	pg.body = append(pg.body, nav)

	if err := b.addPage(pg); err != nil {
		return err
	}
	for _, ph := range placeholders {
		if _, err := b.graph.Upsert(ph, navPath); err != nil {
			return err
		}
	}
	return nil
}

// addContent registers one page per chapter, in document order.
func (b *buildContext) addContent() error {
	for _, ref := range b.doc.Refs() {
		if err := b.ctx.Err(); err != nil {
			return err
		}
		if err := b.addChapter(ref); err != nil {
			return fmt.Errorf("chapter %d: %w", ref.Number(), err)
		}
	}
	return nil
}

// addChapter registers the page for a single chapter.
func (b *buildContext) addChapter(ref model.ChapterRef) error {
	if ref.Chapter == nil {
		return fmt.Errorf("%w: index %d", model.ErrChapterNotFound, ref.Index)
	}
	if _, err := b.doc.Ref(ref.Index); err != nil {
		return err
	}

	title := ref.Title()
	pg := newPage(b.opts.ChapterPath(ref), b.meta.Language, title)
	pg.resource.ID = ChapterID(ref)
	pg.resource.InSpine = true
	pg.styles = []string{StyleGlobal, StyleContent}

	section := element("section", "class", "chapter")
	section.AppendChild(textElement("h1", title, "class", "chapter__title"))
	region := element("main")
	region.AppendChild(rawNode(ref.Chapter.Content))
	section.AppendChild(region)
	pg.body = append(pg.body, section)

	return b.addPage(pg)
}

// ChapterID returns the manifest identifier of a chapter page.
func ChapterID(ref model.ChapterRef) string {
	return fmt.Sprintf("chapter-%d", ref.Number())
}
