package epub

// Style names referenced by the generated documents.
const (
	StyleGlobal     = "global"
	StyleCover      = "cover"
	StyleNavigation = "navigation"
	StyleContent    = "content"
)

// Stylesheets maps a style name to its CSS text. Each name becomes one
// stylesheet resource at "{metadataRoot}/{name}.css", shared by every
// document that references it. Documents skip names that have no entry.
type Stylesheets map[string]string

// Clone returns a copy of s.
func (s Stylesheets) Clone() Stylesheets {
	if s == nil {
		return nil
	}
	out := make(Stylesheets, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DefaultStylesheets returns the stylesheets used when none are configured.
func DefaultStylesheets() Stylesheets {
	return Stylesheets{
		StyleGlobal:     globalCSS,
		StyleCover:      coverCSS,
		StyleNavigation: navigationCSS,
		StyleContent:    contentCSS,
	}
}

// globalCSS resets reader defaults for the whole book.
const globalCSS = `* {
  margin: 0;
  padding: 0;
  font-size: 100%;
  font-weight: normal;
  font-style: normal;
  font-family: inherit;
  color: inherit;
  background-color: transparent;
  border: 0;
  outline: 0;
  box-sizing: border-box;
}

html, body, div, span, object, iframe,
h1, h2, h3, h4, h5, h6, p, blockquote, pre,
a, abbr, address, cite, code,
del, dfn, em, img, ins, kbd, q, s, samp,
small, strong, sub, sup, var,
b, u, i,
dl, dt, dd, ol, ul, li,
fieldset, form, label, legend,
table, caption, tbody, tfoot, thead, tr, th, td,
article, aside, canvas, details, embed,
figure, figcaption, footer, header, hgroup,
menu, nav, output, ruby, section, summary,
time, mark, audio, video {
  margin: 0;
  padding: 0;
  border: 0;
  font-size: 100%;
  font: inherit;
  vertical-align: baseline;
}

article, aside, details, figcaption, figure,
footer, header, hgroup, menu, nav, section {
  display: block;
}

body {
  line-height: 1;
}

ol, ul {
  list-style: none;
}

blockquote, q {
  quotes: none;
}

blockquote:before, blockquote:after,
q:before, q:after {
  content: '';
  content: none;
}

table {
  border-collapse: collapse;
  border-spacing: 0;
}
`

const coverCSS = `body {
  font-family: "serif";
  text-align: center;
  display: flex;
  flex-direction: column;
  align-items: stretch;
  line-height: 1.5;
}

.cover {
  margin: 4rem 0rem;
}

.cover > * + * {
  margin-top: 1rem;
}

.cover__title {
  font-size: 2em;
  font-weight: bold;
}

.cover__author {
  font-size: 1.5em;
  font-weight: bold;
}
`

const navigationCSS = `body {
  font-family: "serif";
  line-height: 1.5;
}

nav {
  margin-top: 4rem;
  margin-bottom: 1rem;
}

ol.toc {
  list-style: none;
}

a {
  color: #38f;
  text-decoration: none;
}
`

const contentCSS = `body {
  font-family: "serif";
  line-height: 1.5;
}

p + p {
  text-indent: 2em;
}

.chapter {
  margin-top: 4rem;
  margin-bottom: 1rem;
}

.chapter__title {
  font-size: 2em;
  font-weight: bold;
}
`
