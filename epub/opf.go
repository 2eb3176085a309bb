package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/tsawler/folio/model"
)

// OPF-related errors.
var (
	ErrNoOPF      = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epub: invalid package document")
	ErrEmptySpine = errors.New("epub: no content in spine")
)

// opfPackage represents the OPF package document.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title       []dcElement `xml:"title"`
	Creator     []dcElement `xml:"creator"`
	Language    []dcElement `xml:"language"`
	Identifier  []dcElement `xml:"identifier"`
	Publisher   []dcElement `xml:"publisher"`
	Date        []dcElement `xml:"date"`
	Description []dcElement `xml:"description"`
	Subject     []dcElement `xml:"subject"`
	Rights      []dcElement `xml:"rights"`
	Meta        []opfMeta   `xml:"meta"`
}

type dcElement struct {
	ID      string `xml:"id,attr"`
	Content string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// parseOPF parses the OPF file and returns a Package struct.
func parseOPF(zr *zip.Reader, opfPath string) (*Package, string, error) {
	data, err := readEntry(zr, opfPath)
	if errors.Is(err, ErrMissingContent) {
		return nil, "", ErrNoOPF
	}
	if err != nil {
		return nil, "", err
	}

	// Get base directory for resolving relative paths
	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, "", ErrInvalidOPF
	}

	pkg := &Package{
		Version:  opf.Version,
		Metadata: convertMetadata(&opf.Metadata),
		Manifest: convertManifest(&opf.Manifest),
		Spine:    convertSpine(&opf.Spine),
	}

	if len(pkg.Spine) == 0 {
		return nil, "", ErrEmptySpine
	}

	return pkg, baseDir, nil
}

func convertMetadata(m *opfMetadata) Metadata {
	meta := Metadata{}

	// Title - take first
	if len(m.Title) > 0 {
		meta.Title = strings.TrimSpace(m.Title[0].Content)
	}

	// Creators
	for _, c := range m.Creator {
		if s := strings.TrimSpace(c.Content); s != "" {
			meta.Creator = append(meta.Creator, s)
		}
	}

	// Language - take first
	if len(m.Language) > 0 {
		meta.Language = strings.TrimSpace(m.Language[0].Content)
	}

	// Identifier - take first
	if len(m.Identifier) > 0 {
		meta.Identifier = strings.TrimSpace(m.Identifier[0].Content)
	}

	// Publisher - take first
	if len(m.Publisher) > 0 {
		meta.Publisher = strings.TrimSpace(m.Publisher[0].Content)
	}

	// Date - take first
	if len(m.Date) > 0 {
		meta.Date = strings.TrimSpace(m.Date[0].Content)
	}

	// Description - take first
	if len(m.Description) > 0 {
		meta.Description = strings.TrimSpace(m.Description[0].Content)
	}

	// Subjects
	for _, s := range m.Subject {
		if subj := strings.TrimSpace(s.Content); subj != "" {
			meta.Subjects = append(meta.Subjects, subj)
		}
	}

	// Rights - take first
	if len(m.Rights) > 0 {
		meta.Rights = strings.TrimSpace(m.Rights[0].Content)
	}

	// Check meta elements for modified date (EPUB 3)
	for _, mt := range m.Meta {
		if mt.Property == "dcterms:modified" {
			if t, err := time.Parse(time.RFC3339, mt.Value); err == nil {
				meta.Modified = t
			}
		}
	}

	return meta
}

func convertManifest(m *opfManifest) []ManifestItem {
	manifest := make([]ManifestItem, 0, len(m.Items))

	for _, item := range m.Items {
		mi := ManifestItem{
			ID:        item.ID,
			Href:      item.Href,
			MediaType: item.MediaType,
		}

		// Parse properties
		if item.Properties != "" {
			mi.Properties = strings.Fields(item.Properties)
		}

		manifest = append(manifest, mi)
	}

	return manifest
}

func convertSpine(s *opfSpine) []SpineItem {
	spine := make([]SpineItem, 0, len(s.ItemRefs))

	for _, ref := range s.ItemRefs {
		si := SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear != "no", // Default is true
		}
		spine = append(spine, si)
	}

	return spine
}

// Package document identifiers referenced from attributes.
const (
	packageNamespace  = "http://www.idpf.org/2007/opf"
	dublinCoreNS      = "http://purl.org/dc/elements/1.1/"
	uniqueIdentifier  = "identifier"
	titleIdentifier   = "title"
	modifiedTimestamp = "2006-01-02T15:04:05Z"
)

// opfDocument is the package document as written. Dublin Core elements carry
// their prefix literally; the reader-side opfPackage matches them by local
// name.
type opfDocument struct {
	XMLName          xml.Name       `xml:"package"`
	Version          string         `xml:"version,attr"`
	Xmlns            string         `xml:"xmlns,attr"`
	UniqueIdentifier string         `xml:"unique-identifier,attr"`
	Metadata         opfMetadataOut `xml:"metadata"`
	Manifest         []opfItem      `xml:"manifest>item"`
	Spine            []opfItemRef   `xml:"spine>itemref"`
}

type opfMetadataOut struct {
	XmlnsDC     string       `xml:"xmlns:dc,attr"`
	Modified    opfMetaOut   `xml:"meta"`
	Identifier  dcElementOut `xml:"dc:identifier"`
	Title       dcElementOut `xml:"dc:title"`
	Creator     string       `xml:"dc:creator"`
	Language    string       `xml:"dc:language"`
	Publisher   string       `xml:"dc:publisher,omitempty"`
	Description string       `xml:"dc:description,omitempty"`
	Subjects    []string     `xml:"dc:subject,omitempty"`
	Rights      string       `xml:"dc:rights,omitempty"`
	Date        string       `xml:"dc:date,omitempty"`
}

type opfMetaOut struct {
	Property string `xml:"property,attr"`
	Value    string `xml:",chardata"`
}

type dcElementOut struct {
	ID      string `xml:"id,attr,omitempty"`
	Content string `xml:",chardata"`
}

// packageDocument renders the package document for the given resources.
// The manifest lists every resource in order; the spine lists those marked
// InSpine in the same order. Hrefs are relative to the package document.
func packageDocument(meta model.Metadata, packagePath string, resources []Resource, modified time.Time) ([]byte, error) {
	doc := opfDocument{
		Version:          "3.0",
		Xmlns:            packageNamespace,
		UniqueIdentifier: uniqueIdentifier,
		Metadata: opfMetadataOut{
			XmlnsDC:     dublinCoreNS,
			Modified:    opfMetaOut{Property: "dcterms:modified", Value: modified.UTC().Format(modifiedTimestamp)},
			Identifier:  dcElementOut{ID: uniqueIdentifier, Content: meta.Identifier},
			Title:       dcElementOut{ID: titleIdentifier, Content: meta.Title},
			Creator:     meta.Author,
			Language:    meta.Language,
			Publisher:   meta.Publisher,
			Description: meta.Description,
			Subjects:    meta.Subjects,
			Rights:      meta.Rights,
			Date:        meta.Date,
		},
		Manifest: make([]opfItem, 0, len(resources)),
	}

	dir := path.Dir(packagePath)
	for _, r := range resources {
		id := r.ManifestID()
		doc.Manifest = append(doc.Manifest, opfItem{
			ID:         id,
			Href:       relativePath(dir, r.Path),
			MediaType:  r.MediaType,
			Properties: r.Properties,
		})
		if r.InSpine {
			doc.Spine = append(doc.Spine, opfItemRef{IDRef: id})
		}
	}

	return marshalDocument(doc)
}
