package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
)

// Container-related errors.
var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile found in container.xml")
)

const containerNamespace = "urn:oasis:names:tc:opendocument:xmlns:container"

// containerXML represents the structure of META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name  `xml:"container"`
	Version   string    `xml:"version,attr"`
	Xmlns     string    `xml:"xmlns,attr,omitempty"`
	Rootfiles rootfiles `xml:"rootfiles"`
}

type rootfiles struct {
	Rootfile []rootfile `xml:"rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerDocument renders the container file pointing at the package
// document.
func containerDocument(packagePath string) ([]byte, error) {
	c := containerXML{
		Version: "1.0",
		Xmlns:   containerNamespace,
		Rootfiles: rootfiles{
			Rootfile: []rootfile{{FullPath: packagePath, MediaType: MediaTypePackage}},
		},
	}
	return marshalDocument(c)
}

// parseContainer parses META-INF/container.xml and returns the path to the OPF file.
func parseContainer(zr *zip.Reader) (string, error) {
	data, err := readEntry(zr, ContainerPath)
	if errors.Is(err, ErrMissingContent) {
		return "", ErrNoContainer
	}
	if err != nil {
		return "", err
	}

	var container containerXML
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", ErrInvalidContainer
	}

	// Prefer the rootfile declared as a package document
	for _, rf := range container.Rootfiles.Rootfile {
		if rf.MediaType == MediaTypePackage || rf.MediaType == "" {
			if rf.FullPath != "" {
				return rf.FullPath, nil
			}
		}
	}

	if len(container.Rootfiles.Rootfile) > 0 {
		return container.Rootfiles.Rootfile[0].FullPath, nil
	}

	return "", ErrNoRootfile
}

// marshalDocument renders v as an indented XML document with a declaration.
func marshalDocument(v any) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("epub: marshaling %T: %w", v, err)
	}
	doc := make([]byte, 0, len(xml.Header)+len(out)+1)
	doc = append(doc, xml.Header...)
	doc = append(doc, out...)
	doc = append(doc, '\n')
	return doc, nil
}
