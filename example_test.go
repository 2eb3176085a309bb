package folio_test

import (
	"context"
	"fmt"
	"log"

	"github.com/tsawler/folio"
	"github.com/tsawler/folio/epub"
	"github.com/tsawler/folio/model"
)

// These examples verify the package documentation samples compile.

func Example() {
	doc := model.NewDocument("urn:isbn:9780000000000", "en", "Example Book", "Jane Doe")
	doc.AddChapter(model.Chapter{Title: "Opening", Content: "<p>Hello, world</p>"})

	result, err := folio.New(doc).WriteFile(context.Background(), "book.epub")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result.Bytes, result.Digest)
}

func Example_withOptions() {
	doc := model.NewDocument("urn:isbn:9780000000000", "en", "Example Book", "Jane Doe")
	doc.AddChapter(model.Chapter{Content: "<p>Untitled chapter</p>"})

	data := folio.Must(folio.New(doc).
		MetadataRoot("OEBPS").
		NavTitle("Contents").
		Style(epub.StyleContent, "p { text-indent: 1em; }").
		Bytes(context.Background()))
	_ = data

	if _, err := folio.New(doc).MetadataRoot("OEBPS").WriteFile(context.Background(), "book.epub"); err != nil {
		log.Fatal(err)
	}
}
