// Package epub assembles documents into EPUB 3 packages and reads them back.
//
// # Writing
//
// A package is built in two steps. [Collect] runs the cover, navigation and
// chapter builders against a fresh [Graph], then renders the package
// descriptors. The resulting [Plan] is immutable; [Plan.Write] serializes it
// as a ZIP archive:
//
//	plan, err := epub.Collect(ctx, doc, epub.DefaultOptions())
//	if err != nil {
//	    // nothing has been written yet
//	}
//	_, err = plan.Write(ctx, w)
//
// The archive always starts with the uncompressed "mimetype" entry, followed
// by META-INF/container.xml, the package document and every resource in
// manifest order. All entries but the first are deflated at maximum
// compression.
//
// # Resources
//
// Every file in the package is a [Resource] keyed by its path. Registering a
// path again merges into the stored resource; registering it with a different
// media type fails with [ErrMediaTypeConflict]. Manifest identifiers default
// to [DeriveID] of the path.
//
// # Reading
//
// [Open] and [OpenReader] parse an existing package: container, package
// document, spine chapters and the navigation document.
package epub
