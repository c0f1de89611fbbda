// Package codec defines the codec capability pair and the format registry
// used by the conversion gateway.
package codec

import "github.com/wagov/convertd/document"

// Codec binds a format identifier to a parse/encode capability pair.
// Parse interprets a raw body in the codec's format and produces the
// shared document model; Encode renders a document back into the format.
//
// Implementations must be safe for concurrent use: a single codec value is
// shared by every in-flight request, and each call operates only on the
// arguments it receives.
type Codec interface {
	// Format returns the identifier the codec is registered under.
	// Identifiers are case-sensitive and matched literally.
	Format() string

	// ContentType returns the MIME type served for bodies in this format.
	ContentType() string

	// Parse interprets raw as this format and returns the document tree.
	Parse(raw []byte) (*document.Doc, error)

	// Encode renders the document tree into this format.
	Encode(doc *document.Doc) ([]byte, error)
}
