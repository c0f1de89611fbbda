// Package cbor implements a binary codec for the document model using
// deterministic CBOR (RFC 8949), intended for service-to-service exchange
// where re-parsing markup is wasteful.
package cbor

import (
	"fmt"

	cborlib "github.com/fxamacker/cbor/v2"

	"github.com/wagov/convertd/document"
	"github.com/wagov/convertd/errors"
)

// FormatID is the registry identifier for this codec.
const FormatID = "cbor"

// Codec parses and encodes CBOR document bodies.
type Codec struct {
	enc cborlib.EncMode
	dec cborlib.DecMode
}

// New creates the CBOR codec with canonical encoding options so equal
// documents always produce byte-identical output.
func New() (*Codec, error) {
	em, err := cborlib.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, errors.WrapFatal(err, "CBORCodec", "New", "encoder setup")
	}
	dm, err := cborlib.DecOptions{}.DecMode()
	if err != nil {
		return nil, errors.WrapFatal(err, "CBORCodec", "New", "decoder setup")
	}
	return &Codec{enc: em, dec: dm}, nil
}

// Format returns the registry identifier.
func (c *Codec) Format() string {
	return FormatID
}

// ContentType returns the MIME type for CBOR bodies.
func (c *Codec) ContentType() string {
	return "application/cbor"
}

// Parse decodes a CBOR body into the document model.
func (c *Codec) Parse(raw []byte) (*document.Doc, error) {
	var doc document.Doc
	if err := c.dec.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrParseFailed, err),
			"CBORCodec", "Parse", "CBOR decode")
	}

	if doc.Type != document.TypeDoc {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: root type %q is not %q", errors.ErrParseFailed, doc.Type, document.TypeDoc),
			"CBORCodec", "Parse", "root validation")
	}

	if doc.Version == 0 {
		doc.Version = document.Version
	}

	return &doc, nil
}

// Encode renders the document model as canonical CBOR.
func (c *Codec) Encode(doc *document.Doc) ([]byte, error) {
	if doc == nil {
		return nil, errors.WrapInvalid(errors.ErrEmptyDocument, "CBORCodec", "Encode",
			"document validation")
	}

	data, err := c.enc.Marshal(doc)
	if err != nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %w", errors.ErrEncodeFailed, err),
			"CBORCodec", "Encode", "CBOR encode")
	}

	return data, nil
}
