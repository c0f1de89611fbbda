// Package adf implements the codec for Atlassian Document Format, the JSON
// form of the shared document model.
package adf

import (
	"encoding/json"
	"fmt"

	"github.com/wagov/convertd/document"
	"github.com/wagov/convertd/errors"
)

// FormatID is the registry identifier for this codec.
const FormatID = "adf"

// Codec parses and encodes ADF JSON documents.
type Codec struct{}

// New creates the ADF codec.
func New() *Codec {
	return &Codec{}
}

// Format returns the registry identifier.
func (c *Codec) Format() string {
	return FormatID
}

// ContentType returns the MIME type for ADF bodies.
func (c *Codec) ContentType() string {
	return "application/json"
}

// Parse decodes an ADF JSON body into the document model.
func (c *Codec) Parse(raw []byte) (*document.Doc, error) {
	var doc document.Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrParseFailed, err),
			"ADFCodec", "Parse", "JSON decode")
	}

	if doc.Type != document.TypeDoc {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: root type %q is not %q", errors.ErrParseFailed, doc.Type, document.TypeDoc),
			"ADFCodec", "Parse", "root validation")
	}

	if doc.Version == 0 {
		doc.Version = document.Version
	}

	return &doc, nil
}

// Encode renders the document model as ADF JSON.
func (c *Codec) Encode(doc *document.Doc) ([]byte, error) {
	if doc == nil {
		return nil, errors.WrapInvalid(errors.ErrEmptyDocument, "ADFCodec", "Encode",
			"document validation")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %w", errors.ErrEncodeFailed, err),
			"ADFCodec", "Encode", "JSON encode")
	}

	return data, nil
}
