// Package codecregistry wires the built-in codecs into a codec registry.
// It is the single composition point for format support: a format is
// convertible if and only if it is registered here.
package codecregistry

import (
	"errors"

	"github.com/wagov/convertd/codec"
	"github.com/wagov/convertd/codec/adf"
	cborcodec "github.com/wagov/convertd/codec/cbor"
	"github.com/wagov/convertd/codec/markdown"
	"github.com/wagov/convertd/codec/wiki"
	pkgerrors "github.com/wagov/convertd/errors"
)

// Register registers all built-in codecs with the provided registry:
//
//   - adf: Atlassian Document Format (JSON)
//   - md: markdown
//   - wiki: Jira wiki markup
//   - cbor: canonical CBOR document interchange
//
// Registration happens once at startup; any failure here is fatal and the
// process must not begin serving.
func Register(registry *codec.Registry) error {
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"CodecRegistry", "Register", "registry validation")
	}

	if err := registry.Register(adf.New()); err != nil {
		return pkgerrors.Wrap(err, "CodecRegistry", "Register", "ADF codec registration")
	}

	if err := registry.Register(markdown.New()); err != nil {
		return pkgerrors.Wrap(err, "CodecRegistry", "Register", "markdown codec registration")
	}

	if err := registry.Register(wiki.New()); err != nil {
		return pkgerrors.Wrap(err, "CodecRegistry", "Register", "wiki codec registration")
	}

	cborCodec, err := cborcodec.New()
	if err != nil {
		return pkgerrors.Wrap(err, "CodecRegistry", "Register", "CBOR codec construction")
	}
	if err := registry.Register(cborCodec); err != nil {
		return pkgerrors.Wrap(err, "CodecRegistry", "Register", "CBOR codec registration")
	}

	return nil
}
