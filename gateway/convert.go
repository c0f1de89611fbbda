package gateway

import (
	"context"
	"fmt"

	"github.com/wagov/convertd/codec"
	"github.com/wagov/convertd/errors"
)

// Stage identifies where in the pipeline a conversion failed.
type Stage string

// Pipeline stages, in execution order.
const (
	StageResolve Stage = "unknown-format"
	StageParse   Stage = "parse-failure"
	StageEncode  Stage = "encode-failure"
)

// ConversionError reports a classified pipeline failure: the stage that
// failed, the format identifier involved, and the underlying cause.
type ConversionError struct {
	Stage  Stage
	Format string
	Err    error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s (format %q): %v", e.Stage, e.Format, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Converter runs the parse→encode pipeline against an immutable codec
// registry. It holds no per-request state; a single Converter serves all
// in-flight requests concurrently.
type Converter struct {
	registry *codec.Registry
}

// NewConverter creates a converter backed by the given registry.
func NewConverter(registry *codec.Registry) (*Converter, error) {
	if registry == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Converter", "NewConverter",
			"registry is required")
	}
	return &Converter{registry: registry}, nil
}

// Formats returns the format identifiers the converter can resolve.
func (c *Converter) Formats() []string {
	return c.registry.Formats()
}

// Convert resolves both codecs, parses the raw body with the input codec,
// and encodes the resulting document with the output codec. The input
// format is resolved before the output format, so when both are unknown
// the input identifier is the one reported.
//
// Identifiers are matched verbatim against the registry with no
// normalization. The document produced by the parse step is threaded to
// the encode step without inspection or mutation.
func (c *Converter) Convert(ctx context.Context, input, output string, raw []byte) ([]byte, error) {
	inputCodec, ok := c.registry.Resolve(input)
	if !ok {
		return nil, &ConversionError{
			Stage:  StageResolve,
			Format: input,
			Err:    fmt.Errorf("%w: %q", errors.ErrUnknownFormat, input),
		}
	}

	outputCodec, ok := c.registry.Resolve(output)
	if !ok {
		return nil, &ConversionError{
			Stage:  StageResolve,
			Format: output,
			Err:    fmt.Errorf("%w: %q", errors.ErrUnknownFormat, output),
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "Converter", "Convert", "context check")
	}

	doc, err := inputCodec.Parse(raw)
	if err != nil {
		return nil, &ConversionError{Stage: StageParse, Format: input, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "Converter", "Convert", "context check")
	}

	body, err := outputCodec.Encode(doc)
	if err != nil {
		return nil, &ConversionError{Stage: StageEncode, Format: output, Err: err}
	}

	return body, nil
}

// ContentType returns the MIME type for the given format, or "" when the
// format is not registered.
func (c *Converter) ContentType(format string) string {
	codec, ok := c.registry.Resolve(format)
	if !ok {
		return ""
	}
	return codec.ContentType()
}
