package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagov/convertd/codec"
	"github.com/wagov/convertd/document"
	pkgerrors "github.com/wagov/convertd/errors"
)

// upperCodec parses any body into a single paragraph and encodes documents
// by upper-casing their text. Used to observe gateway pass-through.
type upperCodec struct {
	format     string
	parseErr   error
	encodeErr  error
	parseCalls atomic.Int32
}

func (f *upperCodec) Format() string      { return f.format }
func (f *upperCodec) ContentType() string { return "text/plain; charset=utf-8" }

func (f *upperCodec) Parse(raw []byte) (*document.Doc, error) {
	f.parseCalls.Add(1)
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return document.New(document.Paragraph(document.Text(string(raw)))), nil
}

func (f *upperCodec) Encode(doc *document.Doc) ([]byte, error) {
	if f.encodeErr != nil {
		return nil, f.encodeErr
	}
	return []byte(strings.ToUpper(doc.PlainText())), nil
}

func newTestConverter(t *testing.T, codecs ...codec.Codec) *Converter {
	t.Helper()
	registry := codec.NewRegistry()
	for _, c := range codecs {
		require.NoError(t, registry.Register(c))
	}
	converter, err := NewConverter(registry)
	require.NoError(t, err)
	return converter
}

func TestNewConverterRequiresRegistry(t *testing.T) {
	_, err := NewConverter(nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsFatal(err))
}

func TestConvertPipesParseToEncode(t *testing.T) {
	converter := newTestConverter(t,
		&upperCodec{format: "a"},
		&upperCodec{format: "b"},
	)

	body, err := converter.Convert(context.Background(), "a", "b", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(body))
}

func TestConvertSameFormatBothSides(t *testing.T) {
	converter := newTestConverter(t, &upperCodec{format: "a"})

	body, err := converter.Convert(context.Background(), "a", "a", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "X", string(body))
}

func TestConvertUnknownFormat(t *testing.T) {
	known := &upperCodec{format: "a"}
	converter := newTestConverter(t, known)

	tests := []struct {
		name   string
		input  string
		output string
		want   string
	}{
		{"unknown input", "z", "a", "z"},
		{"unknown output", "a", "z", "z"},
		{"both unknown reports input first", "x", "y", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known.parseCalls.Store(0)

			_, err := converter.Convert(context.Background(), tt.input, tt.output, []byte("body"))
			require.Error(t, err)

			var convErr *ConversionError
			require.True(t, stderrors.As(err, &convErr))
			assert.Equal(t, StageResolve, convErr.Stage)
			assert.Equal(t, tt.want, convErr.Format)
			assert.ErrorIs(t, err, pkgerrors.ErrUnknownFormat)

			// Codecs are never invoked on resolution failure
			assert.Zero(t, known.parseCalls.Load())
		})
	}
}

func TestConvertNoNormalization(t *testing.T) {
	converter := newTestConverter(t, &upperCodec{format: "md"})

	_, err := converter.Convert(context.Background(), "MD", "md", []byte("x"))
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, stderrors.As(err, &convErr))
	assert.Equal(t, "MD", convErr.Format)
}

func TestConvertParseFailure(t *testing.T) {
	cause := pkgerrors.WrapInvalid(
		fmt.Errorf("%w: bad syntax", pkgerrors.ErrParseFailed), "Codec", "Parse", "decode")
	converter := newTestConverter(t,
		&upperCodec{format: "a", parseErr: cause},
		&upperCodec{format: "b"},
	)

	_, err := converter.Convert(context.Background(), "a", "b", []byte("<<malformed>>"))
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, stderrors.As(err, &convErr))
	assert.Equal(t, StageParse, convErr.Stage)
	assert.Equal(t, "a", convErr.Format)
	assert.ErrorIs(t, err, pkgerrors.ErrParseFailed)
}

func TestConvertEncodeFailure(t *testing.T) {
	cause := pkgerrors.WrapFatal(
		fmt.Errorf("%w: foreign shape", pkgerrors.ErrEncodeFailed), "Codec", "Encode", "render")
	converter := newTestConverter(t,
		&upperCodec{format: "a"},
		&upperCodec{format: "b", encodeErr: cause},
	)

	_, err := converter.Convert(context.Background(), "a", "b", []byte("body"))
	require.Error(t, err)

	var convErr *ConversionError
	require.True(t, stderrors.As(err, &convErr))
	assert.Equal(t, StageEncode, convErr.Stage)
	assert.Equal(t, "b", convErr.Format)
	assert.ErrorIs(t, err, pkgerrors.ErrEncodeFailed)
}

func TestConvertCancelledContext(t *testing.T) {
	converter := newTestConverter(t, &upperCodec{format: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := converter.Convert(ctx, "a", "a", []byte("x"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsTransient(err))
}

func TestConvertConcurrentIdenticalRequests(t *testing.T) {
	converter := newTestConverter(t,
		&upperCodec{format: "a"},
		&upperCodec{format: "b"},
	)

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, err := converter.Convert(context.Background(), "a", "b", []byte("same body"))
			assert.NoError(t, err)
			results[i] = string(body)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "SAME BODY", r)
	}
}

func TestFormatsAndContentType(t *testing.T) {
	converter := newTestConverter(t,
		&upperCodec{format: "b"},
		&upperCodec{format: "a"},
	)

	assert.Equal(t, []string{"a", "b"}, converter.Formats())
	assert.Equal(t, "text/plain; charset=utf-8", converter.ContentType("a"))
	assert.Empty(t, converter.ContentType("z"))
}
