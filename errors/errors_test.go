package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		name     string
		class    ErrorClass
		expected string
	}{
		{"transient", ErrorTransient, "transient"},
		{"invalid", ErrorInvalid, "invalid"},
		{"fatal", ErrorFatal, "fatal"},
		{"unknown", ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.class.String())
		})
	}
}

func TestClassifiedError(t *testing.T) {
	base := stderrors.New("underlying failure")
	ce := &ClassifiedError{
		Class:     ErrorInvalid,
		Err:       base,
		Message:   "Codec.Parse: body parse failed",
		Component: "Codec",
		Operation: "Parse",
	}

	assert.Equal(t, "Codec.Parse: body parse failed", ce.Error())
	assert.Equal(t, base, ce.Unwrap())

	// Message falls back to the wrapped error
	noMsg := &ClassifiedError{Class: ErrorFatal, Err: base}
	assert.Equal(t, "underlying failure", noMsg.Error())
}

func TestWrapFormat(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, "Registry", "Register", "duplicate check")

	require.Error(t, err)
	assert.Equal(t, "Registry.Register: duplicate check failed: boom", err.Error())
	assert.True(t, stderrors.Is(err, base))

	assert.NoError(t, Wrap(nil, "Registry", "Register", "noop"))
}

func TestWrapClassification(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name      string
		wrap      func(error, string, string, string) error
		transient bool
		invalid   bool
		fatal     bool
	}{
		{"transient", WrapTransient, true, false, false},
		{"invalid", WrapInvalid, false, true, false},
		{"fatal", WrapFatal, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap(base, "Gateway", "Convert", "pipeline")
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
			assert.Equal(t, tt.invalid, IsInvalid(err))
			assert.Equal(t, tt.fatal, IsFatal(err))

			// Classification survives another layer of wrapping
			outer := fmt.Errorf("outer: %w", err)
			assert.Equal(t, tt.transient, IsTransient(outer))
			assert.Equal(t, tt.invalid, IsInvalid(outer))
			assert.Equal(t, tt.fatal, IsFatal(outer))

			// nil passthrough
			assert.NoError(t, tt.wrap(nil, "Gateway", "Convert", "pipeline"))
		})
	}
}

func TestSentinelClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		invalid bool
		fatal   bool
	}{
		{"unknown format is invalid", ErrUnknownFormat, true, false},
		{"parse failure is invalid", ErrParseFailed, true, false},
		{"empty document is invalid", ErrEmptyDocument, true, false},
		{"encode failure is fatal", ErrEncodeFailed, false, true},
		{"duplicate format is fatal", ErrDuplicateFormat, false, true},
		{"invalid config is fatal", ErrInvalidConfig, false, true},
		{"missing config is fatal", ErrMissingConfig, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.invalid, IsInvalid(tt.err))
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
			// Wrapped sentinels keep their classification
			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.Equal(t, tt.invalid, IsInvalid(wrapped))
			assert.Equal(t, tt.fatal, IsFatal(wrapped))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(context.Canceled))
	assert.True(t, IsTransient(stderrors.New("connection refused")))
	assert.True(t, IsTransient(stderrors.New("service temporarily unavailable")))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(ErrUnknownFormat))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil defaults to transient", nil, ErrorTransient},
		{"unknown defaults to transient", stderrors.New("mystery"), ErrorTransient},
		{"invalid sentinel", ErrParseFailed, ErrorInvalid},
		{"fatal sentinel", ErrDuplicateFormat, ErrorFatal},
		{"classified wins", WrapFatal(stderrors.New("x"), "C", "M", "a"), ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}
