package codec

import (
	"fmt"
	"sort"

	"github.com/wagov/convertd/errors"
)

// Registry maps format identifiers to codecs. It is populated once during
// process startup and read-only afterwards, so lookups need no locking.
// Register must not be called once requests are being served.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register binds a codec under its format identifier. Registering the same
// identifier twice is a configuration error and fatal at startup.
func (r *Registry) Register(c Codec) error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register",
			"codec validation")
	}

	id := c.Format()
	if id == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register",
			"format identifier validation")
	}

	if _, exists := r.codecs[id]; exists {
		return errors.WrapFatal(
			fmt.Errorf("%w: %q", errors.ErrDuplicateFormat, id),
			"Registry", "Register", "duplicate format check")
	}

	r.codecs[id] = c
	return nil
}

// Resolve returns the codec bound to the identifier. The lookup is pure:
// it never mutates state and is safe for concurrent calls.
func (r *Registry) Resolve(id string) (Codec, bool) {
	c, ok := r.codecs[id]
	return c, ok
}

// Formats returns the registered format identifiers in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.codecs))
	for id := range r.codecs {
		formats = append(formats, id)
	}
	sort.Strings(formats)
	return formats
}

// Len returns the number of registered codecs.
func (r *Registry) Len() int {
	return len(r.codecs)
}
