package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagov/convertd/document"
	pkgerrors "github.com/wagov/convertd/errors"
)

// fakeCodec is a minimal codec for registry tests.
type fakeCodec struct {
	format string
}

func (f *fakeCodec) Format() string      { return f.format }
func (f *fakeCodec) ContentType() string { return "text/plain; charset=utf-8" }

func (f *fakeCodec) Parse(raw []byte) (*document.Doc, error) {
	return document.New(document.Paragraph(document.Text(string(raw)))), nil
}

func (f *fakeCodec) Encode(doc *document.Doc) ([]byte, error) {
	return []byte(doc.PlainText()), nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&fakeCodec{format: "a"}))
	require.NoError(t, r.Register(&fakeCodec{format: "b"}))

	c, ok := r.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "a", c.Format())

	_, ok = r.Resolve("z")
	assert.False(t, ok)

	// Identifiers are case-sensitive, no normalization
	_, ok = r.Resolve("A")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Len())
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&fakeCodec{format: "md"}))

	err := r.Register(&fakeCodec{format: "md"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsFatal(err))
	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateFormat)
	assert.Contains(t, err.Error(), "md")

	// First registration is untouched
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsInvalidInput(t *testing.T) {
	r := NewRegistry()

	err := r.Register(nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalid(err))

	err = r.Register(&fakeCodec{format: ""})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalid(err))

	assert.Equal(t, 0, r.Len())
}

func TestRegistryFormatsSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"wiki", "adf", "md"} {
		require.NoError(t, r.Register(&fakeCodec{format: id}))
	}

	assert.Equal(t, []string{"adf", "md", "wiki"}, r.Formats())
}

func TestRegistryConcurrentResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeCodec{format: "md"}))
	require.NoError(t, r.Register(&fakeCodec{format: "wiki"}))

	// Registration finished; concurrent reads must all succeed
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range []string{"md", "wiki"} {
				c, ok := r.Resolve(id)
				assert.True(t, ok)
				assert.Equal(t, id, c.Format())
			}
		}()
	}
	wg.Wait()
}
