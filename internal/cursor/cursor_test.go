package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/litestore/internal/schema"
)

func row() *Cursor {
	return New(
		[]any{int64(7), 2.5, "text", []byte{1, 2}, nil, "12"},
		[]string{"id", "score", "name", "raw", "parent", "numeric"},
	)
}

func TestNextDetectsKinds(t *testing.T) {
	c := row()

	kinds := []schema.Kind{
		schema.KindInteger,
		schema.KindReal,
		schema.KindText,
		schema.KindBlob,
		schema.KindNull,
		schema.KindText,
	}
	for i, want := range kinds {
		v, err := c.Next()
		require.NoError(t, err, "column %d", i)
		assert.Equal(t, want, v.Kind(), "column %d", i)
	}

	_, err := c.Next()
	assert.ErrorIs(t, err, ErrEndOfRow)
}

func TestIndexedAccessDoesNotAdvance(t *testing.T) {
	c := row()

	name, err := Unwrap[string](c.Column(2))
	require.NoError(t, err)
	assert.Equal(t, "text", name)

	v, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int())
}

func TestUnwrap(t *testing.T) {
	c := row()

	id, err := Unwrap[int64](c.Column(0))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	small, err := Unwrap[int32](c.Column(0))
	require.NoError(t, err)
	assert.Equal(t, int32(7), small)

	score, err := Unwrap[float64](c.Column(1))
	require.NoError(t, err)
	assert.Equal(t, 2.5, score)

	raw, err := Unwrap[[]byte](c.Column(3))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, raw)

	n, err := Unwrap[int](c.Column(5))
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	flag, err := Unwrap[bool](c.Column(0))
	require.NoError(t, err)
	assert.True(t, flag)

	asReal, err := Unwrap[float64](c.Column(0))
	require.NoError(t, err)
	assert.Equal(t, 7.0, asReal)
}

func TestUnwrapFailures(t *testing.T) {
	c := row()

	_, err := Unwrap[int64](c.Column(4))
	assert.ErrorIs(t, err, ErrDecode, "NULL into non-optional")

	_, err = Unwrap[int64](c.Column(2))
	assert.ErrorIs(t, err, ErrDecode, "non numeric text")
	assert.ErrorIs(t, err, schema.ErrTypeMismatch)

	_, err = Unwrap[int64](c.Column(1))
	assert.ErrorIs(t, err, ErrDecode, "fractional real")

	_, err = Unwrap[string](c.Column(10))
	assert.ErrorIs(t, err, ErrColumnOutOfRange)

	big := New([]any{int64(1) << 40}, nil)
	_, err = Unwrap[int32](big.Column(0))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestOptional(t *testing.T) {
	c := row()

	parent, err := Optional[string](c.Column(4))
	require.NoError(t, err)
	assert.Nil(t, parent)

	name, err := Optional[string](c.Column(2))
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "text", *name)

	_, err = Optional[int64](c.Column(3))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestRead(t *testing.T) {
	c := row()

	id, err := Read[int64](c)
	require.NoError(t, err)
	score, err := Read[float64](c)
	require.NoError(t, err)
	name, err := Read[string](c)
	require.NoError(t, err)
	raw, err := Read[[]byte](c)
	require.NoError(t, err)
	parent, err := ReadOptional[string](c)
	require.NoError(t, err)

	assert.Equal(t, int64(7), id)
	assert.Equal(t, 2.5, score)
	assert.Equal(t, "text", name)
	assert.Equal(t, []byte{1, 2}, raw)
	assert.Nil(t, parent)
}

func TestNamed(t *testing.T) {
	c := row()

	score, err := Unwrap[float64](c.Named("score"))
	require.NoError(t, err)
	assert.Equal(t, 2.5, score)

	_, err = Unwrap[float64](c.Named("missing"))
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
	assert.True(t, c.Column(4).IsNull())
}
