package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null(), "NULL"},
		{"integer", Integer(42), "42"},
		{"negative integer", Integer(-7), "-7"},
		{"min integer", Integer(math.MinInt64), "(-9223372036854775807 - 1)"},
		{"real", Real(1.5), "1.5"},
		{"integral real", Real(2), "2.0"},
		{"exponent real", Real(1e300), "1e+300"},
		{"nan", Real(math.NaN()), "NULL"},
		{"inf", Real(math.Inf(1)), "9e999"},
		{"text", Text("v"), "'v'"},
		{"quoted text", Text("it's"), "'it''s'"},
		{"empty text", Text(""), "''"},
		{"control text", Text("a\nb"), "('a' || char(10) || 'b')"},
		{"leading control", Text("\t'x'"), "(char(9) || '''x''')"},
		{"multibyte beside control", Text("é\n"), "('é' || char(10))"},
		{"invalid utf8 beside control", Text("\xff\n\xfe"), "('\xff' || char(10) || '\xfe')"},
		{"blob", Blob([]byte{0x0a, 0xff}), "X'0AFF'"},
		{"empty blob", Blob(nil), "X''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Literal())
		})
	}
}

func TestValueOf(t *testing.T) {
	name := "x"
	var nilName *string

	type label string

	tests := []struct {
		in   any
		want Value
	}{
		{nil, Null()},
		{1, Integer(1)},
		{int32(-3), Integer(-3)},
		{uint16(9), Integer(9)},
		{true, Integer(1)},
		{false, Integer(0)},
		{2.5, Real(2.5)},
		{"s", Text("s")},
		{[]byte("b"), Blob([]byte("b"))},
		{&name, Text("x")},
		{nilName, Null()},
		{label("named"), Text("named")},
		{Integer(5), Integer(5)},
	}

	for _, tt := range tests {
		got, err := ValueOf(tt.in)
		require.NoError(t, err, "%#v", tt.in)
		assert.True(t, tt.want.Equal(got), "%#v: got %v (%s)", tt.in, got, got.Kind())
	}

	_, err := ValueOf(uint64(math.MaxUint64))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueOf(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFromCell(t *testing.T) {
	t.Run("same kind", func(t *testing.T) {
		v, err := FromCell(int64(3), KindInteger)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v.Int())
	})

	t.Run("null stays null", func(t *testing.T) {
		for _, kind := range []Kind{KindInteger, KindReal, KindText, KindBlob} {
			v, err := FromCell(nil, kind)
			require.NoError(t, err)
			assert.True(t, v.IsNull())
		}
	})

	t.Run("numeric text to integer", func(t *testing.T) {
		v, err := FromCell("12", KindInteger)
		require.NoError(t, err)
		assert.Equal(t, int64(12), v.Int())
	})

	t.Run("non numeric text to integer", func(t *testing.T) {
		_, err := FromCell("twelve", KindInteger)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("fractional real to integer", func(t *testing.T) {
		_, err := FromCell(1.5, KindInteger)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("integral real to integer", func(t *testing.T) {
		v, err := FromCell(4.0, KindInteger)
		require.NoError(t, err)
		assert.Equal(t, int64(4), v.Int())
	})

	t.Run("integer to real", func(t *testing.T) {
		v, err := FromCell(int64(3), KindReal)
		require.NoError(t, err)
		assert.Equal(t, 3.0, v.Float())
	})

	t.Run("large integer to real", func(t *testing.T) {
		_, err := FromCell(int64(math.MaxInt64), KindReal)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("integer to text", func(t *testing.T) {
		v, err := FromCell(int64(7), KindText)
		require.NoError(t, err)
		assert.Equal(t, "7", v.Str())
	})

	t.Run("blob to integer", func(t *testing.T) {
		_, err := FromCell([]byte{1}, KindInteger)
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("text to blob", func(t *testing.T) {
		v, err := FromCell("ab", KindBlob)
		require.NoError(t, err)
		assert.Equal(t, []byte("ab"), v.Bytes())
	})
}

func TestColumnDefinition(t *testing.T) {
	def := Text("none")
	tests := []struct {
		col  Column
		want string
	}{
		{Column{Name: "k1", Type: TypeInteger}, "k1 INTEGER"},
		{Column{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true}, "id INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Column{Name: "id", Type: TypeText, PrimaryKey: true, AutoIncrement: true}, "id TEXT PRIMARY KEY"},
		{Column{Name: "name", Type: TypeText, NotNull: true, Unique: true}, "name TEXT NOT NULL UNIQUE"},
		{Column{Name: "tag", Type: TypeText, Default: &def}, "tag TEXT DEFAULT 'none'"},
		{Column{Name: "raw", Type: TypeBlob}, "raw BLOB"},
		{Column{Name: "score", Type: TypeReal, NotNull: true}, "score REAL NOT NULL"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.col.Definition())
	}
}
