package schema

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrTypeMismatch is returned when a cell cannot be coerced to the requested kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedType is returned when a Go value has no storable representation.
	ErrUnsupportedType = errors.New("unsupported type")
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single storable cell. Only the field matching kind is set.
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

func Null() Value { return Value{} }
func Integer(v int64) Value { return Value{kind: KindInteger, i: v} }
func Real(v float64) Value { return Value{kind: KindReal, f: v} }
func Text(v string) Value { return Value{kind: KindText, s: v} }
func Blob(v []byte) Value { return Value{kind: KindBlob, b: v} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string { return v.s }
func (v Value) Bytes() []byte { return v.b }

// Equal reports whether two values hold the same variant and payload
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == other.i
	case KindReal:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case KindText:
		return v.s == other.s
	case KindBlob:
		return string(v.b) == string(other.b)
	default:
		return true
	}
}

// String is a human-readable rendering, not a SQL literal
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return "x'" + hex.EncodeToString(v.b) + "'"
	default:
		return "NULL"
	}
}

// Literal renders the value exactly as it must appear inside SQL text
func (v Value) Literal() string {
	switch v.kind {
	case KindInteger:
		if v.i == math.MinInt64 {
			// the tokenizer reads 9223372036854775808 as a real before negating
			return "(-9223372036854775807 - 1)"
		}
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return realLiteral(v.f)
	case KindText:
		return textLiteral(v.s)
	case KindBlob:
		return "X'" + strings.ToUpper(hex.EncodeToString(v.b)) + "'"
	default:
		return "NULL"
	}
}

func realLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NULL"
	case math.IsInf(f, 1):
		return "9e999"
	case math.IsInf(f, -1):
		return "-9e999"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func textLiteral(s string) string {
	if !hasControl(s) {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}

	// Control bytes leave the quoted runs and become char(N) terms. They are
	// ASCII, so every other byte is copied unchanged.
	var parts []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, "'"+strings.ReplaceAll(run.String(), "'", "''")+"'")
			run.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		if isControl(s[i]) {
			flush()
			parts = append(parts, fmt.Sprintf("char(%d)", s[i]))
			continue
		}
		run.WriteByte(s[i])
	}
	flush()

	return "(" + strings.Join(parts, " || ") + ")"
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if isControl(s[i]) {
			return true
		}
	}
	return false
}

func isControl(b byte) bool {
	return b < 0x20 || b == 0x7f
}

// ValueOf converts a Go scalar into a Value. Pointers are dereferenced and a
// nil pointer becomes Null. Booleans are stored as 0 / 1.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case int:
		return Integer(int64(x)), nil
	case int8:
		return Integer(int64(x)), nil
	case int16:
		return Integer(int64(x)), nil
	case int32:
		return Integer(int64(x)), nil
	case int64:
		return Integer(x), nil
	case uint8:
		return Integer(int64(x)), nil
	case uint16:
		return Integer(int64(x)), nil
	case uint32:
		return Integer(int64(x)), nil
	case uint:
		return fromUint(uint64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return Real(float64(x)), nil
	case float64:
		return Real(x), nil
	case bool:
		if x {
			return Integer(1), nil
		}
		return Integer(0), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case time.Time:
		return Text(x.UTC().Format(time.RFC3339Nano)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Real(rv.Float()), nil
	case reflect.Bool:
		return ValueOf(rv.Bool())
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Blob(rv.Bytes()), nil
		}
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: %d overflows a 64-bit signed integer", ErrTypeMismatch, u)
	}
	return Integer(int64(u)), nil
}

// Detect decodes a cell using the storage class reported by the engine
func Detect(cell any) (Value, error) {
	switch x := cell.(type) {
	case nil:
		return Null(), nil
	case int64:
		return Integer(x), nil
	case float64:
		return Real(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case bool:
		return ValueOf(x)
	case time.Time:
		return ValueOf(x)
	}
	return ValueOf(cell)
}

// FromCell decodes a cell into the requested kind. A NULL cell always
// decodes to Null; the caller decides whether absence is acceptable.
// Conversions that would lose information fail with ErrTypeMismatch.
func FromCell(cell any, target Kind) (Value, error) {
	v, err := Detect(cell)
	if err != nil {
		return Value{}, err
	}
	if v.kind == KindNull || v.kind == target {
		return v, nil
	}

	switch target {
	case KindInteger:
		switch v.kind {
		case KindReal:
			if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
				return Integer(int64(v.f)), nil
			}
		case KindText:
			if i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64); err == nil {
				return Integer(i), nil
			}
		}
	case KindReal:
		switch v.kind {
		case KindInteger:
			f := float64(v.i)
			if f < math.MaxInt64 && int64(f) == v.i {
				return Real(f), nil
			}
		case KindText:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64); err == nil {
				return Real(f), nil
			}
		}
	case KindText:
		switch v.kind {
		case KindInteger:
			return Text(strconv.FormatInt(v.i, 10)), nil
		case KindReal:
			return Text(strconv.FormatFloat(v.f, 'g', -1, 64)), nil
		case KindBlob:
			if utf8.Valid(v.b) {
				return Text(string(v.b)), nil
			}
		}
	case KindBlob:
		if v.kind == KindText {
			return Blob([]byte(v.s)), nil
		}
	}

	return Value{}, fmt.Errorf("%w: cannot read %s cell as %s", ErrTypeMismatch, v.kind, target)
}
