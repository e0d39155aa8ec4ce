// Package cursor decodes the cells of one result row into typed values.
//
// A Cursor wraps exactly one row handle and is meant for a single walk by a
// single owner. Deserializers read columns in the order the table declares
// them; that order is part of every table's contract.
package cursor

import (
	"errors"
	"fmt"
	"math"

	"github.com/koba/litestore/internal/schema"
)

var (
	// ErrDecode is returned when a cell is NULL where a value is required,
	// or cannot be converted to the requested type.
	ErrDecode = errors.New("decode error")

	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrEndOfRow is returned by Next once every column has been read.
	ErrEndOfRow = errors.New("end of row")
)

// Cursor walks the cells of one row
type Cursor struct {
	cells   []any
	columns []string
	index   int
}

// New wraps the cells of a row; columns may be nil
func New(cells []any, columns []string) *Cursor {
	return &Cursor{cells: cells, columns: columns}
}

// Len is the number of columns in the row
func (c *Cursor) Len() int { return len(c.cells) }

// Columns returns the column names reported by the engine, if any
func (c *Cursor) Columns() []string { return c.columns }

// Next decodes the next column using the storage class the engine reported
// and advances the cursor.
func (c *Cursor) Next() (schema.Value, error) {
	if c.index >= len(c.cells) {
		return schema.Value{}, ErrEndOfRow
	}
	cell := c.cells[c.index]
	c.index++
	v, err := schema.Detect(cell)
	if err != nil {
		return schema.Value{}, fmt.Errorf("%w: column %d: %w", ErrDecode, c.index-1, err)
	}
	return v, nil
}

// Column returns column i without moving the cursor
func (c *Cursor) Column(i int) Cell {
	if i < 0 || i >= len(c.cells) {
		return Cell{index: i, err: fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, i, len(c.cells))}
	}
	return Cell{index: i, raw: c.cells[i]}
}

// Named returns the column with the given engine-reported name
func (c *Cursor) Named(name string) Cell {
	for i, col := range c.columns {
		if col == name {
			return c.Column(i)
		}
	}
	return Cell{index: -1, err: fmt.Errorf("%w: no column %q", ErrColumnOutOfRange, name)}
}

// Cell is one undecoded column
type Cell struct {
	index int
	raw   any
	err   error
}

// IsNull reports whether the cell holds SQL NULL
func (c Cell) IsNull() bool { return c.err == nil && c.raw == nil }

// Value decodes the cell into the requested kind
func (c Cell) Value(kind schema.Kind) (schema.Value, error) {
	if c.err != nil {
		return schema.Value{}, c.err
	}
	v, err := schema.FromCell(c.raw, kind)
	if err != nil {
		return schema.Value{}, fmt.Errorf("%w: column %d: %w", ErrDecode, c.index, err)
	}
	return v, nil
}

// Scalar lists the Go types a cell can be decoded into
type Scalar interface {
	int | int32 | int64 | float32 | float64 | bool | string | []byte
}

// Unwrap decodes a non-NULL cell into T
func Unwrap[T Scalar](c Cell) (T, error) {
	var out T
	if c.err != nil {
		return out, c.err
	}
	if c.raw == nil {
		return out, fmt.Errorf("%w: column %d is NULL", ErrDecode, c.index)
	}
	err := decodeInto(c, &out)
	return out, err
}

// Optional decodes the cell into T, returning nil without error for NULL
func Optional[T Scalar](c Cell) (*T, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.raw == nil {
		return nil, nil
	}
	var out T
	if err := decodeInto(c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Read decodes the next column into T and advances the cursor
func Read[T Scalar](c *Cursor) (T, error) {
	cell := c.Column(c.index)
	if cell.err == nil {
		c.index++
	}
	return Unwrap[T](cell)
}

// ReadOptional is Read for nullable columns
func ReadOptional[T Scalar](c *Cursor) (*T, error) {
	cell := c.Column(c.index)
	if cell.err == nil {
		c.index++
	}
	return Optional[T](cell)
}

func decodeInto(c Cell, out any) error {
	switch p := out.(type) {
	case *int64:
		v, err := c.Value(schema.KindInteger)
		if err != nil {
			return err
		}
		*p = v.Int()
	case *int:
		v, err := c.Value(schema.KindInteger)
		if err != nil {
			return err
		}
		if v.Int() < math.MinInt || v.Int() > math.MaxInt {
			return fmt.Errorf("%w: column %d: %d overflows int", ErrDecode, c.index, v.Int())
		}
		*p = int(v.Int())
	case *int32:
		v, err := c.Value(schema.KindInteger)
		if err != nil {
			return err
		}
		if v.Int() < math.MinInt32 || v.Int() > math.MaxInt32 {
			return fmt.Errorf("%w: column %d: %d overflows int32", ErrDecode, c.index, v.Int())
		}
		*p = int32(v.Int())
	case *bool:
		v, err := c.Value(schema.KindInteger)
		if err != nil {
			return err
		}
		*p = v.Int() != 0
	case *float64:
		v, err := c.Value(schema.KindReal)
		if err != nil {
			return err
		}
		*p = v.Float()
	case *float32:
		v, err := c.Value(schema.KindReal)
		if err != nil {
			return err
		}
		*p = float32(v.Float())
	case *string:
		v, err := c.Value(schema.KindText)
		if err != nil {
			return err
		}
		*p = v.Str()
	case *[]byte:
		v, err := c.Value(schema.KindBlob)
		if err != nil {
			return err
		}
		*p = v.Bytes()
	default:
		return fmt.Errorf("%w: unsupported target %T", ErrDecode, out)
	}
	return nil
}
