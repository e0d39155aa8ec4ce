package schema

import (
	"fmt"
	"strings"
)

// DataType is the declared storage class of a column
type DataType int

const (
	TypeInteger DataType = iota
	TypeReal
	TypeText
	TypeBlob
)

// String returns the SQL keyword for the data type
func (t DataType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// Kind returns the value kind a column of this type stores
func (t DataType) Kind() Kind {
	switch t {
	case TypeInteger:
		return KindInteger
	case TypeReal:
		return KindReal
	case TypeText:
		return KindText
	case TypeBlob:
		return KindBlob
	default:
		return KindNull
	}
}

// Column represents a column definition owned by a table
type Column struct {
	Name          string
	Type          DataType
	PrimaryKey    bool
	AutoIncrement bool
	NotNull       bool
	Unique        bool
	Default       *Value
}

// Definition renders the column as it appears inside CREATE TABLE
func (c Column) Definition() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type.String())

	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
		// AUTOINCREMENT is only legal on an INTEGER PRIMARY KEY
		if c.AutoIncrement && c.Type == TypeInteger {
			b.WriteString(" AUTOINCREMENT")
		}
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default.Literal())
	}

	return b.String()
}
