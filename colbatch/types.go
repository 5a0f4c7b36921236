// Package colbatch provides the minimal in-memory columnar primitives this
// repository's indexes are built on. The real columnar batch file reader/
// writer (Arrow record batches on disk) is an external collaborator out of
// scope for this repository; colbatch defines just enough of the Arrow
// validity-bitmap convention -- a typed, nullable column plus a
// fixed-size-list column for vectors -- to express the data model without
// depending on Arrow itself.
package colbatch

// ElementType tags the scalar element type carried by a Column or the item
// type of a FixedSizeListColumn. It is also the item-type vocabulary of a
// Field descriptor, as advertised by the PQ code column and the residual
// column. The PQ protobuf Tensor message uses its own TensorDataType tags
// (see vectorindex/pq/proto.go).
type ElementType int

const (
	// Unknown is the zero value; no Column should carry it.
	Unknown ElementType = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float16
	Float32
	Float64
	Bool
	String
)

// Field describes one output column of a schema: its name, the scalar type
// of its elements, and -- for fixed-size-list columns such as a PQ code or
// residual vector column -- the list width. ListWidth is 0 for a plain
// scalar column.
type Field struct {
	Name      string
	ItemType  ElementType
	ListWidth int
	Nullable  bool
}

// FixedSizeListField builds the Field descriptor for a FixedSizeList<ItemType,
// width> column, the shape a PQ code column or a residual/vector column
// advertises to a reader assembling a schema.
func FixedSizeListField(name string, itemType ElementType, width int, nullable bool) Field {
	return Field{Name: name, ItemType: itemType, ListWidth: width, Nullable: nullable}
}

func (t ElementType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}
