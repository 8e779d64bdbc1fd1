package schema

import (
	"github.com/apache/arrow/go/v10/arrow"
)

func ArrowType(column string) arrow.DataType {
	switch column {
	case LengthColumn:
		return arrow.PrimitiveTypes.Int64
	case SequenceColumn:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}
