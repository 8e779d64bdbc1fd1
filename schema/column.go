package schema

import (
	"reflect"

	"github.com/segmentio/parquet-go"
	"github.com/segmentio/parquet-go/compress"
	"github.com/segmentio/parquet-go/compress/snappy"
	"github.com/segmentio/parquet-go/compress/zstd"
	"github.com/segmentio/parquet-go/deprecated"
	"github.com/segmentio/parquet-go/format"
)

// Compression selects the codec applied to the sequence and length columns.
// It changes the physical layout only, never the logical content.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionFast Compression = "fast"
	CompressionHigh Compression = "high"
)

func (c Compression) codec() compress.Codec {
	switch c {
	case CompressionFast:
		return &snappy.Codec{}
	case CompressionHigh:
		return &zstd.Codec{}
	default:
		return nil
	}
}

type column struct {
	parquet.Node
	name string
}

func newColumn(name string, node parquet.Node) *column {
	return &column{Node: node, name: name}
}

func newInt64Column(name string, codec compress.Codec) *column {
	node := parquet.Leaf(parquet.Int64Type)
	node = parquet.Encoded(node, &parquet.DeltaBinaryPacked)
	if codec != nil {
		node = parquet.Compressed(node, codec)
	}
	return newColumn(name, node)
}

func newStringColumn(name string, codec compress.Codec) *column {
	node := parquet.Leaf(parquet.ByteArrayType)
	node = parquet.Encoded(node, &parquet.RLEDictionary)
	if codec != nil {
		node = parquet.Compressed(node, codec)
	}
	return newColumn(name, node)
}

func newOptionalStringColumn(name string, codec compress.Codec) *column {
	node := parquet.Leaf(parquet.ByteArrayType)
	node = parquet.Optional(node)
	node = parquet.Encoded(node, &parquet.RLEDictionary)
	if codec != nil {
		node = parquet.Compressed(node, codec)
	}
	return newColumn(name, node)
}

func newSequenceColumn(name string, codec compress.Codec) *column {
	node := parquet.Leaf(parquet.ByteArrayType)
	node = parquet.Encoded(node, &parquet.DeltaLengthByteArray)
	if codec != nil {
		node = parquet.Compressed(node, codec)
	}
	return newColumn(name, node)
}

func (l column) Name() string { return l.name }

func (l column) Value(base reflect.Value) reflect.Value { return base }

type groupType struct {
	parquet.Type
}

func (groupType) String() string { return "group" }

func (groupType) Length() int { return 0 }

func (groupType) EstimateSize(int) int { return 0 }

func (groupType) EstimateNumValues(int) int { return 0 }

func (groupType) ColumnOrder() *format.ColumnOrder { return nil }

func (groupType) PhysicalType() *format.Type { return nil }

func (groupType) LogicalType() *format.LogicalType { return nil }

func (groupType) ConvertedType() *deprecated.ConvertedType { return nil }
