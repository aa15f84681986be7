package skyshade

import "fmt"

// ColumnType is an interface which is implemented to define a supported fixed-width column type.
type ColumnType interface {
	Name() string                  // Name returns the registered name of this type, used when Schemas are serialized
	Size() int                     // Size returns the size in bytes of a column type
	ToString(v interface{}) string // ToString produces a string representation of a value of this type
}

// BoolColumnType is a column type which stores a boolean value
type BoolColumnType struct{}

// Name of a BoolColumnType
func (b *BoolColumnType) Name() string {
	return "bool"
}

// Size in bytes of a BoolColumn
func (b *BoolColumnType) Size() int {
	return 1
}

// ToString produces a string representation of a value of a BoolColumnType value
func (b *BoolColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%t", v.(bool))
}

// Uint8ColumnType is a column type which stores a uint8 value
type Uint8ColumnType struct{}

// Name of a Uint8ColumnType
func (b *Uint8ColumnType) Name() string {
	return "uint8"
}

// Size in bytes of a Uint8Column
func (b *Uint8ColumnType) Size() int {
	return 1
}

// ToString produces a string representation of a value of a Uint8ColumnType value
func (b *Uint8ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(uint8))
}

// Int32ColumnType is a column type which stores an int32 value
type Int32ColumnType struct{}

// Name of an Int32ColumnType
func (b *Int32ColumnType) Name() string {
	return "int32"
}

// Size in bytes of an Int32Column
func (b *Int32ColumnType) Size() int {
	return 4
}

// ToString produces a string representation of a value of an Int32ColumnType value
func (b *Int32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int32))
}

// Int64ColumnType is a column type which stores an int64 value
type Int64ColumnType struct{}

// Name of an Int64ColumnType
func (b *Int64ColumnType) Name() string {
	return "int64"
}

// Size in bytes of an Int64Column
func (b *Int64ColumnType) Size() int {
	return 8
}

// ToString produces a string representation of a value of an Int64ColumnType value
func (b *Int64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int64))
}

// Float32ColumnType is a column type which stores a float32 value
type Float32ColumnType struct{}

// Name of a Float32ColumnType
func (b *Float32ColumnType) Name() string {
	return "float32"
}

// Size in bytes of a Float32Column
func (b *Float32ColumnType) Size() int {
	return 4
}

// ToString produces a string representation of a value of a Float32ColumnType value
func (b *Float32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%g", v.(float32))
}

// Float64ColumnType is a column type which stores a float64 value
type Float64ColumnType struct{}

// Name of a Float64ColumnType
func (b *Float64ColumnType) Name() string {
	return "float64"
}

// Size in bytes of a Float64Column
func (b *Float64ColumnType) Size() int {
	return 8
}

// ToString produces a string representation of a value of a Float64ColumnType value
func (b *Float64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%g", v.(float64))
}

// ColumnTypeFromName returns a fresh ColumnType for a name produced by ColumnType.Name()
func ColumnTypeFromName(name string) (ColumnType, error) {
	switch name {
	case "bool":
		return &BoolColumnType{}, nil
	case "uint8":
		return &Uint8ColumnType{}, nil
	case "int32":
		return &Int32ColumnType{}, nil
	case "int64":
		return &Int64ColumnType{}, nil
	case "float32":
		return &Float32ColumnType{}, nil
	case "float64":
		return &Float64ColumnType{}, nil
	default:
		return nil, fmt.Errorf("%s is not a known column type", name)
	}
}
