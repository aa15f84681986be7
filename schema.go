package skyshade

// Schema is a mapping from column names to byte offsets
// within a Row. It allows one to obtain offsets by name,
// define new columns and select a projection of columns.
type Schema interface {
	Equals(otherSchema Schema) error
	Clone() Schema
	RowWidth() int // does not include padding - this is the size of the data which literally represents the row
	Size() int     // includes padding - this is the size of the data actually stored for a row
	NumColumns() int
	GetOffset(colName string) (offset Column, err error)
	HasColumn(colName string) bool
	CreateColumn(colName string, columnType ColumnType) (newSchema Schema, err error)
	Project(colNames ...string) (newSchema Schema, err error) // Project produces a new Schema containing only the given columns, in the given order
	ColumnNames() []string
	ColumnTypes() []ColumnType
	ForEachColumn(fn func(name string, col Column) error) error
}
