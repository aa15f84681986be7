package dataframe

import (
	"fmt"

	"github.com/go-sif/skyshade"
)

// A dataFrameImpl implements DataFrame internally
type dataFrameImpl struct {
	source  skyshade.DataSource // the source of the data
	schema  skyshade.Schema     // the projected schema of the data
	filters []skyshade.Filter   // range filters applied as data is loaded
	dropNil bool                // iff true, rows containing nil or NaN values are dropped as data is loaded
}

// CreateDataFrame is a factory for DataFrames. This function is not intended to be used directly,
// as DataFrames are returned by DataSource packages.
func CreateDataFrame(source skyshade.DataSource, schema skyshade.Schema) skyshade.DataFrame {
	return &dataFrameImpl{
		source:  source,
		schema:  schema,
		filters: []skyshade.Filter{},
	}
}

// GetSchema returns the Schema of a DataFrame
func (df *dataFrameImpl) GetSchema() skyshade.Schema {
	return df.schema
}

// GetDataSource returns the DataSource of a DataFrame
func (df *dataFrameImpl) GetDataSource() skyshade.DataSource {
	return df.source
}

// GetFilters returns the load-time Filters of a DataFrame
func (df *dataFrameImpl) GetFilters() []skyshade.Filter {
	res := make([]skyshade.Filter, len(df.filters))
	copy(res, df.filters)
	return res
}

// DropsNil returns true iff Rows containing nil or NaN values are dropped at load time
func (df *dataFrameImpl) DropsNil() bool {
	return df.dropNil
}

// Where returns a copy of this DataFrame with additional Filters
func (df *dataFrameImpl) Where(filters ...skyshade.Filter) skyshade.DataFrame {
	next := df.clone()
	next.filters = append(next.filters, filters...)
	return next
}

// DropNil returns a copy of this DataFrame which drops Rows containing nil or NaN values
func (df *dataFrameImpl) DropNil() skyshade.DataFrame {
	next := df.clone()
	next.dropNil = true
	return next
}

// AnalyzeSource returns a PartitionMap for the source data for this DataFrame
func (df *dataFrameImpl) AnalyzeSource() (skyshade.PartitionMap, error) {
	for _, f := range df.filters {
		if !df.schema.HasColumn(f.Column) {
			return nil, fmt.Errorf("cannot filter on column %s, which is not part of the projection %v", f.Column, df.schema.ColumnNames())
		}
	}
	return df.source.Analyze()
}

func (df *dataFrameImpl) clone() *dataFrameImpl {
	return &dataFrameImpl{
		source:  df.source,
		schema:  df.schema,
		filters: df.GetFilters(),
		dropNil: df.dropNil,
	}
}
