package skyshade

// A Filter is a declarative, inclusive range predicate applied to Rows as they are loaded.
// Rows whose value for Column is nil, NaN or outside [Min, Max] are dropped.
type Filter struct {
	Column string
	Min    float64
	Max    float64
}

// A DataFrame describes a projection of columnar data from a DataSource,
// along with the Filters to apply as it is loaded. DataFrames are lazy:
// no Rows are materialized until the DataFrame is persisted within a cluster.
type DataFrame interface {
	GetSchema() Schema                    // GetSchema returns the (projected) Schema of a DataFrame
	GetDataSource() DataSource            // GetDataSource returns the DataSource of a DataFrame
	GetFilters() []Filter                 // GetFilters returns the Filters applied at load time
	DropsNil() bool                       // DropsNil returns true iff Rows with any nil or NaN value are dropped at load time
	Where(filters ...Filter) DataFrame    // Where returns a new DataFrame with additional Filters
	DropNil() DataFrame                   // DropNil returns a new DataFrame which drops Rows containing nil or NaN values
	AnalyzeSource() (PartitionMap, error) // AnalyzeSource returns a PartitionMap for the source data for this DataFrame
}
