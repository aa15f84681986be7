// Package dsv parses delimiter-separated value DataSources (CSV, TSV...) using encoding/csv.
package dsv
