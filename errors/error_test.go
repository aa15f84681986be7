package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatasetNotFoundError(t *testing.T) {
	err := fmt.Errorf("resolve dataset: %w", DatasetNotFoundError{Candidates: []string{"/data/a.parquet", "./data/a.parquet"}})
	var target DatasetNotFoundError
	require.ErrorAs(t, err, &target)
	require.Len(t, target.Candidates, 2)
	require.Contains(t, err.Error(), "/data/a.parquet, ./data/a.parquet")
}

func TestTypedErrorMessages(t *testing.T) {
	require.Equal(t, "Value for column ra is nil", NilValueError{Name: "ra"}.Error())
	require.Equal(t, "Schema does not contain column with name dec", MissingColumnError{Name: "dec"}.Error())
	require.Equal(t, "Dataset abc is not persisted on this node", UnknownDatasetError{ID: "abc"}.Error())
}
