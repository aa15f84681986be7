package datasource

import (
	"context"
	"fmt"
	"os"
	"strings"

	errors "github.com/go-sif/skyshade/errors"
	"github.com/go-sif/skyshade/logging"
)

// ExistsFunc reports whether a dataset exists at a location with a URL scheme (such as s3://bucket/prefix)
type ExistsFunc func(ctx context.Context, location string) (bool, error)

// Resolver picks the first of several candidate dataset locations which exists.
// Local paths are checked with os.Stat. Locations with a URL scheme are only
// considered when an ExistsFunc has been registered for that scheme.
type Resolver struct {
	schemes map[string]ExistsFunc
	stat    func(name string) (os.FileInfo, error)
	logger  *logging.Logger
}

// NewResolver returns a Resolver which only considers local paths
func NewResolver() *Resolver {
	return &Resolver{
		schemes: make(map[string]ExistsFunc),
		stat:    os.Stat,
		logger:  logging.New("datasource", logging.InfoLevel),
	}
}

// WithScheme enables candidates using the given URL scheme (e.g. "s3")
func (r *Resolver) WithScheme(scheme string, exists ExistsFunc) *Resolver {
	r.schemes[strings.ToLower(scheme)] = exists
	return r
}

// WithLogger replaces the Logger used to report skipped candidates
func (r *Resolver) WithLogger(logger *logging.Logger) *Resolver {
	r.logger = logger
	return r
}

// Resolve returns the first candidate which exists. An absent candidate is not an error
// unless every candidate is absent, in which case a DatasetNotFoundError listing all of
// them is returned. Failures other than absence (such as permission errors) are returned as-is.
func (r *Resolver) Resolve(ctx context.Context, candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if scheme, ok := SchemeOf(candidate); ok {
			exists, enabled := r.schemes[scheme]
			if !enabled {
				r.logger.Infof("skipping dataset location %s: %s:// sources are disabled", candidate, scheme)
				continue
			}
			found, err := exists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("unable to check dataset location %s: %w", candidate, err)
			}
			if found {
				return candidate, nil
			}
			r.logger.Infof("dataset not found at %s", candidate)
			continue
		}
		_, err := r.stat(candidate)
		if err == nil {
			return candidate, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("unable to check dataset location %s: %w", candidate, err)
		}
		r.logger.Infof("dataset not found at %s", candidate)
	}
	return "", errors.DatasetNotFoundError{Candidates: candidates}
}

// ResolvePath returns the first local candidate path which exists, skipping any URL candidates
func ResolvePath(candidates ...string) (string, error) {
	return NewResolver().Resolve(context.Background(), candidates...)
}

// SchemeOf returns the lower-cased URL scheme of a location, if it has one
func SchemeOf(location string) (string, bool) {
	idx := strings.Index(location, "://")
	if idx < 1 {
		return "", false
	}
	scheme := location[:idx]
	for _, c := range scheme {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return "", false
		}
	}
	return strings.ToLower(scheme), true
}
