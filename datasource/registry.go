package datasource

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-sif/skyshade"
)

// LoaderFactory produces an empty PartitionLoader of a particular kind, ready for GobDecode
type LoaderFactory func() skyshade.PartitionLoader

// ParserFactory produces an unconfigured DataSourceParser, ready for GobDecode
type ParserFactory func() skyshade.DataSourceParser

var (
	registryLock sync.RWMutex
	loaders      = make(map[string]LoaderFactory)
	parsers      = make(map[string]ParserFactory)
)

// RegisterLoader makes a kind of PartitionLoader available to workers. DataSource
// packages call this from init(), so a worker binary must import every DataSource it serves.
func RegisterLoader(kind string, factory LoaderFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, exists := loaders[kind]; exists {
		panic(fmt.Errorf("PartitionLoader kind %s is already registered", kind))
	}
	loaders[kind] = factory
}

// RegisterParser makes a kind of DataSourceParser available to loaders which embed one
func RegisterParser(name string, factory ParserFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, exists := parsers[name]; exists {
		panic(fmt.Errorf("DataSourceParser %s is already registered", name))
	}
	parsers[name] = factory
}

// RegisteredLoaders lists the kinds of PartitionLoaders known to this process
func RegisteredLoaders() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	kinds := make([]string, 0, len(loaders))
	for kind := range loaders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// DeserializeLoader rebuilds a PartitionLoader from its kind and serialized representation
func DeserializeLoader(kind string, buf []byte) (skyshade.PartitionLoader, error) {
	registryLock.RLock()
	factory, ok := loaders[kind]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown PartitionLoader kind %s (registered: %v)", kind, RegisteredLoaders())
	}
	pl := factory()
	if err := pl.GobDecode(buf); err != nil {
		return nil, fmt.Errorf("unable to deserialize %s PartitionLoader: %w", kind, err)
	}
	return pl, nil
}

// DeserializeParser rebuilds a DataSourceParser from its name and serialized configuration
func DeserializeParser(name string, buf []byte) (skyshade.DataSourceParser, error) {
	registryLock.RLock()
	factory, ok := parsers[name]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown DataSourceParser %s", name)
	}
	p := factory()
	if err := p.GobDecode(buf); err != nil {
		return nil, fmt.Errorf("unable to deserialize %s DataSourceParser: %w", name, err)
	}
	return p, nil
}
