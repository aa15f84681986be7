package accumulators

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-sif/skyshade"
)

var (
	registryLock sync.RWMutex
	registry     = make(map[string]skyshade.AccumulatorFactory)
)

func init() {
	Register((&Count{}).Name(), Counter)
	Register((&Sum{}).Name(), func() skyshade.Accumulator { return &Sum{} })
	Register((&Composed{}).Name(), func() skyshade.Accumulator { return &Composed{} })
	Register((&Extent{}).Name(), func() skyshade.Accumulator { return &Extent{} })
	Register((&Canvas{}).Name(), func() skyshade.Accumulator { return &Canvas{} })
}

// Register makes an Accumulator available to workers under the given name.
// The factory must produce an empty Accumulator whose FromBytes can restore any serialized instance.
func Register(name string, factory skyshade.AccumulatorFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[name] = factory
}

// Registered returns the names of all registered Accumulators
func Registered() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate rebuilds an Accumulator from its registered name and serialized form
func Instantiate(name string, buf []byte) (skyshade.Accumulator, error) {
	registryLock.RLock()
	factory, ok := registry[name]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s is not a registered Accumulator", name)
	}
	return factory().FromBytes(buf)
}
