package skyshade

// An Accumulator siphons data from Partitions into a custom data structure.
// Accumulation is performed locally on every worker over its persisted
// Partitions, and worker results are then merged on the Coordinator, so
// Accumulators are best utilized for results which are small relative
// to the dataset (a row count, a bounding box, a fixed-size raster).
//
// Accumulators cross the wire twice: the Coordinator ships an empty,
// configured prototype to each worker (via ToBytes), which the worker
// rebuilds by Name and FromBytes. The populated result returns the same way.
type Accumulator interface {
	Name() string                              // Name identifies the Accumulator's registered type
	Accumulate(row Row) error                  // Accumulate adds a row to this Accumulator
	Merge(o Accumulator) error                 // Merge merges another Accumulator into this one
	ToBytes() ([]byte, error)                  // ToBytes serializes this Accumulator
	FromBytes(buf []byte) (Accumulator, error) // FromBytes produce a new Accumulator from serialized data
}
