package mmr

// AccumulatorOptions configures an Accumulator
type AccumulatorOptions struct {
	archive     Archive
	pruneLeaves bool
}

type AccumulatorOption func(*AccumulatorOptions)

// WithArchive sets the side archive. Leaf data is written to the archive on
// append and read back from it when the store can not provide a node.
func WithArchive(archive Archive) AccumulatorOption {
	return func(opts *AccumulatorOptions) {
		opts.archive = archive
	}
}

// WithLeafPruning keeps only the digest of each leaf in the NodeStore. The
// leaf data is kept only by the archive, which must also be provided.
func WithLeafPruning() AccumulatorOption {
	return func(opts *AccumulatorOptions) {
		opts.pruneLeaves = true
	}
}
