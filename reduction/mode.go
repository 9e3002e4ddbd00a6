// Package reduction defines how per-element loss values are aggregated into the final loss,
// and which aggregations each loss kind accepts.
//
// Kernels compute the per-element losses and then call Resolve (for host tensors), Reduce (for
// flat Go slices) or Graph (for GoMLX computation graphs) with the Mode configured in the loss
// options.
package reduction

// Mode of aggregation of per-element losses.
type Mode int

const (
	// Mean divides the sum of all elements by the number of elements. It's the default for every loss kind,
	// and it is also the zero value of Mode.
	Mean Mode = iota

	// None applies no reduction: the per-element losses are returned as is.
	None

	// Sum adds all elements.
	Sum

	// BatchMean divides the sum of all elements by the size of the leading (batch) dimension.
	// Only the KL-divergence loss accepts it.
	BatchMean
)

//go:generate go tool enumer -type=Mode -transform=lower -values -text -json -yaml mode.go
