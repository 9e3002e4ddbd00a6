package reduction

import (
	"github.com/gomlx/gomlx/graph"
)

// Graph applies mode to the per-element losses node of a GoMLX computation graph.
//
// Like the rest of the graph building functions, it panics on errors: the panic value is an error
// wrapping ErrInvalidConfiguration or ErrUndefinedReduction, which can be recovered with
// exceptions.TryCatch[error].
func Graph(mode Mode, losses *graph.Node) *graph.Node {
	switch mode {
	case None:
		return losses
	case Sum:
		return graph.ReduceAllSum(losses)
	case Mean:
		if losses.Shape().Size() == 0 {
			panic(undefinedf("mean over zero elements (shape %s)", losses.Shape()))
		}
		return graph.ReduceAllMean(losses)
	case BatchMean:
		if losses.Rank() == 0 {
			panic(undefinedf("batchmean requires at least one dimension, got shape %s", losses.Shape()))
		}
		batchSize := losses.Shape().Dimensions[0]
		if batchSize == 0 {
			panic(undefinedf("batchmean over an empty batch (shape %s)", losses.Shape()))
		}
		return graph.DivScalar(graph.ReduceAllSum(losses), float64(batchSize))
	default:
		panic(InvalidConfigurationf("unknown reduction %s", mode))
	}
}

// GraphFor is like Graph, but first checks that mode is accepted by the allowed set.
func GraphFor(allowed Set, mode Mode, losses *graph.Node) *graph.Node {
	if err := allowed.Check(mode); err != nil {
		panic(err)
	}
	return Graph(mode, losses)
}
