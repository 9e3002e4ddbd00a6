package kernels

import (
	"github.com/gomlx/gomlx/graph"
	"github.com/janpfeifer/lossopts/options"
	"github.com/janpfeifer/lossopts/reduction"
	"slices"
)

// Graph versions of the element-wise kernels. They build the same computation as their host-side
// counterparts with GoMLX operations, and panic with an error (wrapping reduction.ErrShapeMismatch or
// reduction.ErrInvalidConfiguration) on invalid inputs, like any other graph building function.

// graphPair checks that input and target have the same dimensions and returns target converted to the
// dtype of the input.
func graphPair(kind options.Kind, input, target *graph.Node) *graph.Node {
	if !slices.Equal(input.Shape().Dimensions, target.Shape().Dimensions) {
		panic(reduction.ShapeMismatchf("%s: input shape %s and target shape %s differ", kind, input.Shape(), target.Shape()))
	}
	if target.DType() != input.DType() {
		target = graph.ConvertDType(target, input.DType())
	}
	return target
}

// graphSoftplus returns log(1+exp(z)) in a numerically stable way.
func graphSoftplus(z *graph.Node) *graph.Node {
	return graph.Add(graph.Max(z, graph.ZerosLike(z)), graph.Log1P(graph.Exp(graph.Neg(graph.Abs(z)))))
}

// L1Graph is the graph version of L1.
func L1Graph(input, target *graph.Node, opts options.L1) *graph.Node {
	target = graphPair(opts.Kind(), input, target)
	losses := graph.Abs(graph.Sub(input, target))
	return reduction.GraphFor(opts.AllowedReductions(), opts.Reduction(), losses)
}

// MSEGraph is the graph version of MSE.
func MSEGraph(input, target *graph.Node, opts options.MSE) *graph.Node {
	target = graphPair(opts.Kind(), input, target)
	losses := graph.Square(graph.Sub(input, target))
	return reduction.GraphFor(opts.AllowedReductions(), opts.Reduction(), losses)
}

// BCEGraph is the graph version of BCE.
func BCEGraph(input, target *graph.Node, opts options.BCE) *graph.Node {
	target = graphPair(opts.Kind(), input, target)
	clamp := graph.Scalar(input.Graph(), input.DType(), logClamp)
	logX := graph.Max(graph.Log(input), clamp)
	logOneMinusX := graph.Max(graph.Log(graph.OneMinus(input)), clamp)
	losses := graph.Neg(graph.Add(graph.Mul(target, logX), graph.Mul(graph.OneMinus(target), logOneMinusX)))
	if weight := opts.Weight(); weight != nil {
		dims := input.Shape().Dimensions
		if input.Rank() == 0 || weight.Shape().Rank() != 1 || weight.Shape().Dimensions[0] != dims[len(dims)-1] {
			panic(reduction.ShapeMismatchf("%s: weight of shape %s given for input of shape %s, it must have one value per class (the last axis)",
				opts.Kind(), weight.Shape(), input.Shape()))
		}
		w := graph.ConvertDType(graph.Const(input.Graph(), weight), input.DType())
		broadcastDims := slices.Repeat([]int{1}, input.Rank())
		broadcastDims[input.Rank()-1] = dims[len(dims)-1]
		w = graph.BroadcastToDims(graph.Reshape(w, broadcastDims...), dims...)
		losses = graph.Mul(losses, w)
	}
	return reduction.GraphFor(opts.AllowedReductions(), opts.Reduction(), losses)
}

// HingeEmbeddingGraph is the graph version of HingeEmbedding.
func HingeEmbeddingGraph(input, target *graph.Node, opts options.HingeEmbedding) *graph.Node {
	target = graphPair(opts.Kind(), input, target)
	g, dtype := input.Graph(), input.DType()
	zeros := graph.ZerosLike(input)
	hinge := graph.Max(graph.AddScalar(graph.Neg(input), opts.Margin()), zeros)
	losses := graph.Add(
		graph.Where(graph.Equal(target, graph.Scalar(g, dtype, 1)), zeros, hinge),
		graph.Where(graph.Equal(target, graph.Scalar(g, dtype, -1)), zeros, input))
	return reduction.GraphFor(opts.AllowedReductions(), opts.Reduction(), losses)
}

// SoftMarginGraph is the graph version of SoftMargin.
func SoftMarginGraph(input, target *graph.Node, opts options.SoftMargin) *graph.Node {
	target = graphPair(opts.Kind(), input, target)
	losses := graphSoftplus(graph.Neg(graph.Mul(target, input)))
	return reduction.GraphFor(opts.AllowedReductions(), opts.Reduction(), losses)
}
