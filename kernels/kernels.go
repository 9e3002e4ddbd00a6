// Package kernels implements reference host-side kernels for every loss kind in package options,
// plus graph versions (see graph.go) of the element-wise ones.
//
// Each kernel validates the shapes of its inputs, computes the per-element losses and aggregates them
// with the reduction configured in the options. They are straightforward loops over the flat data of
// the tensors, accumulated in float64, and meant as the reference to test accelerated kernels against.
//
// Inputs must be Float32 or Float64 tensors (targets with class indices must be Int32 or Int64), and
// the output has the dtype of the input. Shape errors wrap reduction.ErrShapeMismatch, and
// unsupported hyperparameter values wrap reduction.ErrInvalidConfiguration.
package kernels

import (
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/lossopts/internal/generics"
	"github.com/janpfeifer/lossopts/options"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
	"math"
	"slices"
)

// number is any of the dtypes the kernels read.
type number interface {
	constraints.Integer | constraints.Float
}

// convert a slice of numbers to another numeric type.
func convert[To, From number](in []From) []To {
	return generics.SliceMap(in, func(e From) To { return To(e) })
}

// floats returns the flat values of a Float32 or Float64 tensor (or an integer one, if allowInts) as float64.
func floats(name string, t *tensors.Tensor, allowInts bool) ([]float64, error) {
	if t == nil {
		return nil, errors.Errorf("%s tensor is nil", name)
	}
	dtype := t.Shape().DType
	switch dtype {
	case dtypes.Float32:
		return convert[float64](tensors.CopyFlatData[float32](t)), nil
	case dtypes.Float64:
		return tensors.CopyFlatData[float64](t), nil
	}
	if allowInts {
		switch dtype {
		case dtypes.Int32:
			return convert[float64](tensors.CopyFlatData[int32](t)), nil
		case dtypes.Int64:
			return convert[float64](tensors.CopyFlatData[int64](t)), nil
		}
	}
	return nil, errors.Errorf("%s tensor has unsupported dtype %s", name, dtype)
}

// indices returns the flat values of an Int32 or Int64 tensor.
func indices(name string, t *tensors.Tensor) ([]int, error) {
	if t == nil {
		return nil, errors.Errorf("%s tensor is nil", name)
	}
	switch dtype := t.Shape().DType; dtype {
	case dtypes.Int32:
		return convert[int](tensors.CopyFlatData[int32](t)), nil
	case dtypes.Int64:
		return convert[int](tensors.CopyFlatData[int64](t)), nil
	default:
		return nil, errors.Errorf("%s tensor must hold class indices (Int32 or Int64), got dtype %s", name, dtype)
	}
}

// outputDType returns the dtype of the output for the given input, or an error if not a float.
func outputDType(input *tensors.Tensor) (dtypes.DType, error) {
	if input == nil {
		return dtypes.InvalidDType, errors.New("input tensor is nil")
	}
	dtype := input.Shape().DType
	if dtype != dtypes.Float32 && dtype != dtypes.Float64 {
		return dtypes.InvalidDType, errors.Errorf("input dtype must be Float32 or Float64, got %s", dtype)
	}
	return dtype, nil
}

// pair returns the flat values of input and target, which must have the same dimensions.
func pair(input, target *tensors.Tensor, allowIntTarget bool) (x, y []float64, err error) {
	if _, err = outputDType(input); err != nil {
		return
	}
	if target == nil {
		return nil, nil, errors.New("target tensor is nil")
	}
	if !slices.Equal(input.Shape().Dimensions, target.Shape().Dimensions) {
		return nil, nil, reduction.ShapeMismatchf("input shape %s and target shape %s differ",
			input.Shape(), target.Shape())
	}
	if x, err = floats("input", input, false); err != nil {
		return
	}
	y, err = floats("target", target, allowIntTarget)
	return
}

// rows interprets a tensor of rank 1 ([D]) or 2 ([N, D]) as N rows of D values.
// batched is false for rank 1 tensors, whose per-row losses are then a scalar.
func rows(name string, t *tensors.Tensor) (n, d int, batched bool, err error) {
	if t == nil {
		return 0, 0, false, errors.Errorf("%s tensor is nil", name)
	}
	dims := t.Shape().Dimensions
	switch len(dims) {
	case 1:
		return 1, dims[0], false, nil
	case 2:
		return dims[0], dims[1], true, nil
	default:
		return 0, 0, false, reduction.ShapeMismatchf("%s must be of rank 1 or 2, got shape %s", name, t.Shape())
	}
}

// rowsDims returns the dimensions of per-row losses.
func rowsDims(n int, batched bool) []int {
	if batched {
		return []int{n}
	}
	return []int{}
}

// classWeights returns the per-class weight in opts, or all ones if not set.
// The weight must be a 1D tensor with numClasses elements.
func classWeights(opts options.Weighted, numClasses int) ([]float64, error) {
	weight := opts.Weight()
	if weight == nil {
		ones := make([]float64, numClasses)
		for ii := range ones {
			ones[ii] = 1
		}
		return ones, nil
	}
	if weight.Shape().Rank() != 1 || weight.Shape().Dimensions[0] != numClasses {
		return nil, reduction.ShapeMismatchf("%s: weight of shape %s given, but it must be of shape [%d] (the number of classes)",
			opts.Kind(), weight.Shape(), numClasses)
	}
	return floats("weight", weight, false)
}

// resolve the per-element losses with the reduction configured in opts, and returns them as a tensor of
// the given dtype.
func resolve(opts options.Options, dtype dtypes.DType, losses []float64, dims []int) (*tensors.Tensor, error) {
	mode := opts.Reduction()
	if err := opts.AllowedReductions().Check(mode); err != nil {
		return nil, errors.WithMessagef(err, "loss %s", opts.Kind())
	}
	reduced, reducedDims, err := reduction.Reduce(mode, losses, dims)
	if err != nil {
		return nil, errors.WithMessagef(err, "loss %s", opts.Kind())
	}
	if klog.V(2).Enabled() {
		klog.Infof("%s: %d per-element losses of shape %v reduced with %s", opts, len(losses), dims, mode)
	}
	if dtype == dtypes.Float32 {
		return tensors.FromFlatDataAndDimensions(convert[float32](reduced), reducedDims...), nil
	}
	return tensors.FromFlatDataAndDimensions(reduced, reducedDims...), nil
}

// softplus returns log(1+exp(z)) in a numerically stable way.
func softplus(z float64) float64 {
	return math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z)))
}

// logSigmoid returns log(1/(1+exp(-z))).
func logSigmoid(z float64) float64 {
	return -softplus(-z)
}
