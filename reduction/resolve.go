package reduction

import (
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Float is the set of dtypes reductions are defined for.
type Float interface {
	float32 | float64
}

// Reduce applies mode to the per-element losses given as flat values (row-major) and their dimensions.
//
// For None it returns flat and dimensions unchanged. For the other modes it returns a single value and
// empty dimensions (a scalar). The sum is accumulated in float64.
//
// Errors:
//   - ErrInvalidConfiguration if mode is not a known Mode.
//   - ErrShapeMismatch if len(flat) is not the product of dimensions.
//   - ErrUndefinedReduction for Mean over zero elements, BatchMean over a scalar or a zero-sized batch.
func Reduce[T Float](mode Mode, flat []T, dimensions []int) ([]T, []int, error) {
	if !mode.IsAMode() {
		return nil, nil, InvalidConfigurationf("unknown reduction %s", mode)
	}
	size := 1
	for _, dim := range dimensions {
		size *= dim
	}
	if size != len(flat) {
		return nil, nil, ShapeMismatchf("%d values given for dimensions %v (size %d)", len(flat), dimensions, size)
	}
	if mode == None {
		return flat, dimensions, nil
	}

	var divisor int
	switch mode {
	case Sum:
		divisor = 1
	case Mean:
		divisor = size
		if divisor == 0 {
			return nil, nil, undefinedf("mean over zero elements (dimensions %v)", dimensions)
		}
	case BatchMean:
		if len(dimensions) == 0 {
			return nil, nil, undefinedf("batchmean requires at least one dimension, got a scalar")
		}
		divisor = dimensions[0]
		if divisor == 0 {
			return nil, nil, undefinedf("batchmean over an empty batch (dimensions %v)", dimensions)
		}
	}
	var sum float64
	for _, v := range flat {
		sum += float64(v)
	}
	return []T{T(sum / float64(divisor))}, nil, nil
}

// Resolve applies mode to the per-element losses tensor, and returns the reduced tensor.
//
// For None the losses tensor itself is returned. Otherwise, a new scalar tensor of the same dtype is
// returned. Only Float32 and Float64 tensors are supported.
//
// Resolve doesn't keep any reference to losses. See Reduce for the errors returned.
func Resolve(mode Mode, losses *tensors.Tensor) (*tensors.Tensor, error) {
	if losses == nil {
		return nil, errors.New("reduction.Resolve: nil losses tensor")
	}
	if !mode.IsAMode() {
		return nil, InvalidConfigurationf("unknown reduction %s", mode)
	}
	if mode == None {
		return losses, nil
	}
	shape := losses.Shape()
	if klog.V(3).Enabled() {
		klog.Infof("reduction.Resolve(%s, %s)", mode, shape)
	}
	switch shape.DType {
	case dtypes.Float32:
		return resolveTensor[float32](mode, losses)
	case dtypes.Float64:
		return resolveTensor[float64](mode, losses)
	default:
		return nil, errors.Errorf("reduction %s of dtype %s not supported, only Float32 and Float64", mode, shape.DType)
	}
}

// ResolveFor is like Resolve, but first checks that mode is accepted by the allowed set.
func ResolveFor(allowed Set, mode Mode, losses *tensors.Tensor) (*tensors.Tensor, error) {
	if err := allowed.Check(mode); err != nil {
		return nil, err
	}
	return Resolve(mode, losses)
}

func resolveTensor[T Float](mode Mode, losses *tensors.Tensor) (*tensors.Tensor, error) {
	shape := losses.Shape()
	reduced, _, err := Reduce(mode, tensors.CopyFlatData[T](losses), shape.Dimensions)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolving losses of shape %s", shape)
	}
	return tensors.FromScalar(reduced[0]), nil
}
