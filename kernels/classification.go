package kernels

import (
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/options"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/pkg/errors"
	"math"
	"slices"
)

// classInputs returns the scores of input ([C] or [N, C]) and the class index of each row in target
// ([] or [N]).
func classInputs(input, target *tensors.Tensor) (x []float64, y []int, n, numClasses int, batched bool, err error) {
	if _, err = outputDType(input); err != nil {
		return
	}
	n, numClasses, batched, err = rows("input", input)
	if err != nil {
		return
	}
	if target == nil {
		err = errors.New("target tensor is nil")
		return
	}
	if wantDims := rowsDims(n, batched); !slices.Equal(target.Shape().Dimensions, wantDims) {
		err = reduction.ShapeMismatchf("target of shape %s given for input of shape %s, it must be of shape %v",
			target.Shape(), input.Shape(), wantDims)
		return
	}
	if x, err = floats("input", input, false); err != nil {
		return
	}
	if y, err = indices("target", target); err != nil {
		return
	}
	for row, class := range y {
		if class < 0 || class >= numClasses {
			err = reduction.ShapeMismatchf("target class %d in row %d is out of range [0, %d)", class, row, numClasses)
			return
		}
	}
	return
}

// MultiMargin loss for each row of input ([C] or [N, C] scores) given the target class index
// ([] or [N]) of each row:
//
//	sum_{i != y} w[y] * max(0, margin - x[y] + x[i])^p / C
//
// Only p=1 and p=2 are supported.
func MultiMargin(input, target *tensors.Tensor, opts options.MultiMargin) (*tensors.Tensor, error) {
	p := opts.P()
	if p != 1 && p != 2 {
		return nil, reduction.InvalidConfigurationf("multi_margin: p must be 1 or 2, got %d", p)
	}
	x, y, n, numClasses, batched, err := classInputs(input, target)
	if err != nil {
		return nil, errors.WithMessage(err, "multi_margin")
	}
	weights, err := classWeights(opts, numClasses)
	if err != nil {
		return nil, err
	}
	margin := opts.Margin()
	losses := make([]float64, n)
	for row := range n {
		scores := x[row*numClasses : (row+1)*numClasses]
		class := y[row]
		var sum float64
		for ii, score := range scores {
			if ii == class {
				continue
			}
			term := math.Max(0, margin-scores[class]+score)
			if p == 2 {
				term *= term
			}
			sum += weights[class] * term
		}
		losses[row] = sum / float64(numClasses)
	}
	return resolve(opts, input.Shape().DType, losses, rowsDims(n, batched))
}

// MultiLabelMargin loss for each row of input ([C] or [N, C] scores). The target has the same shape as
// the input, and holds in each row the indices of the classes the row belongs to, terminated by -1 (or
// the end of the row):
//
//	sum_{j in targets} sum_{i not in targets} max(0, 1 - (x[j] - x[i])) / C
func MultiLabelMargin(input, target *tensors.Tensor, opts options.MultiLabelMargin) (*tensors.Tensor, error) {
	if _, err := outputDType(input); err != nil {
		return nil, errors.WithMessage(err, "multi_label_margin")
	}
	n, numClasses, batched, err := rows("input", input)
	if err != nil {
		return nil, errors.WithMessage(err, "multi_label_margin")
	}
	if target == nil {
		return nil, errors.New("multi_label_margin: target tensor is nil")
	}
	if !slices.Equal(input.Shape().Dimensions, target.Shape().Dimensions) {
		return nil, reduction.ShapeMismatchf("multi_label_margin: input shape %s and target shape %s differ",
			input.Shape(), target.Shape())
	}
	x, err := floats("input", input, false)
	if err != nil {
		return nil, errors.WithMessage(err, "multi_label_margin")
	}
	y, err := indices("target", target)
	if err != nil {
		return nil, errors.WithMessage(err, "multi_label_margin")
	}
	losses := make([]float64, n)
	isTarget := make([]bool, numClasses)
	for row := range n {
		scores := x[row*numClasses : (row+1)*numClasses]
		clear(isTarget)
		var targets []int
		for _, class := range y[row*numClasses : (row+1)*numClasses] {
			if class < 0 {
				break
			}
			if class >= numClasses {
				return nil, reduction.ShapeMismatchf("multi_label_margin: target class %d in row %d is out of range [0, %d)",
					class, row, numClasses)
			}
			targets = append(targets, class)
			isTarget[class] = true
		}
		var sum float64
		for _, j := range targets {
			for ii, score := range scores {
				if !isTarget[ii] {
					sum += math.Max(0, 1-(scores[j]-score))
				}
			}
		}
		losses[row] = sum / float64(numClasses)
	}
	return resolve(opts, input.Shape().DType, losses, rowsDims(n, batched))
}

// MultiLabelSoftMargin loss for each row of input ([C] or [N, C] logits), given the target with the same
// shape holding 1 for the classes the row belongs to and 0 otherwise:
//
//	-(1/C) * sum_i w[i] * (y[i]*logSigmoid(x[i]) + (1-y[i])*logSigmoid(-x[i]))
func MultiLabelSoftMargin(input, target *tensors.Tensor, opts options.MultiLabelSoftMargin) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, true)
	if err != nil {
		return nil, errors.WithMessage(err, "multi_label_soft_margin")
	}
	n, numClasses, batched, err := rows("input", input)
	if err != nil {
		return nil, errors.WithMessage(err, "multi_label_soft_margin")
	}
	weights, err := classWeights(opts, numClasses)
	if err != nil {
		return nil, err
	}
	losses := make([]float64, n)
	for row := range n {
		var sum float64
		for ii := range numClasses {
			idx := row*numClasses + ii
			sum += weights[ii] * (y[idx]*logSigmoid(x[idx]) + (1-y[idx])*logSigmoid(-x[idx]))
		}
		losses[row] = -sum / float64(numClasses)
	}
	return resolve(opts, input.Shape().DType, losses, rowsDims(n, batched))
}
