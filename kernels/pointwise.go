package kernels

import (
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/options"
	"github.com/pkg/errors"
	"math"
)

// logClamp is the lower bound of the log terms in BCE, so a probability of 0 gives a finite loss.
const logClamp = -100

// L1 loss: |input - target| for each element.
func L1(input, target *tensors.Tensor, opts options.L1) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, false)
	if err != nil {
		return nil, errors.WithMessage(err, "l1")
	}
	losses := make([]float64, len(x))
	for ii := range x {
		losses[ii] = math.Abs(x[ii] - y[ii])
	}
	return resolve(opts, input.Shape().DType, losses, input.Shape().Dimensions)
}

// MSE loss: (input - target)^2 for each element.
func MSE(input, target *tensors.Tensor, opts options.MSE) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, false)
	if err != nil {
		return nil, errors.WithMessage(err, "mse")
	}
	losses := make([]float64, len(x))
	for ii := range x {
		diff := x[ii] - y[ii]
		losses[ii] = diff * diff
	}
	return resolve(opts, input.Shape().DType, losses, input.Shape().Dimensions)
}

// KLDiv loss: target * (log(target) - input) for each element, where input holds log-probabilities and
// target holds probabilities. Elements with target <= 0 have loss 0.
//
// Use reduction.BatchMean to get the KL divergence of each distribution in the batch averaged over the
// batch.
func KLDiv(input, target *tensors.Tensor, opts options.KLDiv) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, false)
	if err != nil {
		return nil, errors.WithMessage(err, "kl_div")
	}
	losses := make([]float64, len(x))
	for ii := range x {
		if y[ii] > 0 {
			losses[ii] = y[ii] * (math.Log(y[ii]) - x[ii])
		}
	}
	return resolve(opts, input.Shape().DType, losses, input.Shape().Dimensions)
}

// BCE loss: -w[c] * (target*log(input) + (1-target)*log(1-input)) for each element, where input holds
// probabilities in [0, 1] and c is the class of the element, its index in the last axis.
//
// The log terms are clamped to -100. The weight in opts, if set, must be of shape [C], where C is the
// last dimension of input.
func BCE(input, target *tensors.Tensor, opts options.BCE) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, false)
	if err != nil {
		return nil, errors.WithMessage(err, "bce")
	}
	dims := input.Shape().Dimensions
	numClasses := 1
	if len(dims) > 0 {
		numClasses = dims[len(dims)-1]
	}
	weights, err := classWeights(opts, numClasses)
	if err != nil {
		return nil, err
	}
	losses := make([]float64, len(x))
	for ii := range x {
		if !(x[ii] >= 0 && x[ii] <= 1) {
			return nil, errors.Errorf("bce: input values must be probabilities between 0 and 1, got %g at position %d", x[ii], ii)
		}
		logX := math.Max(math.Log(x[ii]), logClamp)
		logOneMinusX := math.Max(math.Log(1-x[ii]), logClamp)
		losses[ii] = -weights[ii%numClasses] * (y[ii]*logX + (1-y[ii])*logOneMinusX)
	}
	return resolve(opts, input.Shape().DType, losses, dims)
}

// HingeEmbedding loss for each element: input where target is 1, max(0, margin-input) where target is -1.
// Targets with other values contribute both terms.
func HingeEmbedding(input, target *tensors.Tensor, opts options.HingeEmbedding) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, true)
	if err != nil {
		return nil, errors.WithMessage(err, "hinge_embedding")
	}
	margin := opts.Margin()
	losses := make([]float64, len(x))
	for ii := range x {
		if y[ii] != 1 {
			losses[ii] += math.Max(0, margin-x[ii])
		}
		if y[ii] != -1 {
			losses[ii] += x[ii]
		}
	}
	return resolve(opts, input.Shape().DType, losses, input.Shape().Dimensions)
}

// SoftMargin loss: log(1 + exp(-target*input)) for each element, with target 1 or -1.
func SoftMargin(input, target *tensors.Tensor, opts options.SoftMargin) (*tensors.Tensor, error) {
	x, y, err := pair(input, target, true)
	if err != nil {
		return nil, errors.WithMessage(err, "soft_margin")
	}
	losses := make([]float64, len(x))
	for ii := range x {
		losses[ii] = softplus(-y[ii] * x[ii])
	}
	return resolve(opts, input.Shape().DType, losses, input.Shape().Dimensions)
}
