package kernels

import (
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/options"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/pkg/errors"
	"math"
	"slices"
)

// cosineEpsilon is added to the squared norms when computing the cosine similarity.
const cosineEpsilon = 1e-12

// embeddings returns the flat values of tensors that must all have the same shape [D] or [N, D].
func embeddings(names []string, ts ...*tensors.Tensor) (values [][]float64, n, d int, batched bool, err error) {
	if _, err = outputDType(ts[0]); err != nil {
		return
	}
	if n, d, batched, err = rows(names[0], ts[0]); err != nil {
		return
	}
	values = make([][]float64, len(ts))
	for ii, t := range ts {
		if t == nil {
			err = errors.Errorf("%s tensor is nil", names[ii])
			return
		}
		if !slices.Equal(t.Shape().Dimensions, ts[0].Shape().Dimensions) {
			err = reduction.ShapeMismatchf("%s of shape %s differs from %s of shape %s",
				names[ii], t.Shape(), names[0], ts[0].Shape())
			return
		}
		if values[ii], err = floats(names[ii], t, false); err != nil {
			return
		}
	}
	return
}

// CosineEmbedding loss for each row of the pair x1, x2 ([D] or [N, D]), given the target ([] or [N])
// with 1 for similar pairs and -1 for dissimilar ones: 1-cos(x1, x2) where the target is 1 and
// max(0, cos(x1, x2)-margin) where it is -1. Other target values have loss 0.
func CosineEmbedding(x1, x2, target *tensors.Tensor, opts options.CosineEmbedding) (*tensors.Tensor, error) {
	values, n, d, batched, err := embeddings([]string{"x1", "x2"}, x1, x2)
	if err != nil {
		return nil, errors.WithMessage(err, "cosine_embedding")
	}
	if target == nil {
		return nil, errors.New("cosine_embedding: target tensor is nil")
	}
	if wantDims := rowsDims(n, batched); !slices.Equal(target.Shape().Dimensions, wantDims) {
		return nil, reduction.ShapeMismatchf("cosine_embedding: target of shape %s given for inputs of shape %s, it must be of shape %v",
			target.Shape(), x1.Shape(), wantDims)
	}
	y, err := floats("target", target, true)
	if err != nil {
		return nil, errors.WithMessage(err, "cosine_embedding")
	}
	margin := opts.Margin()
	losses := make([]float64, n)
	for row := range n {
		u, v := values[0][row*d:(row+1)*d], values[1][row*d:(row+1)*d]
		var dot, magU, magV float64
		for ii := range d {
			dot += u[ii] * v[ii]
			magU += u[ii] * u[ii]
			magV += v[ii] * v[ii]
		}
		cos := dot / math.Sqrt((magU+cosineEpsilon)*(magV+cosineEpsilon))
		switch y[row] {
		case 1:
			losses[row] = 1 - cos
		case -1:
			losses[row] = math.Max(0, cos-margin)
		}
	}
	return resolve(opts, x1.Shape().DType, losses, rowsDims(n, batched))
}

// pairwiseDistance returns the p-norm of u-v+eps. For p=+Inf it is the largest absolute value.
func pairwiseDistance(u, v []float64, p, eps float64) float64 {
	if math.IsInf(p, 1) {
		var largest float64
		for ii := range u {
			largest = math.Max(largest, math.Abs(u[ii]-v[ii]+eps))
		}
		return largest
	}
	var sum float64
	for ii := range u {
		sum += math.Pow(math.Abs(u[ii]-v[ii]+eps), p)
	}
	return math.Pow(sum, 1/p)
}

// TripletMargin loss for each row of anchor, positive and negative ([D] or [N, D]):
//
//	max(d(anchor, positive) - d(anchor, negative) + margin, 0)
//
// where d(u, v) is the p-norm of u-v+eps. With swap, d(anchor, negative) is replaced by the smaller of it
// and d(positive, negative).
func TripletMargin(anchor, positive, negative *tensors.Tensor, opts options.TripletMargin) (*tensors.Tensor, error) {
	p := opts.P()
	if !(p > 0) {
		return nil, reduction.InvalidConfigurationf("triplet_margin: norm degree p must be positive, got %g", p)
	}
	values, n, d, batched, err := embeddings([]string{"anchor", "positive", "negative"}, anchor, positive, negative)
	if err != nil {
		return nil, errors.WithMessage(err, "triplet_margin")
	}
	margin, eps := opts.Margin(), opts.Eps()
	losses := make([]float64, n)
	for row := range n {
		a := values[0][row*d : (row+1)*d]
		pos := values[1][row*d : (row+1)*d]
		neg := values[2][row*d : (row+1)*d]
		distPositive := pairwiseDistance(a, pos, p, eps)
		distNegative := pairwiseDistance(a, neg, p, eps)
		if opts.Swap() {
			distNegative = math.Min(distNegative, pairwiseDistance(pos, neg, p, eps))
		}
		losses[row] = math.Max(distPositive-distNegative+margin, 0)
	}
	return resolve(opts, anchor.Shape().DType, losses, rowsDims(n, batched))
}
