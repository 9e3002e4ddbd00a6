package options

import (
	"github.com/janpfeifer/lossopts/internal/parameters"
	"github.com/janpfeifer/lossopts/reduction"
	"strconv"
)

// HingeEmbedding configures the hinge embedding loss, used to learn whether two inputs are similar,
// given their distance as input and a target of 1 (similar) or -1 (dissimilar).
type HingeEmbedding struct {
	base
	margin float64
}

var _ Options = HingeEmbedding{}

// NewHingeEmbedding returns the default HingeEmbedding options: margin=1 and reduction Mean.
func NewHingeEmbedding() HingeEmbedding {
	return HingeEmbedding{base: base{reduction.Mean}, margin: 1}
}

// NewHingeEmbeddingFromReduction returns HingeEmbedding options with the reduction given by token
// ("none", "mean" or "sum").
func NewHingeEmbeddingFromReduction(token string) (HingeEmbedding, error) {
	mode, err := parseReduction(KindHingeEmbedding, token)
	if err != nil {
		return HingeEmbedding{}, err
	}
	return NewHingeEmbedding().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o HingeEmbedding) WithReduction(mode reduction.Mode) HingeEmbedding {
	o.reduction = checkReduction(KindHingeEmbedding, mode)
	return o
}

// Margin is the distance a dissimilar pair must reach to incur zero loss. Default is 1.
func (o HingeEmbedding) Margin() float64 { return o.margin }

// WithMargin returns a copy with the margin set.
func (o HingeEmbedding) WithMargin(margin float64) HingeEmbedding {
	o.margin = margin
	return o
}

func (o HingeEmbedding) Kind() Kind { return KindHingeEmbedding }
func (o HingeEmbedding) AllowedReductions() reduction.Set { return KindHingeEmbedding.AllowedReductions() }

func (o HingeEmbedding) Params() parameters.Params {
	params := o.params()
	params[ParamMargin] = formatFloat(o.margin)
	return params
}

func (o HingeEmbedding) String() string {
	return describe("HingeEmbedding", "margin="+formatFloat(o.margin), "reduction="+o.reduction.String())
}

// CosineEmbedding configures the cosine embedding loss, used to learn whether two inputs are similar
// (target 1) or dissimilar (target -1) using their cosine similarity.
type CosineEmbedding struct {
	base
	margin float64
}

var _ Options = CosineEmbedding{}

// NewCosineEmbedding returns the default CosineEmbedding options: margin=0 and reduction Mean.
func NewCosineEmbedding() CosineEmbedding {
	return CosineEmbedding{base: base{reduction.Mean}}
}

// NewCosineEmbeddingFromReduction returns CosineEmbedding options with the reduction given by token
// ("none", "mean" or "sum").
func NewCosineEmbeddingFromReduction(token string) (CosineEmbedding, error) {
	mode, err := parseReduction(KindCosineEmbedding, token)
	if err != nil {
		return CosineEmbedding{}, err
	}
	return NewCosineEmbedding().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o CosineEmbedding) WithReduction(mode reduction.Mode) CosineEmbedding {
	o.reduction = checkReduction(KindCosineEmbedding, mode)
	return o
}

// Margin is the cosine similarity above which a dissimilar pair incurs a loss. It should be a number
// from -1 to 1; 0 to 0.5 is suggested. Default is 0.
func (o CosineEmbedding) Margin() float64 { return o.margin }

// WithMargin returns a copy with the margin set.
func (o CosineEmbedding) WithMargin(margin float64) CosineEmbedding {
	o.margin = margin
	return o
}

func (o CosineEmbedding) Kind() Kind { return KindCosineEmbedding }
func (o CosineEmbedding) AllowedReductions() reduction.Set { return KindCosineEmbedding.AllowedReductions() }

func (o CosineEmbedding) Params() parameters.Params {
	params := o.params()
	params[ParamMargin] = formatFloat(o.margin)
	return params
}

func (o CosineEmbedding) String() string {
	return describe("CosineEmbedding", "margin="+formatFloat(o.margin), "reduction="+o.reduction.String())
}

// TripletMargin configures the triplet margin loss, given anchor, positive and negative examples.
type TripletMargin struct {
	base
	margin, p, eps float64
	swap           bool
}

var _ Options = TripletMargin{}

// NewTripletMargin returns the default TripletMargin options: margin=1, p=2, eps=1e-6, swap=false and
// reduction Mean.
func NewTripletMargin() TripletMargin {
	return TripletMargin{base: base{reduction.Mean}, margin: 1, p: 2, eps: 1e-6}
}

// NewTripletMarginFromReduction returns TripletMargin options with the reduction given by token
// ("none", "mean" or "sum").
func NewTripletMarginFromReduction(token string) (TripletMargin, error) {
	mode, err := parseReduction(KindTripletMargin, token)
	if err != nil {
		return TripletMargin{}, err
	}
	return NewTripletMargin().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o TripletMargin) WithReduction(mode reduction.Mode) TripletMargin {
	o.reduction = checkReduction(KindTripletMargin, mode)
	return o
}

// Margin the negative distance must exceed the positive distance by to incur zero loss. Default is 1.
func (o TripletMargin) Margin() float64 { return o.margin }

// WithMargin returns a copy with the margin set.
func (o TripletMargin) WithMargin(margin float64) TripletMargin {
	o.margin = margin
	return o
}

// P is the norm degree of the pairwise distance. Default is 2.
func (o TripletMargin) P() float64 { return o.p }

// WithP returns a copy with the norm degree set.
func (o TripletMargin) WithP(p float64) TripletMargin {
	o.p = p
	return o
}

// Eps is added to the differences before taking the norm, for numerical stability. Default is 1e-6.
func (o TripletMargin) Eps() float64 { return o.eps }

// WithEps returns a copy with eps set.
func (o TripletMargin) WithEps(eps float64) TripletMargin {
	o.eps = eps
	return o
}

// Swap enables the distance swap: the negative distance used is the smaller of anchor-negative and
// positive-negative. Described in "Learning shallow convolutional feature descriptors with triplet
// losses" by V. Balntas, E. Riba et al. Default is false.
func (o TripletMargin) Swap() bool { return o.swap }

// WithSwap returns a copy with swap set.
func (o TripletMargin) WithSwap(swap bool) TripletMargin {
	o.swap = swap
	return o
}

func (o TripletMargin) Kind() Kind { return KindTripletMargin }
func (o TripletMargin) AllowedReductions() reduction.Set { return KindTripletMargin.AllowedReductions() }

func (o TripletMargin) Params() parameters.Params {
	params := o.params()
	params[ParamMargin] = formatFloat(o.margin)
	params[ParamP] = formatFloat(o.p)
	params[ParamEps] = formatFloat(o.eps)
	params[ParamSwap] = strconv.FormatBool(o.swap)
	return params
}

func (o TripletMargin) String() string {
	return describe("TripletMargin", "margin="+formatFloat(o.margin), "p="+formatFloat(o.p),
		"eps="+formatFloat(o.eps), "swap="+strconv.FormatBool(o.swap), "reduction="+o.reduction.String())
}
