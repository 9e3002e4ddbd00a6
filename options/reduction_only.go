package options

import (
	"github.com/janpfeifer/lossopts/internal/parameters"
	"github.com/janpfeifer/lossopts/reduction"
)

// L1 configures the L1 loss, the absolute difference between input and target.
type L1 struct {
	base
}

var _ Options = L1{}

// NewL1 returns the default L1 options: reduction Mean.
func NewL1() L1 {
	return L1{base{reduction.Mean}}
}

// NewL1FromReduction returns L1 options with the reduction given by token ("none", "mean" or "sum").
func NewL1FromReduction(token string) (L1, error) {
	mode, err := parseReduction(KindL1, token)
	if err != nil {
		return L1{}, err
	}
	return NewL1().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o L1) WithReduction(mode reduction.Mode) L1 {
	o.reduction = checkReduction(KindL1, mode)
	return o
}

func (o L1) Kind() Kind { return KindL1 }
func (o L1) AllowedReductions() reduction.Set { return KindL1.AllowedReductions() }
func (o L1) Params() parameters.Params { return o.params() }
func (o L1) String() string { return describe("L1", "reduction="+o.reduction.String()) }

// KLDiv configures the Kullback-Leibler divergence loss.
//
// It is the only loss that accepts reduction.BatchMean, which matches the mathematical definition of the
// KL divergence when the input is a batch of distributions. The default, reduction.Mean, divides by the
// total number of elements instead.
type KLDiv struct {
	base
}

var _ Options = KLDiv{}

// NewKLDiv returns the default KLDiv options: reduction Mean.
func NewKLDiv() KLDiv {
	return KLDiv{base{reduction.Mean}}
}

// NewKLDivFromReduction returns KLDiv options with the reduction given by token ("none", "batchmean",
// "sum" or "mean").
func NewKLDivFromReduction(token string) (KLDiv, error) {
	mode, err := parseReduction(KindKLDiv, token)
	if err != nil {
		return KLDiv{}, err
	}
	return NewKLDiv().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not a valid reduction.Mode.
func (o KLDiv) WithReduction(mode reduction.Mode) KLDiv {
	o.reduction = checkReduction(KindKLDiv, mode)
	return o
}

func (o KLDiv) Kind() Kind { return KindKLDiv }
func (o KLDiv) AllowedReductions() reduction.Set { return KindKLDiv.AllowedReductions() }
func (o KLDiv) Params() parameters.Params { return o.params() }
func (o KLDiv) String() string { return describe("KLDiv", "reduction="+o.reduction.String()) }

// MSE configures the mean squared error loss.
type MSE struct {
	base
}

var _ Options = MSE{}

// NewMSE returns the default MSE options: reduction Mean.
func NewMSE() MSE {
	return MSE{base{reduction.Mean}}
}

// NewMSEFromReduction returns MSE options with the reduction given by token ("none", "mean" or "sum").
func NewMSEFromReduction(token string) (MSE, error) {
	mode, err := parseReduction(KindMSE, token)
	if err != nil {
		return MSE{}, err
	}
	return NewMSE().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o MSE) WithReduction(mode reduction.Mode) MSE {
	o.reduction = checkReduction(KindMSE, mode)
	return o
}

func (o MSE) Kind() Kind { return KindMSE }
func (o MSE) AllowedReductions() reduction.Set { return KindMSE.AllowedReductions() }
func (o MSE) Params() parameters.Params { return o.params() }
func (o MSE) String() string { return describe("MSE", "reduction="+o.reduction.String()) }

// MultiLabelMargin configures the multi-class multi-classification hinge loss.
type MultiLabelMargin struct {
	base
}

var _ Options = MultiLabelMargin{}

// NewMultiLabelMargin returns the default MultiLabelMargin options: reduction Mean.
func NewMultiLabelMargin() MultiLabelMargin {
	return MultiLabelMargin{base{reduction.Mean}}
}

// NewMultiLabelMarginFromReduction returns MultiLabelMargin options with the reduction given by token
// ("none", "mean" or "sum").
func NewMultiLabelMarginFromReduction(token string) (MultiLabelMargin, error) {
	mode, err := parseReduction(KindMultiLabelMargin, token)
	if err != nil {
		return MultiLabelMargin{}, err
	}
	return NewMultiLabelMargin().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o MultiLabelMargin) WithReduction(mode reduction.Mode) MultiLabelMargin {
	o.reduction = checkReduction(KindMultiLabelMargin, mode)
	return o
}

func (o MultiLabelMargin) Kind() Kind { return KindMultiLabelMargin }
func (o MultiLabelMargin) AllowedReductions() reduction.Set { return KindMultiLabelMargin.AllowedReductions() }
func (o MultiLabelMargin) Params() parameters.Params { return o.params() }
func (o MultiLabelMargin) String() string {
	return describe("MultiLabelMargin", "reduction="+o.reduction.String())
}

// SoftMargin configures the two-class logistic loss, log(1+exp(-target*input)).
type SoftMargin struct {
	base
}

var _ Options = SoftMargin{}

// NewSoftMargin returns the default SoftMargin options: reduction Mean.
func NewSoftMargin() SoftMargin {
	return SoftMargin{base{reduction.Mean}}
}

// NewSoftMarginFromReduction returns SoftMargin options with the reduction given by token
// ("none", "mean" or "sum").
func NewSoftMarginFromReduction(token string) (SoftMargin, error) {
	mode, err := parseReduction(KindSoftMargin, token)
	if err != nil {
		return SoftMargin{}, err
	}
	return NewSoftMargin().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o SoftMargin) WithReduction(mode reduction.Mode) SoftMargin {
	o.reduction = checkReduction(KindSoftMargin, mode)
	return o
}

func (o SoftMargin) Kind() Kind { return KindSoftMargin }
func (o SoftMargin) AllowedReductions() reduction.Set { return KindSoftMargin.AllowedReductions() }
func (o SoftMargin) Params() parameters.Params { return o.params() }
func (o SoftMargin) String() string {
	return describe("SoftMargin", "reduction="+o.reduction.String())
}
