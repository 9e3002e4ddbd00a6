package options

import (
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/internal/parameters"
	"github.com/janpfeifer/lossopts/reduction"
	"strconv"
)

// BCE configures the binary cross-entropy loss between target and input probabilities.
type BCE struct {
	base
	weight *tensors.Tensor
}

var _ Weighted = BCE{}

// NewBCE returns the default BCE options: no weight and reduction Mean.
func NewBCE() BCE {
	return BCE{base: base{reduction.Mean}}
}

// NewBCEFromReduction returns BCE options with the reduction given by token ("none", "mean" or "sum").
func NewBCEFromReduction(token string) (BCE, error) {
	mode, err := parseReduction(KindBCE, token)
	if err != nil {
		return BCE{}, err
	}
	return NewBCE().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o BCE) WithReduction(mode reduction.Mode) BCE {
	o.reduction = checkReduction(KindBCE, mode)
	return o
}

// Weight is a manual rescaling weight applied to the loss of each class (the last axis of the input).
// If nil (the default), every class has weight 1.
func (o BCE) Weight() *tensors.Tensor { return o.weight }

// WithWeight returns a copy with the class weight set. It must be a 1D tensor with one value per class,
// which is checked by the kernel. A nil weight is the same as a weight of 1 for every class.
//
// The tensor is shared, not copied.
func (o BCE) WithWeight(weight *tensors.Tensor) BCE {
	o.weight = weight
	return o
}

func (o BCE) Kind() Kind { return KindBCE }
func (o BCE) AllowedReductions() reduction.Set { return KindBCE.AllowedReductions() }
func (o BCE) Params() parameters.Params { return o.params() }
func (o BCE) String() string {
	return describe("BCE", "weight="+formatWeight(o.weight), "reduction="+o.reduction.String())
}

// MultiMargin configures the multi-class classification hinge loss.
type MultiMargin struct {
	base
	p      int
	margin float64
	weight *tensors.Tensor
}

var _ Weighted = MultiMargin{}

// NewMultiMargin returns the default MultiMargin options: p=1, margin=1, no weight and reduction Mean.
func NewMultiMargin() MultiMargin {
	return MultiMargin{base: base{reduction.Mean}, p: 1, margin: 1}
}

// NewMultiMarginFromReduction returns MultiMargin options with the reduction given by token
// ("none", "mean" or "sum").
func NewMultiMarginFromReduction(token string) (MultiMargin, error) {
	mode, err := parseReduction(KindMultiMargin, token)
	if err != nil {
		return MultiMargin{}, err
	}
	return NewMultiMargin().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o MultiMargin) WithReduction(mode reduction.Mode) MultiMargin {
	o.reduction = checkReduction(KindMultiMargin, mode)
	return o
}

// P is the exponent of the hinge. Only 1 and 2 are supported by the kernel. Default is 1.
func (o MultiMargin) P() int { return o.p }

// WithP returns a copy with the exponent p set.
func (o MultiMargin) WithP(p int) MultiMargin {
	o.p = p
	return o
}

// Margin of the hinge. Default is 1.
func (o MultiMargin) Margin() float64 { return o.margin }

// WithMargin returns a copy with the margin set.
func (o MultiMargin) WithMargin(margin float64) MultiMargin {
	o.margin = margin
	return o
}

// Weight is a manual rescaling weight given to each class. If nil (the default), every class has weight 1.
func (o MultiMargin) Weight() *tensors.Tensor { return o.weight }

// WithWeight returns a copy with the class weight set. It must be a 1D tensor of length C (the number
// of classes), which is checked by the kernel. The tensor is shared, not copied.
func (o MultiMargin) WithWeight(weight *tensors.Tensor) MultiMargin {
	o.weight = weight
	return o
}

func (o MultiMargin) Kind() Kind { return KindMultiMargin }
func (o MultiMargin) AllowedReductions() reduction.Set { return KindMultiMargin.AllowedReductions() }

func (o MultiMargin) Params() parameters.Params {
	params := o.params()
	params[ParamP] = strconv.Itoa(o.p)
	params[ParamMargin] = formatFloat(o.margin)
	return params
}

func (o MultiMargin) String() string {
	return describe("MultiMargin", "p="+strconv.Itoa(o.p), "margin="+formatFloat(o.margin),
		"weight="+formatWeight(o.weight), "reduction="+o.reduction.String())
}

// MultiLabelSoftMargin configures the multi-label one-versus-all loss based on max-entropy.
type MultiLabelSoftMargin struct {
	base
	weight *tensors.Tensor
}

var _ Weighted = MultiLabelSoftMargin{}

// NewMultiLabelSoftMargin returns the default MultiLabelSoftMargin options: no weight and reduction Mean.
func NewMultiLabelSoftMargin() MultiLabelSoftMargin {
	return MultiLabelSoftMargin{base: base{reduction.Mean}}
}

// NewMultiLabelSoftMarginFromReduction returns MultiLabelSoftMargin options with the reduction given by
// token ("none", "mean" or "sum").
func NewMultiLabelSoftMarginFromReduction(token string) (MultiLabelSoftMargin, error) {
	mode, err := parseReduction(KindMultiLabelSoftMargin, token)
	if err != nil {
		return MultiLabelSoftMargin{}, err
	}
	return NewMultiLabelSoftMargin().WithReduction(mode), nil
}

// WithReduction returns a copy with the reduction mode set.
// It panics if mode is not one of reduction.None, reduction.Mean or reduction.Sum.
func (o MultiLabelSoftMargin) WithReduction(mode reduction.Mode) MultiLabelSoftMargin {
	o.reduction = checkReduction(KindMultiLabelSoftMargin, mode)
	return o
}

// Weight is a manual rescaling weight given to each class. If nil (the default), every class has weight 1.
func (o MultiLabelSoftMargin) Weight() *tensors.Tensor { return o.weight }

// WithWeight returns a copy with the class weight set. It must be a 1D tensor of length C (the number
// of classes), which is checked by the kernel. The tensor is shared, not copied.
func (o MultiLabelSoftMargin) WithWeight(weight *tensors.Tensor) MultiLabelSoftMargin {
	o.weight = weight
	return o
}

func (o MultiLabelSoftMargin) Kind() Kind { return KindMultiLabelSoftMargin }
func (o MultiLabelSoftMargin) AllowedReductions() reduction.Set {
	return KindMultiLabelSoftMargin.AllowedReductions()
}
func (o MultiLabelSoftMargin) Params() parameters.Params { return o.params() }
func (o MultiLabelSoftMargin) String() string {
	return describe("MultiLabelSoftMargin", "weight="+formatWeight(o.weight), "reduction="+o.reduction.String())
}
