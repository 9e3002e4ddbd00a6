// Package options defines the configuration of each loss kind: its hyperparameters (margins, norm
// degrees, epsilons, class weights) and the reduction applied to the per-element losses.
//
// Each loss kind has its own immutable value type, created with its defaults by NewXxx and changed
// with chained WithXxx setters, each returning a modified copy:
//
//	opts := options.NewTripletMargin().WithMargin(0.5).WithSwap(true).WithReduction(reduction.Sum)
//
// Alternatively, for configurations coming from users, NewXxxFromReduction, Parse, FromParams,
// FromConfig and FromContext validate the reduction (and other values) and return an error wrapping
// reduction.ErrInvalidConfiguration instead.
//
// Options are data carriers: besides the reduction mode, which is checked eagerly against the modes
// accepted by the loss kind, no values are validated here. Kernels validate the rest (e.g.: that
// the class weight length matches the number of classes) when they run.
package options

import (
	"fmt"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/internal/parameters"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/pkg/errors"
	"maps"
	"strconv"
	"strings"
)

// Options is implemented by the options of every loss kind.
type Options interface {
	// Kind of loss these options configure.
	Kind() Kind

	// Reduction to apply to the per-element losses.
	Reduction() reduction.Mode

	// AllowedReductions for this loss kind.
	AllowedReductions() reduction.Set

	// Params returns the options as configuration parameters, as accepted by FromParams.
	// The class weight, if any, is not included.
	Params() parameters.Params

	// String returns a human-readable description, e.g.: "HingeEmbedding(margin=1, reduction=mean)".
	String() string
}

// Weighted is implemented by the options of loss kinds that accept an optional per-class weight.
type Weighted interface {
	Options

	// Weight returns the per-class weight, or nil if not set, meaning all classes weight 1.
	Weight() *tensors.Tensor
}

// New returns the default options for the given loss kind.
func New(kind Kind) (Options, error) {
	switch kind {
	case KindL1:
		return NewL1(), nil
	case KindKLDiv:
		return NewKLDiv(), nil
	case KindMSE:
		return NewMSE(), nil
	case KindBCE:
		return NewBCE(), nil
	case KindHingeEmbedding:
		return NewHingeEmbedding(), nil
	case KindMultiMargin:
		return NewMultiMargin(), nil
	case KindCosineEmbedding:
		return NewCosineEmbedding(), nil
	case KindMultiLabelMargin:
		return NewMultiLabelMargin(), nil
	case KindSoftMargin:
		return NewSoftMargin(), nil
	case KindMultiLabelSoftMargin:
		return NewMultiLabelSoftMargin(), nil
	case KindTripletMargin:
		return NewTripletMargin(), nil
	default:
		return nil, reduction.InvalidConfigurationf("unknown loss kind %s, valid values are \"%s\"",
			kind, strings.Join(KindStrings(), "\", \""))
	}
}

// Parse returns the default options for the given loss kind, with the reduction given by token.
// It fails with reduction.ErrInvalidConfiguration if token is not a reduction accepted by the kind.
func Parse(kind Kind, token string) (Options, error) {
	mode, err := parseReduction(kind, token)
	if err != nil {
		return nil, err
	}
	return withReduction(kind, mode)
}

// withReduction returns the default options for kind with the reduction mode set. mode must have been
// validated already.
func withReduction(kind Kind, mode reduction.Mode) (Options, error) {
	switch kind {
	case KindL1:
		return NewL1().WithReduction(mode), nil
	case KindKLDiv:
		return NewKLDiv().WithReduction(mode), nil
	case KindMSE:
		return NewMSE().WithReduction(mode), nil
	case KindBCE:
		return NewBCE().WithReduction(mode), nil
	case KindHingeEmbedding:
		return NewHingeEmbedding().WithReduction(mode), nil
	case KindMultiMargin:
		return NewMultiMargin().WithReduction(mode), nil
	case KindCosineEmbedding:
		return NewCosineEmbedding().WithReduction(mode), nil
	case KindMultiLabelMargin:
		return NewMultiLabelMargin().WithReduction(mode), nil
	case KindSoftMargin:
		return NewSoftMargin().WithReduction(mode), nil
	case KindMultiLabelSoftMargin:
		return NewMultiLabelSoftMargin().WithReduction(mode), nil
	case KindTripletMargin:
		return NewTripletMargin().WithReduction(mode), nil
	}
	return New(kind)
}

// Equal returns whether a and b are options of the same kind, with the same values and the same
// class weight tensor (compared by identity, not by value).
func Equal(a, b Options) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Reduction() != b.Reduction() {
		return false
	}
	if !maps.Equal(a.Params(), b.Params()) {
		return false
	}
	wa, okA := a.(Weighted)
	wb, okB := b.(Weighted)
	if okA != okB {
		return false
	}
	return !okA || wa.Weight() == wb.Weight()
}

func parseReduction(kind Kind, token string) (reduction.Mode, error) {
	if !kind.IsAKind() {
		return reduction.Mean, reduction.InvalidConfigurationf("unknown loss kind %s", kind)
	}
	mode, err := kind.AllowedReductions().Parse(token)
	if err != nil {
		return mode, errors.WithMessagef(err, "loss %s", kind)
	}
	return mode, nil
}

// checkReduction panics if mode is not accepted by kind. The panic value is an error wrapping
// reduction.ErrInvalidConfiguration.
func checkReduction(kind Kind, mode reduction.Mode) reduction.Mode {
	if err := kind.AllowedReductions().Check(mode); err != nil {
		panic(errors.WithMessagef(err, "loss %s", kind))
	}
	return mode
}

// base holds the reduction mode, common to the options of all loss kinds.
// Its zero value is reduction.Mean, the default for every loss kind.
type base struct {
	reduction reduction.Mode
}

// Reduction to apply to the per-element losses.
func (b base) Reduction() reduction.Mode {
	return b.reduction
}

func (b base) params() parameters.Params {
	return parameters.Params{ParamReduction: b.reduction.String()}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatWeight(weight *tensors.Tensor) string {
	if weight == nil {
		return "none"
	}
	return fmt.Sprintf("%v", weight.Shape().Dimensions)
}

// describe formats the options, e.g.: "TripletMargin(margin=1, p=2, reduction=mean)".
func describe(name string, fields ...string) string {
	return name + "(" + strings.Join(fields, ", ") + ")"
}
