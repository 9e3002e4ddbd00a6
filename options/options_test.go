package options

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"testing"
)

// builders set the reduction with the field-by-field builder of each kind.
var builders = map[Kind]func(mode reduction.Mode) Options{
	KindL1:                   func(mode reduction.Mode) Options { return NewL1().WithReduction(mode) },
	KindKLDiv:                func(mode reduction.Mode) Options { return NewKLDiv().WithReduction(mode) },
	KindMSE:                  func(mode reduction.Mode) Options { return NewMSE().WithReduction(mode) },
	KindBCE:                  func(mode reduction.Mode) Options { return NewBCE().WithReduction(mode) },
	KindHingeEmbedding:       func(mode reduction.Mode) Options { return NewHingeEmbedding().WithReduction(mode) },
	KindMultiMargin:          func(mode reduction.Mode) Options { return NewMultiMargin().WithReduction(mode) },
	KindCosineEmbedding:      func(mode reduction.Mode) Options { return NewCosineEmbedding().WithReduction(mode) },
	KindMultiLabelMargin:     func(mode reduction.Mode) Options { return NewMultiLabelMargin().WithReduction(mode) },
	KindSoftMargin:           func(mode reduction.Mode) Options { return NewSoftMargin().WithReduction(mode) },
	KindMultiLabelSoftMargin: func(mode reduction.Mode) Options { return NewMultiLabelSoftMargin().WithReduction(mode) },
	KindTripletMargin:        func(mode reduction.Mode) Options { return NewTripletMargin().WithReduction(mode) },
}

// fromTokens use the reduction-first constructor of each kind.
var fromTokens = map[Kind]func(token string) (Options, error){
	KindL1:                   func(token string) (Options, error) { return NewL1FromReduction(token) },
	KindKLDiv:                func(token string) (Options, error) { return NewKLDivFromReduction(token) },
	KindMSE:                  func(token string) (Options, error) { return NewMSEFromReduction(token) },
	KindBCE:                  func(token string) (Options, error) { return NewBCEFromReduction(token) },
	KindHingeEmbedding:       func(token string) (Options, error) { return NewHingeEmbeddingFromReduction(token) },
	KindMultiMargin:          func(token string) (Options, error) { return NewMultiMarginFromReduction(token) },
	KindCosineEmbedding:      func(token string) (Options, error) { return NewCosineEmbeddingFromReduction(token) },
	KindMultiLabelMargin:     func(token string) (Options, error) { return NewMultiLabelMarginFromReduction(token) },
	KindSoftMargin:           func(token string) (Options, error) { return NewSoftMarginFromReduction(token) },
	KindMultiLabelSoftMargin: func(token string) (Options, error) { return NewMultiLabelSoftMarginFromReduction(token) },
	KindTripletMargin:        func(token string) (Options, error) { return NewTripletMarginFromReduction(token) },
}

func TestDefaults(t *testing.T) {
	require.Len(t, KindValues(), 11)
	for _, kind := range KindValues() {
		opts, err := New(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, opts.Kind())
		assert.Equal(t, reduction.Mean, opts.Reduction(), "kind %s", kind)
		if w, ok := opts.(Weighted); ok {
			assert.Nil(t, w.Weight(), "kind %s", kind)
		}
	}

	hinge := NewHingeEmbedding()
	assert.Equal(t, 1.0, hinge.Margin())

	multiMargin := NewMultiMargin()
	assert.Equal(t, 1, multiMargin.P())
	assert.Equal(t, 1.0, multiMargin.Margin())
	assert.Nil(t, multiMargin.Weight())

	assert.Equal(t, 0.0, NewCosineEmbedding().Margin())
	assert.Nil(t, NewBCE().Weight())
	assert.Nil(t, NewMultiLabelSoftMargin().Weight())

	triplet := NewTripletMargin()
	assert.Equal(t, 1.0, triplet.Margin())
	assert.Equal(t, 2.0, triplet.P())
	assert.Equal(t, 1e-6, triplet.Eps())
	assert.False(t, triplet.Swap())

	// Zero values of the reduction-only kinds are their defaults.
	assert.Equal(t, NewL1(), L1{})
	assert.Equal(t, NewKLDiv(), KLDiv{})

	_, err := New(Kind(-1))
	require.ErrorIs(t, err, reduction.ErrInvalidConfiguration)
}

func TestAllowedReductions(t *testing.T) {
	for _, kind := range KindValues() {
		opts, err := New(kind)
		require.NoError(t, err)
		if kind == KindKLDiv {
			assert.Equal(t, []reduction.Mode{reduction.None, reduction.BatchMean, reduction.Sum, reduction.Mean},
				opts.AllowedReductions().Modes())
		} else {
			assert.Equal(t, []reduction.Mode{reduction.None, reduction.Mean, reduction.Sum},
				opts.AllowedReductions().Modes(), "kind %s", kind)
		}
	}
}

func TestTokenAndBuilderAgree(t *testing.T) {
	require.Len(t, builders, len(KindValues()))
	require.Len(t, fromTokens, len(KindValues()))
	for _, kind := range KindValues() {
		for _, mode := range kind.AllowedReductions().Modes() {
			fromToken, err := fromTokens[kind](mode.String())
			require.NoError(t, err, "kind %s, mode %s", kind, mode)
			built := builders[kind](mode)
			assert.Equal(t, mode, fromToken.Reduction())
			assert.Equal(t, built.Reduction(), fromToken.Reduction(), "kind %s, mode %s", kind, mode)
			assert.True(t, Equal(built, fromToken), "kind %s, mode %s", kind, mode)

			parsed, err := Parse(kind, mode.String())
			require.NoError(t, err)
			assert.True(t, Equal(built, parsed), "kind %s, mode %s", kind, mode)
		}
	}
}

func TestInvalidReduction(t *testing.T) {
	for _, kind := range KindValues() {
		opts, err := fromTokens[kind]("invalid")
		require.ErrorIs(t, err, reduction.ErrInvalidConfiguration, "kind %s", kind)
		// Only the zero value is returned.
		if w, ok := opts.(Weighted); ok {
			assert.Nil(t, w.Weight())
		}
		assert.Equal(t, reduction.Mean, opts.Reduction())
		assert.Equal(t, kind, opts.Kind())

		_, err = Parse(kind, "invalid")
		require.ErrorIs(t, err, reduction.ErrInvalidConfiguration, "kind %s", kind)

		if kind != KindKLDiv {
			_, err = fromTokens[kind]("batchmean")
			require.ErrorIs(t, err, reduction.ErrInvalidConfiguration, "kind %s", kind)
		}
	}
	opts, err := NewTripletMarginFromReduction("invalid")
	require.Error(t, err)
	assert.Equal(t, TripletMargin{}, opts)
	assert.Contains(t, err.Error(), "triplet_margin")

	kl, err := NewKLDivFromReduction("BatchMean")
	require.NoError(t, err)
	assert.Equal(t, reduction.BatchMean, kl.Reduction())
}

func TestWithReductionPanics(t *testing.T) {
	err := exceptions.TryCatch[error](func() {
		_ = NewL1().WithReduction(reduction.BatchMean)
	})
	require.ErrorIs(t, err, reduction.ErrInvalidConfiguration)
	err = exceptions.TryCatch[error](func() {
		_ = NewKLDiv().WithReduction(reduction.Mode(42))
	})
	require.ErrorIs(t, err, reduction.ErrInvalidConfiguration)
	require.NotPanics(t, func() { _ = NewKLDiv().WithReduction(reduction.BatchMean) })
}

func TestSettersReturnCopies(t *testing.T) {
	triplet := NewTripletMargin()
	changed := triplet.WithMargin(0.5).WithP(1).WithEps(1e-3).WithSwap(true).WithReduction(reduction.Sum)
	assert.Equal(t, NewTripletMargin(), triplet)
	assert.Equal(t, 0.5, changed.Margin())
	assert.Equal(t, 1.0, changed.P())
	assert.Equal(t, 1e-3, changed.Eps())
	assert.True(t, changed.Swap())
	assert.Equal(t, reduction.Sum, changed.Reduction())

	weight := tensors.FromFlatDataAndDimensions([]float32{1, 2, 3}, 3)
	multiMargin := NewMultiMargin()
	weighted := multiMargin.WithWeight(weight).WithP(2).WithMargin(0.3)
	assert.Nil(t, multiMargin.Weight())
	assert.Same(t, weight, weighted.Weight())
	assert.Equal(t, 2, weighted.P())
	assert.Equal(t, 0.3, weighted.Margin())
	assert.Nil(t, weighted.WithWeight(nil).Weight())

	assert.Same(t, weight, NewBCE().WithWeight(weight).Weight())
	assert.Same(t, weight, NewMultiLabelSoftMargin().WithWeight(weight).Weight())
	assert.Equal(t, 0.2, NewHingeEmbedding().WithMargin(0.2).Margin())
	assert.Equal(t, 0.4, NewCosineEmbedding().WithMargin(0.4).Margin())
}

func TestEqual(t *testing.T) {
	weight := tensors.FromFlatDataAndDimensions([]float64{1, 1}, 2)
	assert.True(t, Equal(NewBCE(), NewBCE()))
	assert.True(t, Equal(NewBCE().WithWeight(weight), NewBCE().WithWeight(weight)))
	assert.False(t, Equal(NewBCE().WithWeight(weight), NewBCE()))
	assert.False(t, Equal(NewL1(), NewMSE()))
	assert.False(t, Equal(NewL1(), NewL1().WithReduction(reduction.Sum)))
	assert.False(t, Equal(NewTripletMargin(), NewTripletMargin().WithSwap(true)))
	assert.False(t, Equal(NewL1(), nil))
	assert.True(t, Equal(nil, nil))
}

func TestString(t *testing.T) {
	assert.Equal(t, "L1(reduction=mean)", NewL1().String())
	assert.Equal(t, "KLDiv(reduction=batchmean)", NewKLDiv().WithReduction(reduction.BatchMean).String())
	assert.Equal(t, "TripletMargin(margin=1, p=2, eps=1e-06, swap=false, reduction=mean)", NewTripletMargin().String())
	assert.Equal(t, "MultiMargin(p=1, margin=1, weight=none, reduction=sum)",
		NewMultiMargin().WithReduction(reduction.Sum).String())
	weight := tensors.FromFlatDataAndDimensions([]float32{1, 2, 3}, 3)
	assert.Equal(t, "BCE(weight=[3], reduction=none)",
		NewBCE().WithWeight(weight).WithReduction(reduction.None).String())
	assert.Equal(t, "HingeEmbedding(margin=1, reduction=mean)", NewHingeEmbedding().String())
}

// TestConcurrentReaders shares the same options across goroutines, which only read them.
func TestConcurrentReaders(t *testing.T) {
	opts := NewTripletMargin().WithMargin(0.25).WithReduction(reduction.Sum)
	var wg errgroup.Group
	for range 16 {
		wg.Go(func() error {
			for range 100 {
				parsed, err := FromParams(KindTripletMargin, opts.Params())
				if err != nil {
					return err
				}
				if !Equal(parsed, opts) {
					return reduction.InvalidConfigurationf("got %s, wanted %s", parsed, opts)
				}
			}
			return nil
		})
	}
	require.NoError(t, wg.Wait())
}
