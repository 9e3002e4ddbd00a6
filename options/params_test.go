package options

import (
	"github.com/gomlx/gomlx/ml/context"
	"github.com/janpfeifer/lossopts/internal/parameters"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParamsRoundTrip(t *testing.T) {
	for _, opts := range []Options{
		NewL1().WithReduction(reduction.None),
		NewKLDiv().WithReduction(reduction.BatchMean),
		NewHingeEmbedding().WithMargin(0.7),
		NewMultiMargin().WithP(2).WithMargin(0.5).WithReduction(reduction.Sum),
		NewCosineEmbedding().WithMargin(-0.25),
		NewTripletMargin().WithMargin(3).WithP(1).WithEps(1e-8).WithSwap(true),
	} {
		got, err := FromParams(opts.Kind(), opts.Params())
		require.NoError(t, err, "options %s", opts)
		assert.True(t, Equal(opts, got), "got %s, wanted %s", got, opts)
	}
	assert.Equal(t, parameters.Params{"reduction": "mean", "margin": "1", "p": "2", "eps": "1e-06", "swap": "false"},
		NewTripletMargin().Params())
}

func TestFromParamsErrors(t *testing.T) {
	for _, test := range []struct {
		kind   Kind
		config string
	}{
		{KindL1, "margin=1"},
		{KindL1, "reduction=batchmean"},
		{KindKLDiv, "reduction=average"},
		{KindHingeEmbedding, "margin=one"},
		{KindMultiMargin, "p=1.5"},
		{KindTripletMargin, "swap=maybe"},
		{KindTripletMargin, "eps=tiny"},
	} {
		_, err := FromParams(test.kind, parameters.NewFromConfigString(test.config))
		require.ErrorIs(t, err, reduction.ErrInvalidConfiguration, "kind %s, config %q", test.kind, test.config)
	}
}

func TestFromConfig(t *testing.T) {
	opts, err := FromConfig("triplet_margin,margin=0.5,reduction=sum,swap")
	require.NoError(t, err)
	triplet, ok := opts.(TripletMargin)
	require.True(t, ok)
	assert.Equal(t, 0.5, triplet.Margin())
	assert.Equal(t, reduction.Sum, triplet.Reduction())
	assert.True(t, triplet.Swap())
	assert.Equal(t, 2.0, triplet.P())

	opts, err = FromConfig("loss=kl_div, reduction=batchmean")
	require.NoError(t, err)
	assert.Equal(t, KindKLDiv, opts.Kind())
	assert.Equal(t, reduction.BatchMean, opts.Reduction())

	opts, err = FromConfig("mse")
	require.NoError(t, err)
	assert.True(t, Equal(NewMSE(), opts))

	for _, config := range []string{
		"",
		"margin=1",
		"l1,mse",
		"loss=l1,mse",
		"loss=huber",
		"l1=3",
		"l1,reduction=invalid",
		"soft_margin,swap",
	} {
		_, err = FromConfig(config)
		require.ErrorIs(t, err, reduction.ErrInvalidConfiguration, "config %q", config)
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.New()
	ctx.SetParam(ParamPrefix+ParamReduction, "sum")
	ctx.SetParam(ParamPrefix+ParamMargin, 0.5)
	ctx.SetParam(ParamPrefix+ParamSwap, true)

	opts, err := FromContext(ctx, KindTripletMargin)
	require.NoError(t, err)
	triplet := opts.(TripletMargin)
	assert.Equal(t, reduction.Sum, triplet.Reduction())
	assert.Equal(t, 0.5, triplet.Margin())
	assert.True(t, triplet.Swap())
	assert.Equal(t, 1e-6, triplet.Eps())

	// Parameters unknown to the kind are not read.
	opts, err = FromContext(ctx, KindL1)
	require.NoError(t, err)
	assert.Equal(t, reduction.Sum, opts.Reduction())

	// Sub-scopes can override values.
	subCtx := ctx.In("classifier")
	subCtx.SetParam(ParamPrefix+ParamP, 2)
	opts, err = FromContext(subCtx, KindMultiMargin)
	require.NoError(t, err)
	assert.Equal(t, 2, opts.(MultiMargin).P())

	ctx.SetParam(ParamPrefix+ParamReduction, "batchmean")
	_, err = FromContext(ctx, KindHingeEmbedding)
	require.ErrorIs(t, err, reduction.ErrInvalidConfiguration)
	opts, err = FromContext(ctx, KindKLDiv)
	require.NoError(t, err)
	assert.Equal(t, reduction.BatchMean, opts.Reduction())
}
