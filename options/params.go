package options

import (
	"fmt"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/janpfeifer/lossopts/internal/parameters"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"maps"
	"strings"
)

// Names of the configuration parameters, as used by FromParams, FromConfig and Options.Params.
const (
	// ParamLoss selects the loss kind in FromConfig, e.g.: "loss=triplet_margin".
	// The kind name alone, e.g. "triplet_margin", can be used instead.
	ParamLoss = "loss"

	ParamReduction = "reduction"
	ParamMargin    = "margin"
	ParamP         = "p"
	ParamEps       = "eps"
	ParamSwap      = "swap"

	// ParamPrefix is prepended to the parameter names when reading them from a context, see FromContext.
	ParamPrefix = "loss_"
)

// FromParams creates the options for the given loss kind from the configuration params, starting from the
// kind's defaults. Only the parameters accepted by the kind can be set: "reduction" for all, "margin",
// "p", "eps" and "swap" for the kinds that have them.
//
// The parameters used are removed from params, and any parameter left is reported as an error.
// All errors wrap reduction.ErrInvalidConfiguration.
func FromParams(kind Kind, params parameters.Params) (Options, error) {
	defaults, err := New(kind)
	if err != nil {
		return nil, err
	}
	token, _ := parameters.PopParamOr(params, ParamReduction, defaults.Reduction().String())
	opts, err := Parse(kind, token)
	if err != nil {
		return nil, err
	}

	switch o := opts.(type) {
	case HingeEmbedding:
		margin, err := parameters.PopParamOr(params, ParamMargin, o.Margin())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		opts = o.WithMargin(margin)
	case CosineEmbedding:
		margin, err := parameters.PopParamOr(params, ParamMargin, o.Margin())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		opts = o.WithMargin(margin)
	case MultiMargin:
		p, err := parameters.PopParamOr(params, ParamP, o.P())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		margin, err := parameters.PopParamOr(params, ParamMargin, o.Margin())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		opts = o.WithP(p).WithMargin(margin)
	case TripletMargin:
		margin, err := parameters.PopParamOr(params, ParamMargin, o.Margin())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		p, err := parameters.PopParamOr(params, ParamP, o.P())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		eps, err := parameters.PopParamOr(params, ParamEps, o.Eps())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		swap, err := parameters.PopParamOr(params, ParamSwap, o.Swap())
		if err != nil {
			return nil, invalidParam(kind, err)
		}
		opts = o.WithMargin(margin).WithP(p).WithEps(eps).WithSwap(swap)
	}

	if err = parameters.CheckAllUsed(params); err != nil {
		return nil, invalidParam(kind, err)
	}
	if klog.V(2).Enabled() {
		klog.Infof("Loss options created from params: %s", opts)
	}
	return opts, nil
}

// FromConfig creates options from a configuration string with the loss kind and its parameters, e.g.:
// "triplet_margin,margin=0.5,reduction=sum" or "loss=kl_div,reduction=batchmean".
//
// Exactly one loss kind must be given. See FromParams for the parameters accepted.
func FromConfig(config string) (Options, error) {
	params := parameters.NewFromConfigString(config)
	kinds := make([]Kind, 0, 1)
	if name, found := params[ParamLoss]; found {
		kind, err := KindString(name)
		if err != nil {
			return nil, reduction.InvalidConfigurationf("unknown loss %q in %q, valid values are \"%s\"",
				name, config, strings.Join(KindStrings(), "\", \""))
		}
		kinds = append(kinds, kind)
		delete(params, ParamLoss)
	}
	for _, kind := range KindValues() {
		if value, found := params[kind.String()]; found {
			if value != "" {
				return nil, reduction.InvalidConfigurationf("loss %s doesn't take a value (%q given) in %q", kind, value, config)
			}
			kinds = append(kinds, kind)
			delete(params, kind.String())
		}
	}
	switch len(kinds) {
	case 0:
		return nil, reduction.InvalidConfigurationf("no loss defined in %q", config)
	case 1:
		return FromParams(kinds[0], params)
	default:
		return nil, reduction.InvalidConfigurationf("multiple losses %v defined in %q", kinds, config)
	}
}

// FromContext creates the options for the given loss kind from the context hyperparameters.
//
// The hyperparameters are the same as in FromParams, prefixed by ParamPrefix (e.g.: "loss_margin"), and
// they are searched from the current context scope up to the root scope. Their values can be of any type
// that formats (with fmt.Sprint) to a valid configuration value, e.g.: the string "sum" for
// "loss_reduction", or the float64 0.5 for "loss_margin".
func FromContext(ctx *context.Context, kind Kind) (Options, error) {
	defaults, err := New(kind)
	if err != nil {
		return nil, err
	}
	params := make(parameters.Params)
	for key := range maps.Keys(defaults.Params()) {
		if value, found := ctx.GetParam(ParamPrefix + key); found {
			params[key] = fmt.Sprint(value)
		}
	}
	opts, err := FromParams(kind, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "context scope %q", ctx.Scope())
	}
	return opts, nil
}

func invalidParam(kind Kind, err error) error {
	return reduction.InvalidConfigurationf("loss %s: %v", kind, err)
}
