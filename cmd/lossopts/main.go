// lossopts inspects loss options: it lists the loss kinds with their defaults, parses option
// configurations and applies their reduction to per-element losses, and checks the reference kernels.
//
// Examples:
//
//	lossopts -list
//	lossopts -config="kl_div,reduction=batchmean" -losses=0.1,0.2,0.3,0.4 -dims=2,2
//	lossopts -check
package main

import (
	"context"
	"flag"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/internal/generics"
	"github.com/janpfeifer/lossopts/internal/profilers"
	"github.com/janpfeifer/lossopts/internal/ui/cli"
	"github.com/janpfeifer/lossopts/options"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
)

var (
	flagConfig = flag.String("config", "", "Loss options configuration, e.g. \"triplet_margin,margin=0.5,reduction=sum\". "+
		"The loss kind is given by itself or as \"loss=<kind>\".")
	flagLosses = flag.String("losses", "", "Comma-separated per-element loss values to reduce with the "+
		"reduction configured in -config.")
	flagDims = flag.String("dims", "", "Comma-separated dimensions of the -losses values. "+
		"Default is a 1D shape with all the values.")
	flagList  = flag.Bool("list", false, "List the loss kinds, their default options and allowed reductions.")
	flagCheck = flag.Bool("check", false, "Run the reference kernels of every loss kind on sample inputs, "+
		"and check their invariants.")
	flagCPUProfile = flag.String("cpu_profile", "", "Write CPU profile to `file`.")
)

// errNoCommand is returned by run when none of -list, -check or -config is given.
var errNoCommand = errors.New("one of -list, -check or -config must be given")

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	stopProfile := must.M1(profilers.StartCPUProfile(*flagCPUProfile))
	err := run(ctx, cli.ForStdout())
	// Exiting skips deferred calls, so the profile is flushed first.
	stopProfile()
	if err != nil {
		if errors.Is(err, errNoCommand) {
			flag.Usage()
		}
		klog.Exitf("Failed: %+v", err)
	}
}

// run the command selected by the flags.
func run(ctx context.Context, ui *cli.UI) error {
	switch {
	case *flagList:
		listKinds(ui)
		return nil
	case *flagCheck:
		return runChecks(ctx, ui)
	case *flagConfig != "":
		return reduceLosses(ui)
	default:
		return errNoCommand
	}
}

// listKinds prints a table with the default options of every kind.
func listKinds(ui *cli.UI) {
	ui.Title("Loss kinds")
	var rows [][]string
	for _, kind := range options.KindValues() {
		opts := must.M1(options.New(kind))
		rows = append(rows, []string{kind.String(), opts.AllowedReductions().String(), opts.String()})
	}
	ui.Table([]string{"kind", "reductions", "defaults"}, rows)
}

// reduceLosses parses -config and, if -losses is given, applies the configured reduction to them.
func reduceLosses(ui *cli.UI) error {
	opts, err := options.FromConfig(*flagConfig)
	if err != nil {
		return err
	}
	ui.Printf("%s\n", opts)
	if *flagLosses == "" {
		return nil
	}
	values, err := parseList(*flagLosses, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	if err != nil {
		return errors.WithMessage(err, "parsing -losses")
	}
	dims := []int{len(values)}
	if *flagDims != "" {
		dims, err = parseList(*flagDims, strconv.Atoi)
		if err != nil {
			return errors.WithMessage(err, "parsing -dims")
		}
	}
	size := 1
	for _, dim := range dims {
		size *= dim
	}
	if size != len(values) {
		return reduction.ShapeMismatchf("-dims=%v has %d elements, but -losses has %d values", dims, size, len(values))
	}
	losses := tensors.FromFlatDataAndDimensions(values, dims...)
	klog.V(1).Infof("Losses: %s", losses.Shape())
	reduced, err := reduction.ResolveFor(opts.AllowedReductions(), opts.Reduction(), losses)
	if err != nil {
		return err
	}
	ui.Printf("%s: shape=%s values=%v\n", opts.Reduction(), reduced.Shape(), tensors.CopyFlatData[float64](reduced))
	return nil
}

// parseList parses a comma-separated list of values.
func parseList[T any](list string, parse func(string) (T, error)) ([]T, error) {
	parts := generics.SliceMap(strings.Split(list, ","), strings.TrimSpace)
	values := make([]T, len(parts))
	for ii, part := range parts {
		value, err := parse(part)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value #%d %q", ii, part)
		}
		values[ii] = value
	}
	return values, nil
}
