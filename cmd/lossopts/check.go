package main

import (
	"context"
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/lossopts/internal/ui/cli"
	"github.com/janpfeifer/lossopts/kernels"
	"github.com/janpfeifer/lossopts/options"
	"github.com/janpfeifer/lossopts/reduction"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"math"
	"runtime"
	"sync"
	"time"

	_ "github.com/gomlx/gomlx/backends/simplego"
)

var backend = sync.OnceValue(func() backends.Backend { return backends.New() })

// Sample inputs shared (read-only) by all checks: 2 examples with 3 classes each.
var (
	sampleProbs    = tensors.FromFlatDataAndDimensions([]float32{0.2, 0.7, 0.4, 0.9, 0.1, 0.5}, 2, 3)
	sampleLogProbs = tensors.FromFlatDataAndDimensions([]float32{
		float32(math.Log(0.2)), float32(math.Log(0.3)), float32(math.Log(0.5)),
		float32(math.Log(0.6)), float32(math.Log(0.3)), float32(math.Log(0.1))}, 2, 3)
	sampleLabels     = tensors.FromFlatDataAndDimensions([]float32{1, 0, 1, 0, 0, 1}, 2, 3)
	sampleSigns      = tensors.FromFlatDataAndDimensions([]float32{1, -1, -1, 1, -1, 1}, 2, 3)
	sampleClasses    = tensors.FromFlatDataAndDimensions([]int32{2, 0}, 2)
	sampleMultiLabel = tensors.FromFlatDataAndDimensions([]int32{0, 2, -1, 1, -1, 0}, 2, 3)
	sampleRowSigns   = tensors.FromFlatDataAndDimensions([]float32{1, -1}, 2)
	sampleOnes       = tensors.FromFlatDataAndDimensions([]float32{1, 1, 1}, 3)
)

// runKernel runs the reference kernel of the kind of opts on the sample inputs.
func runKernel(opts options.Options) (*tensors.Tensor, error) {
	switch o := opts.(type) {
	case options.L1:
		return kernels.L1(sampleProbs, sampleLabels, o)
	case options.KLDiv:
		return kernels.KLDiv(sampleLogProbs, sampleProbs, o)
	case options.MSE:
		return kernels.MSE(sampleProbs, sampleLabels, o)
	case options.BCE:
		return kernels.BCE(sampleProbs, sampleLabels, o)
	case options.HingeEmbedding:
		return kernels.HingeEmbedding(sampleProbs, sampleSigns, o)
	case options.MultiMargin:
		return kernels.MultiMargin(sampleProbs, sampleClasses, o)
	case options.CosineEmbedding:
		return kernels.CosineEmbedding(sampleProbs, sampleLabels, sampleRowSigns, o)
	case options.MultiLabelMargin:
		return kernels.MultiLabelMargin(sampleProbs, sampleMultiLabel, o)
	case options.SoftMargin:
		return kernels.SoftMargin(sampleProbs, sampleSigns, o)
	case options.MultiLabelSoftMargin:
		return kernels.MultiLabelSoftMargin(sampleProbs, sampleLabels, o)
	case options.TripletMargin:
		return kernels.TripletMargin(sampleProbs, sampleLabels, sampleSigns, o)
	default:
		return nil, errors.Errorf("no kernel for options %s", opts)
	}
}

type check struct {
	name string
	run  func() error
}

// kernelCheck runs the kernel of kind with each of its allowed reductions, and checks the results are
// finite and of the expected shape.
func kernelCheck(kind options.Kind) check {
	return check{
		name: fmt.Sprintf("%s kernel", kind),
		run: func() error {
			for _, mode := range kind.AllowedReductions().Modes() {
				opts, err := options.Parse(kind, mode.String())
				if err != nil {
					return err
				}
				result, err := runKernel(opts)
				if err != nil {
					return errors.WithMessagef(err, "reduction %s", mode)
				}
				if mode != reduction.None && result.Shape().Rank() != 0 {
					return errors.Errorf("reduction %s returned shape %s, wanted a scalar", mode, result.Shape())
				}
				for _, v := range tensors.CopyFlatData[float32](result) {
					if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
						return errors.Errorf("reduction %s returned non-finite values %s", mode, result)
					}
				}
			}
			return nil
		},
	}
}

// weightCheck verifies that the kernel of a weighted kind gives the same result with no weight and with
// a weight of ones.
func weightCheck(unweighted, weighted options.Weighted) check {
	return check{
		name: fmt.Sprintf("%s absent weight equals ones", unweighted.Kind()),
		run: func() error {
			want, err := runKernel(unweighted)
			if err != nil {
				return err
			}
			got, err := runKernel(weighted)
			if err != nil {
				return err
			}
			return compare(want, got, 0)
		},
	}
}

// graphCheck verifies that the graph version of a kernel matches the host one.
func graphCheck(opts options.Options, input, target *tensors.Tensor, graphFn func(x, y *graph.Node) *graph.Node) check {
	return check{
		name: fmt.Sprintf("%s graph matches host", opts.Kind()),
		run: func() error {
			want, err := runKernel(opts)
			if err != nil {
				return err
			}
			var got *tensors.Tensor
			err = exceptions.TryCatch[error](func() { got = graph.ExecOnce(backend(), graphFn, input, target) })
			if err != nil {
				return err
			}
			return compare(want, got, 1e-5)
		},
	}
}

// compare two Float32 results.
func compare(want, got *tensors.Tensor, tolerance float64) error {
	if !want.Shape().Equal(got.Shape()) {
		return reduction.ShapeMismatchf("got shape %s, wanted %s", got.Shape(), want.Shape())
	}
	wantValues, gotValues := tensors.CopyFlatData[float32](want), tensors.CopyFlatData[float32](got)
	for ii := range wantValues {
		if math.Abs(float64(wantValues[ii]-gotValues[ii])) > tolerance {
			return errors.Errorf("value #%d is %g, wanted %g", ii, gotValues[ii], wantValues[ii])
		}
	}
	return nil
}

func allChecks() []check {
	var checks []check
	for _, kind := range options.KindValues() {
		checks = append(checks, kernelCheck(kind))
	}
	for _, mode := range reduction.Standard.Modes() {
		checks = append(checks,
			weightCheck(options.NewBCE().WithReduction(mode), options.NewBCE().WithWeight(sampleOnes).WithReduction(mode)),
			weightCheck(options.NewMultiMargin().WithReduction(mode),
				options.NewMultiMargin().WithWeight(sampleOnes).WithReduction(mode)),
			weightCheck(options.NewMultiLabelSoftMargin().WithReduction(mode),
				options.NewMultiLabelSoftMargin().WithWeight(sampleOnes).WithReduction(mode)))
	}
	l1, mse, bce := options.NewL1(), options.NewMSE().WithReduction(reduction.Sum), options.NewBCE().WithReduction(reduction.None)
	hinge, softMargin := options.NewHingeEmbedding().WithMargin(0.5), options.NewSoftMargin()
	checks = append(checks,
		graphCheck(l1, sampleProbs, sampleLabels, func(x, y *graph.Node) *graph.Node { return kernels.L1Graph(x, y, l1) }),
		graphCheck(mse, sampleProbs, sampleLabels, func(x, y *graph.Node) *graph.Node { return kernels.MSEGraph(x, y, mse) }),
		graphCheck(bce, sampleProbs, sampleLabels, func(x, y *graph.Node) *graph.Node { return kernels.BCEGraph(x, y, bce) }),
		graphCheck(hinge, sampleProbs, sampleSigns, func(x, y *graph.Node) *graph.Node {
			return kernels.HingeEmbeddingGraph(x, y, hinge)
		}),
		graphCheck(softMargin, sampleProbs, sampleSigns, func(x, y *graph.Node) *graph.Node {
			return kernels.SoftMarginGraph(x, y, softMargin)
		}),
	)
	return checks
}

// runChecks runs all checks concurrently and prints their results in order.
// It returns an error if any of them failed.
func runChecks(ctx context.Context, ui *cli.UI) error {
	checks := allChecks()
	results := make([]error, len(checks))
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for ii, c := range checks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[ii] = c.run()
			klog.V(1).Infof("Check %q done: %v", c.name, results[ii])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ui.Title("Checks")
	var numFailed int
	for ii, c := range checks {
		ui.Check(c.name, results[ii])
		if results[ii] != nil {
			numFailed++
		}
	}
	ui.Printf("\n%d checks in %s, %d failed\n", len(checks), time.Since(start), numFailed)
	if numFailed > 0 {
		return errors.Errorf("%d of %d checks failed", numFailed, len(checks))
	}
	return nil
}
