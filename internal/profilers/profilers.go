// Package profilers sets up CPU profiling of the lossopts command, to debug slow kernels.
package profilers

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"os"
	"runtime/pprof"
	"sync"
)

// StartCPUProfile creates the file at path and starts CPU profiling there.
// It returns the function that stops the profiling and closes the file, to be deferred. It can be called
// more than once.
//
// If path is empty, it is a no-op.
func StartCPUProfile(path string) (stop func(), err error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not create CPU profile")
	}
	if err = pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "could not start CPU profile")
	}
	klog.V(1).Infof("CPU profile written to %q", path)
	return sync.OnceFunc(func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			klog.Errorf("Failed to close CPU profile %q: %v", path, err)
		}
	}), nil
}
