// Package orchestrate fans a band list out across goroutines, one worker
// per band, and collects their compressed records back in band order.
package orchestrate

import (
	"sync"
	"sync/atomic"

	"github.com/parapng/parapng/internal/bandplan"
	"github.com/parapng/parapng/internal/deflateband"
)

// Job is one band's prepared input, ready for DEFLATE.
type Job struct {
	Band  bandplan.Band
	Input []byte
}

// Run spawns one goroutine per job and waits for all of them. On first
// failure, the shared cancel flag is set so goroutines that haven't
// started their compression yet skip it; goroutines already compressing
// are allowed to finish, since they may already be past the cancellation
// check. The first error observed, in band index order, is
// returned — completion order must not make the reported error
// nondeterministic across repeated runs on the same input.
func Run(jobs []Job, level int) ([]deflateband.Record, error) {
	results := make([]deflateband.Record, len(jobs))
	errs := make([]error, len(jobs))
	var cancelled int32

	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, job := range jobs {
		go func(i int, job Job) {
			defer wg.Done()
			if atomic.LoadInt32(&cancelled) != 0 {
				errs[i] = errCancelled
				return
			}
			rec, err := deflateband.Compress(job.Input, job.Band.IsTail, level)
			if err != nil {
				atomic.StoreInt32(&cancelled, 1)
				errs[i] = err
				return
			}
			results[i] = rec
		}(i, job)
	}
	wg.Wait()

	// Report the lowest-index real failure; errCancelled markers on
	// sibling jobs are not themselves errors worth surfacing.
	for _, err := range errs {
		if err != nil && err != errCancelled {
			return nil, err
		}
	}
	return results, nil
}

var errCancelled = &cancelledError{}

type cancelledError struct{}

func (*cancelledError) Error() string { return "orchestrate: band skipped after sibling failure" }
