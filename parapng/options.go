package parapng

import "github.com/pkg/errors"

// Options configures the encoder. Thread count is always an explicit
// constructor parameter, never process-global state.
type Options struct {
	// NumThreads is the number of concurrent band workers. Minimum 1.
	NumThreads int

	// CompressionLevel is the zlib/DEFLATE level, 1..9.
	CompressionLevel int

	// PassThroughAlpha disables the default alpha-to-transparent
	// normalization.
	PassThroughAlpha bool
}

// DefaultOptions matches the CLI's documented defaults: 2 threads,
// compression level 9.
func DefaultOptions() Options {
	return Options{NumThreads: 2, CompressionLevel: 9}
}

// validate checks the constraints Options must satisfy before an Encoder
// is built.
func (o Options) validate() error {
	if o.NumThreads < 1 {
		return errors.Errorf("num-threads must be >= 1, got %d", o.NumThreads)
	}
	if o.CompressionLevel < 1 || o.CompressionLevel > 9 {
		return errors.Errorf("compression-level must be in 1..9, got %d", o.CompressionLevel)
	}
	return nil
}
