// Package parapng is the public facade: it wires the band planner,
// scanline preparer, band compressor, parallel orchestrator, and stream
// stitcher together behind a small Encoder type, and turns every internal
// failure into one of a handful of named error kinds.
package parapng

import "github.com/pkg/errors"

// Kind identifies which error category an Error belongs to. The exact
// numeric values are not part of this package's contract; compare against
// the named Kind constants or switch on Kind.
type Kind int

const (
	KindInputOpen Kind = iota
	KindOutputOpen
	KindConfig
	KindCompressionInit
	KindCompressionFault
	KindChunkWrite
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInputOpen:
		return "InputOpen"
	case KindOutputOpen:
		return "OutputOpen"
	case KindConfig:
		return "Config"
	case KindCompressionInit:
		return "CompressionInit"
	case KindCompressionFault:
		return "CompressionFault"
	case KindChunkWrite:
		return "ChunkWrite"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the error type every exported parapng operation returns on
// failure. It carries both the error kind (for the CLI's exit-code
// mapping) and, via pkg/errors, a stack trace captured at the point of
// failure.
type Error struct {
	Kind  Kind
	cause error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.cause.Error()
}

// Unwrap exposes the underlying cause so errors.Is/errors.As see through
// to sentinel errors from internal packages (e.g. deflateband.ErrCompressionInit).
func (e *Error) Unwrap() error { return e.cause }
