package build

import "tlog.app/go/errors"

// Construction failure classes. Every error returned by Build matches
// at least one of these under errors.Is.
var (
	// ErrTypeMismatch: operand type tags violate an operation's type rule.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrSequencing: a block is defined out of declaration order,
	// or while the previous block is unfinished.
	ErrSequencing = errors.New("sequencing violation")

	// ErrInvalidTarget: an edge names a finished non-loop block
	// or a closed loop head.
	ErrInvalidTarget = errors.New("invalid edge target")

	// ErrScope: a block or value from an unrelated or closed scope is
	// used, a session outlives its callback, or a subgraph returns with
	// declared blocks undefined.
	ErrScope = errors.New("scope violation")

	// ErrArity: a block's phi count disagrees with the EmitPhi calls
	// made or with the argument count supplied by an edge.
	ErrArity = errors.New("phi arity mismatch")

	// ErrUnreachable: a defined non-start block ends up with no
	// inbound edges.
	ErrUnreachable = errors.New("unreachable block")

	// ErrUnfinished: a block is left undefined or unfinished when its
	// scope closes, or a loop head never finished. A flavor of ErrScope:
	// matching errors satisfy errors.Is for both.
	ErrUnfinished = errors.Wrap(ErrScope, "unfinished block")
)

// buildError carries a construction failure out through every nesting
// level. It is recovered by Build only; any other panic passes through.
type buildError struct {
	err error
}

func fail(class error, f string, args ...interface{}) {
	panic(buildError{err: errors.Wrap(class, f, args...)})
}
