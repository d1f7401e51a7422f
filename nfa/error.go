// Package nfa implements a Thompson-construction NFA bytecode engine:
// a Compiler turns a regexp/syntax.Regexp into a flat instruction program,
// an Optimizer runs a peephole fixed point over it, and a Machine
// simulates the program against an input stream using sparse-set thread
// queues. Execution is linear-time in the length of the input; no
// backtracking blow-up is possible.
package nfa

import (
	"errors"
	"fmt"
)

// Common NFA errors
var (
	// ErrInvalidState indicates an invalid NFA state ID was encountered
	ErrInvalidState = errors.New("invalid NFA state")

	// ErrInvalidPattern indicates the regex pattern is invalid or unsupported
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrTooComplex indicates the pattern is too complex to compile
	ErrTooComplex = errors.New("pattern too complex")

	// ErrCompilation indicates a general NFA compilation failure
	ErrCompilation = errors.New("NFA compilation failed")

	// ErrInvalidConfig indicates invalid configuration was provided
	ErrInvalidConfig = errors.New("invalid NFA configuration")

	// ErrNoMatch indicates no match was found (not an error, used internally)
	ErrNoMatch = errors.New("no match found")

	// ErrUnsupportedOp indicates the AST contains a node the compiler does
	// not handle. This is a programmer error: the compiler expects a
	// simplified regexp/syntax.Regexp, and any other node reaching it
	// means the caller passed an unsimplified or foreign AST.
	ErrUnsupportedOp = errors.New("unsupported AST node")

	// ErrCaptureOverflow indicates the pattern declares more capture
	// groups than the engine's capture-slot budget allows.
	ErrCaptureOverflow = errors.New("capture index overflow")

	// ErrInvalidProgram indicates a compiled program failed the
	// post-optimization invariant check: this is a bug in the compiler or
	// optimizer, never user input.
	ErrInvalidProgram = errors.New("invalid compiled program")
)

// CompileError wraps compilation errors with additional context
type CompileError struct {
	Pattern string
	Err     error
}

// Error implements the error interface
func (e *CompileError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("NFA compilation failed for pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("NFA compilation failed: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *CompileError) Unwrap() error {
	return e.Err
}
