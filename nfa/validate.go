package nfa

import "fmt"

// validate checks the post-optimization invariants of the bytecode format:
// pc 0 is Fail, every Out/Arg is in range, and every pc is reachable from
// Start (compact already guarantees the latter by construction, but this
// also catches a compiler/optimizer bug that produced an out-of-range
// pointer). A violation here is a bug, never user input, so the result is
// wrapped in CompileError rather than a sentinel the caller is expected to
// branch on.
func validate(prog *Prog) error {
	n := uint32(len(prog.Inst))
	if prog.Inst[0].Op != Fail {
		return &CompileError{Err: fmt.Errorf("%w: pc 0 is not Fail", ErrInvalidProgram)}
	}
	if prog.Start >= n {
		return &CompileError{Err: fmt.Errorf("%w: start pc %d out of range", ErrInvalidProgram, prog.Start)}
	}
	for pc := range prog.Inst {
		i := &prog.Inst[pc]
		switch i.Op {
		case Fail, Match:
		case Alt, AltMatch, AltRune1, AltRune:
			if i.Out >= n || i.Arg >= n {
				return &CompileError{Err: fmt.Errorf("%w: pc %d has out-of-range successor", ErrInvalidProgram, pc)}
			}
		default:
			if i.Out >= n {
				return &CompileError{Err: fmt.Errorf("%w: pc %d has out-of-range successor", ErrInvalidProgram, pc)}
			}
		}
	}
	return nil
}
