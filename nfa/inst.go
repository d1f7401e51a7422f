package nfa

import "github.com/coregx/re2thread/internal/conv"

// Op identifies the operation an instruction performs.
type Op int

// Opcodes of the compiled bytecode program.
//
// pc 0 is always Fail (the patch-list terminator, invariant (i)); Fail,
// Nop and the Alt variants never carry a thread-id (invariant (vi)).
const (
	Fail         Op = iota // fixed at pc 0, no successors
	Match                  // terminal accept
	Nop                    // single successor; eliminated by the optimizer
	Capture                // records pos+arg2 into capture slot arg
	EmptyWidth             // succeeds iff the zero-width context satisfies arg, evaluated at pos+arg2
	Rune                   // matches if the current rune lies in any of runes' inclusive ranges
	Rune1                  // single literal rune (theRune)
	RuneAny                // '.' with newline
	RuneAnyNotNL           // '.' without newline
	Alt                    // two successors: out preferred, arg the alternative
	AltMatch               // Alt where one branch is known to accept immediately
	AltRune1               // fused Alt of a Rune1 and a non-overlapping alternative (arg)
	AltRune                // same, with a rune range
)

func (op Op) String() string {
	switch op {
	case Fail:
		return "fail"
	case Match:
		return "match"
	case Nop:
		return "nop"
	case Capture:
		return "capture"
	case EmptyWidth:
		return "empty_width"
	case Rune:
		return "rune"
	case Rune1:
		return "rune1"
	case RuneAny:
		return "rune_any"
	case RuneAnyNotNL:
		return "rune_any_notnl"
	case Alt:
		return "alt"
	case AltMatch:
		return "alt_match"
	case AltRune1:
		return "alt_rune1"
	case AltRune:
		return "alt_rune"
	default:
		return "unknown"
	}
}

// EmptyOp is a bitmask of zero-width conditions, evaluated by Capture
// "EmptyWidth" instructions and by MachineInput.context.
type EmptyOp uint8

const (
	EmptyBeginLine EmptyOp = 1 << iota
	EmptyEndLine
	EmptyBeginText
	EmptyEndText
	EmptyWordBoundary
	EmptyNoWordBoundary

	// EmptyAll is the set of all empty-width flags: if a closure's start
	// condition equals EmptyAll, no match is possible from that position.
	EmptyAll = EmptyBeginLine | EmptyEndLine | EmptyBeginText | EmptyEndText |
		EmptyWordBoundary | EmptyNoWordBoundary
)

// Inst is a single bytecode instruction.
//
// out is the pc of the primary successor (0 = sentinel/unset). arg is the
// second successor for Alt variants, the EmptyWidth flag mask, or the
// capture-group index for Capture. arg2 is the capture-offset delta for
// Capture, or the position delta for EmptyWidth. theRune is the fast path
// for Rune1/AltRune1. runes holds sorted inclusive [lo,hi] rune-range pairs
// for Rune/AltRune/RuneAny*. tid is the thread-id slot assigned by the
// allocator; -1 means the instruction is never scheduled as a thread.
type Inst struct {
	Op      Op
	Out     uint32
	Arg     uint32
	Arg2    int32
	TheRune rune
	Runes   []rune
	TID     int32
}

// MatchRune reports whether r is matched by this instruction's rune
// predicate. Only valid for Rune, Rune1, RuneAny, RuneAnyNotNL, AltRune1
// and AltRune instructions.
func (i *Inst) MatchRune(r rune) bool {
	switch i.Op {
	case Rune1, AltRune1:
		return r == i.TheRune
	case RuneAny:
		return true
	case RuneAnyNotNL:
		return r != '\n'
	case Rune, AltRune:
		return matchRuneRanges(i.Runes, r)
	default:
		return false
	}
}

func matchRuneRanges(runes []rune, r rune) bool {
	for lo := 0; lo+1 < len(runes); lo += 2 {
		if r >= runes[lo] && r <= runes[lo+1] {
			return true
		}
	}
	return false
}

// Prog is the flat, immutable (post-compile) instruction array produced by
// the Compiler and transformed by the Optimizer.
type Prog struct {
	Inst []Inst

	// Start is the pc of the initial instruction.
	Start uint32

	// NumCap is the number of capture slots (2 * groups, minimum 2).
	NumCap int

	// MaxThreadNum is an upper bound on the number of distinct tids,
	// sized for the Simulator's sparse-set queue capacity.
	MaxThreadNum int

	// AddList holds, for each pc, the precomputed epsilon-closure leaves
	// that add(pc) must enqueue (see closure.go). Populated by the
	// Optimizer's closure precompute pass; nil until then.
	AddList [][]uint32

	// Prefix, if non-empty, is a required literal prefix every match must
	// begin with (used by the Simulator's fast-skip path). PrefixRune1 is
	// the first rune of Prefix, or -1 if none.
	Prefix      []byte
	PrefixRune1 rune

	// Anchored reports whether the pattern was compiled with a leading
	// ^ anchored to the beginning of text unconditionally.
	Anchored bool
}

func newProg() *Prog {
	p := &Prog{
		Inst:        make([]Inst, 1, 16),
		NumCap:      2,
		PrefixRune1: -1,
	}
	p.Inst[0] = Inst{Op: Fail, TID: -1}
	return p
}

// emit appends an instruction and returns its pc. The program grows
// unbounded here; compilation checks len(p.Inst) against MaxProgramSize
// only after the fact, so the narrowing below is the one pc conversion in
// the compiler that a pathological pattern could actually overflow.
func (p *Prog) emit(i Inst) uint32 {
	p.Inst = append(p.Inst, i)
	return conv.IntToUint32(len(p.Inst) - 1)
}
