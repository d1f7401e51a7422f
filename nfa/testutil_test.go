package nfa

import "unicode/utf8"

// simpleInput is a minimal MachineInput over a []byte, used by this
// package's own tests. It does not implement the literal-prefix fast
// path (CanCheckPrefix always reports false); that wiring lives at the
// engine layer, grounded on the prefilter package.
type simpleInput struct {
	b []byte
}

func newSimpleInput(s string) *simpleInput { return &simpleInput{b: []byte(s)} }

func (in *simpleInput) Step(pos int) (rune, int) {
	if pos >= len(in.b) {
		return RuneEOF, 0
	}
	r, w := utf8.DecodeRune(in.b[pos:])
	return r, w
}

func (in *simpleInput) EndPos() int { return len(in.b) }

func (in *simpleInput) Context(pos int) EmptyOp {
	var flags EmptyOp

	var before rune = -1
	if pos > 0 {
		before, _ = utf8.DecodeLastRune(in.b[:pos])
	}
	var after rune = -1
	if pos < len(in.b) {
		after, _ = utf8.DecodeRune(in.b[pos:])
	}

	if pos == 0 {
		flags |= EmptyBeginText | EmptyBeginLine
	} else if before == '\n' {
		flags |= EmptyBeginLine
	}
	if pos == len(in.b) {
		flags |= EmptyEndText | EmptyEndLine
	} else if after == '\n' {
		flags |= EmptyEndLine
	}

	beforeWord := isWordRune(before)
	afterWord := isWordRune(after)
	if beforeWord != afterWord {
		flags |= EmptyWordBoundary
	} else {
		flags |= EmptyNoWordBoundary
	}
	return flags
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

func (in *simpleInput) CanCheckPrefix() bool         { return false }
func (in *simpleInput) Index(_ *Prog, pos int) int   { return -1 }
