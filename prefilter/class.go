// Package prefilter: fallback prefilters for patterns whose leading
// character-class requirement survives AST inspection but not literal
// extraction -- typically a digit or word class wrapped in a bounded
// repeat (e.g. \d{3}-\d{3}-\d{4}) or an alternation whose branches all
// begin with the same class.

package prefilter

import (
	"regexp/syntax"

	"github.com/coregx/re2thread/simd"
)

// classPrefilter narrows candidates to positions whose byte is a member of
// a fixed 256-entry table. It backs leading character classes that
// detectLeadingClass recognizes but that don't have their own SIMD
// primitive.
type classPrefilter struct {
	table *[256]bool
}

func newClassPrefilter(table *[256]bool) Prefilter {
	return &classPrefilter{table: table}
}

func (p *classPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	idx := simd.MemchrInTable(haystack[start:], p.table)
	if idx == -1 {
		return -1
	}
	return start + idx
}

func (p *classPrefilter) IsComplete() bool { return false }
func (p *classPrefilter) LiteralLen() int  { return 0 }
func (p *classPrefilter) HeapBytes() int   { return 0 }

// wordPrefilter narrows candidates to positions starting with a word byte
// ([0-9A-Za-z_]), backed by simd.MemchrWord.
type wordPrefilter struct{}

func newWordPrefilter() Prefilter { return wordPrefilter{} }

func (wordPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	idx := simd.MemchrWord(haystack[start:])
	if idx == -1 {
		return -1
	}
	return start + idx
}

func (wordPrefilter) IsComplete() bool { return false }
func (wordPrefilter) LiteralLen() int  { return 0 }
func (wordPrefilter) HeapBytes() int   { return 0 }

// leadingClassKind identifies which SIMD fast path a detected leading
// character class can use.
type leadingClassKind int

const (
	leadingNone leadingClassKind = iota
	leadingDigit
	leadingWord
	leadingTable
)

type leadingClass struct {
	kind  leadingClassKind
	table *[256]bool
}

// leadingClassPrefilter builds a fallback prefilter from re's AST. Returns
// nil when re is nil, when no leading class requirement is detected, or
// when the detected class spans beyond ASCII -- a byte-level table can't
// soundly stand in for a class that also matches multi-byte UTF-8 runes,
// since it only ever inspects a single byte at the candidate position.
func leadingClassPrefilter(re *syntax.Regexp) Prefilter {
	if re == nil {
		return nil
	}
	switch lc := detectLeadingClass(re, 0); lc.kind {
	case leadingDigit:
		return NewDigitPrefilter()
	case leadingWord:
		return newWordPrefilter()
	case leadingTable:
		return newClassPrefilter(lc.table)
	default:
		return nil
	}
}

// detectLeadingClass walks past capture groups, leading anchors, and
// bounded repeats (min >= 1) to find the character class every match must
// begin with, merging across an alternation only when every branch
// requires the identical class.
func detectLeadingClass(re *syntax.Regexp, depth int) leadingClass {
	if depth > 100 {
		return leadingClass{}
	}

	switch re.Op {
	case syntax.OpCapture:
		if len(re.Sub) == 0 {
			return leadingClass{}
		}
		return detectLeadingClass(re.Sub[0], depth+1)

	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if sub.Op == syntax.OpBeginLine || sub.Op == syntax.OpBeginText {
				continue
			}
			return detectLeadingClass(sub, depth+1)
		}
		return leadingClass{}

	case syntax.OpAlternate:
		if len(re.Sub) == 0 {
			return leadingClass{}
		}
		merged := detectLeadingClass(re.Sub[0], depth+1)
		if merged.kind == leadingNone {
			return leadingClass{}
		}
		for _, sub := range re.Sub[1:] {
			other := detectLeadingClass(sub, depth+1)
			if other.kind != merged.kind {
				return leadingClass{}
			}
			if merged.kind == leadingTable && !sameTable(merged.table, other.table) {
				return leadingClass{}
			}
		}
		return merged

	case syntax.OpStar, syntax.OpPlus, syntax.OpRepeat:
		if re.Min < 1 || len(re.Sub) == 0 {
			return leadingClass{}
		}
		return detectLeadingClass(re.Sub[0], depth+1)

	case syntax.OpCharClass:
		return classifyCharClass(re)

	default:
		return leadingClass{}
	}
}

func classifyCharClass(re *syntax.Regexp) leadingClass {
	if re.Flags&syntax.FoldCase != 0 {
		return leadingClass{}
	}
	table, ok := buildASCIIClassTable(re.Rune)
	if !ok {
		return leadingClass{}
	}
	switch {
	case sameTable(table, digitTable()):
		return leadingClass{kind: leadingDigit}
	case sameTable(table, wordTable()):
		return leadingClass{kind: leadingWord}
	default:
		return leadingClass{kind: leadingTable, table: table}
	}
}

// buildASCIIClassTable converts a regexp/syntax rune-range list into a byte
// membership table. Returns ok=false if any range extends past ASCII: a
// multi-byte UTF-8 rune's leading byte isn't itself a member of the class
// it encodes, so a table built only from the class's own byte values would
// silently drop candidates for that branch.
func buildASCIIClassTable(ranges []rune) (*[256]bool, bool) {
	var table [256]bool
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if lo < 0 || hi > 127 {
			return nil, false
		}
		for r := lo; r <= hi; r++ {
			table[byte(r)] = true
		}
	}
	return &table, true
}

func sameTable(a, b *[256]bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func digitTable() *[256]bool {
	var t [256]bool
	for b := byte('0'); b <= '9'; b++ {
		t[b] = true
	}
	return &t
}

func wordTable() *[256]bool {
	var t [256]bool
	for b := byte('0'); b <= '9'; b++ {
		t[b] = true
	}
	for b := byte('a'); b <= 'z'; b++ {
		t[b] = true
	}
	for b := byte('A'); b <= 'Z'; b++ {
		t[b] = true
	}
	t['_'] = true
	return &t
}
