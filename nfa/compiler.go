package nfa

import (
	"fmt"
	"regexp/syntax"
	"unicode"
)

// maxFoldExpansion bounds how many case-folded alternatives a single rune
// or rune-range contributes before the compiler gives up and drops the
// FoldCase flag for that node, falling back to an unfolded rune class.
const maxFoldExpansion = 32

// Compile compiles a parsed regular expression into a bytecode Prog.
//
// re is any regexp/syntax.Regexp produced by syntax.Parse. Compile runs
// re.Simplify() first so that OpRepeat nodes are rewritten into
// Star/Plus/Quest/Concat before compilation.
func Compile(re *syntax.Regexp) (*Prog, error) {
	re = re.Simplify()

	c := &compiler{prog: newProg()}
	top, err := c.compileCapture(0, re)
	if err != nil {
		return nil, err
	}

	matchPC := c.prog.emit(Inst{Op: Match, TID: -1})
	c.prog.patch(top.out, matchPC)
	c.prog.Start = top.entry

	maxCap := re.MaxCap()
	c.prog.NumCap = 2 * (maxCap + 1)
	if c.prog.NumCap < 2 {
		c.prog.NumCap = 2
	}

	if err := Optimize(c.prog); err != nil {
		return nil, err
	}
	PrecomputeClosure(c.prog)
	AssignThreadIDs(c.prog)

	return c.prog, nil
}

type compiler struct {
	prog *Prog
}

func (c *compiler) fail() (frag, error) { return failFrag, nil }

// compileCapture wraps sub's compiled fragment in a capture pair for group
// groupIndex (slots 2*groupIndex and 2*groupIndex+1), emitting a Capture
// instruction at both entry and exit.
func (c *compiler) compileCapture(groupIndex int, sub *syntax.Regexp) (frag, error) {
	body, err := c.compile(sub)
	if err != nil {
		return frag{}, err
	}
	pre := c.cap(2 * groupIndex)
	post := c.cap(2*groupIndex + 1)
	return c.cat(c.cat(pre, body), post), nil
}

func (c *compiler) compile(re *syntax.Regexp) (frag, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		return c.fail()

	case syntax.OpEmptyMatch:
		return c.nop(), nil

	case syntax.OpLiteral:
		return c.literal(re.Rune, re.Flags), nil

	case syntax.OpCharClass:
		return c.charClass(re.Rune, re.Flags), nil

	case syntax.OpAnyCharNotNL:
		pc := c.prog.emit(Inst{Op: RuneAnyNotNL, TID: -1})
		return frag{entry: pc, out: makePatch(pc, false)}, nil

	case syntax.OpAnyChar:
		pc := c.prog.emit(Inst{Op: RuneAny, TID: -1})
		return frag{entry: pc, out: makePatch(pc, false)}, nil

	case syntax.OpBeginLine:
		return c.empty(EmptyBeginLine), nil
	case syntax.OpEndLine:
		return c.empty(EmptyEndLine), nil
	case syntax.OpBeginText:
		return c.empty(EmptyBeginText), nil
	case syntax.OpEndText:
		return c.empty(EmptyEndText), nil
	case syntax.OpWordBoundary:
		return c.empty(EmptyWordBoundary), nil
	case syntax.OpNoWordBoundary:
		return c.empty(EmptyNoWordBoundary), nil

	case syntax.OpCapture:
		return c.compileCapture(re.Cap, re.Sub[0])

	case syntax.OpStar:
		sub, err := c.compile(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		return c.star(sub, re.Flags&syntax.NonGreedy != 0), nil

	case syntax.OpPlus:
		sub, err := c.compile(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		return c.plus(sub, re.Flags&syntax.NonGreedy != 0), nil

	case syntax.OpQuest:
		sub, err := c.compile(re.Sub[0])
		if err != nil {
			return frag{}, err
		}
		return c.quest(sub, re.Flags&syntax.NonGreedy != 0), nil

	case syntax.OpConcat:
		return c.compileConcat(re.Sub)

	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)

	default:
		return frag{}, &CompileError{Err: fmt.Errorf("%w: unsupported op %v", ErrUnsupportedOp, re.Op)}
	}
}

func (c *compiler) compileConcat(subs []*syntax.Regexp) (frag, error) {
	if len(subs) == 0 {
		return c.nop(), nil
	}
	acc, err := c.compile(subs[0])
	if err != nil {
		return frag{}, err
	}
	for _, sub := range subs[1:] {
		next, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		acc = c.cat(acc, next)
	}
	return acc, nil
}

func (c *compiler) compileAlternate(subs []*syntax.Regexp) (frag, error) {
	if len(subs) == 0 {
		return c.fail()
	}
	acc, err := c.compile(subs[0])
	if err != nil {
		return frag{}, err
	}
	for _, sub := range subs[1:] {
		next, err := c.compile(sub)
		if err != nil {
			return frag{}, err
		}
		acc = c.alt(acc, next)
	}
	return acc, nil
}

// --- Frag constructors ---

func (c *compiler) nop() frag {
	pc := c.prog.emit(Inst{Op: Nop, TID: -1})
	return frag{entry: pc, out: makePatch(pc, false), nullable: true}
}

func (c *compiler) empty(flags EmptyOp) frag {
	pc := c.prog.emit(Inst{Op: EmptyWidth, Arg: uint32(flags), TID: -1})
	return frag{entry: pc, out: makePatch(pc, false), nullable: true}
}

func (c *compiler) cap(slot int) frag {
	pc := c.prog.emit(Inst{Op: Capture, Arg: uint32(slot), TID: -1})
	return frag{entry: pc, out: makePatch(pc, false), nullable: true}
}

// literal compiles a run of literal runes, case-folding each one if
// FoldCase is set and a fold class exists.
func (c *compiler) literal(runes []rune, flags syntax.Flags) frag {
	if len(runes) == 0 {
		return c.nop()
	}
	fold := flags&syntax.FoldCase != 0
	acc := c.runeFrag(runes[0], fold)
	for _, r := range runes[1:] {
		acc = c.cat(acc, c.runeFrag(r, fold))
	}
	return acc
}

func (c *compiler) runeFrag(r rune, fold bool) frag {
	if !fold {
		pc := c.prog.emit(Inst{Op: Rune1, TheRune: r, Runes: []rune{r, r}, TID: -1})
		return frag{entry: pc, out: makePatch(pc, false)}
	}
	ranges := foldRuneRanges([]rune{r, r})
	if len(ranges) == 2 {
		pc := c.prog.emit(Inst{Op: Rune1, TheRune: r, Runes: ranges, TID: -1})
		return frag{entry: pc, out: makePatch(pc, false)}
	}
	pc := c.prog.emit(Inst{Op: Rune, Runes: ranges, TID: -1})
	return frag{entry: pc, out: makePatch(pc, false)}
}

func (c *compiler) charClass(runes []rune, flags syntax.Flags) frag {
	ranges := runes
	if flags&syntax.FoldCase != 0 {
		ranges = foldRuneRanges(runes)
	}
	if len(ranges) == 2 && ranges[0] == ranges[1] {
		pc := c.prog.emit(Inst{Op: Rune1, TheRune: ranges[0], Runes: ranges, TID: -1})
		return frag{entry: pc, out: makePatch(pc, false)}
	}
	pc := c.prog.emit(Inst{Op: Rune, Runes: ranges, TID: -1})
	return frag{entry: pc, out: makePatch(pc, false)}
}

// cat concatenates a then b: patches a's out-list to b's entry.
func (c *compiler) cat(a, b frag) frag {
	if a.isFail() || b.isFail() {
		return failFrag
	}
	c.prog.patch(a.out, b.entry)
	return frag{entry: a.entry, out: b.out, nullable: a.nullable && b.nullable}
}

// alt emits an Alt instruction preferring a over b.
func (c *compiler) alt(a, b frag) frag {
	if a.isFail() {
		return b
	}
	if b.isFail() {
		return a
	}
	pc := c.prog.emit(Inst{Op: Alt, Out: a.entry, Arg: b.entry, TID: -1})
	return frag{entry: pc, out: c.prog.appendPatch(a.out, b.out), nullable: a.nullable || b.nullable}
}

// quest compiles a? (or a?? when nonGreedy), preferring the branch chosen
// by nonGreedy.
func (c *compiler) quest(a frag, nonGreedy bool) frag {
	pc := c.prog.emit(Inst{Op: Alt, TID: -1})
	if nonGreedy {
		c.prog.Inst[pc].Out = 0
		c.prog.Inst[pc].Arg = a.entry
		return frag{entry: pc, out: c.prog.appendPatch(makePatch(pc, false), a.out), nullable: true}
	}
	c.prog.Inst[pc].Out = a.entry
	c.prog.Inst[pc].Arg = 0
	return frag{entry: pc, out: c.prog.appendPatch(makePatch(pc, true), a.out), nullable: true}
}

// star compiles a* (or a*? when nonGreedy): an Alt whose loop branch
// re-enters a and whose exit branch joins the out-list.
func (c *compiler) star(a frag, nonGreedy bool) frag {
	pc := c.prog.emit(Inst{Op: Alt, TID: -1})
	if nonGreedy {
		c.prog.Inst[pc].Arg = a.entry
		c.prog.patch(a.out, pc)
		return frag{entry: pc, out: makePatch(pc, false), nullable: true}
	}
	c.prog.Inst[pc].Out = a.entry
	c.prog.patch(a.out, pc)
	return frag{entry: pc, out: makePatch(pc, true), nullable: true}
}

// plus compiles a+ (or a+? when nonGreedy): like star but the fragment's
// entry is a's entry, so the body always runs at least once.
func (c *compiler) plus(a frag, nonGreedy bool) frag {
	pc := c.prog.emit(Inst{Op: Alt, TID: -1})
	if nonGreedy {
		c.prog.Inst[pc].Arg = a.entry
		c.prog.patch(a.out, pc)
		return frag{entry: a.entry, out: makePatch(pc, false), nullable: a.nullable}
	}
	c.prog.Inst[pc].Out = a.entry
	c.prog.patch(a.out, pc)
	return frag{entry: a.entry, out: makePatch(pc, true), nullable: a.nullable}
}

// foldRuneRanges expands each [lo,hi] pair in ranges to include all simple
// case folds reachable via unicode.SimpleFold, bounded by maxFoldExpansion.
// If the expansion would exceed the bound, the original ranges are
// returned unchanged (the FoldCase flag is effectively dropped for that
// node).
func foldRuneRanges(ranges []rune) []rune {
	var extra []rune
	count := 0
	for lo := 0; lo+1 < len(ranges); lo += 2 {
		for r := ranges[lo]; r <= ranges[lo+1]; r++ {
			f := unicode.SimpleFold(r)
			for f != r {
				if !runeInRanges(ranges, f) {
					extra = append(extra, f, f)
					count++
				}
				f = unicode.SimpleFold(f)
				if count > maxFoldExpansion {
					return ranges
				}
			}
		}
	}
	if len(extra) == 0 {
		return ranges
	}
	return normalizeRanges(append(append([]rune{}, ranges...), extra...))
}

func runeInRanges(ranges []rune, r rune) bool {
	for lo := 0; lo+1 < len(ranges); lo += 2 {
		if r >= ranges[lo] && r <= ranges[lo+1] {
			return true
		}
	}
	return false
}

// normalizeRanges sorts and merges overlapping/adjacent [lo,hi] pairs.
func normalizeRanges(ranges []rune) []rune {
	type pair struct{ lo, hi rune }
	n := len(ranges) / 2
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = pair{ranges[2*i], ranges[2*i+1]}
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j-1].lo > pairs[j].lo; j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}
	out := make([]rune, 0, len(ranges))
	for _, p := range pairs {
		if len(out) > 0 && p.lo <= out[len(out)-1]+1 {
			if p.hi > out[len(out)-1] {
				out[len(out)-1] = p.hi
			}
			continue
		}
		out = append(out, p.lo, p.hi)
	}
	return out
}
