package nfa

// Optimize runs the iterated peephole fixed point over prog, then compacts
// unreachable instructions and validates the result.
func Optimize(prog *Prog) error {
	for {
		preds := countPredecessors(prog)
		changed := false
		for pc := uint32(1); pc < uint32(len(prog.Inst)); pc++ {
			if nopElim(prog, pc) {
				changed = true
			}
			if delayCapture(prog, pc, preds) {
				changed = true
			}
			if altFuseRune(prog, pc) {
				changed = true
			}
			if optOverlapSplit(prog, pc) {
				changed = true
			}
			if optRestructure(prog, pc) {
				changed = true
			}
			if altAssociativity(prog, pc) {
				changed = true
			}
			if emptyWidthRuneReorder(prog, pc, preds) {
				changed = true
			}
			if branchOrderCanonicalize(prog, pc) {
				changed = true
			}
		}
		startNopStrip(prog)
		if !changed {
			break
		}
	}

	compact(prog)
	trailingSingleRuneLoop(prog)
	return validate(prog)
}

// countPredecessors counts, for each pc, the number of instructions whose
// Out or Arg slot points at it; rewrites that are only safe when a
// successor has a single predecessor consult this before firing.
func countPredecessors(prog *Prog) []int {
	preds := make([]int, len(prog.Inst))
	for pc := range prog.Inst {
		i := &prog.Inst[pc]
		switch i.Op {
		case Fail, Match:
		case Alt, AltMatch, AltRune1, AltRune:
			preds[i.Out]++
			preds[i.Arg]++
		default:
			preds[i.Out]++
		}
	}
	return preds
}

// 1. NOP elimination: redirect any successor slot that points at a Nop
// (other than a self-loop, which is left alone to guarantee termination)
// through to the Nop's own successor.
func nopElim(prog *Prog, pc uint32) bool {
	changed := false
	i := &prog.Inst[pc]
	switch i.Op {
	case Nop, Capture, EmptyWidth, Rune, Rune1, RuneAny, RuneAnyNotNL, AltRune1, AltRune:
		if t := &prog.Inst[i.Out]; t.Op == Nop && i.Out != t.Out && i.Out != pc {
			i.Out = t.Out
			changed = true
		}
	case Alt, AltMatch:
		if t := &prog.Inst[i.Out]; t.Op == Nop && i.Out != t.Out && i.Out != pc {
			i.Out = t.Out
			changed = true
		}
		if t := &prog.Inst[i.Arg]; t.Op == Nop && i.Arg != t.Out && i.Arg != pc {
			i.Arg = t.Out
			changed = true
		}
	}
	return changed
}

// 2. Start-NOP strip: advance prog.Start through any chain of Nops.
func startNopStrip(prog *Prog) {
	seen := map[uint32]bool{}
	for prog.Inst[prog.Start].Op == Nop && !seen[prog.Start] {
		seen[prog.Start] = true
		prog.Start = prog.Inst[prog.Start].Out
	}
}

// 3. Delay-capture: CAPTURE(g,off) -> RUNEx (or EMPTY_WIDTH) becomes
// RUNEx -> CAPTURE(g,off+1), so the test fires before the bookkeeping.
// Only safe when the successor has exactly one predecessor (this
// capture), which countPredecessors guarantees by construction for
// fragments produced by the compiler's cat().
func delayCapture(prog *Prog, pc uint32, preds []int) bool {
	i := &prog.Inst[pc]
	if i.Op != Capture {
		return false
	}
	succPC := i.Out
	if succPC == 0 || preds[succPC] != 1 {
		return false
	}
	succ := prog.Inst[succPC]
	switch succ.Op {
	case Rune, Rune1, RuneAny, RuneAnyNotNL, EmptyWidth:
	default:
		return false
	}

	group, arg2 := i.Arg, i.Arg2
	nextOut := succ.Out

	prog.Inst[pc] = succ
	prog.Inst[pc].Out = succPC

	prog.Inst[succPC] = Inst{
		Op:   Capture,
		Arg:  group,
		Arg2: arg2 + 1,
		Out:  nextOut,
		TID:  -1,
	}
	return true
}

// 4. ALT -> ALT_RUNE1 / ALT_RUNE fusion. If ALT(out=A:RUNE1(r), arg=B) and
// B cannot accept r as its first required rune, fuse into
// ALT_RUNE1(r, arg=B) (or ALT_RUNE for rune ranges). Also handles the
// mirror shape (the rune branch in Arg, the alternative in Out) and
// collapses a MATCH branch into ALT_MATCH.
func altFuseRune(prog *Prog, pc uint32) bool {
	i := &prog.Inst[pc]
	if i.Op != Alt {
		return false
	}

	if m := &prog.Inst[i.Out]; m.Op == Match {
		i.Op = AltMatch
		return true
	}
	if m := &prog.Inst[i.Arg]; m.Op == Match {
		i.Op = AltMatch
		i.Out, i.Arg = i.Arg, i.Out
		return true
	}

	a := &prog.Inst[i.Out]
	switch a.Op {
	case Rune1:
		if !canBeSecondBranchOfAltRune(prog, i.Arg, []rune{a.TheRune, a.TheRune}, 0) {
			i.Op = AltRune1
			i.TheRune = a.TheRune
			i.Out = a.Out
			return true
		}
	case Rune:
		if !canBeSecondBranchOfAltRune(prog, i.Arg, a.Runes, 0) {
			i.Op = AltRune
			i.Runes = a.Runes
			i.Out = a.Out
			return true
		}
	}
	return false
}

// canBeSecondBranchOfAltRune conservatively reports whether entry might
// accept any rune in ranges as its first required character. It walks
// through ALT_RUNE*, NOP and CAPTURE (single-successor, zero-width)
// instructions; any other opcode it cannot prove disjoint forces a
// conservative true. depth bounds the walk; the oracle is intentionally
// conservative rather than exhaustive.
func canBeSecondBranchOfAltRune(prog *Prog, entry uint32, ranges []rune, depth int) bool {
	if depth > 16 {
		return true
	}
	i := &prog.Inst[entry]
	switch i.Op {
	case Fail:
		return false
	case Nop, Capture:
		return canBeSecondBranchOfAltRune(prog, i.Out, ranges, depth+1)
	case Rune1:
		return rangesOverlap(ranges, []rune{i.TheRune, i.TheRune})
	case Rune, RuneAny, RuneAnyNotNL:
		return true
	case AltRune1:
		if rangesOverlap(ranges, []rune{i.TheRune, i.TheRune}) {
			return true
		}
		return canBeSecondBranchOfAltRune(prog, i.Arg, ranges, depth+1)
	case AltRune:
		if rangesOverlap(ranges, i.Runes) {
			return true
		}
		return canBeSecondBranchOfAltRune(prog, i.Arg, ranges, depth+1)
	default:
		// Match, EmptyWidth, Alt, AltMatch or anything unrecognized: give up.
		return true
	}
}

func rangesOverlap(a, b []rune) bool {
	for lo := 0; lo+1 < len(a); lo += 2 {
		for lo2 := 0; lo2+1 < len(b); lo2 += 2 {
			if a[lo] <= b[lo2+1] && b[lo2] <= a[lo+1] {
				return true
			}
		}
	}
	return false
}

// 5. Overlapping ALT split: handles ALT(out=A:RUNE1/RUNE, arg=B) in the
// cases altFuseRune declined because A's and B's first-rune sets might
// overlap. If B is also a single rune equal to A's, both branches are the
// identical test, so they collapse into one shared RUNE1 test followed by
// a priority ALT of their continuations (outA preferred, matching the
// original out-over-arg priority). Otherwise, if A's continuation is an
// unconditional MATCH, A wins leftmost-first the instant its rune test
// succeeds regardless of what B could also match, so the ALT_RUNE1/
// ALT_RUNE fusion rewrite 4 would have performed is safe despite the
// overlap.
func optOverlapSplit(prog *Prog, pc uint32) bool {
	i := &prog.Inst[pc]
	if i.Op != Alt {
		return false
	}
	a := &prog.Inst[i.Out]

	if a.Op == Rune1 {
		if b := &prog.Inst[i.Arg]; b.Op == Rune1 && b.TheRune == a.TheRune {
			r, aOut, bOut := a.TheRune, a.Out, b.Out
			newAlt := prog.emit(Inst{Op: Alt, Out: aOut, Arg: bOut, TID: -1})
			prog.Inst[pc] = Inst{Op: Rune1, TheRune: r, Out: newAlt, TID: -1}
			return true
		}
	}

	switch a.Op {
	case Rune1:
		if prog.Inst[a.Out].Op == Match {
			i.Op = AltRune1
			i.TheRune = a.TheRune
			i.Out = a.Out
			return true
		}
	case Rune:
		if prog.Inst[a.Out].Op == Match {
			i.Op = AltRune
			i.Runes = a.Runes
			i.Out = a.Out
			return true
		}
	}
	return false
}

// 6. Restructure: ALT(ALT_RUNE1(r,X), Y) -> ALT_RUNE1(r, ALT(X,Y)), bubbling
// a fused rune-ALT outward to the enclosing ALT so later rounds can fuse it
// further along the same rune. Preserves priority: the original order was
// [rune match -> innerOut] > [mismatch -> X] > [Y]; the restructured form
// dispatches on the rune first (same innerOut on match) and falls through to
// ALT(X,Y) on mismatch, trying X before Y exactly as before. Only applies
// when the fused branch is the preferred (out) side of the outer ALT — the
// mirror shape has no single-dispatch equivalent, since Y would need to be
// tried unconditionally before any rune test. Always reports a mutation
// when one occurs, so a caller checking the return value never misses a
// change made to prog.
func optRestructure(prog *Prog, pc uint32) bool {
	i := &prog.Inst[pc]
	if i.Op != Alt {
		return false
	}
	inner := &prog.Inst[i.Out]
	if inner.Op != AltRune1 && inner.Op != AltRune {
		return false
	}

	innerOp, innerOut, innerArg, r, runes, y := inner.Op, inner.Out, inner.Arg, inner.TheRune, inner.Runes, i.Arg

	newAlt := prog.emit(Inst{Op: Alt, Out: innerArg, Arg: y, TID: -1})

	if innerOp == AltRune1 {
		prog.Inst[pc] = Inst{Op: AltRune1, TheRune: r, Out: innerOut, Arg: newAlt, TID: -1}
	} else {
		prog.Inst[pc] = Inst{Op: AltRune, Runes: runes, Out: innerOut, Arg: newAlt, TID: -1}
	}
	return true
}

// 9. Associativity rewrite: ALT(ALT(X,Y), Z) -> ALT(X, ALT(Y,Z)), only
// when X is not itself an ALT (guarantees termination by working
// inside-out).
func altAssociativity(prog *Prog, pc uint32) bool {
	i := &prog.Inst[pc]
	if i.Op != Alt {
		return false
	}
	left := &prog.Inst[i.Out]
	if left.Op != Alt {
		return false
	}
	x := &prog.Inst[left.Out]
	if x.Op == Alt {
		return false
	}

	newInnerPC := prog.emit(Inst{Op: Alt, Out: left.Arg, Arg: i.Arg, TID: -1})
	prog.Inst[pc].Out = left.Out
	prog.Inst[pc].Arg = newInnerPC
	return true
}

// 10. EMPTY_WIDTH/RUNE reorder: EMPTY_WIDTH(cond,δ) -> RUNE becomes
// RUNE -> EMPTY_WIDTH(cond, δ+1), so the (cheap) rune dispatch happens
// before the anchor check. Mirrors delayCapture's safety guard.
func emptyWidthRuneReorder(prog *Prog, pc uint32, preds []int) bool {
	i := &prog.Inst[pc]
	if i.Op != EmptyWidth {
		return false
	}
	succPC := i.Out
	if succPC == 0 || preds[succPC] != 1 {
		return false
	}
	succ := prog.Inst[succPC]
	switch succ.Op {
	case Rune, Rune1, RuneAny, RuneAnyNotNL:
	default:
		return false
	}

	flags, delta := i.Arg, i.Arg2
	nextOut := succ.Out

	prog.Inst[pc] = succ
	prog.Inst[pc].Out = succPC

	prog.Inst[succPC] = Inst{
		Op:   EmptyWidth,
		Arg:  flags,
		Arg2: delta + 1,
		Out:  nextOut,
		TID:  -1,
	}
	return true
}

// 8. Branch-order canonicalization: swap exclusive RUNE1 ALT branches
// into ascending rune order, for deterministic structural matching and
// so re-running Optimize on an already-optimized program is a no-op.
func branchOrderCanonicalize(prog *Prog, pc uint32) bool {
	i := &prog.Inst[pc]
	if i.Op != Alt {
		return false
	}
	a, b := &prog.Inst[i.Out], &prog.Inst[i.Arg]
	if a.Op != Rune1 || b.Op != Rune1 {
		return false
	}
	if a.TheRune <= b.TheRune {
		return false
	}
	i.Out, i.Arg = i.Arg, i.Out
	return true
}

// 7. Trailing single-rune loop: detect loop: ALT(RUNEx->loop, tail->MATCH)
// and collapse to an ALT_RUNEx self-dispatch, so a greedy `.*`-style tail
// becomes a single hot instruction instead of an ALT indirection. Applied
// once after the fixed point (it does not interact with the other
// rewrites' preconditions).
func trailingSingleRuneLoop(prog *Prog) {
	for pc := uint32(1); pc < uint32(len(prog.Inst)); pc++ {
		i := &prog.Inst[pc]
		if i.Op != Alt {
			continue
		}
		body := &prog.Inst[i.Out]
		var ranges []rune
		var isSingle bool
		switch body.Op {
		case Rune1:
			ranges = []rune{body.TheRune, body.TheRune}
			isSingle = true
		case Rune:
			ranges = body.Runes
		case RuneAny, RuneAnyNotNL:
		default:
			continue
		}
		if body.Out != pc {
			continue
		}
		if body.Op == RuneAny || body.Op == RuneAnyNotNL {
			continue
		}
		if isSingle {
			i.Op = AltRune1
			i.TheRune = ranges[0]
		} else {
			i.Op = AltRune
			i.Runes = ranges
		}
	}
}
