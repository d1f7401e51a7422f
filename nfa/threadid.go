package nfa

// AssignThreadIDs assigns dense thread-ids (tids) to every schedulable
// instruction, shrinking the Simulator's sparse-set width
// by letting mutually-exclusive instructions share a slot: two
// instructions whose only predecessors are RUNE1 steps on distinct runes
// can never both be live at the same input position.
//
// FAIL/NOP/ALT/ALT_MATCH are never scheduled and keep tid -1 (invariant
// (vi)).
func AssignThreadIDs(prog *Prog) {
	preds := countPredecessors(prog)
	predPC := onlyPredecessor(prog)

	nextTID := int32(0)
	// The currently open reusable slot: its tid and the set of runes
	// already assigned to instructions sharing it.
	haveOpenSlot := false
	openTID := int32(-1)
	openRunes := map[rune]bool{}

	for pc := range prog.Inst {
		i := &prog.Inst[pc]
		switch i.Op {
		case Fail, Nop, Alt, AltMatch:
			i.TID = -1
			continue
		}

		if preds[pc] >= 2 {
			i.TID = nextTID
			nextTID++
			haveOpenSlot = false
			continue
		}

		predPc, ok := predPC[pc]
		if ok && prog.Inst[predPc].Op == Rune1 {
			r := prog.Inst[predPc].TheRune
			if haveOpenSlot && !openRunes[r] {
				i.TID = openTID
				openRunes[r] = true
				continue
			}
			i.TID = nextTID
			openTID = nextTID
			nextTID++
			haveOpenSlot = true
			openRunes = map[rune]bool{r: true}
			continue
		}

		i.TID = nextTID
		nextTID++
		haveOpenSlot = false
	}

	prog.MaxThreadNum = int(nextTID)
}

// onlyPredecessor returns, for every pc with exactly one predecessor, that
// predecessor's pc.
func onlyPredecessor(prog *Prog) map[uint32]uint32 {
	count := map[uint32]int{}
	sole := map[uint32]uint32{}

	record := func(from, to uint32) {
		count[to]++
		sole[to] = from
	}

	for pc := range prog.Inst {
		i := &prog.Inst[pc]
		switch i.Op {
		case Fail, Match:
		case Alt, AltMatch, AltRune1, AltRune:
			record(uint32(pc), i.Out)
			record(uint32(pc), i.Arg)
		default:
			record(uint32(pc), i.Out)
		}
	}

	result := make(map[uint32]uint32, len(sole))
	for pc, from := range sole {
		if count[pc] == 1 {
			result[pc] = from
		}
	}
	return result
}
