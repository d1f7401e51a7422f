package nfa

// PrecomputeClosure computes, for every pc, the epsilon-closure "add-list"
// the Simulator consults instead of recursively walking ALT/NOP chains at
// match time.
//
// This is the hardened variant: pcs that lie on a zero-progress epsilon
// cycle, or that have more than one incoming edge and are not themselves
// the starting pc of the expansion, are not inlined — they are left in the
// list as "postponed" entries. The Simulator's add() (machine.go) re-walks
// a postponed entry's own epsilon-closure on the fly. This bounds add-list
// size independent of how tangled the alternation graph is.
func PrecomputeClosure(prog *Prog) {
	preds := countPredecessors(prog)
	loop := findZeroProgressLoops(prog)

	prog.AddList = make([][]uint32, len(prog.Inst))
	for pc := range prog.Inst {
		prog.AddList[pc] = expandClosure(prog, uint32(pc), preds, loop)
	}
}

// expandClosure computes the add-list for a single starting pc.
func expandClosure(prog *Prog, start uint32, preds []int, loop []bool) []uint32 {
	var out []uint32
	visited := make(map[uint32]bool)

	type frame struct {
		pc    uint32
		isTop bool
	}
	stack := []frame{{start, true}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.pc] {
			continue
		}
		visited[f.pc] = true

		i := &prog.Inst[f.pc]
		switch i.Op {
		case Fail:
			// contributes nothing

		case Nop:
			if !f.isTop && (loop[f.pc] || preds[f.pc] > 1) {
				out = append(out, f.pc)
				continue
			}
			stack = append(stack, frame{i.Out, false})

		case Alt, AltMatch:
			if !f.isTop && (loop[f.pc] || preds[f.pc] > 1) {
				out = append(out, f.pc)
				continue
			}
			// Push Arg first so Out (the preferred, higher-priority
			// branch) is popped and visited first.
			stack = append(stack, frame{i.Arg, false})
			stack = append(stack, frame{i.Out, false})

		default:
			// Schedulable leaf (Match/Rune*/AltRune*) or position-dependent
			// leaf (Capture/EmptyWidth): the add-list stops here.
			out = append(out, f.pc)
		}
	}
	return out
}

// findZeroProgressLoops identifies pcs that lie on a cycle composed
// entirely of zero-width instructions (Nop, Alt, AltMatch) — a cycle an
// epsilon-closure walk could traverse forever without consuming input.
// Standard white/gray/black DFS cycle detection (Tarjan-style on-stack
// tracking), using an explicit stack to avoid host recursion on deep
// programs.
func findZeroProgressLoops(prog *Prog) []bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	n := len(prog.Inst)
	color := make([]uint8, n)
	loop := make([]bool, n)

	type frame struct {
		pc       uint32
		children []uint32
		idx      int
	}

	epsilonChildren := func(pc uint32) []uint32 {
		i := &prog.Inst[pc]
		switch i.Op {
		case Nop:
			return []uint32{i.Out}
		case Alt, AltMatch:
			return []uint32{i.Out, i.Arg}
		default:
			return nil
		}
	}

	for root := uint32(0); root < uint32(n); root++ {
		if color[root] != white {
			continue
		}
		stack := []*frame{{pc: root, children: epsilonChildren(root)}}
		color[root] = gray
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.idx >= len(top.children) {
				color[top.pc] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := top.children[top.idx]
			top.idx++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, &frame{pc: child, children: epsilonChildren(child)})
			case gray:
				// Back edge: every frame currently on the stack is part
				// of a zero-progress cycle.
				for _, fr := range stack {
					loop[fr.pc] = true
				}
				loop[child] = true
			case black:
				// Cross/forward edge, no cycle.
			}
		}
	}
	return loop
}
