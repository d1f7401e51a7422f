package nfa

import "github.com/coregx/re2thread/internal/sparse"

// RuneEOF is the sentinel rune value MachineInput.Step returns past the end
// of input (width 0).
const RuneEOF rune = -1

// AnchorMode selects how the start of a match is constrained.
type AnchorMode int

const (
	Unanchored AnchorMode = iota
	AnchorStart
	AnchorBoth
)

// MachineInput is the Simulator's view of the input stream.
// Implementations decode one step of input (a rune and its width), report
// zero-width context at a position, and optionally offer a literal-prefix
// fast-skip.
type MachineInput interface {
	// Step returns the rune at pos and its width in the input's natural
	// unit. Returns (RuneEOF, 0) at or past EndPos().
	Step(pos int) (r rune, width int)

	// Context returns the zero-width condition bitmask at pos (begin/end
	// line/text, word-boundary), derived from the runes before and after
	// pos.
	Context(pos int) EmptyOp

	// EndPos returns the total length of the input.
	EndPos() int

	// CanCheckPrefix reports whether Index is supported for this input.
	CanCheckPrefix() bool

	// Index returns the position of the next possible match start at or
	// after pos (driven by prog's required literal prefix), or -1 if
	// none exists. Only called when CanCheckPrefix returns true.
	Index(prog *Prog, pos int) int
}

// cowCaps implements copy-on-write capture slots shared between threads, so
// that a thread split at an ALT does not pay for a capture-array copy
// unless one side actually writes to it.
type cowCaps struct {
	shared *sharedCaps
}

type sharedCaps struct {
	data []int
	refs int
}

func newCowCaps(n int) cowCaps {
	data := make([]int, n)
	for i := range data {
		data[i] = -1
	}
	return cowCaps{shared: &sharedCaps{data: data, refs: 1}}
}

func (c cowCaps) clone() cowCaps {
	if c.shared == nil {
		return cowCaps{}
	}
	c.shared.refs++
	return c
}

func (c cowCaps) update(slot, value int) cowCaps {
	if c.shared == nil || slot < 0 || slot >= len(c.shared.data) {
		return c
	}
	if c.shared.refs > 1 {
		c.shared.refs--
		data := make([]int, len(c.shared.data))
		copy(data, c.shared.data)
		data[slot] = value
		return cowCaps{shared: &sharedCaps{data: data, refs: 1}}
	}
	c.shared.data[slot] = value
	return c
}

func (c cowCaps) get() []int {
	if c.shared == nil {
		return nil
	}
	return c.shared.data
}

func (c cowCaps) copyData() []int {
	if c.shared == nil {
		return nil
	}
	dst := make([]int, len(c.shared.data))
	copy(dst, c.shared.data)
	return dst
}

// mthread is a live NFA thread: the instruction it is parked at plus its
// capture vector.
type mthread struct {
	pc   uint32
	caps cowCaps
}

// queue is a sparse-set-backed thread queue keyed by tid: membership and
// insertion-order iteration are both O(1)/O(n), supporting the Simulator's
// two-queue (current/next) design.
type queue struct {
	set     *sparse.SparseSet
	threads []*mthread // indexed by tid
}

func newQueue(maxThreadNum int) *queue {
	cap := maxThreadNum
	if cap < 1 {
		cap = 1
	}
	return &queue{
		set:     sparse.NewSparseSet(uint32(cap)),
		threads: make([]*mthread, cap),
	}
}

func (q *queue) contains(tid int32) bool {
	return q.set.Contains(uint32(tid))
}

func (q *queue) insert(tid int32, th *mthread) {
	q.set.Insert(uint32(tid))
	q.threads[tid] = th
}

func (q *queue) clear() { q.set.Clear() }

// order returns the live tids in insertion (priority) order.
func (q *queue) order() []uint32 { return q.set.Values() }

// Machine is the NFA Simulator: two sparse-set thread queues, a thread
// pool, and the capture/anchor/longest-mode bookkeeping driving the main
// loop, step and add.
type Machine struct {
	prog    *Prog
	longest bool

	runq, nextq *queue
	pool        []*mthread

	addVisited []int32
	addEpoch   int32
	addStack   []addWorkItem
}

type addWorkItem struct {
	pc   uint32
	caps cowCaps
}

// NewMachine creates a Machine for prog. longest selects leftmost-longest
// semantics instead of leftmost-first.
func NewMachine(prog *Prog, longest bool) *Machine {
	n := prog.MaxThreadNum
	if n < 1 {
		n = 1
	}
	return &Machine{
		prog:       prog,
		longest:    longest,
		runq:       newQueue(n),
		nextq:      newQueue(n),
		addVisited: make([]int32, len(prog.Inst)),
	}
}

func (m *Machine) allocThread(pc uint32, caps cowCaps) *mthread {
	if n := len(m.pool); n > 0 {
		th := m.pool[n-1]
		m.pool = m.pool[:n-1]
		th.pc = pc
		th.caps = caps
		return th
	}
	return &mthread{pc: pc, caps: caps}
}

func (m *Machine) freeThread(th *mthread) {
	th.caps = cowCaps{}
	m.pool = append(m.pool, th)
}

// Search runs the Simulator over input starting at startPos with the given
// anchor mode. ncap selects how many capture slots are tracked: 0 for a
// pure boolean match, 2 for just the overall span, prog.NumCap for full
// submatches.
func (m *Machine) Search(input MachineInput, startPos int, anchor AnchorMode, ncap int) (matched bool, caps []int) {
	m.runq.clear()
	m.nextq.clear()

	pos := startPos
	rune0, width0 := input.Step(pos)
	rune1, width1 := input.Step(pos + width0)

	var matchCap []int
	haveMatch := false

	for {
		if m.runq.set.IsEmpty() {
			if anchor != Unanchored && pos != startPos {
				break
			}
			if haveMatch {
				break
			}
			if m.prog.CanCheckPrefix(input) && rune0 != m.prog.PrefixRune1 {
				if np := input.Index(m.prog, pos); np < 0 {
					break
				} else if np != pos {
					pos = np
					rune0, width0 = input.Step(pos)
					rune1, width1 = input.Step(pos + width0)
				}
			}
		}

		if !haveMatch && (pos == startPos || anchor == Unanchored) {
			var startCaps cowCaps
			if ncap > 0 {
				startCaps = newCowCaps(ncap)
				startCaps = startCaps.update(0, pos)
			}
			m.add(m.runq, m.prog.Start, startCaps, pos, input)
		}

		atEnd := pos+width0 >= input.EndPos()
		matchCap, haveMatch = m.step(input, pos, pos+width0, rune0, anchor, atEnd, ncap, matchCap, haveMatch)

		if width0 == 0 {
			break
		}
		if ncap == 0 && haveMatch {
			break
		}

		pos += width0
		rune0, width0 = rune1, width1
		rune1, width1 = input.Step(pos + width0)

		m.runq, m.nextq = m.nextq, m.runq
		m.nextq.clear()
	}

	return haveMatch, matchCap
}

// step dispatches every thread currently in runq for the current input
// position.
func (m *Machine) step(input MachineInput, pos, nextPos int, r rune, anchor AnchorMode, atEnd bool, ncap int, matchCap []int, haveMatch bool) ([]int, bool) {
	order := m.runq.order()
	for idx := 0; idx < len(order); idx++ {
		tid := order[idx]
		th := m.runq.threads[tid]
		if th == nil {
			continue
		}

		if m.longest && haveMatch && ncap > 0 {
			if caps := th.caps.get(); caps != nil && matchCap != nil && caps[0] > matchCap[0] {
				m.freeThread(th)
				continue
			}
		}

		stop := m.dispatch(th, input, pos, nextPos, r, anchor, atEnd, ncap, &matchCap, &haveMatch)
		m.freeThread(th)
		if stop {
			break
		}
	}
	return matchCap, haveMatch
}

// dispatch runs one thread's instruction for the current step. Returns
// true if, in leftmost-first mode, a match just fired and all
// lower-priority threads for this step should be dropped.
func (m *Machine) dispatch(th *mthread, input MachineInput, pos, nextPos int, r rune, anchor AnchorMode, atEnd bool, ncap int, matchCap *[]int, haveMatch *bool) bool {
	cur := th.pc
	caps := th.caps

	for {
		inst := &m.prog.Inst[cur]
		switch inst.Op {
		case Match:
			return m.onMatch(caps, pos, anchor, atEnd, ncap, matchCap, haveMatch)

		case Rune, Rune1, RuneAny, RuneAnyNotNL:
			if inst.MatchRune(r) {
				m.add(m.nextq, inst.Out, caps, nextPos, input)
			}
			return false

		case AltRune1, AltRune:
			if inst.MatchRune(r) {
				m.add(m.nextq, inst.Out, caps, nextPos, input)
				return false
			}
			cur = inst.Arg
			continue

		case Capture:
			caps = caps.update(int(inst.Arg), pos+int(inst.Arg2))
			cur = inst.Out
			continue

		default:
			// Fail/Nop/Alt/AltMatch/EmptyWidth should never be scheduled
			// directly as a thread's own pc (invariant (vi); EmptyWidth is
			// resolved by add()); treat as a dead end defensively.
			return false
		}
	}
}

func (m *Machine) onMatch(caps cowCaps, pos int, anchor AnchorMode, atEnd bool, ncap int, matchCap *[]int, haveMatch *bool) bool {
	if anchor == AnchorBoth && !atEnd {
		return false
	}

	if ncap > 0 {
		c := caps.get()
		if !m.longest || *matchCap == nil || (c != nil && c[0] <= (*matchCap)[0] && pos > (*matchCap)[1]) {
			dst := caps.copyData()
			if len(dst) < 2 {
				dst = []int{pos, pos}
			}
			dst[1] = pos
			*matchCap = dst
		}
	}
	*haveMatch = true
	return !m.longest
}

// add performs the epsilon-closure enqueue: it consults the precomputed
// add-list for pc, applying
// Capture and EmptyWidth side effects and re-expanding postponed Nop/Alt
// nodes on the fly, terminating in O(1) membership checks via addVisited.
func (m *Machine) add(q *queue, pc uint32, caps cowCaps, pos int, input MachineInput) {
	m.addEpoch++
	m.addStack = m.addStack[:0]
	m.addStack = append(m.addStack, addWorkItem{pc, caps})

	for len(m.addStack) > 0 {
		n := len(m.addStack)
		it := m.addStack[n-1]
		m.addStack = m.addStack[:n-1]

		for _, leaf := range m.prog.AddList[it.pc] {
			if int(leaf) < len(m.addVisited) && m.addVisited[leaf] == m.addEpoch {
				continue
			}
			m.addVisited[leaf] = m.addEpoch

			inst := &m.prog.Inst[leaf]
			switch inst.Op {
			case Capture:
				next := it.caps.clone().update(int(inst.Arg), pos+int(inst.Arg2))
				m.addStack = append(m.addStack, addWorkItem{inst.Out, next})

			case EmptyWidth:
				flag := input.Context(pos)
				if EmptyOp(inst.Arg)&^flag == 0 {
					m.addStack = append(m.addStack, addWorkItem{inst.Out, it.caps.clone()})
				}

			case Nop, Alt, AltMatch:
				m.addStack = append(m.addStack, addWorkItem{leaf, it.caps.clone()})

			default:
				// Schedulable leaf: Match, Rune, Rune1, RuneAny,
				// RuneAnyNotNL, AltRune1, AltRune.
				if inst.TID == -1 || q.contains(inst.TID) {
					continue
				}
				th := m.allocThread(leaf, it.caps.clone())
				q.insert(inst.TID, th)
			}
		}
	}
}

// CanCheckPrefix reports whether prog carries a required literal prefix
// and input can fast-skip to it.
func (p *Prog) CanCheckPrefix(input MachineInput) bool {
	return len(p.Prefix) > 0 && input.CanCheckPrefix()
}
