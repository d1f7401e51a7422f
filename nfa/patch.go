package nfa

// patchList is the classical Thompson trick: unresolved successor pointers
// form a linked list threaded through their own slots. An entry l encodes
// pc<<1|which, where which==0 means the patch target is inst[pc].Out and
// which==1 means inst[pc].Arg. The empty list is represented by 0, which is
// safe because pc 0 is always Fail and never itself patched.
type patchList uint32

const emptyPatchList patchList = 0

func makePatch(pc uint32, arg bool) patchList {
	w := uint32(0)
	if arg {
		w = 1
	}
	return patchList(pc<<1 | w)
}

func (l patchList) pc() uint32   { return uint32(l) >> 1 }
func (l patchList) isArg() bool  { return uint32(l)&1 == 1 }

// next reads the slot a patch-list entry points to, which holds the next
// entry in the list (or 0 at the tail).
func (p *Prog) next(l patchList) patchList {
	if l == emptyPatchList {
		return emptyPatchList
	}
	i := &p.Inst[l.pc()]
	if l.isArg() {
		return patchList(i.Arg)
	}
	return patchList(i.Out)
}

// patch walks the list, writing target into every slot it threads through.
func (p *Prog) patch(l patchList, target uint32) {
	for l != emptyPatchList {
		i := &p.Inst[l.pc()]
		if l.isArg() {
			next := patchList(i.Arg)
			i.Arg = target
			l = next
		} else {
			next := patchList(i.Out)
			i.Out = target
			l = next
		}
	}
}

// appendPatch concatenates two patch lists in O(|l1|).
func (p *Prog) appendPatch(l1, l2 patchList) patchList {
	if l1 == emptyPatchList {
		return l2
	}
	if l2 == emptyPatchList {
		return l1
	}
	cur := l1
	for {
		n := p.next(cur)
		if n == emptyPatchList {
			break
		}
		cur = n
	}
	if cur.isArg() {
		p.Inst[cur.pc()].Arg = uint32(l2)
	} else {
		p.Inst[cur.pc()].Out = uint32(l2)
	}
	return l1
}

// frag is a compile-time fragment: an entry pc and an out-list of
// unresolved successor slots.
type frag struct {
	entry uint32
	out   patchList
	// nullable reports whether this fragment can match the empty string
	// (used by star/plus/quest to decide whether the loop body itself
	// needs no further guard).
	nullable bool
}

// failFrag is the canonical "this branch can never match" fragment: it
// routes to pc 0 (Fail) and has no further patch points.
var failFrag = frag{entry: 0, out: emptyPatchList}

func (f frag) isFail() bool { return f.entry == 0 && f.out == emptyPatchList }
