package solver

import "sort"

// A watch is an entry in the watch list of a literal l: the clause it refers to contains
// the negation of l as one of its two first literals.
type watch struct {
	blocker Lit // Another lit from the clause: if it is true, the clause need not be visited
	ref     ClauseRef
	binary  bool // For binary clauses, blocker is the only other lit
}

// Watches are plain values.
func (*watch) NoCleanup() {}

// bumpNbMax increases the max nb of clauses used.
// It is typically called after a reduction.
func (s *Solver) bumpNbMax() {
	s.nbMax += s.opts.IncrNbMaxClauses
}

// postponeNbMax increases the max nb of clauses used.
// It is typically called when too many good clauses were learned and a cleaning was expected.
func (s *Solver) postponeNbMax() {
	s.nbMax += incrPostponeNbMax
}

// attach watches the two first literals of the given clause.
func (s *Solver) attach(ref ClauseRef) {
	lits := s.db.lits(ref)
	binary := len(lits) == 2
	first, second := lits[0], lits[1]
	must(s.watches.Ref(int(first.Negation())).Push(watch{blocker: second, ref: ref, binary: binary}))
	must(s.watches.Ref(int(second.Negation())).Push(watch{blocker: first, ref: ref, binary: binary}))
}

// rebuildWatches rebuilds all watch lists from the clauses in the database.
func (s *Solver) rebuildWatches() {
	for i := 0; i < s.watches.Len(); i++ {
		s.watches.Ref(i).Clear(false)
	}
	for i := 0; i < s.db.headers.Len(); i++ {
		if !s.db.headers.Ref(i).deleted() {
			s.attach(ClauseRef(i))
		}
	}
}

// propagate propagates all enqueued facts.
// It returns a conflicting clause, or CRefUndef if no conflict arose.
func (s *Solver) propagate() ClauseRef {
	confl := CRefUndef
	for s.qhead < s.trail.Len() {
		p := s.trail.At(s.qhead)
		s.qhead++
		falseLit := p.Negation()
		ws := s.watches.Ref(int(p))
		list := ws.Slice()
		i, j := 0, 0
		for i < len(list) {
			w := list[i]
			i++
			if s.litStatus(w.blocker) == Sat {
				list[j] = w
				j++
				continue
			}
			if w.binary {
				list[j] = w
				j++
				if s.litStatus(w.blocker) == Unsat {
					confl = w.ref
					break
				}
				s.uncheckedEnqueue(w.blocker, w.ref)
				continue
			}
			// Make sure the false literal is lits[1].
			lits := s.db.lits(w.ref)
			if lits[0] == falseLit {
				lits[0], lits[1] = lits[1], lits[0]
			}
			first := lits[0]
			w2 := watch{blocker: first, ref: w.ref}
			if first != w.blocker && s.litStatus(first) == Sat {
				list[j] = w2
				j++
				continue
			}
			// Look for a new lit to watch.
			found := false
			for k := 2; k < len(lits); k++ {
				if s.litStatus(lits[k]) != Unsat {
					lits[1], lits[k] = lits[k], lits[1]
					must(s.watches.Ref(int(lits[1].Negation())).Push(w2))
					found = true
					break
				}
			}
			if found {
				continue
			}
			// Clause is unit or conflicting.
			list[j] = w2
			j++
			if s.litStatus(first) == Unsat {
				confl = w.ref
				break
			}
			s.uncheckedEnqueue(first, w.ref)
		}
		if confl != CRefUndef {
			for i < len(list) {
				list[j] = list[i]
				i++
				j++
			}
			s.qhead = s.trail.Len()
		}
		ws.ShrinkUnchecked(len(list) - j)
	}
	return confl
}

// locked is true iff the given clause is the reason of a current binding.
func (s *Solver) locked(ref ClauseRef) bool {
	first := s.db.lits(ref)[0]
	return s.reason.At(int(first.Var())) == ref && s.litStatus(first) == Sat
}

// reduceLearned removes a few learned clauses that are deemed useless.
func (s *Solver) reduceLearned() {
	refs := s.learnts.Slice()
	sort.Sort(&learnedSorter{refs: refs, db: &s.db})
	length := len(refs) / 2
	if length < len(refs) && s.db.header(refs[length]).lbd() <= 3 { // Lots of good clauses, postpone reduction
		s.postponeNbMax()
	}
	j := 0
	for i, ref := range refs {
		if i < length && s.db.header(ref).lbd() > 2 && !s.locked(ref) {
			must(s.db.remove(ref))
			s.Stats.NbDeleted++
			continue
		}
		refs[j] = ref
		j++
	}
	s.learnts.ShrinkUnchecked(len(refs) - j)
	if s.db.needsCompaction() {
		must(s.db.compact())
	}
	s.rebuildWatches()
}

// ForEachImplied calls fn on each literal m such that the binary clause (¬l ∨ m) is in the problem,
// i.e each lit that is directly implied by l.
func (s *Solver) ForEachImplied(l Lit, fn func(m Lit)) {
	if int(l) >= s.watches.Len() {
		return
	}
	for _, w := range s.watches.Ref(int(l)).Slice() {
		if w.binary {
			fn(w.blocker)
		}
	}
}
