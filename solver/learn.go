package solver

// analyze builds the first-UIP clause learned from the given conflict into s.learnt.
// The asserting literal is s.learnt[0] and, if any, the literal with the highest level
// among the others is s.learnt[1].
// It returns the level to backtrack to and the LBD of the learned clause.
func (s *Solver) analyze(confl ClauseRef) (btLevel decLevel, lbd int) {
	s.learnt.Clear(false)
	must(s.learnt.Push(LitUndef)) // Make room for asserting literal
	lvl := s.decisionLevel()
	seen := s.seen.Slice()
	model := s.model.Slice()
	nbLvl := 0 // Nb of lits from current level still to be dealt with
	p := LitUndef
	ptr := s.trail.Len() - 1 // Pointer in propagation trail
	for {
		s.clauseBumpActivity(confl)
		for _, q := range s.db.lits(confl) {
			if q == p { // The lit implied by confl: binary clauses are not ordered
				continue
			}
			v := q.Var()
			if seen[v] != 0 {
				continue
			}
			qLvl := abs(model[v])
			if qLvl <= 1 { // Top-level facts are useless in learned clauses
				continue
			}
			seen[v] = 1
			s.varBumpActivity(v)
			if qLvl == lvl {
				nbLvl++
			} else {
				must(s.learnt.Push(q))
			}
		}
		// Look for the last lit from lvl that was met.
		for seen[s.trail.At(ptr).Var()] == 0 {
			ptr--
		}
		p = s.trail.At(ptr)
		ptr--
		seen[p.Var()] = 0
		nbLvl--
		if nbLvl == 0 {
			break
		}
		confl = s.reason.At(int(p.Var()))
	}
	s.learnt.Set(0, p.Negation())
	must(s.learnt.CopyTo(&s.toClear))
	s.minimizeLearned()
	for _, l := range s.toClear.Slice() {
		seen[l.Var()] = 0
	}
	lits := s.learnt.Slice()
	if len(lits) == 1 {
		btLevel = 1
	} else {
		maxI := 1
		for i := 2; i < len(lits); i++ {
			if abs(model[lits[i].Var()]) > abs(model[lits[maxI].Var()]) {
				maxI = i
			}
		}
		lits[1], lits[maxI] = lits[maxI], lits[1]
		btLevel = abs(model[lits[1].Var()])
	}
	return btLevel, s.computeLbd(lits)
}

// minimizeLearned removes from s.learnt the lits whose reason only contains lits
// that are already in the learned clause or bound at top level.
func (s *Solver) minimizeLearned() {
	seen := s.seen.Slice()
	lits := s.learnt.Slice()
	sz := 1
	for i := 1; i < len(lits); i++ {
		reason := s.reason.At(int(lits[i].Var()))
		if reason == CRefUndef {
			lits[sz] = lits[i]
			sz++
			continue
		}
		for _, lit := range s.db.lits(reason) {
			v := lit.Var()
			if seen[v] == 0 && abs(s.model.At(int(v))) > 1 {
				lits[sz] = lits[i]
				sz++
				break
			}
		}
	}
	s.learnt.ShrinkUnchecked(len(lits) - sz)
}

// computeLbd returns the LBD (Literal Block Distance) of the given clause,
// i.e the nb of distinct levels its lits were bound at.
func (s *Solver) computeLbd(lits []Lit) int {
	s.lbdStamp++
	marks := s.lbdSeen.Slice()
	nb := 0
	for _, l := range lits {
		lvl := abs(s.model.At(int(l.Var())))
		if marks[lvl] != s.lbdStamp {
			marks[lvl] = s.lbdStamp
			nb++
		}
	}
	return nb
}

// learn adds the clause in s.learnt to the solver, once it has backtracked, and binds its asserting lit.
func (s *Solver) learn(lbd int) {
	lits := s.learnt.Slice()
	s.lbdStats.add(lbd)
	if len(lits) == 1 { // Unit clause was learned: this lit is known for sure
		s.Stats.NbUnitLearned++
		s.uncheckedEnqueue(lits[0], CRefUndef)
		must(s.outUnits.Push(lits[0]))
		return
	}
	ref, err := s.db.alloc(lits, true)
	must(err)
	must(s.learnts.Push(ref))
	s.db.header(ref).setLbd(lbd)
	s.attach(ref)
	s.clauseBumpActivity(ref)
	s.Stats.NbLearned++
	if len(lits) == 2 {
		s.Stats.NbBinaryLearned++
		must(s.outBins.Push([2]Lit{lits[0], lits[1]}))
	}
	s.uncheckedEnqueue(lits[0], ref)
}
