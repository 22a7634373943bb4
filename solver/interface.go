package solver

// An Exchanger shares facts between a solver and the outside world,
// typically other solvers working on the same problem.
// Exchange is called by the solver at top level, on every restart.
type Exchanger interface {
	// Exchange receives the unit and binary clauses learned since the last call.
	// The slices are only valid during the call: an implementation must copy them.
	// It returns facts learned elsewhere, which must be implied by the problem, and whether the
	// solver must stop searching.
	Exchange(units []Lit, bins [][2]Lit) (inUnits []Lit, inBins [][2]Lit, stop bool)
}

// SetExchanger makes the solver share facts through e.
func (s *Solver) SetExchanger(e Exchanger) {
	s.exchanger = e
}

// exchange shares facts through the exchanger and adds the foreign ones.
// It returns false if the solver must stop.
func (s *Solver) exchange() bool {
	units, bins, stop := s.exchanger.Exchange(s.outUnits.Slice(), s.outBins.Slice())
	s.outUnits.Clear(false)
	s.outBins.Clear(false)
	if stop {
		return false
	}
	for _, u := range units {
		s.Stats.NbImportedUnits++
		s.addClauseLits([]Lit{u})
		if s.status == Unsat {
			return true
		}
	}
	for _, b := range bins {
		s.Stats.NbImportedBins++
		s.addClauseLits(b[:])
		if s.status == Unsat {
			return true
		}
	}
	return true
}
