package solver

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/crillab/satvec/vec"
)

const progressPeriod = 3 * time.Second // How often progress is logged in verbose mode

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbRestarts      int
	NbConflicts     int
	NbDecisions     int
	NbUnitLearned   int // How many unit clauses were learned
	NbBinaryLearned int // How many binary clauses were learned
	NbLearned       int // How many clauses were learned
	NbDeleted       int // How many clauses were deleted
	NbImportedUnits int // How many units were received from the exchanger
	NbImportedBins  int // How many binary clauses were received from the exchanger
}

// allocFailure is the panic value used to abort an operation when a vec cannot grow.
type allocFailure struct {
	err error
}

func must(err error) {
	if err != nil {
		panic(allocFailure{err})
	}
}

// A Solver solves a given problem. It is the main data structure.
type Solver struct {
	Verbose bool               // Indicates whether the solver should log progress during solving or not. False by default
	Logger  logrus.FieldLogger // Where progress is logged
	Stats   Stats              // Statistics about the solving process.

	nbVars    int
	status    Status
	err       error // Set when a vec could not grow: the solver cannot be used anymore
	opts      Options
	exchanger Exchanger

	db        clauseDB
	learnts   vec.Vec[ClauseRef]      // All learned clauses still in db
	watches   vec.Vec[vec.Vec[watch]] // For each literal, the clauses where its negation is watched
	trail     vec.Vec[Lit]            // Current assignment stack
	trailLim  vec.Vec[int]            // Index in trail of the first lit of each decision level
	qhead     int                     // Index in trail of the next lit to propagate
	model     vec.Vec[decLevel]       // 0 means unbound, other value is a binding
	lastModel vec.Vec[decLevel]       // Placeholder for last model found
	// For each var, clause considered when it was unified
	// If the var is not bound yet, or if it was bound by a decision or at top level, value is CRefUndef.
	reason   vec.Vec[ClauseRef]
	activity vec.Vec[float64] // How often each var is involved in conflicts
	polarity vec.Vec[bool]    // Preferred sign for each var
	varQueue queue
	varInc   float64 // On each var bump, how big the increment should be
	varDecay float64 // On each var decay, how much the varInc should be decayed
	// On each clause bump, how big the increment should be
	clauseInc float32
	lbdStats  lbdStats
	nbMax     int // Max # of learned clauses at current moment
	idxReduce int // # of calls to reduce + 1

	// Buffers used during conflict analysis.
	seen     vec.Vec[uint8]
	learnt   vec.Vec[Lit]
	toClear  vec.Vec[Lit]
	lbdSeen  vec.Vec[int]
	lbdStamp int
	addBuf   vec.Vec[Lit]

	// Facts learned since the last exchange.
	outUnits vec.Vec[Lit]
	outBins  vec.Vec[[2]Lit]

	localNbConflicts int           // Nb of conflicts since last restart
	progress         *rate.Limiter // How often progress is logged
}

// New makes a solver for the given problem, with default options.
func New(problem *Problem) *Solver {
	return NewWithOptions(problem, DefaultOptions())
}

// NewWithOptions makes a solver for the given problem.
// If the solver's memory cannot be allocated, Err returns the reason and Solve returns Indet.
func NewWithOptions(problem *Problem, opts Options) *Solver {
	s := &Solver{
		Logger:    logrus.StandardLogger(),
		nbVars:    problem.NbVars,
		opts:      opts,
		varInc:    1.0,
		clauseInc: 1.0,
		varDecay:  opts.VarDecay,
		nbMax:     opts.InitNbMaxClauses,
		idxReduce: 1,
		progress:  rate.NewLimiter(rate.Every(progressPeriod), 1),
	}
	if problem.Status == Unsat {
		s.status = Unsat
		return s
	}
	s.init(problem)
	return s
}

func (s *Solver) init(problem *Problem) {
	defer s.recoverAlloc(nil)
	n := s.nbVars
	must(s.model.GrowTo(n))
	must(s.reason.GrowToPad(n, CRefUndef))
	must(s.trail.Reserve(n))
	must(s.activity.GrowTo(n))
	must(s.polarity.GrowToPad(n, s.opts.InitialPolarity))
	must(s.seen.GrowTo(n))
	must(s.lbdSeen.GrowTo(n + 2))
	must(s.watches.GrowTo(2 * n))
	if s.opts.Seed != 0 {
		rnd := rand.New(rand.NewSource(s.opts.Seed))
		for v := 0; v < n; v++ {
			s.activity.Set(v, rnd.Float64()*1e-5)
		}
	}
	must(s.varQueue.init(&s.activity))
	for _, lit := range problem.Units {
		s.addClauseLits([]Lit{lit})
		if s.status == Unsat {
			return
		}
	}
	for _, c := range problem.Clauses {
		s.addClauseLits(c)
		if s.status == Unsat {
			return
		}
	}
}

// recoverAlloc turns an allocation failure into an error: the current operation is aborted,
// and the solver is not usable anymore.
// If errp is not nil, the error is also stored in it.
func (s *Solver) recoverAlloc(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	af, ok := r.(allocFailure)
	if !ok {
		panic(r)
	}
	s.err = errors.Wrap(af.err, "solver aborted")
	s.status = Indet
	if errp != nil {
		*errp = s.err
	}
}

// Err returns the error that made the solver stop, if any.
func (s *Solver) Err() error {
	return s.err
}

// NbVars returns the nb of vars in the problem.
func (s *Solver) NbVars() int {
	return s.nbVars
}

// OutputModel outputs the model for the problem on w.
func (s *Solver) OutputModel(w io.Writer) {
	switch {
	case s.status == Sat:
		fmt.Fprintf(w, "s SATISFIABLE\nv ")
		for i, val := range s.lastModel.Slice() {
			if val < 0 {
				fmt.Fprintf(w, "%d ", -i-1)
			} else {
				fmt.Fprintf(w, "%d ", i+1)
			}
		}
		fmt.Fprintf(w, "0\n")
	case s.status == Unsat:
		fmt.Fprintf(w, "s UNSATISFIABLE\n")
	default:
		fmt.Fprintf(w, "s INDETERMINATE\n")
	}
}

// litStatus returns whether the literal is made true (Sat) or false (Unsat) by the
// current bindings, or if it is unbounded (Indet).
func (s *Solver) litStatus(l Lit) Status {
	assign := s.model.At(int(l.Var()))
	if assign == 0 {
		return Indet
	}
	if assign > 0 == l.IsPositive() {
		return Sat
	}
	return Unsat
}

// TopLevelValue returns whether l is known to be true (Sat) or false (Unsat) regardless of
// any decision, or Indet.
func (s *Solver) TopLevelValue(l Lit) Status {
	if abs(s.model.At(int(l.Var()))) != 1 {
		return Indet
	}
	return s.litStatus(l)
}

func (s *Solver) decisionLevel() decLevel {
	return decLevel(s.trailLim.Len() + 1)
}

func (s *Solver) newDecisionLevel() {
	must(s.trailLim.Push(s.trail.Len()))
}

// uncheckedEnqueue binds l at current level. l must be unbound.
func (s *Solver) uncheckedEnqueue(l Lit, from ClauseRef) {
	v := int(l.Var())
	s.model.Set(v, lvlToSignedLvl(l, s.decisionLevel()))
	s.reason.Set(v, from)
	s.trail.PushUnchecked(l)
}

// cancelUntil reinitializes bindings (both model & reason) for all variables bound at a decLevel > lvl.
func (s *Solver) cancelUntil(lvl decLevel) {
	if s.decisionLevel() <= lvl {
		return
	}
	lim := s.trailLim.At(int(lvl) - 1)
	for i := s.trail.Len() - 1; i >= lim; i-- {
		lit := s.trail.At(i)
		v := int(lit.Var())
		s.model.Set(v, 0)
		s.reason.Set(v, CRefUndef)
		s.polarity.Set(v, lit.IsPositive())
		if !s.varQueue.contains(v) {
			s.varQueue.insert(v)
		}
	}
	s.qhead = lim
	s.trail.ShrinkUnchecked(s.trail.Len() - lim)
	s.trailLim.ShrinkUnchecked(s.trailLim.Len() - int(lvl) + 1)
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.varDecay
}

func (s *Solver) varBumpActivity(v Var) {
	act := s.activity.Ref(int(v))
	*act += s.varInc
	if *act > 1e100 { // Rescaling is needed to avoid overflowing
		acts := s.activity.Slice()
		for i := range acts {
			acts[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.varQueue.contains(int(v)) {
		s.varQueue.decrease(int(v))
	}
}

// Decays each clause's activity
func (s *Solver) clauseDecayActivity() {
	s.clauseInc *= 1 / float32(s.opts.ClauseDecay)
}

// Bumps the given clause's activity.
func (s *Solver) clauseBumpActivity(ref ClauseRef) {
	h := s.db.header(ref)
	if !h.learned() {
		return
	}
	h.activity += s.clauseInc
	if h.activity > 1e20 { // Rescale to avoid overflow
		for _, ref2 := range s.learnts.Slice() {
			s.db.header(ref2).activity *= 1e-20
		}
		s.clauseInc *= 1e-20
	}
}

// Chooses an unbound literal to be tested, or LitUndef
// if all the variables are already bound.
func (s *Solver) chooseLit() Lit {
	for !s.varQueue.empty() {
		v := Var(s.varQueue.removeMin())
		if s.model.At(int(v)) == 0 { // Ignore already bound vars
			s.Stats.NbDecisions++
			return v.SignedLit(!s.polarity.At(int(v)))
		}
	}
	return LitUndef
}

// addClauseLits adds a problem clause at top level, once simplified.
// Satisfied clauses and tautologies are ignored, false lits are removed.
func (s *Solver) addClauseLits(lits []Lit) {
	s.addBuf.Clear(false)
	must(s.addBuf.Reserve(len(lits)))
	for _, l := range lits {
		s.addBuf.PushUnchecked(l)
	}
	buf := s.addBuf.Slice()
	sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })
	sz := 0
	prev := LitUndef
	for _, l := range buf {
		status := s.litStatus(l)
		if status == Sat || (prev != LitUndef && l == prev.Negation()) {
			return
		}
		if status == Unsat || l == prev {
			continue
		}
		buf[sz] = l
		sz++
		prev = l
	}
	s.addBuf.ShrinkUnchecked(len(buf) - sz)
	buf = buf[:sz]
	switch sz {
	case 0:
		s.status = Unsat
	case 1:
		s.uncheckedEnqueue(buf[0], CRefUndef)
		if s.propagate() != CRefUndef {
			s.status = Unsat
		}
	default:
		ref, err := s.db.alloc(buf, false)
		must(err)
		s.attach(ref)
	}
}

// AddClause adds a clause to the problem.
// This is not a learned clause, but a clause that is part of the problem added afterwards.
// Lits must refer to vars of the problem.
func (s *Solver) AddClause(lits []Lit) (err error) {
	if s.err != nil {
		return s.err
	}
	for _, l := range lits {
		if l < 0 || int(l.Var()) >= s.nbVars {
			return errors.Errorf("invalid literal %d for problem with %d vars only", l.Int(), s.nbVars)
		}
	}
	if s.status == Unsat {
		return nil
	}
	defer s.recoverAlloc(&err)
	s.cancelUntil(1)
	s.status = Indet
	s.addClauseLits(lits)
	return nil
}

// search searches until a model is found, the problem is proven unsat or a restart is needed.
func (s *Solver) search() Status {
	s.localNbConflicts = 0
	for {
		if confl := s.propagate(); confl != CRefUndef { // Deal with conflict
			s.Stats.NbConflicts++
			s.localNbConflicts++
			if s.decisionLevel() == 1 { // Top-level conflict
				return Unsat
			}
			if s.Stats.NbConflicts%5000 == 0 && s.varDecay < 0.95 {
				s.varDecay += 0.01
			}
			s.lbdStats.addConflict(s.trail.Len())
			btLevel, lbd := s.analyze(confl)
			s.cancelUntil(btLevel)
			s.learn(lbd)
			s.varDecayActivity()
			s.clauseDecayActivity()
			continue
		}
		if s.mustRestart() {
			s.cancelUntil(1)
			return Indet
		}
		if s.Stats.NbConflicts >= s.idxReduce*s.nbMax {
			s.idxReduce = s.Stats.NbConflicts/s.nbMax + 1
			s.reduceLearned()
			s.bumpNbMax()
		}
		lit := s.chooseLit()
		if lit == LitUndef {
			return Sat
		}
		s.newDecisionLevel()
		s.uncheckedEnqueue(lit, CRefUndef)
	}
}

func (s *Solver) mustRestart() bool {
	if s.opts.Restart == LubyRestarts {
		return s.localNbConflicts >= s.opts.LubyUnit*int(luby(uint(s.Stats.NbRestarts)+1))
	}
	if s.lbdStats.mustRestart() {
		s.lbdStats.clear()
		return true
	}
	return false
}

// Solve solves the problem associated with the solver and returns the appropriate status.
// If the solver's memory cannot grow anymore, Indet is returned and Err tells why.
func (s *Solver) Solve() (status Status) {
	if s.err != nil || s.status == Unsat {
		return s.status
	}
	defer s.recoverAlloc(nil)
	s.status = Indet
	s.cancelUntil(1)
	for s.status == Indet {
		s.status = s.search()
		if s.status != Indet {
			break
		}
		s.Stats.NbRestarts++
		s.logProgress()
		if s.exchanger != nil && !s.exchange() {
			return Indet
		}
	}
	if s.status == Sat {
		must(s.model.CopyTo(&s.lastModel))
		s.cancelUntil(1)
	}
	s.logProgress()
	return s.status
}

func (s *Solver) logProgress() {
	if !s.Verbose || (s.status == Indet && !s.progress.Allow()) {
		return
	}
	pctDel := 0
	if s.Stats.NbLearned > 0 {
		pctDel = 100 * s.Stats.NbDeleted / s.Stats.NbLearned
	}
	s.Logger.WithFields(logrus.Fields{
		"restarts":  s.Stats.NbRestarts,
		"conflicts": s.Stats.NbConflicts,
		"learned":   s.learnts.Len(),
		"deleted":   s.Stats.NbDeleted,
		"del%":      pctDel,
		"reduce":    s.idxReduce - 1,
		"units":     s.Stats.NbUnitLearned,
		"vars":      s.nbVars,
		"status":    s.status,
	}).Info("search progress")
}

// Model returns a slice that associates, to each variable, its binding.
// If s's status is not Sat, the method will panic.
func (s *Solver) Model() []bool {
	if s.status != Sat {
		panic("cannot call Model() from a non-Sat solver")
	}
	res := make([]bool, s.nbVars)
	for i, lvl := range s.lastModel.Slice() {
		res[i] = lvl > 0
	}
	return res
}

// Release frees all the memory used by the solver.
// The solver cannot be used afterwards, except for its status and model.
func (s *Solver) Release() {
	s.db.release()
	s.learnts.Clear(true)
	s.watches.Clear(true)
	s.trail.Clear(true)
	s.trailLim.Clear(true)
	s.model.Clear(true)
	s.reason.Clear(true)
	s.activity.Clear(true)
	s.polarity.Clear(true)
	s.varQueue.release()
	s.seen.Clear(true)
	s.learnt.Clear(true)
	s.toClear.Clear(true)
	s.lbdSeen.Clear(true)
	s.addBuf.Clear(true)
	s.outUnits.Clear(true)
	s.outBins.Clear(true)
	s.qhead = 0
	if s.err == nil {
		s.err = errors.New("solver released")
	}
}
