package solver

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/satvec/vec"
)

// pigeonHole returns the problem of putting n+1 pigeons in n holes.
func pigeonHole(n int) [][]int {
	v := func(p, h int) int { return p*n + h + 1 }
	var cnf [][]int
	for p := 0; p <= n; p++ {
		clause := make([]int, n)
		for h := 0; h < n; h++ {
			clause[h] = v(p, h)
		}
		cnf = append(cnf, clause)
	}
	for h := 0; h < n; h++ {
		for p1 := 0; p1 <= n; p1++ {
			for p2 := p1 + 1; p2 <= n; p2++ {
				cnf = append(cnf, []int{-v(p1, h), -v(p2, h)})
			}
		}
	}
	return cnf
}

// random3SAT returns a random 3-SAT problem, with nbClauses clauses over nbVars vars.
func random3SAT(rnd *rand.Rand, nbVars, nbClauses int) [][]int {
	cnf := make([][]int, nbClauses)
	for i := range cnf {
		clause := make([]int, 3)
		for j := range clause {
			clause[j] = rnd.Intn(nbVars) + 1
			if rnd.Intn(2) == 0 {
				clause[j] = -clause[j]
			}
		}
		cnf[i] = clause
	}
	return cnf
}

// giniStatus solves cnf with gini, an independent solver.
func giniStatus(cnf [][]int) Status {
	g := gini.New()
	for _, clause := range cnf {
		for _, lit := range clause {
			g.Add(z.Dimacs2Lit(lit))
		}
		g.Add(z.LitNull)
	}
	switch g.Solve() {
	case 1:
		return Sat
	case -1:
		return Unsat
	default:
		return Indet
	}
}

// checkModel fails if model does not satisfy cnf.
func checkModel(t *testing.T, cnf [][]int, model []bool) {
	t.Helper()
	for _, clause := range cnf {
		sat := false
		for _, lit := range clause {
			v := lit
			if v < 0 {
				v = -v
			}
			if model[v-1] == (lit > 0) {
				sat = true
				break
			}
		}
		if !sat {
			t.Fatalf("model %v does not satisfy clause %v", model, clause)
		}
	}
}

// copyCNF returns a deep copy of cnf, since parsing simplifies clauses in place.
func copyCNF(cnf [][]int) [][]int {
	res := make([][]int, len(cnf))
	for i, clause := range cnf {
		res[i] = append([]int(nil), clause...)
	}
	return res
}

func TestParseSlice(t *testing.T) {
	cnf := [][]int{{1, 2, 3}, {-1}, {-2}, {-3}}
	pb := ParseSlice(cnf)
	s := New(pb)
	if status := s.Solve(); status != Unsat {
		t.Fatalf("expected unsat for problem %v, got %v", cnf, status)
	}
}

func TestParseSliceSat(t *testing.T) {
	cnf := [][]int{{1}, {-2, 3}, {-2, 4}, {-5, 3}, {-5, 6}, {-7, 3}, {-7, 8}, {-9, 10}, {-9, 4}, {-1, 10}, {-1, 6}, {3, 10}, {-3, -10}, {4, 6, 8}}
	pb := ParseSlice(copyCNF(cnf))
	s := New(pb)
	if status := s.Solve(); status != Sat {
		t.Fatalf("expected sat for problem %v, got %v", cnf, status)
	}
	checkModel(t, cnf, s.Model())
}

func TestParseSliceTrivial(t *testing.T) {
	cnf := [][]int{{1}, {-1}}
	pb := ParseSlice(cnf)
	s := New(pb)
	if status := s.Solve(); status != Unsat {
		t.Fatalf("expected unsat for problem %v, got %v", cnf, status)
	}
}

func TestParseSliceSimplify(t *testing.T) {
	pb := ParseSlice([][]int{{1}, {-1, 2}, {-2, 3, 4}, {1, 5}})
	assert.Equal(t, Indet, pb.Status)
	assert.Equal(t, []Lit{IntToLit(1), IntToLit(2)}, pb.Units)
	assert.Equal(t, [][]Lit{{IntToLit(3), IntToLit(4)}}, pb.Clauses)
	assert.Equal(t, "p cnf 5 3\n1 0\n2 0\n3 4 0\n", pb.CNF())
	pb = ParseSlice([][]int{{1}, {-1, 2}})
	assert.Equal(t, Sat, pb.Status)
	pb = ParseSlice([][]int{{1, 2}, {}})
	assert.Equal(t, Unsat, pb.Status)
}

func TestParseCNF(t *testing.T) {
	const cnf = `c a comment
p cnf 4 4
1 -2 0
2 3 -4 0
-1 0
c another comment
-3 4 0`
	pb, err := ParseCNF(strings.NewReader(cnf))
	require.NoError(t, err)
	assert.Equal(t, 4, pb.NbVars)
	s := New(pb)
	require.Equal(t, Sat, s.Solve())
	checkModel(t, [][]int{{1, -2}, {2, 3, -4}, {-1}, {-3, 4}}, s.Model())
}

func TestParseCNFErrors(t *testing.T) {
	tests := []struct {
		name string
		cnf  string
	}{
		{"invalid header", "p cnf x 2\n1 0\n"},
		{"short header", "p cnf\n1 0\n"},
		{"literal out of range", "p cnf 2 1\n1 3 0\n"},
		{"unfinished clause", "p cnf 2 1\n1 2"},
		{"not a digit", "p cnf 2 1\n1 a 0\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseCNF(strings.NewReader(test.cnf))
			assert.Error(t, err)
		})
	}
}

func TestParseCNFEmptyClause(t *testing.T) {
	pb, err := ParseCNF(strings.NewReader("p cnf 2 2\n1 2 0\n0\n"))
	require.NoError(t, err)
	assert.Equal(t, Unsat, pb.Status)
	assert.Equal(t, Unsat, New(pb).Solve())
}

func TestPigeonHole(t *testing.T) {
	for n := 2; n <= 6; n++ {
		s := New(ParseSlice(pigeonHole(n)))
		if status := s.Solve(); status != Unsat {
			t.Errorf("expected unsat for pigeon hole problem with %d holes, got %v", n, status)
		}
		require.NoError(t, s.Err())
	}
}

// smallDBOptions forces frequent clause database reductions and compactions.
func smallDBOptions(restart RestartPolicy) Options {
	opts := DefaultOptions()
	opts.Restart = restart
	opts.LubyUnit = 8
	opts.InitNbMaxClauses = 20
	opts.IncrNbMaxClauses = 5
	return opts
}

func TestPigeonHoleReduce(t *testing.T) {
	for _, restart := range []RestartPolicy{GlucoseRestarts, LubyRestarts} {
		s := NewWithOptions(ParseSlice(pigeonHole(7)), smallDBOptions(restart))
		require.Equal(t, Unsat, s.Solve(), "restart policy %s", restart)
		assert.Greater(t, s.Stats.NbDeleted, 0, "restart policy %s", restart)
		if restart == LubyRestarts {
			assert.Greater(t, s.Stats.NbRestarts, 0)
		}
	}
}

func TestRandom3SAT(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	nbSat, nbUnsat := 0, 0
	for i := 0; i < 100; i++ {
		cnf := random3SAT(rnd, 60, 256)
		expected := giniStatus(cnf)
		opts := smallDBOptions(GlucoseRestarts)
		if i%2 == 1 {
			opts.Restart = LubyRestarts
			opts.InitialPolarity = true
			opts.Seed = int64(i)
		}
		s := NewWithOptions(ParseSlice(copyCNF(cnf)), opts)
		status := s.Solve()
		require.Equal(t, expected, status, "instance #%d", i)
		if status == Sat {
			nbSat++
			checkModel(t, cnf, s.Model())
		} else {
			nbUnsat++
		}
	}
	t.Logf("%d sat, %d unsat instances", nbSat, nbUnsat)
}

func TestIncremental(t *testing.T) {
	cnf := [][]int{{1, 2, 3}, {-1, -2, -3}, {2, 3, 4}, {2, 3, 5}, {3, 4, 5}, {2, 4, 5}}
	s := New(ParseSlice(copyCNF(cnf)))
	nb := 0
	for s.Solve() == Sat {
		model := s.Model()
		checkModel(t, cnf, model)
		nb++
		blocking := make([]Lit, len(model))
		for i, b := range model {
			blocking[i] = Var(i).SignedLit(b)
		}
		require.NoError(t, s.AddClause(blocking))
	}
	assert.Equal(t, 17, nb)
	assert.Equal(t, Unsat, s.Solve())
}

func TestAddClauseErrors(t *testing.T) {
	s := New(ParseSlice([][]int{{1, 2}}))
	assert.Error(t, s.AddClause([]Lit{IntToLit(3)}))
	assert.Error(t, s.AddClause([]Lit{LitUndef}))
	require.NoError(t, s.AddClause([]Lit{IntToLit(1), IntToLit(-1)})) // Tautology
	require.NoError(t, s.AddClause([]Lit{IntToLit(-1), IntToLit(-1)}))
	require.NoError(t, s.AddClause([]Lit{IntToLit(-2)}))
	assert.Equal(t, Unsat, s.Solve())
}

func TestOutputModel(t *testing.T) {
	s := New(ParseSlice([][]int{{1}, {-2}, {-1, 3}}))
	var buf bytes.Buffer
	s.OutputModel(&buf)
	assert.Equal(t, "s INDETERMINATE\n", buf.String())
	require.Equal(t, Sat, s.Solve())
	buf.Reset()
	s.OutputModel(&buf)
	assert.Equal(t, "s SATISFIABLE\nv 1 -2 3 0\n", buf.String())
	s = New(ParseSlice([][]int{{1}, {-1}}))
	s.Solve()
	buf.Reset()
	s.OutputModel(&buf)
	assert.Equal(t, "s UNSATISFIABLE\n", buf.String())
}

func TestTopLevel(t *testing.T) {
	s := New(ParseSlice([][]int{{-1, -2}, {-1, -3}, {4}, {-4, 5, 6, 7}}))
	assert.Equal(t, Sat, s.TopLevelValue(IntToLit(4)))
	assert.Equal(t, Unsat, s.TopLevelValue(IntToLit(-4)))
	assert.Equal(t, Indet, s.TopLevelValue(IntToLit(1)))
	var implied []Lit
	s.ForEachImplied(IntToLit(1), func(m Lit) { implied = append(implied, m) })
	assert.ElementsMatch(t, []Lit{IntToLit(-2), IntToLit(-3)}, implied)
	implied = nil
	s.ForEachImplied(IntToLit(2), func(m Lit) { implied = append(implied, m) })
	assert.Equal(t, []Lit{IntToLit(-1)}, implied)
	implied = nil
	s.ForEachImplied(IntToLit(-5), func(m Lit) { implied = append(implied, m) })
	assert.Empty(t, implied, "ternary clauses imply nothing")
	require.Equal(t, Sat, s.Solve())
	assert.Equal(t, Indet, s.TopLevelValue(IntToLit(1)), "model bindings are not top-level facts")
}

// recorder is an Exchanger that records what it receives and sends predefined facts.
type recorder struct {
	units   []Lit
	bins    [][2]Lit
	nbCalls int
	inUnits []Lit
	stop    bool
}

func (r *recorder) Exchange(units []Lit, bins [][2]Lit) ([]Lit, [][2]Lit, bool) {
	r.nbCalls++
	r.units = append(r.units, units...)
	r.bins = append(r.bins, bins...)
	in := r.inUnits
	r.inUnits = nil
	return in, nil, r.stop
}

func lubyOptions() Options {
	opts := DefaultOptions()
	opts.Restart = LubyRestarts
	opts.LubyUnit = 1
	return opts
}

func TestExchangerStop(t *testing.T) {
	s := NewWithOptions(ParseSlice(pigeonHole(5)), lubyOptions())
	r := &recorder{stop: true}
	s.SetExchanger(r)
	assert.Equal(t, Indet, s.Solve())
	assert.Equal(t, 1, r.nbCalls)
	assert.NoError(t, s.Err())
}

func TestExchangerImport(t *testing.T) {
	s := NewWithOptions(ParseSlice(pigeonHole(5)), lubyOptions())
	// Contradictory facts: the problem is proven unsat on the first exchange.
	r := &recorder{inUnits: []Lit{IntToLit(1), IntToLit(-1)}}
	s.SetExchanger(r)
	assert.Equal(t, Unsat, s.Solve())
	assert.Equal(t, 1, r.nbCalls)
	assert.Equal(t, 1, s.Stats.NbRestarts)
	assert.GreaterOrEqual(t, s.Stats.NbImportedUnits, 1)
	assert.Equal(t, s.Stats.NbUnitLearned, len(r.units))
	assert.Equal(t, s.Stats.NbBinaryLearned, len(r.bins))
}

// binImporter sends binary clauses once.
type binImporter struct {
	bins [][2]Lit
}

func (b *binImporter) Exchange(units []Lit, bins [][2]Lit) ([]Lit, [][2]Lit, bool) {
	in := b.bins
	b.bins = nil
	return nil, in, false
}

func TestExchangerImportBins(t *testing.T) {
	// Var 31 can only be false when every pigeon has a hole.
	cnf := pigeonHole(5)
	for i := range cnf {
		cnf[i] = append(cnf[i], 31)
	}
	cnf = append(cnf, []int{32, -32})
	s := NewWithOptions(ParseSlice(copyCNF(cnf)), lubyOptions())
	s.SetExchanger(&binImporter{bins: [][2]Lit{{IntToLit(31), IntToLit(32)}, {IntToLit(-32), IntToLit(-1)}}})
	status := s.Solve()
	require.Equal(t, Sat, status)
	model := s.Model()
	checkModel(t, cnf, model)
	if s.Stats.NbRestarts > 0 {
		assert.Equal(t, 2, s.Stats.NbImportedBins)
		checkModel(t, [][]int{{31, 32}, {-32, -1}}, model)
	}
}

func TestExchangerExport(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	cnf := random3SAT(rnd, 80, 340)
	s := NewWithOptions(ParseSlice(copyCNF(cnf)), lubyOptions())
	r := &recorder{}
	s.SetExchanger(r)
	status := s.Solve()
	require.Equal(t, giniStatus(cnf), status)
	require.Greater(t, r.nbCalls, 0)
	// Every exported fact must be implied by the problem.
	for _, u := range r.units {
		check := append(copyCNF(cnf), []int{int(u.Negation().Int())})
		assert.Equal(t, Unsat, giniStatus(check), "unit %d is not implied", u.Int())
	}
	for _, b := range r.bins {
		check := append(copyCNF(cnf), []int{int(b[0].Negation().Int())}, []int{int(b[1].Negation().Int())})
		assert.Equal(t, Unsat, giniStatus(check), "binary clause %d %d is not implied", b[0].Int(), b[1].Int())
	}
}

func TestAllocFailure(t *testing.T) {
	s := New(ParseSlice([][]int{{1, 2}, {-1, 2}}))
	err := func() (err error) {
		defer s.recoverAlloc(&err)
		must(errors.Wrap(vec.ErrAllocationFailure, "cannot grow"))
		return nil
	}()
	require.Error(t, err)
	assert.True(t, errors.Is(err, vec.ErrAllocationFailure))
	assert.Equal(t, Indet, s.Solve())
	assert.True(t, errors.Is(s.Err(), vec.ErrAllocationFailure))
	assert.Equal(t, s.Err(), s.AddClause([]Lit{IntToLit(1)}))
}

func TestRelease(t *testing.T) {
	s := New(ParseSlice([][]int{{1, 2}, {-1, 2}}))
	require.Equal(t, Sat, s.Solve())
	s.Release()
	assert.Equal(t, 0, s.watches.Cap())
	assert.Equal(t, 0, s.db.arena.Cap())
	assert.Equal(t, Sat, s.Solve())
	assert.True(t, s.Model()[1])
}

func TestEmptyProblem(t *testing.T) {
	s := New(ParseSlice(nil))
	assert.Equal(t, Sat, s.Solve())
	assert.Empty(t, s.Model())
}

func TestModelPanicsIfNotSat(t *testing.T) {
	s := New(ParseSlice([][]int{{1}, {-1}}))
	s.Solve()
	assert.Panics(t, func() { s.Model() })
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
	opts := DefaultOptions()
	opts.Restart = "never"
	assert.Error(t, opts.Validate())
	opts = DefaultOptions()
	opts.VarDecay = 0
	assert.Error(t, opts.Validate())
	opts = DefaultOptions()
	opts.Restart = LubyRestarts
	opts.LubyUnit = 0
	assert.Error(t, opts.Validate())
}

func BenchmarkPigeonHole(b *testing.B) {
	cnf := pigeonHole(7)
	for i := 0; i < b.N; i++ {
		s := New(ParseSlice(copyCNF(cnf)))
		s.Solve()
	}
}
