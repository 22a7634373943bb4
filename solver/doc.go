/*
Package solver gives access to a simple CDCL SAT solver.
Its input can be either a DIMACS CNF file or a solver.Problem object,
containing the set of clauses to be solved.

No matter the input format,
the solver.Solver will then solve the problem and indicate whether the problem is
satisfiable or not. In the former case, it will be able to provide a model, i.e a set of bindings
for all variables that makes the problem true.

All the solver's data (clause arena, watch lists, trail, variable heap, analysis buffers) live in
vec.Vec containers. If one of them cannot grow, the solver stops: Solve returns Indet and Err
tells why.

# Describing a problem

A problem can be described in several ways:

1. parse a DIMACS stream (io.Reader). If the io.Reader produces the following content:

	p cnf 6 7
	1 2 3 0
	4 5 6 0
	-1 -4 0
	-2 -5 0
	-3 -6 0
	-1 -3 0
	-4 -6 0

the programmer can create the Problem by doing:

	pb, err := solver.ParseCNF(f)

2. create the equivalent list of list of literals. The problem above can be created programatically this way:

	clauses := [][]int{
		[]int{1, 2, 3},
		[]int{4, 5, 6},
		[]int{-1, -4},
		[]int{-2, -5},
		[]int{-3, -6},
		[]int{-1, -3},
		[]int{-4, -6},
	}
	pb := solver.ParseSlice(clauses)

# Solving a problem

To solve a problem, one simply creates a solver with said problem.
The Solve() method then solves the problem and returns the corresponding status: Sat or Unsat.

	s := solver.New(pb)
	status := s.Solve()

If the status was Sat, the programmer can ask for a model, i.e an assignment that makes all the clauses of the problem true:

	m := s.Model()

For the above problem, the status will be Sat and the model can be {false, true, false, true, false, false}.

Alternatively, one can display the result and model (if any):

	s.OutputModel(os.Stdout)

For the above problem described in the DIMACS format, the output can be:

	s SATISFIABLE
	v -1 2 -3 4 -5 -6 0

# Sharing facts

Several solvers working on the same problem can share the unit and binary clauses they learn
through an Exchanger: see package datasync.
*/
package solver
