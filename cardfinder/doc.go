/*
Package cardfinder detects at-most-one constraints hidden in the binary clauses of a problem.

Two literals a and b are in an at-most-one relation iff the clause (¬a ∨ ¬b) exists. A card is a
set of literals pairwise in that relation, i.e a clique in the graph of binary clauses. Cards are
found greedily, from the binary clauses a solver knows about:

	s := solver.New(pb)
	f := cardfinder.New(s)
	if err := f.FindCards(); err != nil {
		return err
	}
	for _, c := range f.Constrs() {
		fmt.Println(c)
	}

Each variable appears in at most one card.
*/
package cardfinder
