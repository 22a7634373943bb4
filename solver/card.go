package solver

import (
	"fmt"
	"strings"
)

// A CardConstr is a cardinality constraint, i.e a set of literals (represented with integer variables) associated with a minimal number of literals that must be true.
// A propositional clause (i.e a disjunction of literals) is a cardinality constraint with a minimal cardinality of 1.
type CardConstr struct {
	Lits    []int
	AtLeast int
}

// AtLeast1 returns a cardinality constraint stating that at least one of the given lits must be true.
// This is the equivalent of a propositional clause.
func AtLeast1(lits ...int) CardConstr {
	return CardConstr{Lits: lits, AtLeast: 1}
}

// AtMost1 returns a cardinality constraint stating that at most one of the given lits can be true.
func AtMost1(lits ...int) CardConstr {
	for i, lit := range lits {
		lits[i] = -lit
	}
	return CardConstr{Lits: lits, AtLeast: len(lits) - 1}
}

// Exactly1 returns two cardinality constraints stating that exactly one of the given lits must be true.
func Exactly1(lits ...int) []CardConstr {
	dup := make([]int, len(lits))
	copy(dup, lits)
	return []CardConstr{AtLeast1(lits...), AtMost1(dup...)}
}

// String returns a readable representation of c, such as "-1 + 2 + -3 >= 2".
func (c CardConstr) String() string {
	terms := make([]string, len(c.Lits))
	for i, lit := range c.Lits {
		terms[i] = fmt.Sprint(lit)
	}
	return fmt.Sprintf("%s >= %d", strings.Join(terms, " + "), c.AtLeast)
}

// Clauses returns the CNF encoding of c as a slice of clauses, if c is a clause or an at-most-one
// constraint, the only two kinds of constraints the solver deals with natively.
// ok is false for other constraints.
func (c CardConstr) Clauses() (clauses [][]int, ok bool) {
	switch {
	case c.AtLeast <= 0:
		return nil, true
	case c.AtLeast == 1:
		return [][]int{c.Lits}, true
	case c.AtLeast == len(c.Lits)-1: // At most one of the negations is true
		for i := 0; i < len(c.Lits); i++ {
			for j := i + 1; j < len(c.Lits); j++ {
				clauses = append(clauses, []int{c.Lits[i], c.Lits[j]})
			}
		}
		return clauses, true
	case c.AtLeast > len(c.Lits):
		return [][]int{{}}, true
	default:
		return nil, false
	}
}
