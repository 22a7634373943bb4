package solver

import (
	"fmt"
	"strings"
)

// A Problem is a list of clauses & a nb of vars.
type Problem struct {
	NbVars  int     // Total nb of vars
	Clauses [][]Lit // List of non-empty, non-unit clauses
	Status  Status  // Status of the problem. Can be trivially UNSAT (if empty clause was met or inferred by UP) or Indet.
	Units   []Lit   // List of unit literal found in the problem.
}

// CNF returns a DIMACS CNF representation of the problem.
func (pb *Problem) CNF() string {
	var sb strings.Builder
	if pb.Status == Unsat {
		fmt.Fprintf(&sb, "p cnf %d 1\n0\n", pb.NbVars)
		return sb.String()
	}
	fmt.Fprintf(&sb, "p cnf %d %d\n", pb.NbVars, len(pb.Units)+len(pb.Clauses))
	for _, unit := range pb.Units {
		fmt.Fprintf(&sb, "%d 0\n", unit.Int())
	}
	for _, clause := range pb.Clauses {
		fmt.Fprintf(&sb, "%s\n", clauseString(clause))
	}
	return sb.String()
}

// simplify simplifies the problem, i.e runs unit propagation if possible.
func (pb *Problem) simplify() {
	model := make([]int8, pb.NbVars) // 1 means bound to true, -1 means bound to false
	units := pb.Units
	pb.Units = nil
	for _, unit := range units {
		pb.addUnit(model, unit)
		if pb.Status == Unsat {
			return
		}
	}
	for modified := true; modified; {
		modified = false
		nbClauses := 0
		for _, c := range pb.Clauses {
			nbLits := 0
			clauseSat := false
			for _, lit := range c {
				switch model[lit.Var()] {
				case 0:
					c[nbLits] = lit
					nbLits++
				case lvlSign(lit):
					clauseSat = true
				}
				if clauseSat {
					break
				}
			}
			switch {
			case clauseSat:
			case nbLits == 0:
				pb.Status = Unsat
				return
			case nbLits == 1: // UP
				pb.addUnit(model, c[0])
				if pb.Status == Unsat {
					return
				}
				modified = true
			default:
				pb.Clauses[nbClauses] = c[:nbLits]
				nbClauses++
			}
		}
		pb.Clauses = pb.Clauses[:nbClauses]
	}
	if pb.Status == Indet && len(pb.Clauses) == 0 {
		pb.Status = Sat
	}
}

// lvlSign returns the binding that makes lit true.
func lvlSign(lit Lit) int8 {
	if lit.IsPositive() {
		return 1
	}
	return -1
}

func (pb *Problem) addUnit(model []int8, lit Lit) {
	switch model[lit.Var()] {
	case 0:
		model[lit.Var()] = lvlSign(lit)
		pb.Units = append(pb.Units, lit)
	case -lvlSign(lit):
		pb.Status = Unsat
	}
}
