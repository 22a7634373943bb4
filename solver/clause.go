package solver

import (
	"fmt"
	"math"
	"strings"
)

// A ClauseRef identifies a clause in the solver's clause database.
// It stays valid until the clause is deleted, even when the database is compacted.
type ClauseRef uint32

// CRefUndef is the reason of decisions and top-level facts.
const CRefUndef = ClauseRef(math.MaxUint32)

// A clauseHeader locates a clause's literals in the arena, along with data for learned clauses.
type clauseHeader struct {
	start int // Index of the first lit in the arena
	size  int
	// lbdValue's bits are as follow:
	// leftmost bit: learned flag.
	// second bit: deleted flag.
	// last 30 bits: LBD value (if learned).
	lbdValue uint32
	activity float32
}

// Headers own nothing: the arena is cleared separately.
func (*clauseHeader) NoCleanup() {}

const (
	learnedMask uint32 = 1 << 31
	deletedMask uint32 = 1 << 30
	bothMasks   uint32 = learnedMask | deletedMask
	maxLbd             = int(^bothMasks)
)

func (h *clauseHeader) learned() bool {
	return h.lbdValue&learnedMask != 0
}

func (h *clauseHeader) deleted() bool {
	return h.lbdValue&deletedMask != 0
}

func (h *clauseHeader) lbd() int {
	return int(h.lbdValue & ^bothMasks)
}

func (h *clauseHeader) setLbd(lbd int) {
	h.lbdValue = (h.lbdValue & bothMasks) | uint32(min(lbd, maxLbd))
}

// clauseString returns a DIMACS representation of the given clause.
func clauseString(lits []Lit) string {
	var sb strings.Builder
	for _, lit := range lits {
		fmt.Fprintf(&sb, "%d ", lit.Int())
	}
	sb.WriteString("0")
	return sb.String()
}
