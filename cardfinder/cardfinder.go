package cardfinder

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/satvec/solver"
	"github.com/crillab/satvec/vec"
)

const minCardSize = 3 // Smaller cards are plain binary clauses

// A Source gives access to the binary clauses of a problem.
// *solver.Solver is a Source.
type Source interface {
	NbVars() int
	// ForEachImplied calls fn on each lit m such that the clause (¬l ∨ m) exists.
	ForEachImplied(l solver.Lit, fn func(m solver.Lit))
	// TopLevelValue returns the value of l if it is known regardless of any decision.
	TopLevelValue(l solver.Lit) solver.Status
}

// A Finder finds at-most-one constraints in a Source.
type Finder struct {
	Logger logrus.FieldLogger // Must not be nil

	src Source
	// For each lit, 1 iff it is in an at-most-one relation with the lit being dealt with.
	seen    vec.Vec[uint16]
	seen2   vec.Vec[uint8] // For each lit, 1 iff it already belongs to a card
	toClear vec.Vec[solver.Lit]

	cards      vec.Vec[vec.Vec[solver.Lit]]
	totalSizes int
}

// New returns a finder working on the binary clauses of src.
func New(src Source) *Finder {
	return &Finder{Logger: logrus.StandardLogger(), src: src}
}

// FindCards looks for cards in the source. Previously found cards are discarded.
// An error is only returned if the finder's memory could not grow. In that case, the cards found
// so far are kept.
func (f *Finder) FindCards() error {
	f.cards.Clear(false)
	f.totalSizes = 0
	nbLits := 2 * f.src.NbVars()
	if err := f.seen.GrowTo(nbLits); err != nil {
		return errors.Wrap(err, "cannot find cards")
	}
	if err := f.seen2.GrowTo(nbLits); err != nil {
		return errors.Wrap(err, "cannot find cards")
	}
	err := f.findPairwiseAtMost1()
	f.clearSeen()
	f.dealWithClash()
	seen2 := f.seen2.Slice()
	for i := range seen2 {
		seen2[i] = 0
	}
	f.cleanEmptyCards()
	if err != nil {
		return errors.Wrap(err, "cannot find cards")
	}
	f.Logger.WithFields(logrus.Fields{
		"cards":       f.cards.Len(),
		"total-sizes": f.totalSizes,
	}).Debug("found cards")
	for i := 0; i < f.cards.Len(); i++ {
		f.Logger.Debugf("card: %s", cardString(f.cards.Ref(i).Slice()))
	}
	return nil
}

func (f *Finder) clearSeen() {
	seen := f.seen.Slice()
	for _, l := range f.toClear.Slice() {
		seen[l] = 0
	}
	f.toClear.Clear(false)
}

// available is true iff l can be added to a new card.
func (f *Finder) available(l solver.Lit) bool {
	return f.seen2.At(int(l)) == 0 && f.src.TopLevelValue(l) == solver.Indet
}

// findPairwiseAtMost1 builds cards greedily: each lit not yet in a card starts a new one, and the
// lits it is in relation with are added as long as they are in relation with every member.
func (f *Finder) findPairwiseAtMost1() error {
	var card, candidates vec.Vec[solver.Lit]
	defer card.Clear(true)
	defer candidates.Clear(true)
	seen := f.seen.Slice()
	for i := 0; i < f.seen2.Len(); i++ {
		l := solver.Lit(i)
		if !f.available(l) {
			continue
		}
		candidates.Clear(false)
		var err error
		f.src.ForEachImplied(l, func(m solver.Lit) {
			partner := m.Negation()
			if err != nil || seen[partner] != 0 || partner.Var() == l.Var() || !f.available(partner) {
				return
			}
			if err = f.toClear.Push(partner); err != nil {
				return
			}
			seen[partner] = 1
			err = candidates.Push(partner)
		})
		if err != nil {
			return err
		}
		card.Clear(false)
		if err := card.Push(l); err != nil {
			return err
		}
		for _, c := range candidates.Slice() {
			if f.connectedToAll(c, card.Slice()) {
				if err := card.Push(c); err != nil {
					return err
				}
			}
		}
		f.clearSeen()
		if card.Len() < minCardSize {
			continue
		}
		for _, m := range card.Slice() {
			f.seen2.Set(int(m), 1)
		}
		if err := f.cards.PushZero(); err != nil {
			return err
		}
		if err := card.CopyTo(f.cards.LastRef()); err != nil {
			f.cards.Pop()
			return err
		}
		f.totalSizes += card.Len()
	}
	return nil
}

// connectedToAll is true iff l is in an at-most-one relation with every lit in card.
func (f *Finder) connectedToAll(l solver.Lit, card []solver.Lit) bool {
	for _, m := range card {
		if !f.findConnector(l, m) {
			return false
		}
	}
	return true
}

// findConnector is true iff the clause (¬lit1 ∨ ¬lit2) exists.
func (f *Finder) findConnector(lit1, lit2 solver.Lit) bool {
	found := false
	f.src.ForEachImplied(lit1, func(m solver.Lit) {
		if m == lit2.Negation() {
			found = true
		}
	})
	return found
}

// dealWithClash makes sure each var only appears in one card, the first one it was put in.
// Here, seen is indexed by var.
func (f *Finder) dealWithClash() {
	seen := f.seen.Slice()
	for i := 0; i < f.cards.Len(); i++ {
		card := f.cards.Ref(i)
		lits := card.Slice()
		j := 0
		for _, l := range lits {
			if seen[l.Var()] != 0 {
				f.Logger.WithField("var", l.Var().Lit().Int()).Debug("var in several cards")
				continue
			}
			lits[j] = l
			j++
		}
		card.Shrink(len(lits) - j)
		for _, l := range card.Slice() {
			seen[l.Var()] = 1
		}
	}
	for i := 0; i < f.cards.Len(); i++ {
		for _, l := range f.cards.Ref(i).Slice() {
			seen[l.Var()] = 0
		}
	}
}

// cleanEmptyCards removes cards with less than two lits, which are not constraints anymore.
func (f *Finder) cleanEmptyCards() {
	j := 0
	f.totalSizes = 0
	for i := 0; i < f.cards.Len(); i++ {
		if f.cards.Ref(i).Len() < 2 {
			continue
		}
		f.totalSizes += f.cards.Ref(i).Len()
		f.cards.Ref(j).Swap(f.cards.Ref(i))
		j++
	}
	f.cards.Shrink(f.cards.Len() - j)
}

// Cards returns a copy of the cards found by the last call to FindCards.
func (f *Finder) Cards() [][]solver.Lit {
	res := make([][]solver.Lit, f.cards.Len())
	for i := range res {
		res[i] = append([]solver.Lit(nil), f.cards.Ref(i).Slice()...)
	}
	return res
}

// TotalSizes returns the sum of the sizes of all cards.
func (f *Finder) TotalSizes() int {
	return f.totalSizes
}

// Constrs returns the cards as at-most-one constraints.
func (f *Finder) Constrs() []solver.CardConstr {
	res := make([]solver.CardConstr, f.cards.Len())
	for i := range res {
		lits := f.cards.Ref(i).Slice()
		ints := make([]int, len(lits))
		for j, l := range lits {
			ints[j] = int(l.Int())
		}
		res[i] = solver.AtMost1(ints...)
	}
	return res
}

// MoveCardsTo gives the ownership of the cards to dst. f holds no card afterwards.
func (f *Finder) MoveCardsTo(dst *vec.Vec[vec.Vec[solver.Lit]]) {
	f.cards.MoveTo(dst)
	f.totalSizes = 0
}

// Release frees all the memory used by f.
func (f *Finder) Release() {
	f.cards.Clear(true)
	f.seen.Clear(true)
	f.seen2.Clear(true)
	f.toClear.Clear(true)
	f.totalSizes = 0
}

func cardString(lits []solver.Lit) string {
	terms := make([]string, len(lits))
	for i, l := range lits {
		terms[i] = fmt.Sprint(l.Int())
	}
	return fmt.Sprintf("%s <= 1", strings.Join(terms, " + "))
}

// String returns a readable representation of the cards, one per line.
func (f *Finder) String() string {
	var sb strings.Builder
	for i := 0; i < f.cards.Len(); i++ {
		sb.WriteString(cardString(f.cards.Ref(i).Slice()))
		sb.WriteByte('\n')
	}
	return sb.String()
}
