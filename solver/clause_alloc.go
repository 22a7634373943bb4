package solver

// This file deals with the clause allocator.
// Since lots of learned clauses are created then destroyed, all literals live in a single arena,
// and the headers of deleted clauses are reused, to relax the GC's work.

import "github.com/crillab/satvec/vec"

// clauseDB stores the literals of every clause contiguously in a single arena.
type clauseDB struct {
	headers vec.Vec[clauseHeader]
	arena   vec.Vec[Lit]
	free    vec.Vec[ClauseRef] // Headers of deleted clauses, ready for reuse
	wasted  int                // Nb of arena slots used by deleted clauses
}

// alloc adds a clause made of lits to the database.
// The database is left unchanged if it cannot grow.
func (db *clauseDB) alloc(lits []Lit, learned bool) (ClauseRef, error) {
	start := db.arena.Len()
	if err := db.arena.Reserve(start + len(lits)); err != nil {
		return CRefUndef, err
	}
	for _, l := range lits {
		db.arena.PushUnchecked(l)
	}
	h := clauseHeader{start: start, size: len(lits)}
	if learned {
		h.lbdValue = learnedMask
	}
	if !db.free.Empty() {
		ref := db.free.Last()
		db.free.Pop()
		db.headers.Set(int(ref), h)
		return ref, nil
	}
	if err := db.headers.Push(h); err != nil {
		db.arena.ShrinkUnchecked(len(lits))
		return CRefUndef, err
	}
	return ClauseRef(db.headers.Len() - 1), nil
}

func (db *clauseDB) header(ref ClauseRef) *clauseHeader {
	return db.headers.Ref(int(ref))
}

// lits returns the literals of the given clause.
// The slice is invalidated by the next call to alloc or compact.
func (db *clauseDB) lits(ref ClauseRef) []Lit {
	h := db.headers.Ref(int(ref))
	return db.arena.Slice()[h.start : h.start+h.size : h.start+h.size]
}

// remove deletes the given clause. Its ref can be reused afterwards.
func (db *clauseDB) remove(ref ClauseRef) error {
	if err := db.free.Push(ref); err != nil {
		return err
	}
	h := db.headers.Ref(int(ref))
	h.lbdValue |= deletedMask
	db.wasted += h.size
	return nil
}

// needsCompaction is true iff more than half the arena is wasted.
func (db *clauseDB) needsCompaction() bool {
	return db.wasted > db.arena.Len()/2
}

// compact moves all live clauses to a new arena, without any hole.
func (db *clauseDB) compact() error {
	var arena vec.Vec[Lit]
	if err := arena.Reserve(db.arena.Len() - db.wasted); err != nil {
		return err
	}
	old := db.arena.Slice()
	for i := 0; i < db.headers.Len(); i++ {
		h := db.headers.Ref(i)
		if h.deleted() {
			h.start, h.size = 0, 0
			continue
		}
		start := arena.Len()
		for _, l := range old[h.start : h.start+h.size] {
			arena.PushUnchecked(l)
		}
		h.start = start
	}
	arena.MoveTo(&db.arena)
	db.wasted = 0
	return nil
}

// release frees all memory used by the database.
func (db *clauseDB) release() {
	db.headers.Clear(true)
	db.arena.Clear(true)
	db.free.Clear(true)
	db.wasted = 0
}
