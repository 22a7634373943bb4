package solver

// learnedSorter is a structure to facilitate the sorting of learned clauses
// according to their LBD and activity.
type learnedSorter struct {
	refs []ClauseRef
	db   *clauseDB
}

func (ls *learnedSorter) Len() int { return len(ls.refs) }

func (ls *learnedSorter) Less(i, j int) bool {
	hi := ls.db.header(ls.refs[i])
	hj := ls.db.header(ls.refs[j])
	// Sort by lbd, break ties by activity
	return hi.lbd() > hj.lbd() || (hi.lbd() == hj.lbd() && hi.activity < hj.activity)
}

func (ls *learnedSorter) Swap(i, j int) { ls.refs[i], ls.refs[j] = ls.refs[j], ls.refs[i] }
