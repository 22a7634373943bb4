// Package datasync runs a portfolio of solvers on the same problem, sharing the unit and binary
// clauses they learn.
//
// Each worker goroutine owns its solver. On every restart, a worker sends the facts it learned
// to a Server and receives those learned by the other workers. The server deduplicates facts, detects
// contradicting units, and tells every worker to stop as soon as one of them found an answer.
package datasync
