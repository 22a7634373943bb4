package datasync

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/satvec/solver"
	"github.com/crillab/satvec/vec"
)

// A fact is a unit or binary clause learned by a worker.
type fact struct {
	lits   [2]solver.Lit
	size   int // 1 or 2
	origin int // Worker that sent it first
}

// Facts are plain values.
func (*fact) NoCleanup() {}

// A packet is what a worker sends to the server.
type packet struct {
	worker int
	units  []solver.Lit
	bins   [][2]solver.Lit
	done   bool          // The worker stopped searching
	status solver.Status // When done, the worker's answer
	reply  chan<- reply  // Nil when done
}

// A reply is what the server sends back to a worker.
type reply struct {
	units []solver.Lit
	bins  [][2]solver.Lit
	stop  bool
}

// SyncStats are statistics about the facts exchanged by the workers.
type SyncStats struct {
	RecvBinData           int // Nb of binary clauses received from workers, including duplicates
	SentBinData           int // Nb of binary clauses sent to workers
	NumGotPacket          int // Nb of packets received from workers
	NumAlreadyInterrupted int // Nb of workers that were told to stop
}

// A Server gathers the facts learned by the workers and forwards them to the others.
// All its methods must be called from the goroutine running it.
type Server struct {
	Logger  logrus.FieldLogger
	Metrics *Metrics // Can be nil

	nbWorkers int
	packets   chan packet

	bins    vec.Vec[vec.Vec[solver.Lit]] // For each lit l1, the lits l2 > l1 such that (l1 ∨ l2) was received
	value   vec.Vec[int8]                // For each var, 1 if known to be true, -1 if known to be false
	facts   vec.Vec[fact]                // All facts received, in order
	cursors vec.Vec[int]                 // For each worker, index of the first fact it was not sent yet

	alreadyInterrupted    vec.Vec[bool]
	numAlreadyInterrupted int
	ok                    bool // False once contradicting units were received
	interrupt             bool // Workers must stop
	nbFinished            int

	status solver.Status // First definitive answer
	winner int           // Worker that found it, or -1

	recvBinData  int
	sentBinData  int
	numGotPacket int
}

// NewServer returns a server for nbWorkers workers solving a problem with nbVars vars.
func NewServer(nbVars, nbWorkers int, logger logrus.FieldLogger) (*Server, error) {
	srv := &Server{
		Logger:    logger,
		nbWorkers: nbWorkers,
		packets:   make(chan packet),
		ok:        true,
		winner:    -1,
	}
	if err := srv.init(nbVars); err != nil {
		srv.Release()
		return nil, errors.Wrap(err, "cannot create sync server")
	}
	return srv, nil
}

func (srv *Server) init(nbVars int) error {
	if err := srv.bins.GrowTo(2 * nbVars); err != nil {
		return err
	}
	if err := srv.value.GrowTo(nbVars); err != nil {
		return err
	}
	if err := srv.cursors.GrowTo(srv.nbWorkers); err != nil {
		return err
	}
	return srv.alreadyInterrupted.GrowTo(srv.nbWorkers)
}

// Release frees the memory used by srv.
func (srv *Server) Release() {
	srv.bins.Clear(true)
	srv.value.Clear(true)
	srv.facts.Clear(true)
	srv.cursors.Clear(true)
	srv.alreadyInterrupted.Clear(true)
}

// Run serves the workers' packets until all of them are done, or ctx is cancelled.
func (srv *Server) Run(ctx context.Context) error {
	for srv.nbFinished < srv.nbWorkers {
		select {
		case <-ctx.Done():
			srv.forwardNeedToInterrupt()
			return nil
		case p := <-srv.packets:
			if err := srv.handle(p); err != nil {
				srv.forwardNeedToInterrupt()
				return err
			}
		}
	}
	srv.Logger.WithFields(logrus.Fields{
		"packets":     srv.numGotPacket,
		"facts":       srv.facts.Len(),
		"recv-bins":   srv.recvBinData,
		"sent-bins":   srv.sentBinData,
		"interrupted": srv.numAlreadyInterrupted,
	}).Debug("sync server done")
	return nil
}

func (srv *Server) handle(p packet) error {
	if p.done {
		srv.nbFinished++
		if p.status != solver.Indet && srv.status == solver.Indet {
			srv.status = p.status
			srv.winner = p.worker
			srv.Logger.WithFields(logrus.Fields{"worker": p.worker, "status": p.status}).Debug("answer found")
			srv.forwardNeedToInterrupt()
		}
		return nil
	}
	if err := srv.syncFromWorker(p); err != nil {
		return errors.Wrapf(err, "cannot sync facts from worker %d", p.worker)
	}
	if !srv.ok && srv.status == solver.Indet {
		srv.status = solver.Unsat
		srv.Logger.WithField("worker", p.worker).Debug("contradicting units received")
		srv.forwardNeedToInterrupt()
	}
	p.reply <- srv.sendData(p.worker)
	return nil
}

// syncFromWorker merges the facts received from a worker.
// Contradicting units make ok false.
func (srv *Server) syncFromWorker(p packet) error {
	srv.numGotPacket++
	srv.recvBinData += len(p.bins)
	if m := srv.Metrics; m != nil {
		m.Packets.Inc()
		m.Units.Add(float64(len(p.units)))
		m.Bins.Add(float64(len(p.bins)))
	}
	for _, u := range p.units {
		v := int(u.Var())
		switch srv.value.At(v) {
		case 0:
			srv.value.Set(v, sign(u))
			if err := srv.facts.Push(fact{lits: [2]solver.Lit{u, solver.LitUndef}, size: 1, origin: p.worker}); err != nil {
				return err
			}
		case -sign(u):
			srv.ok = false
			return nil
		}
	}
	for _, b := range p.bins {
		if err := srv.addOneBinToOthers(b[0], b[1], p.worker); err != nil {
			return err
		}
	}
	return nil
}

func sign(l solver.Lit) int8 {
	if l.IsPositive() {
		return 1
	}
	return -1
}

func (srv *Server) isTrue(l solver.Lit) bool {
	return srv.value.At(int(l.Var())) == sign(l)
}

// addOneBinToOthers records the clause (lit1 ∨ lit2), unless it is already known or satisfied.
func (srv *Server) addOneBinToOthers(lit1, lit2 solver.Lit, origin int) error {
	if lit1 > lit2 {
		lit1, lit2 = lit2, lit1
	}
	if srv.isTrue(lit1) || srv.isTrue(lit2) {
		return nil
	}
	partners := srv.bins.Ref(int(lit1))
	for _, l := range partners.Slice() {
		if l == lit2 {
			return nil
		}
	}
	if err := partners.Push(lit2); err != nil {
		return err
	}
	if err := srv.facts.Push(fact{lits: [2]solver.Lit{lit1, lit2}, size: 2, origin: origin}); err != nil {
		partners.Pop()
		return err
	}
	return nil
}

// sendData returns the facts the given worker does not know about yet.
func (srv *Server) sendData(worker int) reply {
	var r reply
	facts := srv.facts.Slice()[srv.cursors.At(worker):]
	for _, f := range facts {
		if f.origin == worker {
			continue
		}
		if f.size == 1 {
			r.units = append(r.units, f.lits[0])
		} else {
			r.bins = append(r.bins, f.lits)
			srv.sentBinData++
		}
	}
	srv.cursors.Set(worker, srv.facts.Len())
	if srv.interrupt {
		r.stop = true
		if !srv.alreadyInterrupted.At(worker) {
			srv.alreadyInterrupted.Set(worker, true)
			srv.numAlreadyInterrupted++
			if m := srv.Metrics; m != nil {
				m.Interrupts.Inc()
			}
		}
	}
	return r
}

// forwardNeedToInterrupt makes every later reply tell the worker to stop.
func (srv *Server) forwardNeedToInterrupt() {
	srv.interrupt = true
}

// Stats returns statistics about the exchanged facts.
func (srv *Server) Stats() SyncStats {
	return SyncStats{
		RecvBinData:           srv.recvBinData,
		SentBinData:           srv.sentBinData,
		NumGotPacket:          srv.numGotPacket,
		NumAlreadyInterrupted: srv.numAlreadyInterrupted,
	}
}
