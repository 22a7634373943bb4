package datasync

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/crillab/satvec/solver"
)

// Options are the parameters of a portfolio.
type Options struct {
	Workers int            // Nb of solvers running concurrently
	Solver  solver.Options // Base options, diversified for each worker
	Metrics *Metrics       // Can be nil
	Verbose bool           // Workers log their progress
}

// A Result is the outcome of a portfolio.
type Result struct {
	Status solver.Status
	Model  []bool // Only when Status is Sat
	Winner int    // Worker that found the answer, or -1 if none did
	Stats  []solver.Stats
	Sync   SyncStats
}

// Solve solves pb with opts.Workers solvers sharing what they learn.
// The first definitive answer wins. If ctx is cancelled first, the status is Indet.
// An error is returned if the memory of a worker or of the server could not grow.
func Solve(ctx context.Context, pb *solver.Problem, opts Options, logger logrus.FieldLogger) (*Result, error) {
	if opts.Workers <= 0 {
		return nil, errors.Errorf("invalid nb of workers %d", opts.Workers)
	}
	if err := opts.Solver.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid solver options")
	}
	if pb.Status == solver.Unsat {
		return &Result{Status: solver.Unsat, Winner: -1}, nil
	}
	srv, err := NewServer(pb.NbVars, opts.Workers, logger)
	if err != nil {
		return nil, err
	}
	defer srv.Release()
	srv.Metrics = opts.Metrics
	solvers := make([]*solver.Solver, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	for i := range solvers {
		i := i
		g.Go(func() error {
			wlog := logger.WithField("worker", i)
			s := solver.NewWithOptions(pb, workerOptions(opts.Solver, i))
			s.Verbose = opts.Verbose
			s.Logger = wlog
			solvers[i] = s
			e := newExchanger(gctx, i, srv.packets)
			s.SetExchanger(e)
			status := s.Solve()
			e.finish(status)
			if err := s.Err(); err != nil {
				return errors.Wrapf(err, "worker %d", i)
			}
			wlog.WithField("status", status).Debug("worker done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &Result{
		Status: srv.status,
		Winner: srv.winner,
		Stats:  make([]solver.Stats, len(solvers)),
		Sync:   srv.Stats(),
	}
	for i, s := range solvers {
		res.Stats[i] = s.Stats
	}
	if res.Status == solver.Sat {
		res.Model = solvers[res.Winner].Model()
	}
	for _, s := range solvers {
		s.Release()
	}
	return res, nil
}
