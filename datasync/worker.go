package datasync

import (
	"context"

	"github.com/crillab/satvec/solver"
)

// exchanger is the solver.Exchanger of a worker: it talks to the server.
type exchanger struct {
	ctx     context.Context
	id      int
	packets chan<- packet
	replies chan reply
}

func newExchanger(ctx context.Context, id int, packets chan<- packet) *exchanger {
	return &exchanger{ctx: ctx, id: id, packets: packets, replies: make(chan reply, 1)}
}

// Exchange sends copies of the worker's facts to the server and waits for the others' facts.
func (e *exchanger) Exchange(units []solver.Lit, bins [][2]solver.Lit) ([]solver.Lit, [][2]solver.Lit, bool) {
	if e.ctx.Err() != nil {
		return nil, nil, true
	}
	p := packet{
		worker: e.id,
		units:  append([]solver.Lit(nil), units...),
		bins:   append([][2]solver.Lit(nil), bins...),
		reply:  e.replies,
	}
	select {
	case e.packets <- p:
	case <-e.ctx.Done():
		return nil, nil, true
	}
	select {
	case r := <-e.replies:
		return r.units, r.bins, r.stop
	case <-e.ctx.Done():
		return nil, nil, true
	}
}

// finish tells the server the worker is done, with the given answer.
func (e *exchanger) finish(status solver.Status) {
	select {
	case e.packets <- packet{worker: e.id, done: true, status: status}:
	case <-e.ctx.Done():
	}
}

// workerOptions diversifies the search of each worker: seeds differ, odd workers try
// the other polarity first, and every other pair of workers uses the other restart policy.
func workerOptions(base solver.Options, id int) solver.Options {
	opts := base
	opts.Seed = base.Seed + int64(id)
	if id%2 == 1 {
		opts.InitialPolarity = !base.InitialPolarity
	}
	if id%4 >= 2 {
		if base.Restart == solver.LubyRestarts {
			opts.Restart = solver.GlucoseRestarts
		} else {
			opts.Restart = solver.LubyRestarts
			if opts.LubyUnit <= 0 {
				opts.LubyUnit = solver.DefaultOptions().LubyUnit
			}
		}
	}
	return opts
}
