package solver

import "github.com/pkg/errors"

// A RestartPolicy tells when the solver should restart.
type RestartPolicy string

const (
	// GlucoseRestarts restarts when recent learned clauses have a much worse LBD than usual.
	GlucoseRestarts RestartPolicy = "glucose"
	// LubyRestarts restarts after a nb of conflicts following the Luby sequence.
	LubyRestarts RestartPolicy = "luby"
)

const incrPostponeNbMax = 1000 // By how much # of learned is increased when lots of good clauses are currently learned.

// Options are the parameters of a Solver.
// They can be read from a YAML document.
type Options struct {
	VarDecay         float64       `yaml:"varDecay"`         // On each var decay, how much the varInc should be decayed at startup
	ClauseDecay      float64       `yaml:"clauseDecay"`      // By how much clauses bumping decays over time.
	Restart          RestartPolicy `yaml:"restart"`          // glucose or luby
	LubyUnit         int           `yaml:"lubyUnit"`         // Nb of conflicts per luby unit
	InitNbMaxClauses int           `yaml:"initNbMaxClauses"` // Maximum # of learned clauses, at first.
	IncrNbMaxClauses int           `yaml:"incrNbMaxClauses"` // By how much # of learned clauses is incremented at each reduction.
	Seed             int64         `yaml:"seed"`             // If not 0, initial var activities are randomly perturbed
	InitialPolarity  bool          `yaml:"initialPolarity"`  // Sign tried first for each var: true means positive
}

// DefaultOptions returns the default options of a Solver.
func DefaultOptions() Options {
	return Options{
		VarDecay:         0.8,
		ClauseDecay:      0.999,
		Restart:          GlucoseRestarts,
		LubyUnit:         512,
		InitNbMaxClauses: 2000,
		IncrNbMaxClauses: 300,
	}
}

// Validate returns an error if o cannot be used to build a Solver.
func (o Options) Validate() error {
	if o.VarDecay <= 0 || o.VarDecay > 1 {
		return errors.Errorf("invalid var decay %v: must be in (0, 1]", o.VarDecay)
	}
	if o.ClauseDecay <= 0 || o.ClauseDecay > 1 {
		return errors.Errorf("invalid clause decay %v: must be in (0, 1]", o.ClauseDecay)
	}
	switch o.Restart {
	case GlucoseRestarts:
	case LubyRestarts:
		if o.LubyUnit <= 0 {
			return errors.Errorf("invalid luby unit %d", o.LubyUnit)
		}
	default:
		return errors.Errorf("unknown restart policy %q", o.Restart)
	}
	if o.InitNbMaxClauses <= 0 || o.IncrNbMaxClauses < 0 {
		return errors.Errorf("invalid learned clauses limits %d (+%d)", o.InitNbMaxClauses, o.IncrNbMaxClauses)
	}
	return nil
}
