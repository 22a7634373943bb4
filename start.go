package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/crillab/satvec/cardfinder"
	"github.com/crillab/satvec/datasync"
	"github.com/crillab/satvec/solver"
)

type options struct {
	configPath string
	debug      bool
	verbose    bool
	count      bool
	cards      bool
	metrics    bool

	workers int
	seed    int64
	restart string
}

// config is the content of a --config file.
type config struct {
	Solver  solver.Options `yaml:"solver"`
	Workers int            `yaml:"workers"`
}

func defaultConfig() config {
	return config{Solver: solver.DefaultOptions(), Workers: 1}
}

// loadConfig reads a YAML config file. Missing fields keep their default values.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not read config %q", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %q", path)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:          "satvec [flags] file.cnf[.gz]",
		Short:        "Solves a DIMACS CNF problem",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			if o.debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			cfg, err := loadConfig(o.configPath)
			if err != nil {
				return err
			}
			o.override(cmd.Flags(), &cfg)
			if err := cfg.Solver.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return o.run(ctx, logger, cfg, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.configPath, "config", "", "YAML file with solver options")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "use debug log level")
	cmd.Flags().BoolVar(&o.verbose, "verbose", false, "log search progress")
	cmd.Flags().BoolVar(&o.count, "count", false, "rather than solving the problem, counts the number of models it accepts")
	cmd.Flags().BoolVar(&o.cards, "cards", false, "look for at-most-one constraints before solving")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "dump sync metrics on stderr when done")
	cmd.Flags().IntVar(&o.workers, "workers", 1, "nb of solvers sharing learned facts")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "seed perturbing initial var activities, 0 for none")
	cmd.Flags().StringVar(&o.restart, "restart", string(solver.GlucoseRestarts), "restart policy (glucose or luby)")

	return cmd
}

// override replaces config values by the flags explicitly set.
func (o *options) override(flags *pflag.FlagSet, cfg *config) {
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("seed") {
		cfg.Solver.Seed = o.seed
	}
	if flags.Changed("restart") {
		cfg.Solver.Restart = solver.RestartPolicy(o.restart)
	}
}

func (o *options) run(ctx context.Context, logger *logrus.Logger, cfg config, path string, out io.Writer) error {
	fmt.Fprintf(out, "c solving %s\n", path)
	pb, err := parse(path)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"vars":    pb.NbVars,
		"clauses": len(pb.Clauses),
		"units":   len(pb.Units),
	}).Debug("problem parsed")
	if o.cards {
		if err := findCards(pb, cfg, logger, out); err != nil {
			return err
		}
	}
	if o.count {
		return o.countModels(ctx, pb, cfg, logger, out)
	}
	sopts := datasync.Options{Workers: cfg.Workers, Solver: cfg.Solver, Verbose: o.verbose}
	var reg *prometheus.Registry
	if o.metrics {
		reg = prometheus.NewRegistry()
		sopts.Metrics = datasync.NewMetrics()
		if err := sopts.Metrics.Register(reg); err != nil {
			return err
		}
	}
	res, err := datasync.Solve(ctx, pb, sopts, logger)
	if err != nil {
		return err
	}
	if o.verbose && res.Winner >= 0 {
		st := res.Stats[res.Winner]
		fmt.Fprintf(out, "c winner: worker %d\n", res.Winner)
		fmt.Fprintf(out, "c nb conflicts: %d\nc nb restarts: %d\nc nb decisions: %d\n", st.NbConflicts, st.NbRestarts, st.NbDecisions)
		fmt.Fprintf(out, "c nb unit learned: %d\nc nb binary learned: %d\nc nb learned: %d\n", st.NbUnitLearned, st.NbBinaryLearned, st.NbLearned)
		fmt.Fprintf(out, "c nb clauses deleted: %d\n", st.NbDeleted)
	}
	writeResult(out, res)
	if reg != nil {
		if err := dumpMetrics(reg, os.Stderr); err != nil {
			return err
		}
	}
	return nil
}

// parse parses a DIMACS file, possibly gzipped.
func parse(path string) (*solver.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %q", path)
	}
	defer f.Close()
	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".cnf.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "could not decompress %q", path)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".cnf"):
	default:
		return nil, errors.Errorf("invalid file format for %q", path)
	}
	pb, err := solver.ParseCNF(r)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse DIMACS file %q", path)
	}
	return pb, nil
}

func findCards(pb *solver.Problem, cfg config, logger *logrus.Logger, out io.Writer) error {
	s := solver.NewWithOptions(pb, cfg.Solver)
	defer s.Release()
	if err := s.Err(); err != nil {
		return err
	}
	f := cardfinder.New(s)
	f.Logger = logger
	defer f.Release()
	if err := f.FindCards(); err != nil {
		return err
	}
	fmt.Fprintf(out, "c %d cards found, total size %d\n", len(f.Cards()), f.TotalSizes())
	for _, c := range f.Constrs() {
		fmt.Fprintf(out, "c %s\n", c)
	}
	return nil
}

// countModels enumerates all models, adding a clause blocking each one.
// It stops between two models once ctx is done.
func (o *options) countModels(ctx context.Context, pb *solver.Problem, cfg config, logger *logrus.Logger, out io.Writer) error {
	s := solver.NewWithOptions(pb, cfg.Solver)
	defer s.Release()
	s.Logger = logger
	s.Verbose = o.verbose
	nb := 0
	blocking := make([]solver.Lit, pb.NbVars)
	for s.Solve() == solver.Sat {
		nb++
		if o.verbose {
			fmt.Fprintf(out, "c %d models found\n", nb)
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "model counting interrupted after %d models", nb)
		}
		for i, b := range s.Model() {
			blocking[i] = solver.Var(i).SignedLit(b)
		}
		if err := s.AddClause(blocking); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	fmt.Fprintln(out, nb)
	return nil
}

func writeResult(w io.Writer, res *datasync.Result) {
	switch res.Status {
	case solver.Sat:
		fmt.Fprintf(w, "s SATISFIABLE\nv ")
		for i, b := range res.Model {
			if b {
				fmt.Fprintf(w, "%d ", i+1)
			} else {
				fmt.Fprintf(w, "%d ", -i-1)
			}
		}
		fmt.Fprintf(w, "0\n")
	case solver.Unsat:
		fmt.Fprintf(w, "s UNSATISFIABLE\n")
	default:
		fmt.Fprintf(w, "s INDETERMINATE\n")
	}
}

func dumpMetrics(reg *prometheus.Registry, w io.Writer) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "could not gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "could not dump metrics")
		}
	}
	return nil
}
