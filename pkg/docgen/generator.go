// Package docgen runs a full documentation generation: it loads the rule
// catalog, groups the in-scope rules by category and renders one page per
// category, collecting render failures instead of stopping at the first.
package docgen

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"go.uber.org/zap"

	"github.com/dkoosis/ruledoc/pkg/catalog"
	"github.com/dkoosis/ruledoc/pkg/grouping"
	"github.com/dkoosis/ruledoc/pkg/render"
)

// Stage is a step of a generation run. Runs move through the stages in
// declaration order.
type Stage int

const (
	StageInit Stage = iota
	StageLoaded
	StageFiltered
	StageGrouped
	StageRendering
	StageDone
)

var stageNames = [...]string{"init", "loaded", "filtered", "grouped", "rendering", "done"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

const banner = "============================== Generating your documentation =========================="

// Generator coordinates one generation run.
type Generator struct {
	cfg      Config
	order    grouping.Order
	registry catalog.Registry
	fs       afs.Service
	out      io.Writer
	errOut   io.Writer
	logger   *zap.Logger
	summary  bool
	stage    Stage
}

// Option configures a Generator.
type Option func(*Generator)

// WithOutput sets the progress and diagnostic writers.
func WithOutput(out, errOut io.Writer) Option {
	return func(g *Generator) {
		g.out = out
		g.errOut = errOut
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithFS sets the storage service used for templates and pages.
func WithFS(fs afs.Service) Option {
	return func(g *Generator) {
		g.fs = fs
	}
}

// WithSummary prints a per-category rule count table after rendering.
func WithSummary(enabled bool) Option {
	return func(g *Generator) {
		g.summary = enabled
	}
}

// New validates cfg and returns a Generator reading rules from registry.
func New(cfg Config, registry catalog.Registry, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	order, _ := grouping.ParseOrder(cfg.Order)

	g := &Generator{
		cfg:      cfg,
		order:    order,
		registry: registry,
		out:      os.Stdout,
		errOut:   os.Stderr,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.fs == nil {
		g.fs = afs.New()
	}
	return g, nil
}

// Stage returns the stage the generator reached.
func (g *Generator) Stage() Stage {
	return g.stage
}

func (g *Generator) advance(s Stage) {
	g.stage = s
	g.logger.Debug("stage", zap.Stringer("stage", s))
}

// Result is the outcome of a run.
type Result struct {
	Groups  *grouping.Groups
	Written []string
	Errors  []*render.Error
	errs    *multierror.Error
}

// Err returns all render failures combined, or nil.
func (r *Result) Err() error {
	return r.errs.ErrorOrNil()
}

// ExitCode is 0 when every page rendered and 1 otherwise, regardless of how
// many failed.
func (r *Result) ExitCode() int {
	if r.errs == nil {
		return 0
	}
	return min(r.errs.Len(), 1)
}

// Run performs a full regeneration. The returned error is only set when the
// catalog cannot be loaded; render failures are reported in the Result and
// on the diagnostic writer.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	g.advance(StageInit)

	rules, err := g.registry.Rules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load rule catalog")
	}
	g.advance(StageLoaded)

	assignments := catalog.Filter(rules, g.cfg.RootPrefix)
	g.advance(StageFiltered)
	g.logger.Debug("filtered catalog",
		zap.Int("rules", len(rules)),
		zap.Int("in_scope", len(assignments)),
		zap.String("root", g.cfg.RootPrefix))

	groups := grouping.Build(assignments, g.order)
	g.advance(StageGrouped)

	fmt.Fprintln(g.out)
	fmt.Fprintln(g.out, banner)
	fmt.Fprintln(g.out)
	fmt.Fprintf(g.out, "Basedir is %s\n", g.cfg.BaseDir)
	fmt.Fprintln(g.out)

	renderer := render.New(g.cfg.TemplateDir, g.cfg.BaseDir, g.cfg.RootPrefix, g.cfg.TargetFileName,
		render.WithFS(g.fs), render.WithLogger(g.logger))

	result := &Result{Groups: groups, errs: &multierror.Error{}}
	g.advance(StageRendering)
	for _, group := range groups.All() {
		fmt.Fprintf(g.out, "Writing %s\n", renderer.RelPath(group.Category))

		if _, err := renderer.Render(ctx, group.Category, group.Rules); err != nil {
			result.errs = multierror.Append(result.errs, err)
			var renderErr *render.Error
			if errors.As(err, &renderErr) {
				result.Errors = append(result.Errors, renderErr)
			}
			continue
		}
		result.Written = append(result.Written, renderer.Destination(group.Category))
	}

	for _, err := range result.errs.Errors {
		fmt.Fprintln(g.errOut, err.Error())
	}
	if g.summary {
		g.printSummary(groups)
	}
	g.advance(StageDone)
	g.logger.Debug("generation finished",
		zap.Int("categories", groups.Len()),
		zap.Int("written", len(result.Written)),
		zap.Int("failed", len(result.Errors)))

	return result, nil
}

func (g *Generator) printSummary(groups *grouping.Groups) {
	width := groups.MaxPathLength()
	fmt.Fprintln(g.out)
	for _, group := range groups.All() {
		fmt.Fprintf(g.out, "%-*s %4d rules\n", width, group.Category.Path, len(group.Rules))
	}
}
