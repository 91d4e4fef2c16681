// Package render writes one documentation page per category from a velty
// template.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"go.uber.org/zap"

	"github.com/dkoosis/ruledoc/pkg/catalog"
)

// Error is a failed render of one category. The run that produced it
// carries on with the remaining categories.
type Error struct {
	Category *catalog.Category
	Path     string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.Category.Path, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Renderer renders categories into files below a base directory.
type Renderer struct {
	fs             afs.Service
	templates      *TemplateGroup
	baseDir        string
	rootPrefix     string
	targetFileName string
	logger         *zap.Logger

	compileOnce sync.Once
	tmpl        *Template
	compileErr  error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFS sets the storage service used for templates and output.
func WithFS(fs afs.Service) Option {
	return func(r *Renderer) {
		r.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New returns a Renderer reading templates from templateDir and writing
// below baseDir.
func New(templateDir, baseDir, rootPrefix, targetFileName string, opts ...Option) *Renderer {
	r := &Renderer{
		baseDir:        baseDir,
		rootPrefix:     rootPrefix,
		targetFileName: targetFileName,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afs.New()
	}
	r.templates = NewTemplateGroup(r.fs, templateDir)
	return r
}

// RelPath returns the destination of a category relative to the base
// directory.
func (r *Renderer) RelPath(category *catalog.Category) string {
	return RelPath(category, r.rootPrefix, r.targetFileName)
}

// Destination returns the absolute destination of a category page.
func (r *Renderer) Destination(category *catalog.Category) string {
	return Resolve(category, r.rootPrefix, r.baseDir, r.targetFileName)
}

// Render binds the category and its ordered rules to the rules template and
// writes the result. It returns the number of bytes written. Any failure is
// returned as *Error. A failed write removes the destination only when this
// call created it; a page left by an earlier run is never deleted.
func (r *Renderer) Render(ctx context.Context, category *catalog.Category, rules []*catalog.Rule) (int, error) {
	dest := r.Destination(category)
	fail := func(err error) (int, error) {
		r.logger.Warn("render failed",
			zap.String("category", category.ID),
			zap.String("path", dest),
			zap.Error(err))
		return 0, &Error{Category: category, Path: dest, Err: err}
	}

	if !within(r.baseDir, dest) {
		return fail(errors.Errorf("destination escapes base directory %s", r.baseDir))
	}

	tmpl, err := r.template(ctx)
	if err != nil {
		return fail(err)
	}
	out, err := tmpl.Execute(category, rules)
	if err != nil {
		return fail(err)
	}

	data := []byte(out)
	existed, _ := r.fs.Exists(ctx, dest)
	if err := r.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		if !existed {
			if created, _ := r.fs.Exists(ctx, dest); created {
				_ = r.fs.Delete(ctx, dest)
			}
		}
		return fail(errors.Wrapf(err, "write %s", dest))
	}

	r.logger.Debug("rendered",
		zap.String("category", category.ID),
		zap.String("path", dest),
		zap.Int("rules", len(rules)),
		zap.Int("bytes", len(data)))
	return len(data), nil
}

// template compiles the rules template on first use. A compile failure is
// kept and reported for every category.
func (r *Renderer) template(ctx context.Context) (*Template, error) {
	r.compileOnce.Do(func() {
		r.tmpl, r.compileErr = r.compile(ctx)
	})
	return r.tmpl, r.compileErr
}

func (r *Renderer) compile(ctx context.Context) (tmpl *Template, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("compile template %s: %v", TemplateName, p)
		}
	}()
	return r.templates.Compile(ctx, TemplateName)
}
