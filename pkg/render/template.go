package render

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/velty"

	"github.com/dkoosis/ruledoc/pkg/catalog"
)

const (
	// TemplateName is the template rendered for every category.
	TemplateName = "rules"
	// TemplateExt is the file extension of templates in a group directory.
	TemplateExt = ".vm"

	// VarCategory and VarRules are the names bound in the template.
	VarCategory = "cat"
	VarRules    = "constraint"
)

// TemplateGroup is a directory of named templates, one file per template.
type TemplateGroup struct {
	fs      afs.Service
	baseURL string
}

// NewTemplateGroup returns a group rooted at baseURL (a local directory or
// any afs URL).
func NewTemplateGroup(fs afs.Service, baseURL string) *TemplateGroup {
	return &TemplateGroup{fs: fs, baseURL: baseURL}
}

// URL returns the location of the named template.
func (g *TemplateGroup) URL(name string) string {
	return url.Join(g.baseURL, name+TemplateExt)
}

// Source reads the named template. Templates must be UTF-8 encoded.
func (g *TemplateGroup) Source(ctx context.Context, name string) ([]byte, error) {
	URL := g.URL(name)
	exists, err := g.fs.Exists(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "check template %s", URL)
	}
	if !exists {
		return nil, errors.Errorf("no such template: %s (looked for %s)", name, URL)
	}
	data, err := g.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "read template %s", URL)
	}
	if !utf8.Valid(data) {
		return nil, errors.Errorf("template %s is not valid UTF-8", URL)
	}
	return data, nil
}

// Template is a compiled rules template.
type Template struct {
	name string
	exec func(category *catalog.Category, rules []*catalog.Rule) (string, error)
}

// Compile reads and compiles the named template with the category and rule
// variables defined.
func (g *TemplateGroup) Compile(ctx context.Context, name string) (*Template, error) {
	source, err := g.Source(ctx, name)
	if err != nil {
		return nil, err
	}

	planner := velty.New(velty.BufferSize(len(source)))
	if err = planner.DefineVariable(VarCategory, catalog.Category{}); err != nil {
		return nil, errors.Wrapf(err, "define %s", VarCategory)
	}
	if err = planner.DefineVariable(VarRules, []*catalog.Rule{}); err != nil {
		return nil, errors.Wrapf(err, "define %s", VarRules)
	}

	executor, newState, err := planner.Compile(source)
	if err != nil {
		return nil, errors.Wrapf(err, "compile template %s", g.URL(name))
	}

	return &Template{
		name: name,
		exec: func(category *catalog.Category, rules []*catalog.Rule) (string, error) {
			state := newState()
			if err := state.SetValue(VarCategory, *category); err != nil {
				return "", errors.Wrapf(err, "bind %s", VarCategory)
			}
			if err := state.SetValue(VarRules, rules); err != nil {
				return "", errors.Wrapf(err, "bind %s", VarRules)
			}
			if err := executor.Exec(state); err != nil {
				return "", err
			}
			return state.Buffer.String(), nil
		},
	}, nil
}

// Execute renders the template for one category. A panic raised by the
// engine is returned as an error.
func (t *Template) Execute(category *catalog.Category, rules []*catalog.Rule) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("template %s panicked: %v", t.name, r)
		}
	}()
	out, err = t.exec(category, rules)
	if err != nil {
		return "", errors.Wrapf(err, "execute template %s", t.name)
	}
	return out, nil
}
