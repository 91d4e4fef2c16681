package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Registry supplies the full set of rules. Implementations are expected to be
// fully loaded before a generation run starts.
type Registry interface {
	Rules(ctx context.Context) ([]*Rule, error)
}

// Static is a Registry over an in-memory rule slice.
type Static []*Rule

// Rules returns the slice as is.
func (s Static) Rules(context.Context) ([]*Rule, error) {
	return s, nil
}

// Catalog is a loaded set of category and rule declarations.
type Catalog struct {
	Categories []*Category
	rules      []*Rule
}

// Rules returns all declared rules in declaration order.
func (c *Catalog) Rules(context.Context) ([]*Rule, error) {
	return c.rules, nil
}

// Category looks up a declared category by ID.
func (c *Catalog) Category(id string) (*Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return nil, false
}

// declarations mirrors the on-disk structure.
type declarations struct {
	Categories []categorySpec `yaml:"categories"`
	Rules      []ruleSpec     `yaml:"rules"`
}

type categorySpec struct {
	ID          string `yaml:"id"`
	Path        string `yaml:"path,omitempty"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type ruleSpec struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Message     string   `yaml:"message,omitempty"`
	Severity    Severity `yaml:"severity"`
	StatusCode  int      `yaml:"statusCode,omitempty"`
	Mode        string   `yaml:"mode,omitempty"`
	Targets     []string `yaml:"targets,omitempty"`
	Categories  []string `yaml:"categories"`
}

// LoadFile reads YAML declarations from the provided location, which may be
// a local path or any URL supported by afs.
func LoadFile(ctx context.Context, fs afs.Service, URL string) (*Catalog, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", URL)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", URL)
	}
	return cat, nil
}

// Parse builds a Catalog from YAML declarations. Categories are resolved by
// ID; every rule must name at least one declared category. Rule names are
// unique, and so are rule IDs, a rule without an ID being keyed by its name.
func Parse(data []byte) (*Catalog, error) {
	var decl declarations
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, errors.Wrap(err, "decode declarations")
	}

	result := &Catalog{}
	byID := make(map[string]*Category, len(decl.Categories))
	for i, spec := range decl.Categories {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			return nil, errors.Errorf("category %d: id is required", i)
		}
		if _, dup := byID[id]; dup {
			return nil, errors.Errorf("category %q declared twice", id)
		}
		path := spec.Path
		if path == "" {
			path = id
		}
		cat := &Category{ID: id, Path: path, Name: spec.Name, Description: spec.Description}
		byID[id] = cat
		result.Categories = append(result.Categories, cat)
	}

	names := make(map[string]bool, len(decl.Rules))
	ids := make(map[string]bool, len(decl.Rules))
	for i, spec := range decl.Rules {
		if strings.TrimSpace(spec.Name) == "" {
			return nil, errors.Errorf("rule %d: name is required", i)
		}
		if names[spec.Name] {
			return nil, errors.Errorf("rule %q declared twice", spec.Name)
		}
		names[spec.Name] = true
		id := spec.ID
		if id == "" {
			id = spec.Name
		}
		if ids[id] {
			return nil, errors.Errorf("rule %q: id %q declared twice", spec.Name, id)
		}
		ids[id] = true
		if len(spec.Categories) == 0 {
			return nil, errors.Errorf("rule %q: at least one category is required", spec.Name)
		}

		rule := &Rule{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Message:     spec.Message,
			Severity:    spec.Severity,
			StatusCode:  spec.StatusCode,
			Mode:        spec.Mode,
			Targets:     spec.Targets,
		}
		for _, id := range spec.Categories {
			cat, ok := byID[id]
			if !ok {
				return nil, errors.Errorf("rule %q: unknown category %q", spec.Name, id)
			}
			rule.Categories = append(rule.Categories, cat)
		}
		result.rules = append(result.rules, rule)
	}

	return result, nil
}
