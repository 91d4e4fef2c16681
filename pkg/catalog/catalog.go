// Package catalog holds the validation rule catalog: rules, the categories
// they belong to, and the registry that supplies them.
package catalog

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Severity is the ordinal severity of a rule.
type Severity int

const (
	SeverityNull    Severity = 0
	SeverityInfo    Severity = 1
	SeverityWarning Severity = 2
	SeverityError   Severity = 4
	SeverityCancel  Severity = 8
)

var severityNames = map[Severity]string{
	SeverityNull:    "NULL",
	SeverityInfo:    "INFO",
	SeverityWarning: "WARNING",
	SeverityError:   "ERROR",
	SeverityCancel:  "CANCEL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity.
func ParseSeverity(name string) (Severity, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for sev, n := range severityNames {
		if n == upper {
			return sev, nil
		}
	}
	return SeverityNull, errors.Errorf("unknown severity %q", name)
}

// UnmarshalYAML accepts severity names such as "error" or "WARNING".
func (s *Severity) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*s = sev
	return nil
}

// Category is a node of the category tree. Its Path places it in the tree;
// ID identifies it.
type Category struct {
	ID          string
	Path        string
	Name        string
	Description string
}

// Rule describes a single validation constraint.
type Rule struct {
	ID          string
	Name        string
	Description string
	Message     string
	Severity    Severity
	StatusCode  int
	Mode        string
	Targets     []string
	// Categories is ordered as declared; the first entry is the primary one.
	Categories []*Category
}
