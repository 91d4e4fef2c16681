package docgen

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/ruledoc/pkg/grouping"
)

const (
	// DefaultRootPrefix selects the category subtree that is documented.
	DefaultRootPrefix = "capella.category"
	// DefaultTargetFileName is the page written for every category.
	DefaultTargetFileName = "ValidationRules.html"
)

// Config holds the inputs of a generation run. TemplateDir, BaseDir,
// RootPrefix and TargetFileName are all required.
type Config struct {
	TemplateDir    string `yaml:"templates"`
	BaseDir        string `yaml:"output"`
	RootPrefix     string `yaml:"root"`
	TargetFileName string `yaml:"target"`
	// Order is "name" (default) or "severity".
	Order string `yaml:"order,omitempty"`
	// Catalog is the location of the rule declarations read by the CLI.
	Catalog string `yaml:"catalog,omitempty"`
}

// DefaultConfig returns a Config with the fixed root prefix and file name.
func DefaultConfig() Config {
	return Config{
		RootPrefix:     DefaultRootPrefix,
		TargetFileName: DefaultTargetFileName,
	}
}

// LoadConfig overlays the YAML document at URL, a local path or any afs
// URL, onto cfg. Keys absent from the document leave the corresponding
// fields unchanged.
func LoadConfig(ctx context.Context, fs afs.Service, URL string, cfg *Config) error {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return errors.Wrapf(err, "read config %s", URL)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parse config %s", URL)
	}
	return nil
}

// Validate reports the first missing or malformed field.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"template directory", c.TemplateDir},
		{"output directory", c.BaseDir},
		{"root prefix", c.RootPrefix},
		{"target file name", c.TargetFileName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.Errorf("%s is required", f.name)
		}
	}
	if _, err := grouping.ParseOrder(c.Order); err != nil {
		return err
	}
	return nil
}
