// Command ruledoc renders one HTML page per validation rule category.
//
// Usage:
//
//	ruledoc <template-dir> <output-dir> --catalog constraints.yaml
//
// The template directory must contain rules.vm, a velty template that is
// given the category as $cat and its ordered rules as $constraint.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dkoosis/ruledoc/pkg/catalog"
	"github.com/dkoosis/ruledoc/pkg/docgen"
	"github.com/dkoosis/ruledoc/pkg/sarif"
)

type options struct {
	catalog   string
	config    string
	root      string
	target    string
	order     string
	sarifPath string
	verbose   bool
	summary   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	exitCode := 0
	cmd := newRootCmd(stdout, stderr, &exitCode)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}

func newRootCmd(stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	opts := &options{}
	var logger *zap.Logger

	cmd := &cobra.Command{
		Use:   "ruledoc <template-dir> <output-dir>",
		Short: "Generate validation rule documentation pages",
		Long: `ruledoc groups the validation rules of a catalog by their first category
and renders one page per category below the output directory.

Only categories under the root prefix are documented. A category with path
<root>.foo.bar is written to <output-dir>/.foo.bar/ValidationRules.html.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := generate(cmd.Context(), opts, args[0], args[1], stdout, stderr, logger)
			if err != nil {
				return err
			}
			*exitCode = code
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.catalog, "catalog", "", "rule catalog declarations (YAML)")
	flags.StringVar(&opts.config, "config", "", "optional YAML run configuration (path or URL)")
	flags.StringVar(&opts.root, "root", "", "root category prefix (default "+docgen.DefaultRootPrefix+")")
	flags.StringVar(&opts.target, "target", "", "page file name (default "+docgen.DefaultTargetFileName+")")
	flags.StringVar(&opts.order, "order", "", "rule order within a page: name or severity")
	flags.StringVar(&opts.sarifPath, "sarif", "", "write a SARIF report of the run to this path or URL")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&opts.summary, "summary", false, "print rule counts per category")

	return cmd
}

func generate(ctx context.Context, opts *options, templateDir, outputDir string, stdout, stderr io.Writer, logger *zap.Logger) (int, error) {
	fs := afs.New()
	cfg := docgen.DefaultConfig()
	if opts.config != "" {
		if err := docgen.LoadConfig(ctx, fs, opts.config, &cfg); err != nil {
			return 1, err
		}
	}
	applyFlags(&cfg, opts)

	baseDir, err := filepath.Abs(outputDir)
	if err != nil {
		return 1, errors.Wrap(err, "resolve output directory")
	}
	cfg.TemplateDir = templateDir
	cfg.BaseDir = baseDir
	if cfg.Catalog == "" {
		return 1, errors.New("--catalog is required")
	}

	registry, err := catalog.LoadFile(ctx, fs, cfg.Catalog)
	if err != nil {
		return 1, err
	}

	generator, err := docgen.New(cfg, registry,
		docgen.WithOutput(stdout, stderr),
		docgen.WithFS(fs),
		docgen.WithLogger(logger),
		docgen.WithSummary(opts.summary))
	if err != nil {
		return 1, err
	}

	result, err := generator.Run(ctx)
	if err != nil {
		return 1, err
	}

	if opts.sarifPath != "" {
		if err := writeSARIF(ctx, fs, opts.sarifPath, result.SARIF()); err != nil {
			return 1, err
		}
	}
	return result.ExitCode(), nil
}

func applyFlags(cfg *docgen.Config, opts *options) {
	if opts.catalog != "" {
		cfg.Catalog = opts.catalog
	}
	if opts.root != "" {
		cfg.RootPrefix = opts.root
	}
	if opts.target != "" {
		cfg.TargetFileName = opts.target
	}
	if opts.order != "" {
		cfg.Order = opts.order
	}
}

func writeSARIF(ctx context.Context, fs afs.Service, URL string, log *sarif.Log) error {
	var buf bytes.Buffer
	if err := sarif.NewEncoder(&buf).Encode(log); err != nil {
		return errors.Wrap(err, "encode SARIF report")
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return errors.Wrapf(err, "write SARIF report %s", URL)
	}
	return nil
}
