package docgen_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/dkoosis/ruledoc/pkg/docgen"
)

func TestConfig_Validate_ReportsMissingInputs(t *testing.T) {
	t.Parallel()

	valid := docgen.DefaultConfig()
	valid.TemplateDir = "templates"
	valid.BaseDir = "out"

	tests := []struct {
		name    string
		mutate  func(c *docgen.Config)
		wantErr string
	}{
		{name: "success: all inputs present", mutate: func(*docgen.Config) {}},
		{name: "error: template directory", mutate: func(c *docgen.Config) { c.TemplateDir = "" }, wantErr: "template directory is required"},
		{name: "error: output directory", mutate: func(c *docgen.Config) { c.BaseDir = " " }, wantErr: "output directory is required"},
		{name: "error: root prefix", mutate: func(c *docgen.Config) { c.RootPrefix = "" }, wantErr: "root prefix is required"},
		{name: "error: target file", mutate: func(c *docgen.Config) { c.TargetFileName = "" }, wantErr: "target file name is required"},
		{name: "error: unknown order", mutate: func(c *docgen.Config) { c.Order = "random" }, wantErr: "unknown rule order"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfig_OverlaysFileOntoDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ruledoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: index.html\norder: severity\ncatalog: rules.yaml\n"), 0o644))

	cfg := docgen.DefaultConfig()
	require.NoError(t, docgen.LoadConfig(context.Background(), afs.New(), path, &cfg))

	assert.Equal(t, docgen.DefaultRootPrefix, cfg.RootPrefix)
	assert.Equal(t, "index.html", cfg.TargetFileName)
	assert.Equal(t, "severity", cfg.Order)
	assert.Equal(t, "rules.yaml", cfg.Catalog)
}

func TestLoadConfig_ReturnsError_When_FileInvalid(t *testing.T) {
	t.Parallel()

	cfg := docgen.DefaultConfig()
	fs := afs.New()
	assert.Error(t, docgen.LoadConfig(context.Background(), fs, filepath.Join(t.TempDir(), "missing.yaml"), &cfg))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unterminated\n"), 0o644))
	assert.Error(t, docgen.LoadConfig(context.Background(), fs, path, &cfg))
}

func TestLoadConfig_ReadsURL_When_StoredOutsideLocalDisk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/ruledoc/config/ruledoc.yaml"
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader("root: acme.rules\n")))
	t.Cleanup(func() { _ = fs.Delete(ctx, URL) })

	cfg := docgen.DefaultConfig()
	require.NoError(t, docgen.LoadConfig(ctx, fs, URL, &cfg))
	assert.Equal(t, "acme.rules", cfg.RootPrefix)
	assert.Equal(t, docgen.DefaultTargetFileName, cfg.TargetFileName)
}
