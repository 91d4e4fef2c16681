//go:build mage

// Build, test and documentation targets.
//
// Tiers:
//
//	mage       Build, lint, test (default)
//	mage qa    Race detection, all linters, govulncheck
//	mage docs  Render the example catalog into build/docs
//
// Set CLI=1 for console output instead of the fo dashboard.
package main

import (
	"fmt"
	"os"
	"os/exec"
)

// cli returns true if CLI=1 is set (console output instead of dashboard).
func cli() bool {
	return os.Getenv("CLI") != ""
}

// Default target runs standard build + lint + test.
var Default = All

// All runs build, lint, and test.
func All() error {
	if cli() {
		fmt.Println("═══ Build + Lint + Test ═══")
		return runSequential(
			step{"Build", "go", []string{"build", "-o", "bin/ruledoc", "./cmd/ruledoc"}},
			step{"Test", "go", []string{"test", "-cover", "./..."}},
			step{"Vet", "go", []string{"vet", "./..."}},
			step{"Gofmt", "gofmt", []string{"-l", "."}},
		)
	}
	return runFoDashboard(
		"Build/ruledoc:go build -o bin/ruledoc ./cmd/ruledoc",
		"Test/unit:go test -json -cover ./...",
		"Lint/vet:go vet ./...",
		"Lint/gofmt:gofmt -l .",
		"Lint/staticcheck:golangci-lint run --allow-parallel-runners --enable-only staticcheck --output.sarif.path=stdout ./...",
	)
}

// Qa runs race detection, the full linter set and govulncheck.
func Qa() error {
	if cli() {
		fmt.Println("═══ Full QA ═══")
		return runSequential(
			step{"Build", "go", []string{"build", "./..."}},
			step{"Race", "go", []string{"test", "-race", "-timeout=5m", "./..."}},
			step{"Golangci-lint", "golangci-lint", []string{"run", "./..."}},
			step{"Govulncheck", "govulncheck", []string{"./..."}},
		)
	}
	return runFoDashboard(
		"Build/compile:go build ./...",
		"Test/race:go test -race -json -timeout=5m ./...",
		"Lint/gosec:golangci-lint run --allow-parallel-runners --enable-only gosec --output.sarif.path=stdout ./...",
		"Lint/errcheck:golangci-lint run --allow-parallel-runners --enable-only errcheck --output.sarif.path=stdout ./...",
		"Lint/revive:golangci-lint run --allow-parallel-runners --enable-only revive --output.sarif.path=stdout ./...",
		"Security/govulncheck:govulncheck ./...",
	)
}

// Docs renders the example catalog with the example template.
func Docs() error {
	return runSequential(step{"Docs", "go", []string{
		"run", "./cmd/ruledoc",
		"examples/templates", "build/docs",
		"--catalog", "examples/constraints.yaml",
		"--sarif", "build/docs/run.sarif",
		"--summary",
	}})
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	for _, dir := range []string{"bin", "build"} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}

type step struct {
	name string
	cmd  string
	args []string
}

func runSequential(steps ...step) error {
	for _, s := range steps {
		fmt.Printf("→ %s\n", s.name)
		cmd := exec.Command(s.cmd, s.args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", s.name, err)
		}
	}
	return nil
}

func runFoDashboard(tasks ...string) error {
	foBin, err := exec.LookPath("fo")
	if err != nil {
		return fmt.Errorf("fo binary not found in PATH; rerun with CLI=1")
	}

	args := []string{"--dashboard"}
	for _, t := range tasks {
		args = append(args, "--task", t)
	}

	cmd := exec.Command(foBin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
