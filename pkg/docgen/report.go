package docgen

import (
	"path/filepath"

	"github.com/dkoosis/ruledoc/pkg/sarif"
)

// ToolName identifies the generator in SARIF output.
const ToolName = "ruledoc"

// RenderRuleID is the SARIF rule ID of a failed category page.
const RenderRuleID = "ruledoc-render"

// SARIF describes the run: every documented rule as a reporting descriptor
// and every failed page as an error result.
func (r *Result) SARIF() *sarif.Log {
	run := sarif.Run{
		Tool: sarif.Tool{Driver: sarif.Driver{Name: ToolName}},
		Invocations: []sarif.Invocation{{
			ExecutionSuccessful: r.ExitCode() == 0,
			ExitCode:            r.ExitCode(),
		}},
	}

	if r.Groups != nil {
		for _, group := range r.Groups.All() {
			for _, rule := range group.Rules {
				run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarif.Descriptor(rule))
			}
		}
	}

	for _, renderErr := range r.Errors {
		run.Results = append(run.Results, sarif.Result{
			RuleID:  RenderRuleID,
			Level:   "error",
			Message: sarif.Message{Text: renderErr.Error()},
			Locations: []sarif.Location{{
				PhysicalLocation: sarif.PhysicalLocation{
					ArtifactLocation: sarif.ArtifactLocation{URI: filepath.ToSlash(renderErr.Path)},
				},
			}},
		})
	}

	log := sarif.NewLog()
	log.Runs = append(log.Runs, run)
	return log
}
