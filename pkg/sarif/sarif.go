// Package sarif emits SARIF logs describing a documentation run: the rules
// that were documented and the category pages that failed to render.
package sarif

import (
	"encoding/json"
	"io"

	"github.com/dkoosis/ruledoc/pkg/catalog"
)

// Version is the SARIF schema version.
const Version = "2.1.0"

// Schema is the SARIF JSON schema location.
const Schema = "https://json.schemastore.org/sarif-2.1.0.json"

// Log is the top-level SARIF structure.
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema,omitempty"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single generation run.
type Run struct {
	Tool        Tool         `json:"tool"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Results     []Result     `json:"results,omitempty"`
}

// Tool describes the generator.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver describes the tool's identity and the rules it knows about.
type Driver struct {
	Name           string                `json:"name"`
	Version        string                `json:"version,omitempty"`
	InformationURI string                `json:"informationUri,omitempty"`
	Rules          []ReportingDescriptor `json:"rules,omitempty"`
}

// ReportingDescriptor is the SARIF form of a catalog rule.
type ReportingDescriptor struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *Message                `json:"shortDescription,omitempty"`
	MessageStrings       map[string]Message      `json:"messageStrings,omitempty"`
	DefaultConfiguration *ReportingConfiguration `json:"defaultConfiguration,omitempty"`
	Properties           map[string]any          `json:"properties,omitempty"`
}

// ReportingConfiguration carries a rule's default level.
type ReportingConfiguration struct {
	Level string `json:"level,omitempty"`
}

// Invocation records how the run ended.
type Invocation struct {
	ExecutionSuccessful bool `json:"executionSuccessful"`
	ExitCode            int  `json:"exitCode"`
}

// Result is a single failure.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level,omitempty"` // error, warning, note
	Message   Message    `json:"message"`
	Locations []Location `json:"locations,omitempty"`
}

// Message contains text.
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result applies.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation describes a file location.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
}

// ArtifactLocation describes a file path.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// NewLog creates a new SARIF log with default values.
func NewLog() *Log {
	return &Log{
		Version: Version,
		Schema:  Schema,
		Runs:    []Run{},
	}
}

// Level maps a rule severity to a SARIF level.
func Level(s catalog.Severity) string {
	switch s {
	case catalog.SeverityError, catalog.SeverityCancel:
		return "error"
	case catalog.SeverityWarning:
		return "warning"
	case catalog.SeverityInfo:
		return "note"
	}
	return "none"
}

// Descriptor converts a catalog rule. Rules without an ID are keyed by name.
func Descriptor(rule *catalog.Rule) ReportingDescriptor {
	id := rule.ID
	if id == "" {
		id = rule.Name
	}
	d := ReportingDescriptor{
		ID:                   id,
		Name:                 rule.Name,
		DefaultConfiguration: &ReportingConfiguration{Level: Level(rule.Severity)},
	}
	if rule.Description != "" {
		d.ShortDescription = &Message{Text: rule.Description}
	}
	if rule.Message != "" {
		d.MessageStrings = map[string]Message{"default": {Text: rule.Message}}
	}
	if cat := catalog.PrimaryCategoryOf(rule); cat != nil {
		d.Properties = map[string]any{"category": cat.Path}
	}
	return d
}

// Encoder wraps a JSON encoder with SARIF-friendly defaults.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an indented JSON encoder for SARIF logs.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &Encoder{enc: enc}
}

// Encode writes the SARIF log.
func (e *Encoder) Encode(log *Log) error {
	return e.enc.Encode(log)
}
