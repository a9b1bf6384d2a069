package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config, e.g. "parser.options.column".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob performs static validation of a Job. It does not mutate j.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling",
		})
	}
	issues = append(issues, validateSource(j.Source)...)
	issues = append(issues, validateParser(j.Parser)...)
	issues = append(issues, validateGenerator(j.Generator)...)
	issues = append(issues, validateOutput(j.Output, j.Source)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q", s.Kind),
		})
	}

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch strings.TrimSpace(p.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	case "csv":
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q", p.Kind),
		})
	}

	if strings.TrimSpace(p.Options.String("column", "")) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.column",
			Message:  "csv parser requires the name of the ID column",
		})
	}
	if comma := p.Options.String("comma", ","); utf8.RuneCountInString(comma) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", comma),
		})
	} else if r := []rune(comma)[0]; r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma %q is not a valid CSV delimiter", comma),
		})
	}

	return issues
}

func validateGenerator(g Generator) []Issue {
	var issues []Issue

	if strings.TrimSpace(g.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "generator.table",
			Message:  "generator.table must not be empty",
		})
	} else if g.Table != DefaultTable {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "generator.table",
			Message:  fmt.Sprintf("statements target %q instead of %q", g.Table, DefaultTable),
		})
	}
	if strings.TrimSpace(g.KeyColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "generator.key_column",
			Message:  "generator.key_column must not be empty",
		})
	}

	return issues
}

func validateOutput(o Output, s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Path) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must not be empty",
		})
	}
	if s.File.Path != "" && filepath.Clean(o.Path) == filepath.Clean(s.File.Path) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must differ from source.file.path; the output file is overwritten",
		})
	}

	return issues
}
