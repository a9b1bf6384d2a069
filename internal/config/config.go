// Package config defines the JSON-serializable job configuration for the
// cleanup generator: a source, a parser with a free-form options bag, the
// statement generator, and the output file. configs/merchant_cleanup.json
// spells out the defaults.
//
// Example:
//
//	{
//	  "job":       "merchant_cleanup",
//	  "source":    { "kind": "file", "file": { "path": "product_issues.csv" } },
//	  "parser":    { "kind": "csv", "options": { "column": "Item ID" } },
//	  "generator": { "table": "products", "key_column": "id" },
//	  "output":    { "path": "merchant_cleanup.sql" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	// DefaultJob labels metrics when the config does not name a job.
	DefaultJob = "merchant_cleanup"
	// DefaultInputPath is the flagged-issues export read when nothing else is given.
	DefaultInputPath = "product_issues.csv"
	// DefaultOutputPath is the SQL file written in the working directory.
	DefaultOutputPath = "merchant_cleanup.sql"
	// DefaultColumn is the export column holding product primary keys.
	DefaultColumn = "Item ID"
	// DefaultTable is the table the UPDATE statements target.
	DefaultTable = "products"
	// DefaultKeyColumn is the column matched against the ID tuple.
	DefaultKeyColumn = "id"
)

// Job describes a single cleanup run.
type Job struct {
	// Job names the run for metrics labeling.
	Job string `json:"job"`

	Source    Source    `json:"source"`
	Parser    Parser    `json:"parser"`
	Generator Generator `json:"generator"`
	Output    Output    `json:"output"`
}

// Source identifies where the flagged-issues export comes from.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// Parser selects how the export is parsed.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   column (string), comma (string), trim_space (bool), numeric (bool),
	//   lazy_quotes (bool)
	Options Options `json:"options"`
}

// Generator configures statement rendering.
type Generator struct {
	Table     string `json:"table"`
	KeyColumn string `json:"key_column"`
}

// Output configures the SQL file sink.
type Output struct {
	Path string `json:"path"`
}

// Default returns the job the generator runs when no config file is given.
func Default() Job {
	return Job{
		Job:    DefaultJob,
		Source: Source{Kind: "file", File: SourceFile{Path: DefaultInputPath}},
		Parser: Parser{Kind: "csv", Options: Options{
			"column":      DefaultColumn,
			"comma":       ",",
			"trim_space":  false,
			"numeric":     false,
			"lazy_quotes": true,
		}},
		Generator: Generator{Table: DefaultTable, KeyColumn: DefaultKeyColumn},
		Output:    Output{Path: DefaultOutputPath},
	}
}

// Load reads a job file from path and overlays it onto Default, so a config
// file only needs to name the fields it changes.
func Load(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	j := Default()
	defaults := j.Parser.Options
	if err := json.NewDecoder(f).Decode(&j); err != nil {
		return Job{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	for k, v := range defaults {
		if _, ok := j.Parser.Options[k]; !ok {
			j.Parser.Options[k] = v
		}
	}
	return j, nil
}

// Options is a small helper to fetch typed values from a decoded JSON object.
// Missing keys and values of an unexpected type yield the supplied default.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null "options" object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
