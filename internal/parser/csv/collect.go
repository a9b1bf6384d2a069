// Package csv reads a flagged-issues export and collects the distinct values
// of a single column. Rows are streamed through encoding/csv; only the set of
// IDs is kept in memory.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"merchantcleanup/internal/datasource"
	"merchantcleanup/internal/idset"
)

var (
	// ErrMissingColumn is returned when the header row lacks the ID column.
	ErrMissingColumn = errors.New("csv: missing column")
	// ErrShortRow is returned when a data row ends before the ID column.
	ErrShortRow = errors.New("csv: row has no value for column")
)

// Options configures column collection. Zero values fall back to defaults.
type Options struct {
	// Column is the header name to collect. Defaults to "Item ID".
	Column string

	// Comma is the field delimiter. Defaults to ','.
	Comma rune

	// TrimSpace trims surrounding whitespace from each collected value.
	TrimSpace bool

	// Numeric admits only IDs made of ASCII digits; others are counted in
	// Stats.Skipped and dropped.
	Numeric bool

	// LazyQuotes accepts bare quotes inside unquoted fields, as free-text
	// export columns routinely contain them.
	LazyQuotes bool
}

// Stats summarizes a collection pass.
type Stats struct {
	Rows       int // data rows read
	Duplicates int // rows whose ID was already collected
	Skipped    int // rows dropped by the numeric filter
}

// skipLogLimit bounds per-row debug output on very dirty exports.
const skipLogLimit = 400

// CollectFile opens src and collects opt.Column from it. The source is
// closed before returning on every path.
func CollectFile(ctx context.Context, src datasource.Source, opt Options) (*idset.Set, Stats, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	return CollectColumn(ctx, rc, opt)
}

// CollectColumn reads CSV from r and returns the distinct values found in
// opt.Column across all data rows.
//
// The input must be valid UTF-8: a leading byte order mark is dropped and
// any invalid sequence aborts the pass with encoding.ErrInvalidUTF8. The
// first record must be a header that contains the column (compared after
// trimming whitespace). There is no per-row recovery; the first parse error
// or short row aborts the pass.
func CollectColumn(ctx context.Context, r io.Reader, opt Options) (*idset.Set, Stats, error) {
	column := opt.Column
	if column == "" {
		column = "Item ID"
	}

	dec := transform.NewReader(r, transform.Chain(
		encoding.UTF8Validator,
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
	))
	cr := csv.NewReader(dec)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	// Width is irrelevant beyond the ID column, which is checked per row.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read csv header: %w", err)
	}
	idx := columnIndex(header, column)
	if idx < 0 {
		return nil, Stats{}, fmt.Errorf("%w %q in header %q", ErrMissingColumn, column, header)
	}

	ids := idset.New()
	var st Stats
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return nil, st, fmt.Errorf("decode csv after line %d: %w", line, err)
		}
		if err != nil {
			return nil, st, fmt.Errorf("parse csv: %w", err)
		}
		line, _ = cr.FieldPos(0)
		st.Rows++

		if idx >= len(row) {
			return nil, st, fmt.Errorf("line %d: %w %q", line, ErrShortRow, column)
		}
		v := row[idx]
		if opt.TrimSpace {
			v = strings.TrimSpace(v)
		}
		if opt.Numeric && !idset.IsNumeric(v) {
			if st.Skipped < skipLogLimit {
				slog.Debug("skipping non-numeric id", "line", line, "id", v)
			}
			st.Skipped++
			continue
		}
		if !ids.Add(v) {
			st.Duplicates++
		}
	}

	return ids, st, nil
}

// columnIndex returns the position of the first header cell equal to name,
// or -1.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
