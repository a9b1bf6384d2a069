// Package cleanup runs one merchant cleanup job: collect the flagged product
// IDs, render the statement catalog for them, and write the SQL file.
//
// The run is a single forward pass. Any error aborts it; a partially written
// output file is not removed.
package cleanup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"merchantcleanup/internal/config"
	"merchantcleanup/internal/datasource/file"
	"merchantcleanup/internal/idset"
	"merchantcleanup/internal/metrics"
	outfile "merchantcleanup/internal/output/file"
	pcsv "merchantcleanup/internal/parser/csv"
	"merchantcleanup/internal/sqlgen"
)

// Summary reports what a run produced.
type Summary struct {
	Stats      pcsv.Stats
	UniqueIDs  int
	Tuple      string
	Statements []string
	Output     outfile.Result
}

// Run executes j and prints the two summary lines to stdout once the output
// file has been written.
func Run(ctx context.Context, j config.Job, stdout io.Writer) (Summary, error) {
	var sum Summary

	opts := j.Parser.Options
	numeric := opts.Bool("numeric", false)
	order := idset.Lexical
	if numeric {
		order = idset.Numeric
	}

	src := file.NewLocal(j.Source.File.Path)
	start := time.Now()
	ids, st, err := pcsv.CollectFile(ctx, src, pcsv.Options{
		Column:     opts.String("column", config.DefaultColumn),
		Comma:      opts.Rune("comma", ','),
		TrimSpace:  opts.Bool("trim_space", false),
		Numeric:    numeric,
		LazyQuotes: opts.Bool("lazy_quotes", true),
	})
	metrics.RecordStep(j.Job, "read", err, time.Since(start))
	if err != nil {
		return sum, fmt.Errorf("read %s: %w", src.Path(), err)
	}
	sum.Stats = st
	sum.UniqueIDs = ids.Len()
	metrics.RecordRow(j.Job, "rows", int64(st.Rows))
	metrics.RecordRow(j.Job, "duplicates", int64(st.Duplicates))
	metrics.RecordRow(j.Job, "skipped", int64(st.Skipped))
	metrics.RecordRow(j.Job, "unique_ids", int64(ids.Len()))
	slog.Debug("collected ids",
		"path", src.Path(),
		"rows", st.Rows,
		"unique", ids.Len(),
		"duplicates", st.Duplicates,
		"skipped", st.Skipped,
		"order", order.String(),
	)

	start = time.Now()
	sum.Tuple = ids.Render(order)
	sum.Statements = sqlgen.Generate(ids, sqlgen.Options{
		Table:     j.Generator.Table,
		KeyColumn: j.Generator.KeyColumn,
		Order:     order,
	})
	metrics.RecordStep(j.Job, "generate", nil, time.Since(start))
	metrics.RecordRow(j.Job, "statements", int64(len(sum.Statements)))

	start = time.Now()
	res, err := outfile.Write(j.Output.Path, sum.Statements)
	metrics.RecordStep(j.Job, "write", err, time.Since(start))
	if err != nil {
		return sum, err
	}
	sum.Output = res
	slog.Info("wrote statements",
		"path", res.Path,
		"statements", res.Lines,
		"bytes", res.Bytes,
		"xxh3", res.Digest,
	)

	if _, err := fmt.Fprintf(stdout, "Generated SQL for %d unique products.\nTarget IDs: %s\n", sum.UniqueIDs, sum.Tuple); err != nil {
		return sum, fmt.Errorf("print summary: %w", err)
	}
	return sum, nil
}
