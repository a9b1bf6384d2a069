// Command generate_sql reads a flagged product issues export and writes the
// merchant cleanup UPDATE statements for every flagged product to
// merchant_cleanup.sql.
//
// Usage:
//
//	generate_sql [-i product_issues.csv] [-o merchant_cleanup.sql] [--config job.json]
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("generate_sql failed", "err", err)
		os.Exit(1)
	}
}
