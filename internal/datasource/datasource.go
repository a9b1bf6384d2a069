// Package datasource abstracts where the flagged-issues export is read from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw bytes of an export.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
