// Package file writes generated statements to a local SQL file.
package file

import (
	"bufio"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"
)

// Result describes a completed write.
type Result struct {
	Path   string
	Lines  int
	Bytes  int64
	Digest string // xxh3-64 of the written bytes, 16 hex digits
}

// Write creates (or truncates) path and writes each line followed by "\n".
// The file is closed on every path; a failed close is reported as an error.
// A partially written file is left in place on failure.
func Write(path string, lines []string) (res Result, err error) {
	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output %s: %w", path, cerr)
		}
	}()

	h := xxh3.New()
	w := bufio.NewWriter(f)
	var n int64
	for _, line := range lines {
		for _, chunk := range []string{line, "\n"} {
			k, werr := w.WriteString(chunk)
			n += int64(k)
			if werr != nil {
				return Result{}, fmt.Errorf("write output %s: %w", path, werr)
			}
			_, _ = h.WriteString(chunk)
		}
	}
	if err := w.Flush(); err != nil {
		return Result{}, fmt.Errorf("flush output %s: %w", path, err)
	}

	return Result{
		Path:   path,
		Lines:  len(lines),
		Bytes:  n,
		Digest: formatDigest(h.Sum64()),
	}, nil
}

// digest returns the xxh3-64 digest of lines as Write would produce it.
func digest(lines []string) string {
	h := xxh3.New()
	for _, line := range lines {
		_, _ = h.WriteString(line)
		_, _ = h.WriteString("\n")
	}
	return formatDigest(h.Sum64())
}

func formatDigest(sum uint64) string { return fmt.Sprintf("%016x", sum) }
