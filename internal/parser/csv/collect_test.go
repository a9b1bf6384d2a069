package csv_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"

	"merchantcleanup/internal/datasource/file"
	"merchantcleanup/internal/idset"
	pcsv "merchantcleanup/internal/parser/csv"
)

func collect(t *testing.T, in string, opt pcsv.Options) (*idset.Set, pcsv.Stats, error) {
	t.Helper()
	return pcsv.CollectColumn(context.Background(), strings.NewReader(in), opt)
}

func TestCollectColumn_DeduplicatesIDs(t *testing.T) {
	t.Parallel()

	in := "Item ID,Issue\n5,bad title\n3,bad description\n5,bad image\n"
	ids, st, err := collect(t, in, pcsv.Options{})
	require.NoError(t, err)

	assert.Equal(t, "(3, 5)", ids.Render(idset.Lexical))
	assert.Equal(t, pcsv.Stats{Rows: 3, Duplicates: 1}, st)
}

func TestCollectColumn_HeaderOnly(t *testing.T) {
	t.Parallel()

	ids, st, err := collect(t, "Item ID,Issue\n", pcsv.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, ids.Len())
	assert.Equal(t, 0, st.Rows)
}

func TestCollectColumn_ColumnNotFirst(t *testing.T) {
	t.Parallel()

	in := "Merchant,Item ID,Reason\n" +
		"acme,\"1001\",\"said \"\"Book\"\", flagged\"\n" +
		"acme,1002,\"multi\nline reason\"\n"
	ids, _, err := collect(t, in, pcsv.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002"}, ids.Sorted(idset.Lexical))
}

func TestCollectColumn_StripsBOMAndHeaderSpace(t *testing.T) {
	t.Parallel()

	in := "\ufeff Item ID ,Issue\n9,x\n"
	ids, _, err := collect(t, in, pcsv.Options{})
	require.NoError(t, err)
	assert.True(t, ids.Has("9"))
}

func TestCollectColumn_DuplicateHeaderFirstWins(t *testing.T) {
	t.Parallel()

	ids, _, err := collect(t, "Item ID,Item ID\n1,2\n", pcsv.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids.Sorted(idset.Lexical))
}

func TestCollectColumn_Options(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		opt     pcsv.Options
		want    string
		order   idset.Order
		skipped int
	}{
		{
			name: "custom_column_and_comma",
			in:   "sku;name\nA-1;x\nB-2;y\n",
			opt:  pcsv.Options{Column: "sku", Comma: ';'},
			want: "(A-1, B-2)",
		},
		{
			name: "values_kept_verbatim_by_default",
			in:   "Item ID\n 7\n7\n",
			want: "( 7, 7)",
		},
		{
			name: "trim_space_merges_padded_ids",
			in:   "Item ID\n 7\n7 \n",
			opt:  pcsv.Options{TrimSpace: true},
			want: "(7)",
		},
		{
			name: "lazy_quotes_accepts_bare_quotes",
			in:   "Item ID,Reason\n5,He said \"hi\" book\n6,ok\n",
			opt:  pcsv.Options{LazyQuotes: true},
			want: "(5, 6)",
		},
		{
			name:    "numeric_drops_non_numeric",
			in:      "Item ID\n10\nabc\n9\n\"\"\n10\n",
			opt:     pcsv.Options{Numeric: true},
			order:   idset.Numeric,
			want:    "(9, 10)",
			skipped: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ids, st, err := collect(t, tc.in, tc.opt)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids.Render(tc.order))
			assert.Equal(t, tc.skipped, st.Skipped)
		})
	}
}

func TestCollectColumn_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		in        string
		wantErrIs error
		contains  string
	}{
		{name: "empty_input", in: "", wantErrIs: io.EOF, contains: "read csv header"},
		{name: "missing_column", in: "ID,Issue\n1,x\n", wantErrIs: pcsv.ErrMissingColumn, contains: `"Item ID"`},
		{name: "short_row", in: "Issue,Item ID\n1,2\nonly\n", wantErrIs: pcsv.ErrShortRow, contains: "line 3"},
		{name: "bare_quote_strict", in: "Item ID\na\"b\n", contains: "parse csv"},
		{name: "invalid_utf8_id", in: "Item ID\n1\xff2\n", wantErrIs: encoding.ErrInvalidUTF8, contains: "after line 1"},
		{name: "invalid_utf8_other_column", in: "Item ID,Reason\n4,ok\n5,bad\xc3\n", wantErrIs: encoding.ErrInvalidUTF8, contains: "after line 2"},
		{name: "invalid_utf8_header", in: "Item\xff ID\n1\n", wantErrIs: encoding.ErrInvalidUTF8, contains: "read csv header"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := collect(t, tc.in, pcsv.Options{})
			require.Error(t, err)
			if tc.wantErrIs != nil {
				assert.True(t, errors.Is(err, tc.wantErrIs), "errors.Is(%v, %v)", err, tc.wantErrIs)
			}
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestCollectColumn_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := pcsv.CollectColumn(ctx, strings.NewReader("Item ID\n1\n"), pcsv.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "product_issues.csv")
	require.NoError(t, os.WriteFile(p, []byte("Item ID\n2\n1\n2\n"), 0o644))

	ids, st, err := pcsv.CollectFile(context.Background(), file.NewLocal(p), pcsv.Options{})
	require.NoError(t, err)
	assert.Equal(t, "(1, 2)", ids.Render(idset.Lexical))
	assert.Equal(t, 3, st.Rows)

	_, _, err = pcsv.CollectFile(context.Background(), file.NewLocal(filepath.Join(dir, "nope.csv")), pcsv.Options{})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCollectFile_Sample(t *testing.T) {
	t.Parallel()

	src := file.NewLocal(filepath.Join("..", "..", "..", "testdata", "product_issues_sample.csv"))

	ids, st, err := pcsv.CollectFile(context.Background(), src, pcsv.Options{})
	require.NoError(t, err)
	assert.Equal(t, "(1042, 311, 87)", ids.Render(idset.Lexical))
	assert.Equal(t, "(87, 311, 1042)", ids.Render(idset.Numeric))
	assert.Equal(t, pcsv.Stats{Rows: 4, Duplicates: 1}, st)
}
