package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scryfall/internal/record"
)

// table prints aligned columns to the command's output.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	if len(header) > 0 {
		t.row(header...)
	}
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error { return t.tw.Flush() }

// printJSON writes v indented when --json is set and reports whether it
// did.
func printJSON(cmd *cobra.Command, v any) (bool, error) {
	if !rootOpts.JSON {
		return false, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func count(n int) string { return humanize.Comma(int64(n)) }

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(record.DateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
