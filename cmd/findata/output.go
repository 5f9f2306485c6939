package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seenimoa/findata/internal/statement"
)

// printer writes tab-aligned rows.
type printer struct {
	tw *tabwriter.Writer
	w  io.Writer
}

func (p *printer) row(cells ...string) {
	fmt.Fprintln(p.tw, strings.Join(cells, "\t"))
}

// line writes text outside the table alignment.
func (p *printer) line(s string) {
	p.tw.Flush()
	fmt.Fprintln(p.w, s)
}

// render prints v as JSON when --json is set, otherwise through table.
func render(cmd *cobra.Command, v any, table func(*printer)) error {
	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	p := &printer{tw: tabwriter.NewWriter(w, 0, 2, 2, ' ', 0), w: w}
	table(p)
	return p.tw.Flush()
}

func printReported(p *printer, r *statement.AsReported) {
	p.line(r.Title)
	if r.Unit != "" {
		p.line(r.Unit)
	}
	p.row(append([]string{""}, r.Columns...)...)
	for _, row := range r.Rows {
		cells := []string{row.Label}
		for _, v := range row.Values {
			cells = append(cells, v.String())
		}
		p.row(cells...)
	}
}

func printStandard(p *printer, st *statement.StandardStatement) {
	p.line(fmt.Sprintf("%s (%s)", st.Kind.Title(), st.Period))
	p.row(append([]string{""}, st.Columns...)...)
	for _, row := range st.Rows {
		cells := []string{row.Name}
		for _, v := range row.Cells {
			cells = append(cells, v.String())
		}
		p.row(cells...)
	}
}

func money(f float64) string {
	if f == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}
