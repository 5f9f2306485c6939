package statement

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// AsReported is a statement exactly as the filer laid it out in a rendered
// R-file: filer labels, filer ordering, one column per reported period.
type AsReported struct {
	Title   string        `json:"title"`
	Unit    string        `json:"unit,omitempty"`
	Columns []string      `json:"columns"`
	Rows    []ReportedRow `json:"rows"`
}

// ReportedRow is one line of an as-reported table. Section headings carry
// no values.
type ReportedRow struct {
	Label  string  `json:"label"`
	Values []Value `json:"values"`
}

// Heading reports whether the row is a section heading.
func (r ReportedRow) Heading() bool {
	for _, v := range r.Values {
		if v.Valid {
			return false
		}
	}
	return true
}

var (
	footnoteRef = regexp.MustCompile(`\[\d+\]`)
	spaces      = regexp.MustCompile(`\s+`)
	scaleWord   = regexp.MustCompile(`(?i)\$\s*in\s+(thousands|millions|billions)`)
)

// ParseReport parses an R-file (R2.htm and friends) into an AsReported table.
// Parenthesized amounts are negative; blank and non-numeric cells are
// Missing.
func ParseReport(data []byte) (*AsReported, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse report html: %w", err)
	}

	table := doc.Find("table.report").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse report: no table found")
	}

	out := &AsReported{}
	var headerRows []*goquery.Selection
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// Footnote tables nest inside the report table.
		if !tr.Closest("table").IsSelection(table) || tr.Find("table").Length() > 0 {
			return
		}
		if tr.ChildrenFiltered("th").Length() > 0 {
			headerRows = append(headerRows, tr)
			return
		}
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		label := cleanText(cells.First().Text())
		if label == "" {
			return
		}
		row := ReportedRow{Label: label}
		cells.Slice(1, goquery.ToEnd).Each(func(_ int, td *goquery.Selection) {
			row.Values = append(row.Values, ParseAmount(td.Text()))
		})
		out.Rows = append(out.Rows, row)
	})

	if len(headerRows) > 0 {
		out.Title, out.Unit = parseCaption(headerRows[0].ChildrenFiltered("th").First())
		out.Columns = parseColumns(headerRows)
	}

	if n := len(out.Columns); n > 0 {
		for i := range out.Rows {
			out.Rows[i].Values = fit(out.Rows[i].Values, n)
		}
	}
	return out, nil
}

// parseCaption splits the top-left header cell. Its lines are separated by
// <br>: the first is the title, the rest describe units.
func parseCaption(th *goquery.Selection) (title, unit string) {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if s := cleanText(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			cur.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range th.Nodes {
		walk(n)
	}
	flush()

	if len(parts) == 0 {
		return "", ""
	}
	title = parts[0]
	// The currency tail ("- USD ($)") belongs with the unit line.
	if i := strings.LastIndex(title, " - "); i > 0 {
		unit = strings.TrimSpace(title[i+3:])
		title = strings.TrimSpace(title[:i])
	}
	if len(parts) > 1 {
		rest := strings.Join(parts[1:], "; ")
		if unit != "" {
			unit += "; " + rest
		} else {
			unit = rest
		}
	}
	return title, unit
}

// parseColumns reads period headers. With two header rows the second holds
// one date per column and the first holds spanning labels ("12 Months
// Ended"), which are prefixed onto the dates they span.
func parseColumns(rows []*goquery.Selection) []string {
	first := rows[0].ChildrenFiltered("th").Slice(1, goquery.ToEnd)
	if len(rows) == 1 {
		var cols []string
		first.Each(func(_ int, th *goquery.Selection) {
			cols = append(cols, cleanText(th.Text()))
		})
		return cols
	}

	var spans []string
	first.Each(func(_ int, th *goquery.Selection) {
		n, _ := strconv.Atoi(th.AttrOr("colspan", "1"))
		if n < 1 {
			n = 1
		}
		label := cleanText(th.Text())
		for i := 0; i < n; i++ {
			spans = append(spans, label)
		}
	})

	var cols []string
	rows[len(rows)-1].ChildrenFiltered("th").Each(func(i int, th *goquery.Selection) {
		col := cleanText(th.Text())
		if i < len(spans) && spans[i] != "" {
			col = spans[i] + " " + col
		}
		cols = append(cols, col)
	})
	return cols
}

// ParseAmount parses a rendered amount: "$ 1,234", "(56)", "0.5 %".
func ParseAmount(s string) Value {
	s = cleanText(footnoteRef.ReplaceAllString(s, ""))
	if s == "" {
		return Missing
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "", "%", "").Replace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "-" || s == "\u2014" {
		return Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	if neg {
		f = -f
	}
	return Of(f)
}

// Scale returns the multiplier for monetary cells implied by the unit
// caption ("$ in Millions" is 1e6). It is 1 when no scale is stated.
func (r *AsReported) Scale() float64 {
	m := scaleWord.FindStringSubmatch(r.Unit)
	if m == nil {
		return 1
	}
	switch strings.ToLower(m[1]) {
	case "thousands":
		return 1e3
	case "millions":
		return 1e6
	case "billions":
		return 1e9
	}
	return 1
}

func cleanText(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(strings.ReplaceAll(s, "\u00a0", " "), " "))
}

func fit(vals []Value, n int) []Value {
	if len(vals) > n {
		return vals[:n]
	}
	for len(vals) < n {
		vals = append(vals, Missing)
	}
	return vals
}
