package statement

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TTMPolicy controls the synthetic trailing-twelve-months column.
type TTMPolicy int

const (
	// TTMNone never adds a TTM column.
	TTMNone TTMPolicy = iota
	// TTMSumLastFour adds a leading TTM column to quarterly income and cash
	// flow statements. Each cell aggregates the row's four most recent
	// quarters (per the row's ttm setting) when they end at the statement's
	// latest period and span at most one year; otherwise it is Missing.
	TTMSumLastFour
)

// TTMColumn labels the synthetic column.
const TTMColumn = "TTM"

func (p TTMPolicy) String() string {
	switch p {
	case TTMNone:
		return "none"
	case TTMSumLastFour:
		return "sum_last_four"
	}
	return fmt.Sprintf("TTMPolicy(%d)", int(p))
}

// ParseTTMPolicy accepts "none" and "sum_last_four".
func ParseTTMPolicy(s string) (TTMPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return TTMNone, nil
	case "sum_last_four", "sum", "ttm":
		return TTMSumLastFour, nil
	}
	return 0, fmt.Errorf("unknown ttm policy %q (want none or sum_last_four)", s)
}

// StandardStatement is a fixed-schema statement: one row per schema line
// item, one column per period end date, most recent first.
type StandardStatement struct {
	Kind    Kind          `json:"kind"`
	Period  Period        `json:"period"`
	Columns []string      `json:"columns"`
	Rows    []StandardRow `json:"rows"`
}

// StandardRow is one canonical line item. Tag is the source tag that filled
// it, empty when none had data.
type StandardRow struct {
	Name  string  `json:"name"`
	Tag   string  `json:"tag,omitempty"`
	Cells []Value `json:"cells"`
}

// Row finds a row by name.
func (s *StandardStatement) Row(name string) (StandardRow, bool) {
	for _, r := range s.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return StandardRow{}, false
}

// Get returns the cell at (row, column), or Missing.
func (s *StandardStatement) Get(row, column string) Value {
	r, ok := s.Row(row)
	if !ok {
		return Missing
	}
	for i, c := range s.Columns {
		if c == column && i < len(r.Cells) {
			return r.Cells[i]
		}
	}
	return Missing
}

// StandardizationError is returned when not one schema tag had data for a
// statement.
type StandardizationError struct {
	Kind Kind
}

func (e *StandardizationError) Error() string {
	return fmt.Sprintf("no taxonomy tag matched for %s", e.Kind)
}

// Standardizer maps raw facts onto a Schema.
type Standardizer struct {
	schema *Schema
	ttm    TTMPolicy
}

// NewStandardizer returns a standardizer over schema (nil means
// DefaultSchema).
func NewStandardizer(schema *Schema, ttm TTMPolicy) *Standardizer {
	if schema == nil {
		schema = DefaultSchema()
	}
	return &Standardizer{schema: schema, ttm: ttm}
}

// Schema returns the schema in use.
func (s *Standardizer) Schema() *Schema { return s.schema }

// FromFacts extracts every tag the schema names for kind, using the frame
// pattern for kind and period, then standardizes.
func (s *Standardizer) FromFacts(payload *CompanyFacts, kind Kind, period Period) (*StandardStatement, error) {
	frame := FramesFor(kind, period)
	tags := s.schema.Tags(kind)
	raw := make(map[string][]RawFact, len(tags))
	for _, tag := range tags {
		raw[tag] = ExtractFacts(payload, tag, frame)
	}
	return s.Standardize(raw, kind, period)
}

// Standardize builds the statement for kind from facts keyed by tag. Keys may
// be bare concepts or taxonomy-qualified. Each row takes the first of its
// tags that has facts; rows with none stay in place, all Missing.
func (s *Standardizer) Standardize(raw map[string][]RawFact, kind Kind, period Period) (*StandardStatement, error) {
	specs := s.schema.Rows(kind)
	chosen := make([][]RawFact, len(specs))
	rows := make([]StandardRow, len(specs))

	matched := 0
	ends := map[string]bool{}
	for i, spec := range specs {
		rows[i].Name = spec.Name
		for _, tag := range spec.Tags {
			facts := lookup(raw, tag)
			if len(facts) == 0 {
				continue
			}
			rows[i].Tag = tag
			chosen[i] = facts
			matched++
			for _, f := range facts {
				ends[f.End] = true
			}
			break
		}
	}
	if matched == 0 {
		return nil, &StandardizationError{Kind: kind}
	}

	columns := make([]string, 0, len(ends))
	for e := range ends {
		columns = append(columns, e)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(columns)))

	withTTM := s.ttm == TTMSumLastFour && period == Quarter && !kind.Instant()
	out := &StandardStatement{Kind: kind, Period: period}
	if withTTM {
		out.Columns = append([]string{TTMColumn}, columns...)
	} else {
		out.Columns = columns
	}

	for i := range rows {
		byEnd := latestByEnd(chosen[i])
		cells := make([]Value, 0, len(out.Columns))
		if withTTM {
			cells = append(cells, trailingTwelve(byEnd, columns[0], specs[i].TTM))
		}
		for _, c := range columns {
			if f, ok := byEnd[c]; ok {
				cells = append(cells, Of(f.Value))
			} else {
				cells = append(cells, Missing)
			}
		}
		rows[i].Cells = cells
	}
	out.Rows = rows
	return out, nil
}

// lookup finds facts for tag, accepting either the bare or the qualified
// spelling as the map key.
func lookup(raw map[string][]RawFact, tag string) []RawFact {
	if f, ok := raw[tag]; ok && len(f) > 0 {
		return f
	}
	taxonomy, concept := SplitTag(tag)
	if f, ok := raw[taxonomy+":"+concept]; ok && len(f) > 0 {
		return f
	}
	if taxonomy == DefaultTaxonomy {
		return raw[concept]
	}
	return nil
}

// latestByEnd keeps one fact per end date, preferring the latest filing.
func latestByEnd(facts []RawFact) map[string]RawFact {
	out := make(map[string]RawFact, len(facts))
	for _, f := range facts {
		if prev, ok := out[f.End]; ok && prev.Filed > f.Filed {
			continue
		}
		out[f.End] = f
	}
	return out
}

// maxTTMSpan bounds the window four quarters may cover. Retail 52/53-week
// years run a few days past 365.
const maxTTMSpan = 371 * 24 * time.Hour

// trailingTwelve aggregates the four most recent quarters when they end at
// latest and fit inside a year.
func trailingTwelve(byEnd map[string]RawFact, latest string, agg Aggregation) Value {
	if agg == AggregateNone || len(byEnd) < 4 {
		return Missing
	}
	ends := make([]string, 0, len(byEnd))
	for e := range byEnd {
		ends = append(ends, e)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ends)))
	if ends[0] != latest {
		return Missing
	}
	last4 := ends[:4]

	newest, err := time.Parse("2006-01-02", last4[0])
	if err != nil {
		return Missing
	}
	oldest := byEnd[last4[3]]
	from := oldest.Start
	if from == "" {
		return Missing
	}
	start, err := time.Parse("2006-01-02", from)
	if err != nil || newest.Sub(start) > maxTTMSpan {
		return Missing
	}

	sum := 0.0
	for _, e := range last4 {
		sum += byEnd[e].Value
	}
	if agg == AggregateMean {
		return Of(sum / 4)
	}
	return Of(sum)
}
