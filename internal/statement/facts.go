package statement

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// CompanyFacts is the data.sec.gov companyfacts payload: every XBRL fact a
// company has filed, grouped by taxonomy and concept.
type CompanyFacts struct {
	CIK        int                                `json:"cik"`
	EntityName string                             `json:"entityName"`
	Facts      map[string]map[string]ConceptFacts `json:"facts"`
}

// ConceptFacts holds one concept's observations keyed by unit ("USD",
// "shares", "USD/shares").
type ConceptFacts struct {
	Label       string                `json:"label"`
	Description string                `json:"description"`
	Units       map[string][]FactUnit `json:"units"`
}

// FactUnit is one reported observation.
type FactUnit struct {
	Start string  `json:"start,omitempty"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

// ParseCompanyFacts decodes a companyfacts payload.
func ParseCompanyFacts(data []byte) (*CompanyFacts, error) {
	var cf CompanyFacts
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("decode company facts: %w", err)
	}
	return &cf, nil
}

// Taxonomies returns the taxonomy names present, sorted.
func (cf *CompanyFacts) Taxonomies() []string {
	if cf == nil {
		return nil
	}
	out := make([]string, 0, len(cf.Facts))
	for t := range cf.Facts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Concepts returns the concept names of a taxonomy, sorted.
func (cf *CompanyFacts) Concepts(taxonomy string) []string {
	if cf == nil {
		return nil
	}
	concepts := cf.Facts[taxonomy]
	out := make([]string, 0, len(concepts))
	for c := range concepts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DefaultTaxonomy is assumed for tags given without a prefix.
const DefaultTaxonomy = "us-gaap"

// SplitTag splits "taxonomy:Concept"; a bare concept gets DefaultTaxonomy.
func SplitTag(tag string) (taxonomy, concept string) {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[:i], tag[i+1:]
	}
	return DefaultTaxonomy, tag
}

// RawFact is one line-item observation pulled from a payload.
type RawFact struct {
	Tag          string  `json:"tag"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	Start        string  `json:"start,omitempty"`
	End          string  `json:"end"`
	Frame        string  `json:"frame"`
	Form         string  `json:"form,omitempty"`
	FiscalYear   int     `json:"fiscal_year,omitempty"`
	FiscalPeriod string  `json:"fiscal_period,omitempty"`
	Filed        string  `json:"filed,omitempty"`
}

// FramePattern selects which calendar frames count for a periodicity.
// Upstream attaches a frame to one canonical fact per period; everything
// else (restatements, comparatives) carries none or a different shape.
type FramePattern struct {
	re *regexp.Regexp
	// fyOnly additionally requires fiscal period "FY"; used for annual
	// instants, which share the Q4 frame with the fourth quarter.
	fyOnly bool
}

// Frame patterns.
var (
	AnnualFrames       = FramePattern{re: regexp.MustCompile(`^CY\d{4}$`)}
	QuarterlyFrames    = FramePattern{re: regexp.MustCompile(`^CY\d{4}Q[1-4]$`)}
	InstantFrames      = FramePattern{re: regexp.MustCompile(`^CY\d{4}Q[1-4]I$`)}
	AnnualInstantFrame = FramePattern{re: regexp.MustCompile(`^CY\d{4}Q[1-4]I$`), fyOnly: true}
)

// Match reports whether a fact's frame fits the pattern.
func (p FramePattern) Match(u FactUnit) bool {
	if p.re == nil || u.Frame == "" || !p.re.MatchString(u.Frame) {
		return false
	}
	return !p.fyOnly || u.FP == "FY"
}

func (p FramePattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// FramesFor picks the frame pattern for a statement kind and period.
func FramesFor(kind Kind, period Period) FramePattern {
	if kind.Instant() {
		if period == Annual {
			return AnnualInstantFrame
		}
		return InstantFrames
	}
	if period == Annual {
		return AnnualFrames
	}
	return QuarterlyFrames
}

// ExtractFacts returns the observations of tag whose frame matches frame,
// oldest first. A nil payload or an absent tag yields an empty slice.
func ExtractFacts(payload *CompanyFacts, tag string, frame FramePattern) []RawFact {
	out := []RawFact{}
	if payload == nil {
		return out
	}
	taxonomy, concept := SplitTag(tag)
	cf, ok := payload.Facts[taxonomy][concept]
	if !ok {
		return out
	}

	full := taxonomy + ":" + concept
	// One row holds one unit: the first unit, in preference order, that has
	// facts in frame.
	for _, unit := range unitOrder(cf.Units) {
		for _, u := range cf.Units[unit] {
			if !frame.Match(u) {
				continue
			}
			out = append(out, RawFact{
				Tag:          full,
				Value:        u.Val,
				Unit:         unit,
				Start:        u.Start,
				End:          u.End,
				Frame:        u.Frame,
				Form:         u.Form,
				FiscalYear:   u.FY,
				FiscalPeriod: u.FP,
				Filed:        u.Filed,
			})
		}
		if len(out) > 0 {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].End < out[j].End })
	return out
}

// preferredUnits lead the unit order; other units follow alphabetically.
var preferredUnits = []string{"USD", "USD/shares", "shares", "pure"}

func unitOrder(units map[string][]FactUnit) []string {
	out := make([]string, 0, len(units))
	for _, u := range preferredUnits {
		if _, ok := units[u]; ok {
			out = append(out, u)
		}
	}
	rest := make([]string, 0, len(units))
	for u := range units {
		if !slices.Contains(preferredUnits, u) {
			rest = append(rest, u)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// GetLatest returns the chronologically last fact. ok is false for an empty
// sequence.
func GetLatest(facts []RawFact) (RawFact, bool) {
	if len(facts) == 0 {
		return RawFact{}, false
	}
	return facts[len(facts)-1], true
}

// Value is a statement cell: an amount or the missing-value marker.
type Value struct {
	Amount float64
	Valid  bool
}

// Missing marks an absent value.
var Missing = Value{}

// Of wraps an amount.
func Of(amount float64) Value { return Value{Amount: amount, Valid: true} }

func (v Value) String() string {
	if !v.Valid {
		return "-"
	}
	if v.Amount == math.Trunc(v.Amount) && math.Abs(v.Amount) < 1e15 {
		return fmt.Sprintf("%.0f", v.Amount)
	}
	return fmt.Sprintf("%g", v.Amount)
}

// MarshalJSON renders Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Amount)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// LatestValue is GetLatest reduced to a cell value.
func LatestValue(facts []RawFact) Value {
	f, ok := GetLatest(facts)
	if !ok {
		return Missing
	}
	return Of(f.Value)
}
