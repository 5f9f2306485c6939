package statement

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// Aggregation says how a trailing-twelve-months cell is derived from four
// quarterly values.
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateMean Aggregation = "mean"
	AggregateNone Aggregation = "none"
)

// RowSpec is one canonical line item and the tags that can fill it.
type RowSpec struct {
	Name string      `yaml:"name"`
	Tags []string    `yaml:"tags"`
	TTM  Aggregation `yaml:"ttm,omitempty"`
}

// Schema maps each statement kind to its fixed, ordered rows.
type Schema struct {
	rows map[Kind][]RowSpec
}

var defaultSchema = mustLoadSchema(defaultSchemaYAML)

// DefaultSchema returns the built-in schema.
func DefaultSchema() *Schema { return defaultSchema }

func mustLoadSchema(data []byte) *Schema {
	s, err := LoadSchema(bytes.NewReader(data))
	if err != nil {
		panic("statement: embedded schema: " + err.Error())
	}
	return s
}

// LoadSchema reads a YAML schema. Every statement kind must be present with
// at least one row; row names must be unique within a kind and every row
// needs at least one tag.
func LoadSchema(r io.Reader) (*Schema, error) {
	var raw map[string][]RowSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	s := &Schema{rows: make(map[Kind][]RowSpec, len(raw))}
	for key, rows := range raw {
		kind, err := ParseKind(key)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		if _, dup := s.rows[kind]; dup {
			return nil, fmt.Errorf("schema: %s defined twice", kind)
		}
		seen := make(map[string]bool, len(rows))
		for i := range rows {
			row := &rows[i]
			row.Name = strings.TrimSpace(row.Name)
			if row.Name == "" {
				return nil, fmt.Errorf("schema: %s row %d has no name", kind, i+1)
			}
			if seen[row.Name] {
				return nil, fmt.Errorf("schema: %s row %q listed twice", kind, row.Name)
			}
			seen[row.Name] = true
			if len(row.Tags) == 0 {
				return nil, fmt.Errorf("schema: %s row %q has no tags", kind, row.Name)
			}
			switch row.TTM {
			case "":
				row.TTM = AggregateSum
			case AggregateSum, AggregateMean, AggregateNone:
			default:
				return nil, fmt.Errorf("schema: %s row %q: unknown ttm %q", kind, row.Name, row.TTM)
			}
		}
		s.rows[kind] = rows
	}

	for _, k := range Kinds() {
		if len(s.rows[k]) == 0 {
			return nil, fmt.Errorf("schema: no rows for %s", k)
		}
	}
	return s, nil
}

// LoadSchemaFile reads a YAML schema from path.
func LoadSchemaFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSchema(f)
}

// Rows returns kind's rows in order. The slice must not be modified.
func (s *Schema) Rows(kind Kind) []RowSpec { return s.rows[kind] }

// RowNames returns kind's row names in order.
func (s *Schema) RowNames(kind Kind) []string {
	rows := s.rows[kind]
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

// Tags returns every distinct tag referenced by kind, in first-use order.
func (s *Schema) Tags(kind Kind) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range s.rows[kind] {
		for _, t := range r.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
