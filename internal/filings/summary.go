package filings

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/findata/internal/statement"
)

type filingSummary struct {
	Reports []summaryReport `xml:"MyReports>Report"`
}

type summaryReport struct {
	ShortName    string `xml:"ShortName"`
	LongName     string `xml:"LongName"`
	HtmlFileName string `xml:"HtmlFileName"`
	XmlFileName  string `xml:"XmlFileName"`
	MenuCategory string `xml:"MenuCategory"`
	Position     string `xml:"Position"`
}

// ParseFilingSummary decodes a FilingSummary.xml manifest into documents
// ordered by position. baseURL is the filing folder the R-files live in.
// Reports without a rendered file (the "All Reports" book) are dropped.
func ParseFilingSummary(data []byte, baseURL string) ([]Document, error) {
	var s filingSummary
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Manifests occasionally declare windows-1252; the fields used are ASCII.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode filing summary: %w", err)
	}

	baseURL = strings.TrimRight(baseURL, "/")
	docs := make([]Document, 0, len(s.Reports))
	for _, r := range s.Reports {
		name := strings.TrimSpace(r.HtmlFileName)
		if name == "" {
			name = strings.TrimSpace(r.XmlFileName)
		}
		if name == "" {
			continue
		}
		pos, _ := strconv.Atoi(strings.TrimSpace(r.Position))
		d := Document{
			Name:      name,
			ShortName: strings.TrimSpace(r.ShortName),
			LongName:  strings.TrimSpace(r.LongName),
			Category:  strings.TrimSpace(r.MenuCategory),
			Position:  pos,
		}
		if baseURL != "" {
			d.URL = baseURL + "/" + name
		}
		docs = append(docs, d)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Position < docs[j].Position })
	return docs, nil
}

// statementPatterns lists, per kind, title patterns in preference order.
// Every document is tried against the first pattern before any is tried
// against the second, so "operations" beats "comprehensive income".
var statementPatterns = map[statement.Kind][]*regexp.Regexp{
	statement.IncomeStatement: {
		regexp.MustCompile(`(?i)statements?\s+of\s+(consolidated\s+)?operations`),
		regexp.MustCompile(`(?i)income\s+statements?|statements?\s+of\s+(consolidated\s+)?(income|earnings)`),
		regexp.MustCompile(`(?i)comprehensive\s+income|operations\s+and\s+comprehensive`),
	},
	statement.BalanceSheet: {
		regexp.MustCompile(`(?i)balance\s+sheets?`),
		regexp.MustCompile(`(?i)statements?\s+of\s+(consolidated\s+)?financial\s+(position|condition)`),
		regexp.MustCompile(`(?i)financial\s+(position|condition)`),
	},
	statement.CashFlow: {
		regexp.MustCompile(`(?i)statements?\s+of\s+(consolidated\s+)?cash\s+flows?`),
		regexp.MustCompile(`(?i)cash\s+flows?`),
	},
}

var parenthetical = regexp.MustCompile(`(?i)parenthetical`)

// candidate reports whether d may be a primary statement at all: it is not a
// parenthetical and, when the filer categorizes reports, it is filed under
// Statements rather than Notes, Policies or Details.
func candidate(d Document) bool {
	if parenthetical.MatchString(d.ShortName) || parenthetical.MatchString(d.LongName) {
		return false
	}
	if d.Category != "" && !strings.EqualFold(d.Category, "Statements") {
		return false
	}
	return true
}

// Classify returns the statement kind a document holds, judged by its
// titles.
func Classify(d Document) (statement.Kind, bool) {
	if !candidate(d) {
		return 0, false
	}
	for _, k := range statement.Kinds() {
		for _, re := range statementPatterns[k] {
			if re.MatchString(d.ShortName) || re.MatchString(d.LongName) {
				return k, true
			}
		}
	}
	return 0, false
}

// MatchDocument picks the document holding kind out of one filing's
// documents.
func MatchDocument(docs []Document, kind statement.Kind) (Document, bool) {
	for _, re := range statementPatterns[kind] {
		for _, d := range docs {
			if !candidate(d) {
				continue
			}
			if re.MatchString(d.ShortName) || re.MatchString(d.LongName) {
				return d, true
			}
		}
	}
	return Document{}, false
}

// FindStatementDocument returns the URL of the kind statement in the most
// recent filing of form that has one. Records are expected most recent first
// with Documents already populated.
func FindStatementDocument(records []FilingRecord, form string, kind statement.Kind) (string, error) {
	matching, err := Select(records, form)
	if err != nil {
		return "", err
	}
	for _, r := range matching {
		if d, ok := MatchDocument(r.Documents, kind); ok {
			if d.URL != "" {
				return d.URL, nil
			}
			return r.BaseURL + "/" + d.Name, nil
		}
	}
	return "", &DocumentNotFoundError{
		Form:      matching[0].Form,
		Kind:      kind,
		Accession: matching[0].AccessionNumber,
	}
}
