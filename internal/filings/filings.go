// Package filings turns EDGAR submission indexes and FilingSummary manifests
// into filing records, and locates the document holding a given financial
// statement inside a filing.
package filings

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/findata/internal/statement"
)

// ArchivesRoot is the EDGAR archive path every filing lives under.
const ArchivesRoot = "https://www.sec.gov/Archives/edgar/data"

// Common form types.
const (
	FormAnnual    = "10-K"
	FormQuarterly = "10-Q"
)

// FormFor maps a reporting period to the form that carries it.
func FormFor(p statement.Period) string {
	switch p {
	case statement.Annual:
		return FormAnnual
	case statement.Quarter:
		return FormQuarterly
	}
	return FormAnnual
}

// FilingRecord is one regulatory submission.
type FilingRecord struct {
	CIK             string     `json:"cik"`
	Form            string     `json:"form"`
	AccessionNumber string     `json:"accession_number"`
	FilingDate      string     `json:"filing_date"`
	ReportDate      string     `json:"report_date,omitempty"`
	PrimaryDocument string     `json:"primary_document,omitempty"`
	Description     string     `json:"description,omitempty"`
	BaseURL         string     `json:"base_url"`
	Documents       []Document `json:"documents,omitempty"`
}

// PrimaryURL is the URL of the filing's main document.
func (r FilingRecord) PrimaryURL() string {
	if r.PrimaryDocument == "" {
		return ""
	}
	return r.BaseURL + "/" + r.PrimaryDocument
}

// SummaryURL is the URL of the filing's FilingSummary.xml manifest.
func (r FilingRecord) SummaryURL() string {
	return r.BaseURL + "/FilingSummary.xml"
}

// Document is one rendered report inside a filing (an R-file).
type Document struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name,omitempty"`
	Category  string `json:"category,omitempty"`
	Position  int    `json:"position"`
	URL       string `json:"url"`
}

// IndexSource fetches the raw submissions index for a 10-digit CIK.
type IndexSource interface {
	FetchFilingIndex(ctx context.Context, cik string) ([]byte, error)
}

// ArchiveURL builds the folder URL for a filing. EDGAR paths use the CIK
// without leading zeros and the accession number without dashes.
func ArchiveURL(cik, accession string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(cik), "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return fmt.Sprintf("%s/%s/%s", ArchivesRoot, trimmed, strings.ReplaceAll(accession, "-", ""))
}

// --- Errors ---

// FilingNotFoundError is returned when no filing of the requested form
// exists for a company.
type FilingNotFoundError struct {
	CIK  string
	Form string
}

func (e *FilingNotFoundError) Error() string {
	if e.CIK == "" {
		return fmt.Sprintf("no %s filing found", e.Form)
	}
	return fmt.Sprintf("no %s filing found for CIK %s", e.Form, e.CIK)
}

// DocumentNotFoundError is returned when filings of the form exist but none
// of their documents is the requested statement.
type DocumentNotFoundError struct {
	Form      string
	Kind      statement.Kind
	Accession string
}

func (e *DocumentNotFoundError) Error() string {
	if e.Accession == "" {
		return fmt.Sprintf("no %s document found in %s filings", e.Kind, e.Form)
	}
	return fmt.Sprintf("no %s document found in %s filing %s", e.Kind, e.Form, e.Accession)
}
