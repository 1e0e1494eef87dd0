package models

import "time"

// URLAnalysis accumulates the SEO findings for a single URL. A worker owns
// the record it is building; ownership transfers to the aggregator once the
// record is emitted on the results channel.
type URLAnalysis struct {
	URL             string
	StatusCode      int           // 0 = transport failure (no HTTP response)
	ResponseTime    time.Duration // request start to terminal outcome
	Title           string
	MetaDescription string
	H1Tags          []string // document order, duplicates preserved
	CanonicalURL    string
	RobotsMeta      string
	OGTitle         string
	OGDescription   string
	HasSchemaMarkup bool
	Errors          []string
	Warnings        []string
}

// NewFailureAnalysis builds a record for a URL that never produced inspectable
// content. The single error entry is the only diagnostic; content fields stay
// at their zero values.
func NewFailureAnalysis(url string, statusCode int, responseTime time.Duration, reason string) *URLAnalysis {
	return &URLAnalysis{
		URL:          url,
		StatusCode:   statusCode,
		ResponseTime: responseTime,
		Errors:       []string{reason},
	}
}

// AddError appends an error finding
func (a *URLAnalysis) AddError(msg string) {
	a.Errors = append(a.Errors, msg)
}

// AddWarning appends a warning finding
func (a *URLAnalysis) AddWarning(msg string) {
	a.Warnings = append(a.Warnings, msg)
}

// Succeeded reports whether the URL returned HTTP 200 and was inspected
func (a *URLAnalysis) Succeeded() bool {
	return a.StatusCode == 200
}

// TitleLength returns the character count of the extracted title
func (a *URLAnalysis) TitleLength() int {
	return len([]rune(a.Title))
}

// DescriptionLength returns the character count of the extracted meta description
func (a *URLAnalysis) DescriptionLength() int {
	return len([]rune(a.MetaDescription))
}

// IssueCount pairs a finding message with its occurrence count across a run
type IssueCount struct {
	Message string
	Count   int
}

// Summary is the aggregate view of one audit run. Computed once from a
// finalized record set, never mutated afterward.
type Summary struct {
	TotalURLs       int
	SuccessfulURLs  int
	ErrorURLs       int
	SuccessRate     float64 // percent, 0 when TotalURLs is 0
	AvgResponseTime time.Duration
	TotalErrors     int
	TotalWarnings   int
	CommonErrors    []IssueCount // top 5 by frequency, first-seen tie-break
	CommonWarnings  []IssueCount // top 5 by frequency, first-seen tie-break
}

// AuditDBEntry stores the outcome of auditing a URL in the state database
type AuditDBEntry struct {
	Status      AuditStatus `json:"status"`
	StatusCode  int         `json:"status_code"`
	Errors      []string    `json:"errors,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	RunID       string      `json:"run_id"`       // UUID of the run that produced this entry
	LastChecked time.Time   `json:"last_checked"` // Timestamp of the last audit attempt
}
