package inspect

import (
	"fmt"
	"regexp"
	"strings"

	"seo-sitemap/pkg/models"
)

// Targeted pattern extraction over the raw page text. Deliberately not a
// conformant HTML parser: the fields below are the only things the audit
// needs, and real-world pages that would defeat these patterns (titles split
// across comments, attributes spanning quotes) are rare enough not to matter.
var (
	titleRe       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	descriptionRe = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`)
	h1Re          = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	innerTagRe    = regexp.MustCompile(`<[^>]+>`)
	canonicalRe   = regexp.MustCompile(`(?i)<link[^>]*rel=["']canonical["'][^>]*href=["']([^"']*)["']`)
	robotsMetaRe  = regexp.MustCompile(`(?i)<meta[^>]*name=["']robots["'][^>]*content=["']([^"']*)["']`)
	ogTitleRe     = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:title["'][^>]*content=["']([^"']*)["']`)
	ogDescRe      = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:description["'][^>]*content=["']([^"']*)["']`)
	schemaRe      = regexp.MustCompile(`(?i)application/ld\+json|microdata|@type`)
)

// Finding thresholds (character counts on the extracted text)
const (
	titleMaxLen       = 60
	titleMinLen       = 30
	descriptionMaxLen = 160
	descriptionMinLen = 120
)

// Inspect builds the analysis record for one fetched URL. Pure function of
// its inputs, no I/O: the body is supplied by the caller, never fetched here.
// Non-200 status or an empty body yields a record whose sole diagnostic is an
// error naming the condition; content rules run only on a 200 with a body.
func Inspect(url string, statusCode int, body string) *models.URLAnalysis {
	if statusCode != 200 {
		return models.NewFailureAnalysis(url, statusCode, 0, fmt.Sprintf("HTTP %d", statusCode))
	}
	if body == "" {
		return models.NewFailureAnalysis(url, statusCode, 0, "Empty response body")
	}

	analysis := &models.URLAnalysis{URL: url, StatusCode: statusCode}
	inspectContent(body, analysis)
	return analysis
}

// inspectContent extracts the SEO fields and evaluates every finding rule.
// Rules are independent; multiple may fire for the same page.
func inspectContent(body string, analysis *models.URLAnalysis) {
	// Title
	if m := titleRe.FindStringSubmatch(body); m != nil {
		analysis.Title = strings.TrimSpace(m[1])
		switch {
		case analysis.TitleLength() > titleMaxLen:
			analysis.AddWarning("Title too long (>60 characters)")
		case analysis.TitleLength() < titleMinLen:
			analysis.AddWarning("Title too short (<30 characters)")
		}
	} else {
		analysis.AddError("Missing title")
	}

	// Meta description
	if m := descriptionRe.FindStringSubmatch(body); m != nil {
		analysis.MetaDescription = strings.TrimSpace(m[1])
		switch {
		case analysis.DescriptionLength() > descriptionMaxLen:
			analysis.AddWarning("Meta description too long (>160 characters)")
		case analysis.DescriptionLength() < descriptionMinLen:
			analysis.AddWarning("Meta description too short (<120 characters)")
		}
	} else {
		analysis.AddError("Missing meta description")
	}

	// H1 tags: document order, nested markup stripped, duplicates preserved
	for _, m := range h1Re.FindAllStringSubmatch(body, -1) {
		analysis.H1Tags = append(analysis.H1Tags, strings.TrimSpace(innerTagRe.ReplaceAllString(m[1], "")))
	}
	switch {
	case len(analysis.H1Tags) == 0:
		analysis.AddError("Missing H1")
	case len(analysis.H1Tags) > 1:
		analysis.AddWarning("Multiple H1 tags")
	}

	// Canonical URL and robots meta are recorded but never trigger findings
	if m := canonicalRe.FindStringSubmatch(body); m != nil {
		analysis.CanonicalURL = strings.TrimSpace(m[1])
	}
	if m := robotsMetaRe.FindStringSubmatch(body); m != nil {
		analysis.RobotsMeta = strings.TrimSpace(m[1])
	}

	// Open Graph
	if m := ogTitleRe.FindStringSubmatch(body); m != nil {
		analysis.OGTitle = strings.TrimSpace(m[1])
	}
	if m := ogDescRe.FindStringSubmatch(body); m != nil {
		analysis.OGDescription = strings.TrimSpace(m[1])
	}
	if analysis.OGTitle == "" {
		analysis.AddWarning("Missing og:title")
	}
	if analysis.OGDescription == "" {
		analysis.AddWarning("Missing og:description")
	}

	// Structured data markers
	analysis.HasSchemaMarkup = schemaRe.MatchString(body)
	if !analysis.HasSchemaMarkup {
		analysis.AddWarning("Missing structured markup")
	}
}
