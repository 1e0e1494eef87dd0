package report

import (
	"fmt"
	"io"
	"strings"

	"seo-sitemap/pkg/models"
)

// PrintSummary writes the human-readable summary block to w.
func PrintSummary(w io.Writer, s *models.Summary) {
	divider := strings.Repeat("=", 60)

	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, "SUMMARY REPORT")
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Total URLs: %d\n", s.TotalURLs)
	fmt.Fprintf(w, "Successfully analyzed: %d\n", s.SuccessfulURLs)
	fmt.Fprintf(w, "Accessibility errors: %d\n", s.ErrorURLs)
	fmt.Fprintf(w, "Success rate: %.1f%%\n", s.SuccessRate)
	fmt.Fprintf(w, "Average response time: %.2f sec\n", s.AvgResponseTime.Seconds())
	fmt.Fprintf(w, "Total SEO errors: %d\n", s.TotalErrors)
	fmt.Fprintf(w, "Total warnings: %d\n", s.TotalWarnings)

	if len(s.CommonErrors) > 0 {
		fmt.Fprintln(w, "\nMost frequent errors:")
		for _, issue := range s.CommonErrors {
			fmt.Fprintf(w, "  - %s: %d times\n", issue.Message, issue.Count)
		}
	}

	if len(s.CommonWarnings) > 0 {
		fmt.Fprintln(w, "\nMost frequent warnings:")
		for _, issue := range s.CommonWarnings {
			fmt.Fprintf(w, "  - %s: %d times\n", issue.Message, issue.Count)
		}
	}
}
