package report

import (
	"sort"
	"time"

	"seo-sitemap/pkg/models"
)

const topIssueCount = 5

// Summarize reduces a finalized record set into its aggregate view. Pure
// function of its input: no I/O, records are not modified. Safe on an empty
// set (rates and means come back as 0).
func Summarize(analyses []*models.URLAnalysis) *models.Summary {
	summary := &models.Summary{
		TotalURLs: len(analyses),
	}

	var totalLatency time.Duration
	var allErrors, allWarnings []string
	for _, a := range analyses {
		if a.Succeeded() {
			summary.SuccessfulURLs++
		} else {
			summary.ErrorURLs++
		}
		totalLatency += a.ResponseTime
		summary.TotalErrors += len(a.Errors)
		summary.TotalWarnings += len(a.Warnings)
		allErrors = append(allErrors, a.Errors...)
		allWarnings = append(allWarnings, a.Warnings...)
	}

	if summary.TotalURLs > 0 {
		summary.SuccessRate = float64(summary.SuccessfulURLs) / float64(summary.TotalURLs) * 100
		summary.AvgResponseTime = totalLatency / time.Duration(summary.TotalURLs)
	}

	summary.CommonErrors = topIssues(allErrors, topIssueCount)
	summary.CommonWarnings = topIssues(allWarnings, topIssueCount)
	return summary
}

// topIssues counts occurrences of each distinct message and returns the n
// most frequent. Ties rank by first-encountered order, so the result is
// deterministic for a given record ordering.
func topIssues(messages []string, n int) []models.IssueCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, msg := range messages {
		if _, seen := counts[msg]; !seen {
			firstSeen[msg] = order
			order++
		}
		counts[msg]++
	}

	ranked := make([]models.IssueCount, 0, len(counts))
	for msg, count := range counts {
		ranked = append(ranked, models.IssueCount{Message: msg, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Message] < firstSeen[ranked[j].Message]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
