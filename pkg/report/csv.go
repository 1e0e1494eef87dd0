package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"seo-sitemap/pkg/models"
)

// csvHeader is the full column set; every URLAnalysis field must be
// representable losslessly as text.
var csvHeader = []string{
	"URL",
	"Status Code",
	"Response Time (s)",
	"Title",
	"Title Length",
	"Meta Description",
	"Meta Description Length",
	"H1 Count",
	"H1 Tags",
	"Canonical URL",
	"Robots Meta",
	"OG Title",
	"OG Description",
	"Has Schema Markup",
	"Errors",
	"Warnings",
}

// WriteCSV serializes one row per analysis record to path. List fields are
// joined with "; " to match the summary formatting.
func WriteCSV(path string, analyses []*models.URLAnalysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file '%s': %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, a := range analyses {
		row := []string{
			a.URL,
			strconv.Itoa(a.StatusCode),
			fmt.Sprintf("%.2f", a.ResponseTime.Seconds()),
			a.Title,
			strconv.Itoa(a.TitleLength()),
			a.MetaDescription,
			strconv.Itoa(a.DescriptionLength()),
			strconv.Itoa(len(a.H1Tags)),
			strings.Join(a.H1Tags, "; "),
			a.CanonicalURL,
			a.RobotsMeta,
			a.OGTitle,
			a.OGDescription,
			strconv.FormatBool(a.HasSchemaMarkup),
			strings.Join(a.Errors, "; "),
			strings.Join(a.Warnings, "; "),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write report row for '%s': %w", a.URL, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report file '%s': %w", path, err)
	}
	return nil
}
