package finance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const quoteSummaryMarker = "quote-summary"

// SummaryRecord maps a quote-summary label such as "Previous Close" to its value.
type SummaryRecord map[string]Value

// ExtractSummary reads the quote-summary block of a quote page. The block is
// split into a left and a right table; rows are merged left first, so a label
// present in both keeps the right table's value.
func ExtractSummary(html string) (SummaryRecord, error) {
	if !strings.Contains(html, quoteSummaryMarker) {
		return nil, &MissingSectionError{Section: quoteSummaryMarker}
	}

	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	summary := doc.Find("div#quote-summary").First()
	if summary.Length() == 0 {
		return nil, &MissingSectionError{Section: quoteSummaryMarker}
	}

	record := make(SummaryRecord)
	for _, half := range []string{"left-summary-table", "right-summary-table"} {
		summary.Find(`[data-test="` + half + `"]`).First().Find("table").AddBackFiltered("table").Each(func(i int, table *goquery.Selection) {
			readPairs(table, record)
		})
	}

	return record, nil
}
