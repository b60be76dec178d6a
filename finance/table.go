package finance

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// bodyRows returns the tr elements in the table's bodies, skipping rows of
// nested tables. tbody is implied by the parser when the markup omits it.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
}

func rowCells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td, th")
}

// labelValue reads the first two cells of a row.
func labelValue(row *goquery.Selection) (string, string) {
	cells := rowCells(row)
	return cleanText(cells.Eq(0).Text()), cells.Eq(1).Text()
}

// readPairs collects coerced label/value rows from a two-column table into
// dst, overwriting earlier labels. Rows without a label are ignored.
func readPairs(table *goquery.Selection, dst map[string]Value) {
	bodyRows(table).Each(func(i int, row *goquery.Selection) {
		label, raw := labelValue(row)
		if label == "" {
			return
		}
		if key, v, ok := Coerce(label, raw); ok {
			dst[key] = v
		}
	})
}
