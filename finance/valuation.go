package finance

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	valuationHeading = "Valuation Measures"
	currentColumn    = "Current"
)

var columnDate = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)

// ValuationRow is one dated column of the valuation grid. Metrics keep the
// cell text as shown on the page.
type ValuationRow struct {
	Quarter string
	Metrics map[string]string
}

// MarshalJSON flattens the row into {"quarter": ..., "<metric>": ...}.
func (r ValuationRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.flatten())
}

func (r *ValuationRow) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	r.Quarter = flat["quarter"]
	delete(flat, "quarter")
	r.Metrics = flat
	return nil
}

// MarshalYAML flattens the row the same way as MarshalJSON.
func (r ValuationRow) MarshalYAML() (interface{}, error) {
	return r.flatten(), nil
}

func (r ValuationRow) flatten() map[string]string {
	flat := make(map[string]string, len(r.Metrics)+1)
	for k, v := range r.Metrics {
		flat[k] = v
	}
	flat["quarter"] = r.Quarter
	return flat
}

// ExtractValuationMeasures reads the Valuation Measures grid: header cells are
// "Current" or m/d/yyyy dates, body rows are metrics. One row is returned per
// retained header column, in header order.
func ExtractValuationMeasures(stats *Statistics) ([]ValuationRow, error) {
	table, err := valuationTable(stats.sel)
	if err != nil {
		return nil, err
	}

	header := headerRow(table)
	columns := valuationColumns(header)
	rows := make([]ValuationRow, len(columns))
	for i, quarter := range columns {
		rows[i] = ValuationRow{Quarter: quarter, Metrics: make(map[string]string)}
	}

	var rowErr error
	bodyRows(table).NotSelection(header).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := rowCells(tr)
		label := cleanText(cells.First().Text())
		if label == "" {
			rowErr = &LabelMissingError{Table: valuationHeading, Row: i + 1}
			return false
		}

		// Rows shorter or longer than the header are truncated to fit.
		values := cells.Slice(1, cells.Length())
		n := min(values.Length(), len(rows))
		for j := 0; j < n; j++ {
			rows[j].Metrics[label] = cleanText(values.Eq(j).Text())
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return rows, nil
}

// valuationTable finds the heading and walks its following siblings until
// one of them is or holds a table.
func valuationTable(container *goquery.Selection) (*goquery.Selection, error) {
	heading := container.Find("h2, h3").FilterFunction(func(i int, s *goquery.Selection) bool {
		return strings.Contains(cleanText(s.Text()), valuationHeading)
	}).First()
	if heading.Length() == 0 {
		return nil, &MissingSectionError{Section: valuationHeading}
	}

	var table *goquery.Selection
	heading.NextAll().EachWithBreak(func(i int, sibling *goquery.Selection) bool {
		if goquery.NodeName(sibling) == "table" {
			table = sibling
			return false
		}
		if found := sibling.Find("table").First(); found.Length() > 0 {
			table = found
			return false
		}
		return true
	})
	if table == nil {
		return nil, &MissingSectionError{Section: valuationHeading + " table"}
	}
	return table, nil
}

// headerRow prefers the first thead row and falls back to the first body row
// made of th cells.
func headerRow(table *goquery.Selection) *goquery.Selection {
	header := table.ChildrenFiltered("thead").ChildrenFiltered("tr").First()
	if header.Length() > 0 {
		return header
	}
	return bodyRows(table).FilterFunction(func(i int, tr *goquery.Selection) bool {
		return tr.ChildrenFiltered("th").Length() > 0 && tr.ChildrenFiltered("td").Length() == 0
	}).First()
}

// valuationColumns returns the column keys of the header row, skipping the
// label column and anything that is neither "Current" nor a date.
func valuationColumns(header *goquery.Selection) []string {
	var columns []string
	rowCells(header).Each(func(i int, cell *goquery.Selection) {
		text := cleanText(cell.Text())
		switch {
		case strings.Contains(text, currentColumn):
			columns = append(columns, currentColumn)
		case columnDate.MatchString(text):
			columns = append(columns, columnDate.FindString(text))
		}
	})
	return columns
}
