package finance

import "github.com/PuerkitoBio/goquery"

const statisticsSection = "qsp-statistics"

// Statistics is the located statistics container of a key-statistics page.
type Statistics struct {
	sel *goquery.Selection
}

// StatisticsRecord is the flattened statistics of a ticker.
type StatisticsRecord map[string]Value

// LocateStatistics parses html and finds the statistics container.
func LocateStatistics(html string) (*Statistics, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	sel := doc.Find(`section[data-test="` + statisticsSection + `"]`).First()
	if sel.Length() == 0 {
		return nil, &MissingSectionError{Section: statisticsSection}
	}
	return &Statistics{sel: sel}, nil
}

// ExtractStatistics runs both statistics extractors over a page. The flat
// record holds the highlights with the metrics of the first valuation column
// written over them; every column is returned as well.
func ExtractStatistics(html string) (StatisticsRecord, []ValuationRow, error) {
	stats, err := LocateStatistics(html)
	if err != nil {
		return nil, nil, err
	}

	valuation, err := ExtractValuationMeasures(stats)
	if err != nil {
		return nil, nil, err
	}

	record := StatisticsRecord(ExtractFinancialAndTradingInfo(stats))
	if len(valuation) > 0 {
		for label, raw := range valuation[0].Metrics {
			record[label] = TextValue(raw)
		}
	}
	return record, valuation, nil
}
