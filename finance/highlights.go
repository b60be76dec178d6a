package finance

import "github.com/PuerkitoBio/goquery"

// ExtractFinancialAndTradingInfo flattens the label/value tables of the
// statistics page (Fiscal Year, Profitability, Stock Price History, ...) into
// one map. Each table sits in a div next to its own heading; later tables win
// on duplicate labels. A page with no such tables yields an empty map.
func ExtractFinancialAndTradingInfo(stats *Statistics) map[string]Value {
	values := make(map[string]Value)

	stats.sel.Find("div").FilterFunction(isHighlightSection).Each(func(i int, section *goquery.Selection) {
		section.ChildrenFiltered("table").Each(func(j int, table *goquery.Selection) {
			readPairs(table, values)
		})
	})

	return values
}

func isHighlightSection(i int, div *goquery.Selection) bool {
	return div.ChildrenFiltered("h2, h3, h4").Length() > 0 && div.ChildrenFiltered("table").Length() > 0
}
