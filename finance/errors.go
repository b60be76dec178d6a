package finance

import "fmt"

// MissingSectionError reports that an expected container, heading or table
// is absent, usually because the page layout changed.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("section not found: %s", e.Section)
}

// LabelMissingError reports a grid row without a readable label cell.
type LabelMissingError struct {
	Table string
	Row   int
}

func (e *LabelMissingError) Error() string {
	return fmt.Sprintf("no label in %s row %d", e.Table, e.Row)
}
