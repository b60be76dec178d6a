package finance

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Kind tells which field of a Value is populated.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

// Value is a coerced table cell: either a number or the trimmed cell text.
type Value struct {
	Kind   Kind
	Number float64
	Text   string
}

// NumberValue wraps a float as a Value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Number: n}
}

// TextValue wraps a string as a Value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func (v Value) IsNumber() bool {
	return v.Kind == KindNumber
}

// String returns the cell as it would be displayed.
func (v Value) String() string {
	if v.IsNumber() {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNumber() {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = TextValue(s)
	return nil
}

// MarshalYAML keeps the number/text distinction in YAML output.
func (v Value) MarshalYAML() (interface{}, error) {
	if v.IsNumber() {
		return v.Number, nil
	}
	return v.Text, nil
}

// Coerce turns a label and raw cell text into a typed cell. Only surrounding
// whitespace is trimmed; the rest of the text is kept as is. It reports false
// when the value is empty after trimming, in which case the cell is dropped.
func Coerce(label, raw string) (string, Value, bool) {
	text := strings.TrimFunc(raw, unicode.IsSpace)
	if text == "" {
		return label, Value{}, false
	}
	if n, ok := parseNumeral(text); ok {
		return label, NumberValue(n), true
	}
	return label, TextValue(text), true
}

// parseNumeral accepts plain decimal numerals only: no thousands separators,
// currency symbols, percent signs, hex or Inf/NaN.
func parseNumeral(s string) (float64, bool) {
	if _, err := decimal.NewFromString(s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// cleanText normalizes label and grid text: NFKC folds non-breaking spaces and
// similar compatibility characters, then runs of whitespace collapse to one
// space.
func cleanText(text string) string {
	text = norm.NFKC.String(text)
	return strings.Join(strings.Fields(text), " ")
}
