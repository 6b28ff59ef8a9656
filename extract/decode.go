package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github/itish2003/finsight/models"
)

var errNoJSON = errors.New("no json object in model output")

// firstJSONObject returns the first complete, valid JSON object found in
// text. Models often wrap their JSON in prose or markdown fences, so the
// scan tolerates arbitrary surrounding text.
func firstJSONObject(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		candidate := balancedObject(text[i:])
		if candidate != "" && json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return ""
}

// balancedObject extracts a brace-balanced object from the start of text,
// ignoring braces inside string literals. Escapes are tracked as state:
// looking back one byte misreads an escaped backslash before a closing
// quote ("a\\") and derails the brace count.
func balancedObject(text string) string {
	level := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		char := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case char == '\\':
				escaped = true
			case char == '"':
				inString = false
			}
			continue
		}
		switch char {
		case '"':
			inString = true
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}

// flexNumber accepts a JSON number, a numeric string ("$1,234", "12%"),
// or null. Nulls and dash placeholders decode to NaN so the validator can
// drop the pair instead of failing the whole record.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*f = flexNumber(math.NaN())
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if isPlaceholder(s) {
			*f = flexNumber(math.NaN())
			return nil
		}
		v, err := parseNumber(s)
		if err != nil {
			return err
		}
		*f = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexNumber(v)
	return nil
}

// flexString accepts a JSON string or a bare number and keeps its text form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// parseNumber parses a numeric string after stripping currency symbols,
// thousands separators, percent signs and surrounding whitespace.
// Accounting-style parenthesized negatives ("(1,234)") are honored.
func parseNumber(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") && len(cleaned) > 2 {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	for _, sym := range []string{"$", "€", "£", "¥", "%", ","} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in %q", s)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if negative {
		v = -v
	}
	return v, nil
}

var placeholderTokens = map[string]struct{}{
	"":     {},
	"-":    {},
	"–":    {},
	"—":    {},
	"n/a":  {},
	"na":   {},
	"none": {},
	"null": {},
	"nil":  {},
}

// isPlaceholder reports whether a cell or label is a filler token rather
// than real content.
func isPlaceholder(s string) bool {
	_, ok := placeholderTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

type chartPayload struct {
	ChartType  string       `json:"chart_type"`
	Title      string       `json:"title"`
	Labels     []flexString `json:"labels"`
	Values     []flexNumber `json:"values"`
	XAxisLabel string       `json:"x_axis_label"`
	YAxisLabel string       `json:"y_axis_label"`
}

type tablePayload struct {
	Title   string         `json:"title"`
	Headers []flexString   `json:"headers"`
	Rows    [][]flexString `json:"rows"`
}

// decodeChart parses a model response into a ChartRecord. It returns an
// error on malformed output; callers convert failures into the no-data
// sentinel instead of propagating them.
func decodeChart(raw string) (*models.ChartRecord, error) {
	obj := firstJSONObject(raw)
	if obj == "" {
		return nil, errNoJSON
	}
	var payload chartPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("decode chart payload: %w", err)
	}
	record := &models.ChartRecord{
		ChartType:  strings.ToLower(strings.TrimSpace(payload.ChartType)),
		Title:      strings.TrimSpace(payload.Title),
		XAxisLabel: strings.TrimSpace(payload.XAxisLabel),
		YAxisLabel: strings.TrimSpace(payload.YAxisLabel),
	}
	for _, l := range payload.Labels {
		record.Labels = append(record.Labels, strings.TrimSpace(string(l)))
	}
	for _, v := range payload.Values {
		record.Values = append(record.Values, float64(v))
	}
	return record, nil
}

// decodeTable parses a model response into a TableRecord.
func decodeTable(raw string) (*models.TableRecord, error) {
	obj := firstJSONObject(raw)
	if obj == "" {
		return nil, errNoJSON
	}
	var payload tablePayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("decode table payload: %w", err)
	}
	record := &models.TableRecord{Title: strings.TrimSpace(payload.Title)}
	for _, h := range payload.Headers {
		record.Headers = append(record.Headers, strings.TrimSpace(string(h)))
	}
	for _, row := range payload.Rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, strings.TrimSpace(string(cell)))
		}
		record.Rows = append(record.Rows, cells)
	}
	return record, nil
}
