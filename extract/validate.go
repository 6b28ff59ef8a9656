package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github/itish2003/finsight/models"
)

// Validate applies the structural rules, the meaningfulness filter and
// deduplication to a candidate record. On success it returns the cleaned
// record (placeholder pairs removed, duplicates collapsed); on failure it
// returns the no-data sentinel and an error wrapping ErrSchemaInvalid.
func Validate(record models.StructuredRecord) (models.StructuredRecord, error) {
	switch record.Kind {
	case models.RecordChart:
		cleaned, err := validateChart(record.Chart)
		if err != nil {
			return models.NoData(), err
		}
		return models.StructuredRecord{Kind: models.RecordChart, Chart: cleaned}, nil
	case models.RecordTable:
		cleaned, err := validateTable(record.Table)
		if err != nil {
			return models.NoData(), err
		}
		return models.StructuredRecord{Kind: models.RecordTable, Table: cleaned}, nil
	default:
		return models.NoData(), fmt.Errorf("%w: no data to validate", models.ErrSchemaInvalid)
	}
}

func validateChart(c *models.ChartRecord) (*models.ChartRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil chart record", models.ErrSchemaInvalid)
	}
	if len(c.Labels) != len(c.Values) {
		return nil, fmt.Errorf("%w: %d labels but %d values", models.ErrSchemaInvalid, len(c.Labels), len(c.Values))
	}
	if len(c.Labels) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points, got %d", models.ErrSchemaInvalid, len(c.Labels))
	}
	switch c.ChartType {
	case models.ChartBar, models.ChartLine, models.ChartPie:
	default:
		return nil, fmt.Errorf("%w: unknown chart type %q", models.ErrSchemaInvalid, c.ChartType)
	}
	if err := checkOptionalText(c.Title, c.XAxisLabel, c.YAxisLabel); err != nil {
		return nil, err
	}
	for i, v := range c.Values {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: value %d is not finite", models.ErrSchemaInvalid, i)
		}
	}

	cleaned := dropChartPlaceholders(c)
	if len(cleaned.Labels) < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 meaningful data points survive", models.ErrSchemaInvalid)
	}
	if err := schemaCheck(chartSchema, cleaned); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSchemaInvalid, err)
	}
	if sequentialSmallIntegers(cleaned.Labels) && !hasUnitHint(cleaned) {
		return nil, fmt.Errorf("%w: labels look like page or index numbers", models.ErrSchemaInvalid)
	}
	if allValuesIdentical(cleaned.Values) {
		return nil, fmt.Errorf("%w: all values identical, nothing to visualize", models.ErrSchemaInvalid)
	}
	return cleaned, nil
}

func validateTable(t *models.TableRecord) (*models.TableRecord, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table record", models.ErrSchemaInvalid)
	}
	if len(t.Headers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 columns, got %d", models.ErrSchemaInvalid, len(t.Headers))
	}
	if len(t.Rows) < 1 {
		return nil, fmt.Errorf("%w: table has no rows", models.ErrSchemaInvalid)
	}
	for i, h := range t.Headers {
		if isPlaceholder(h) {
			return nil, fmt.Errorf("%w: header %d is empty", models.ErrSchemaInvalid, i)
		}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", models.ErrSchemaInvalid, i, len(row), len(t.Headers))
		}
	}
	if err := checkOptionalText(t.Title); err != nil {
		return nil, err
	}

	cleaned := dropTablePlaceholders(t)
	if len(cleaned.Rows) < 1 {
		return nil, fmt.Errorf("%w: no meaningful rows survive", models.ErrSchemaInvalid)
	}
	if err := schemaCheck(tableSchema, cleaned); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSchemaInvalid, err)
	}
	return cleaned, nil
}

// checkOptionalText rejects fields that are present but hold only
// whitespace. Absent fields ("") are fine.
func checkOptionalText(fields ...string) error {
	for _, f := range fields {
		if f != "" && strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: blank text field", models.ErrSchemaInvalid)
		}
	}
	return nil
}

// dropChartPlaceholders removes (label,value) pairs whose label is a
// filler token or whose value is the NaN placeholder from decoding, then
// collapses duplicate pairs keeping first-seen order.
func dropChartPlaceholders(c *models.ChartRecord) *models.ChartRecord {
	cleaned := &models.ChartRecord{
		ChartType:  c.ChartType,
		Title:      c.Title,
		XAxisLabel: c.XAxisLabel,
		YAxisLabel: c.YAxisLabel,
	}
	seen := make(map[string]struct{})
	for i, label := range c.Labels {
		v := c.Values[i]
		if isPlaceholder(label) || math.IsNaN(v) {
			continue
		}
		key := label + "\x00" + strconv.FormatFloat(v, 'g', -1, 64)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned.Labels = append(cleaned.Labels, label)
		cleaned.Values = append(cleaned.Values, v)
	}
	return cleaned
}

// dropTablePlaceholders removes rows whose every cell is a filler token,
// then collapses duplicate rows keeping first-seen order.
func dropTablePlaceholders(t *models.TableRecord) *models.TableRecord {
	cleaned := &models.TableRecord{Headers: t.Headers, Title: t.Title}
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		allFiller := true
		for _, cell := range row {
			if !isPlaceholder(cell) {
				allFiller = false
				break
			}
		}
		if allFiller {
			continue
		}
		key := strings.Join(row, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned.Rows = append(cleaned.Rows, row)
	}
	return cleaned
}

func schemaCheck(schema map[string]any, record any) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record for validation: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(recordJSON))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("record failed schema: %s", strings.Join(details, "; "))
}

// Unit hints that mark numeric labels as real data rather than page or
// section numbering.
var (
	yearPattern     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	currencyPattern = regexp.MustCompile(`(?i)[$€£¥]|\b(usd|eur|gbp|dollars?|euros?)\b`)
	percentPattern  = regexp.MustCompile(`(?i)%|\bpercent(age)?\b`)
	metricPattern   = regexp.MustCompile(`(?i)\b(revenue|profit|loss|sales|income|cost|price|margin|growth|count|total|amount|expense|cash|assets?|liabilit\w*|shares?|units?|rate|ratio|volume|quarter|q[1-4]|fy\d*)\b`)
)

func hasUnitHint(c *models.ChartRecord) bool {
	parts := append([]string{c.Title, c.XAxisLabel, c.YAxisLabel}, c.Labels...)
	text := strings.Join(parts, " ")
	return yearPattern.MatchString(text) ||
		currencyPattern.MatchString(text) ||
		percentPattern.MatchString(text) ||
		metricPattern.MatchString(text)
}

// sequentialSmallIntegers reports whether every label is an integer below
// 1000 and the sequence ascends by exactly one, the signature of page
// numbers and footnote indices. Four-digit years fall outside the bound
// and never match.
func sequentialSmallIntegers(labels []string) bool {
	if len(labels) < 2 {
		return false
	}
	prev := 0
	for i, label := range labels {
		n, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil || n < 0 || n >= 1000 {
			return false
		}
		if i > 0 && n != prev+1 {
			return false
		}
		prev = n
	}
	return true
}

func allValuesIdentical(values []float64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
