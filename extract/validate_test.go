package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/finsight/models"
)

func validChart() *models.ChartRecord {
	return &models.ChartRecord{
		ChartType: models.ChartBar,
		Title:     "Revenue by Year",
		Labels:    []string{"2021", "2022", "2023"},
		Values:    []float64{1.2, 1.5, 1.9},
	}
}

func chartRecord(c *models.ChartRecord) models.StructuredRecord {
	return models.StructuredRecord{Kind: models.RecordChart, Chart: c}
}

func tableRecord(t *models.TableRecord) models.StructuredRecord {
	return models.StructuredRecord{Kind: models.RecordTable, Table: t}
}

func TestValidateChartHappyPath(t *testing.T) {
	out, err := Validate(chartRecord(validChart()))

	require.NoError(t, err)
	assert.Equal(t, models.RecordChart, out.Kind)
	require.NotNil(t, out.Chart)
	assert.Equal(t, []string{"2021", "2022", "2023"}, out.Chart.Labels)
	assert.Equal(t, []float64{1.2, 1.5, 1.9}, out.Chart.Values)
}

func TestValidateChartRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ChartRecord)
	}{
		{"length mismatch", func(c *models.ChartRecord) { c.Values = c.Values[:2] }},
		{"single data point", func(c *models.ChartRecord) {
			c.Labels = c.Labels[:1]
			c.Values = c.Values[:1]
		}},
		{"unknown chart type", func(c *models.ChartRecord) { c.ChartType = "scatter" }},
		{"infinite value", func(c *models.ChartRecord) { c.Values[1] = math.Inf(1) }},
		{"whitespace title", func(c *models.ChartRecord) { c.Title = "   " }},
		{"identical values", func(c *models.ChartRecord) { c.Values = []float64{5, 5, 5} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validChart()
			tt.mutate(c)

			out, err := Validate(chartRecord(c))

			assert.ErrorIs(t, err, models.ErrSchemaInvalid)
			assert.True(t, out.IsNone(), "a rejected record collapses to the no-data sentinel")
		})
	}
}

func TestValidateChartNil(t *testing.T) {
	_, err := Validate(models.StructuredRecord{Kind: models.RecordChart})
	assert.ErrorIs(t, err, models.ErrSchemaInvalid)
}

func TestValidateChartDropsPlaceholderPairs(t *testing.T) {
	c := &models.ChartRecord{
		ChartType: models.ChartLine,
		Title:     "Quarterly revenue",
		Labels:    []string{"Q1", "-", "Q2", "Q3"},
		Values:    []float64{10, 20, math.NaN(), 30},
	}

	out, err := Validate(chartRecord(c))

	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q3"}, out.Chart.Labels, "filler labels and NaN values drop their pairs")
	assert.Equal(t, []float64{10, 30}, out.Chart.Values)
}

func TestValidateChartDedupsRepeatedPairs(t *testing.T) {
	c := &models.ChartRecord{
		ChartType: models.ChartBar,
		Title:     "Revenue by segment",
		Labels:    []string{"Cloud", "Cloud", "Retail"},
		Values:    []float64{10, 10, 20},
	}

	out, err := Validate(chartRecord(c))

	require.NoError(t, err)
	assert.Equal(t, []string{"Cloud", "Retail"}, out.Chart.Labels)
	assert.Equal(t, []float64{10, 20}, out.Chart.Values)
}

func TestValidateChartTooFewSurvivors(t *testing.T) {
	c := &models.ChartRecord{
		ChartType: models.ChartBar,
		Labels:    []string{"A", "-", "n/a"},
		Values:    []float64{1, 2, 3},
	}

	_, err := Validate(chartRecord(c))

	assert.ErrorIs(t, err, models.ErrSchemaInvalid)
}

func TestValidateChartPageNumberLabels(t *testing.T) {
	c := &models.ChartRecord{
		ChartType: models.ChartBar,
		Labels:    []string{"1", "2", "3", "4"},
		Values:    []float64{12, 7, 19, 3},
	}

	_, err := Validate(chartRecord(c))

	assert.ErrorIs(t, err, models.ErrSchemaInvalid, "sequential small integers without units look like page numbers")
}

func TestValidateChartSequentialLabelsWithUnitsPass(t *testing.T) {
	c := &models.ChartRecord{
		ChartType:  models.ChartBar,
		Title:      "Revenue by quarter",
		Labels:     []string{"1", "2", "3", "4"},
		Values:     []float64{12, 7, 19, 3},
		YAxisLabel: "Revenue (USD millions)",
	}

	_, err := Validate(chartRecord(c))

	assert.NoError(t, err, "a metric title marks the numeric labels as real data")
}

func TestValidateChartYearLabelsAlwaysPass(t *testing.T) {
	c := &models.ChartRecord{
		ChartType: models.ChartLine,
		Labels:    []string{"2021", "2022", "2023"},
		Values:    []float64{5, 9, 14},
	}

	_, err := Validate(chartRecord(c))

	assert.NoError(t, err, "four-digit years are never mistaken for page numbers")
}

func TestValidateTableHappyPath(t *testing.T) {
	table := &models.TableRecord{
		Title:   "Segments",
		Headers: []string{"Segment", "Revenue"},
		Rows:    [][]string{{"Cloud", "$1,200"}, {"Retail", "$900"}},
	}

	out, err := Validate(tableRecord(table))

	require.NoError(t, err)
	assert.Equal(t, models.RecordTable, out.Kind)
	assert.Len(t, out.Table.Rows, 2)
}

func TestValidateTableRejections(t *testing.T) {
	tests := []struct {
		name  string
		table *models.TableRecord
	}{
		{"nil table", nil},
		{"single column", &models.TableRecord{Headers: []string{"Only"}, Rows: [][]string{{"x"}}}},
		{"no rows", &models.TableRecord{Headers: []string{"A", "B"}}},
		{"placeholder header", &models.TableRecord{Headers: []string{"A", "-"}, Rows: [][]string{{"1", "2"}}}},
		{"ragged row", &models.TableRecord{Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2", "3"}}}},
		{"all rows filler", &models.TableRecord{Headers: []string{"A", "B"}, Rows: [][]string{{"-", "n/a"}, {"", "-"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tableRecord(tt.table))
			assert.ErrorIs(t, err, models.ErrSchemaInvalid)
		})
	}
}

func TestValidateTableDropsFillerAndDuplicateRows(t *testing.T) {
	table := &models.TableRecord{
		Headers: []string{"Year", "Revenue"},
		Rows: [][]string{
			{"2023", "$10M"},
			{"-", "n/a"},
			{"2023", "$10M"},
			{"2024", "$12M"},
		},
	}

	out, err := Validate(tableRecord(table))

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2023", "$10M"}, {"2024", "$12M"}}, out.Table.Rows)
}

func TestValidateNoDataRecord(t *testing.T) {
	_, err := Validate(models.NoData())
	assert.ErrorIs(t, err, models.ErrSchemaInvalid)
}

func TestSequentialSmallIntegers(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   bool
	}{
		{"page numbers", []string{"1", "2", "3"}, true},
		{"offset run", []string{"7", "8", "9"}, true},
		{"years are out of bounds", []string{"2021", "2022"}, false},
		{"gap breaks the run", []string{"1", "3", "4"}, false},
		{"descending", []string{"3", "2", "1"}, false},
		{"non-numeric", []string{"Q1", "Q2"}, false},
		{"single label", []string{"1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sequentialSmallIntegers(tt.labels))
		})
	}
}

func TestHasUnitHint(t *testing.T) {
	base := &models.ChartRecord{Labels: []string{"1", "2"}}

	assert.False(t, hasUnitHint(base))
	assert.True(t, hasUnitHint(&models.ChartRecord{Title: "Revenue by region", Labels: []string{"1", "2"}}))
	assert.True(t, hasUnitHint(&models.ChartRecord{YAxisLabel: "% of total", Labels: []string{"1", "2"}}))
	assert.True(t, hasUnitHint(&models.ChartRecord{XAxisLabel: "FY2024", Labels: []string{"1", "2"}}))
	assert.True(t, hasUnitHint(&models.ChartRecord{Labels: []string{"$10", "$20"}}))
}
