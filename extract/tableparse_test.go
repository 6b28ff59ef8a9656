package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimitedTableMarkdown(t *testing.T) {
	context := strings.Join([]string{
		"The quarterly breakdown was as follows.",
		"| Quarter | Revenue | Margin |",
		"| ------- | ------- | ------ |",
		"| Q1      | $1.2M   | 31%    |",
		"| Q2      | $1.5M   | 33%    |",
		"Management expects the trend to continue.",
	}, "\n")

	record := parseDelimitedTable(context)

	require.NotNil(t, record)
	assert.Equal(t, []string{"Quarter", "Revenue", "Margin"}, record.Headers)
	require.Len(t, record.Rows, 2)
	assert.Equal(t, []string{"Q1", "$1.2M", "31%"}, record.Rows[0])
	assert.Equal(t, []string{"Q2", "$1.5M", "33%"}, record.Rows[1])
}

func TestParseDelimitedTableTabs(t *testing.T) {
	context := "Region\tSales\nNorth\t120\nSouth\t95\n"

	record := parseDelimitedTable(context)

	require.NotNil(t, record)
	assert.Equal(t, []string{"Region", "Sales"}, record.Headers)
	assert.Equal(t, [][]string{{"North", "120"}, {"South", "95"}}, record.Rows)
}

func TestParseDelimitedTableSkipsMismatchedRows(t *testing.T) {
	context := strings.Join([]string{
		"| Year | Revenue |",
		"| 2023 | $10M |",
		"| 2024 | $12M | extra |", // wrong width, skipped
		"| 2025 | $14M |",
	}, "\n")

	record := parseDelimitedTable(context)

	require.NotNil(t, record)
	assert.Equal(t, []string{"Year", "Revenue"}, record.Headers)
	assert.Equal(t, [][]string{{"2023", "$10M"}, {"2025", "$14M"}}, record.Rows)
}

func TestParseDelimitedTableEndsAtProse(t *testing.T) {
	context := strings.Join([]string{
		"| Year | Revenue |",
		"| 2023 | $10M |",
		"Management commentary follows the table.",
		"| Ignored | Later |",
		"| a | b |",
	}, "\n")

	record := parseDelimitedTable(context)

	require.NotNil(t, record)
	assert.Equal(t, [][]string{{"2023", "$10M"}}, record.Rows, "the first complete block wins")
}

func TestParseDelimitedTableNoTable(t *testing.T) {
	assert.Nil(t, parseDelimitedTable("Revenue grew 12% year over year with no tabular data."))
	assert.Nil(t, parseDelimitedTable(""))
}

func TestParseDelimitedTableHeaderOnly(t *testing.T) {
	assert.Nil(t, parseDelimitedTable("| Year | Revenue |"), "a header without data rows is not a table")
}

func TestSplitTableLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"markdown edges stripped", "| a | b |", []string{"a", "b"}},
		{"no edge pipes", "a | b | c", []string{"a", "b", "c"}},
		{"tabs", "a\tb", []string{"a", "b"}},
		{"plain text", "no delimiters here", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitTableLine(tt.line))
		})
	}
}

func TestIsSeparatorRow(t *testing.T) {
	assert.True(t, isSeparatorRow([]string{"---", "----"}))
	assert.True(t, isSeparatorRow([]string{":--", "--:", ":-:"}))
	assert.False(t, isSeparatorRow([]string{"---", "Q1"}))
	assert.False(t, isSeparatorRow(nil))
}

func TestParseDelimitedTableAlignmentSeparators(t *testing.T) {
	record := parseDelimitedTable("Year | Revenue\n:-: | :-:\n2021 | 100\n2022 | 120")

	require.NotNil(t, record)
	assert.Equal(t, []string{"Year", "Revenue"}, record.Headers)
	require.Equal(t, [][]string{{"2021", "100"}, {"2022", "120"}}, record.Rows)
	for _, row := range record.Rows {
		assert.False(t, isSeparatorRow(row), "separator row must not appear as table data")
	}
}
