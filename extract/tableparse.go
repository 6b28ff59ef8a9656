package extract

import (
	"regexp"
	"strings"

	"github/itish2003/finsight/models"
)

var separatorCell = regexp.MustCompile(`^:?-+:?$`)

// parseDelimitedTable scans the context for a literal pipe- or
// tab-delimited table and returns the first block that yields at least one
// data row. Returns nil when no such block exists. This runs before any
// model call: a table copied verbatim into the context is cheaper and more
// faithful than a model's restatement of it.
func parseDelimitedTable(context string) *models.TableRecord {
	lines := strings.Split(context, "\n")

	var headers []string
	var rows [][]string
	flush := func() *models.TableRecord {
		if len(headers) >= 2 && len(rows) >= 1 {
			return &models.TableRecord{Headers: headers, Rows: rows}
		}
		headers = nil
		rows = nil
		return nil
	}

	for _, line := range lines {
		cells := splitTableLine(line)
		if len(cells) < 2 {
			if record := flush(); record != nil {
				return record
			}
			continue
		}
		if isSeparatorRow(cells) {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		// Rows with a different cell count are skipped, not fatal:
		// wrapped lines inside a table are common in extracted text.
		if len(cells) == len(headers) {
			rows = append(rows, cells)
		}
	}
	return flush()
}

// splitTableLine splits a line into trimmed cells on pipes, or on tabs
// when the line carries no pipes. Lines in markdown style ("| a | b |")
// produce empty edge cells, which are stripped.
func splitTableLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var parts []string
	if strings.Contains(line, "|") {
		parts = strings.Split(line, "|")
	} else if strings.Contains(line, "\t") {
		parts = strings.Split(line, "\t")
	} else {
		return nil
	}
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	for len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// isSeparatorRow reports whether every cell is a markdown header rule
// like "---" or ":--:".
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}
