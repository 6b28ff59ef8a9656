package retriever

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github/itish2003/finsight/models"
)

// Boilerplate stripped during chunk compression: bare page numbers,
// "Page N of M" runs and section-number headings carry no answerable content
// but eat context budget.
var (
	pageNumberLine = regexp.MustCompile(`(?i)^\s*(page\s+)?\d+(\s+of\s+\d+)?\s*\.?\s*$`)
	sectionHeading = regexp.MustCompile(`(?i)^\s*(section|chapter|table of contents)\s*[\d.]*\s*$`)
)

// FormatContext compresses each chunk, prefixes it with its source marker
// and concatenates until the character budget (4x the token budget) is
// reached. It returns "" when every chunk is empty after compression;
// callers must treat that as "no usable context", not as "no answer".
func (r *Retriever) FormatContext(results []models.RetrievalResult) string {
	budget := 4 * r.cfg.ContextTokenBudget
	var out strings.Builder
	for _, res := range results {
		text := compressChunk(res.Chunk.Text)
		if text == "" {
			continue
		}
		block := fmt.Sprintf("[source: %s]\n%s\n\n", sourceLabel(res.Chunk), text)
		if out.Len()+len(block) > budget {
			if out.Len() == 0 {
				// The budget is checked in bytes, so the cut is too: back
				// off to a rune boundary rather than splitting a rune.
				cut := budget
				for cut > 0 && !utf8.RuneStart(block[cut]) {
					cut--
				}
				out.WriteString(block[:cut])
			}
			break
		}
		out.WriteString(block)
	}
	return strings.TrimSpace(out.String())
}

// compressChunk strips boilerplate lines, collapses whitespace runs and
// drops duplicate lines while keeping first-seen order.
func compressChunk(text string) string {
	seen := make(map[string]struct{})
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if pageNumberLine.MatchString(line) || sectionHeading.MatchString(line) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// sourceLabel renders the provenance marker for one chunk.
func sourceLabel(chunk models.Chunk) string {
	source := "unknown"
	if s, ok := chunk.Metadata["source"].(string); ok && s != "" {
		source = s
	} else if s, ok := chunk.Metadata["source_file"].(string); ok && s != "" {
		source = s
	}
	if page, ok := chunk.Metadata["page"]; ok {
		return fmt.Sprintf("%s | page %v", source, page)
	}
	if num, ok := chunk.Metadata["chunk_num"]; ok {
		return fmt.Sprintf("%s | chunk %v", source, num)
	}
	return source
}
