// Package extract pulls chart- and table-shaped records out of retrieved
// context and validates them before rendering. Extraction never surfaces
// an error: every failure path collapses into the no-data sentinel so the
// pipeline can answer "nothing to visualize" instead of failing.
package extract

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github/itish2003/finsight/llm"
	"github/itish2003/finsight/models"
)

var (
	tableWords = regexp.MustCompile(`(?i)\btabular\b|\btables?\b`)
	chartWords = regexp.MustCompile(`(?i)\b(charts?|graphs?|plots?|pie|histograms?)\b`)
)

// ExplicitKind returns the artifact kind the question names outright, or
// RecordNone when the wording leaves the choice open. Finalize uses this
// to catch a produced artifact of the wrong kind.
func ExplicitKind(question string) models.RecordKind {
	table := tableWords.MatchString(question)
	chart := chartWords.MatchString(question)
	switch {
	case table && !chart:
		return models.RecordTable
	case chart && !table:
		return models.RecordChart
	default:
		return models.RecordNone
	}
}

// DesiredKind returns the kind extraction should target. Chart is the
// default for any visualization request that does not name a table.
func DesiredKind(question string) models.RecordKind {
	if ExplicitKind(question) == models.RecordTable {
		return models.RecordTable
	}
	return models.RecordChart
}

// Extract produces a validated structured record for the question from the
// retrieved context. For table requests it first attempts a literal parse
// of any delimited table present verbatim in the context before spending a
// model call.
func Extract(ctx context.Context, gen llm.Generator, question, contextText string) models.StructuredRecord {
	kind := DesiredKind(question)

	if kind == models.RecordTable {
		if parsed := parseDelimitedTable(contextText); parsed != nil {
			record, err := Validate(models.StructuredRecord{Kind: models.RecordTable, Table: parsed})
			if err == nil {
				log.Printf("EXTRACT: literal table parse succeeded (%d rows)", len(record.Table.Rows))
				return record
			}
			log.Printf("EXTRACT: literal table rejected, falling back to model: %v", err)
		}
	}

	var prompt string
	if kind == models.RecordTable {
		prompt = llm.TableExtractionPrompt(question, contextText)
	} else {
		prompt = llm.ChartExtractionPrompt(question, contextText)
	}

	raw, err := generateWithRetry(ctx, gen, prompt)
	if err != nil {
		log.Printf("EXTRACT: model extraction failed: %v", err)
		return models.NoData()
	}
	if strings.TrimSpace(raw) == "" || strings.Contains(raw, llm.NoDataToken) {
		log.Printf("EXTRACT: model reported no extractable data")
		return models.NoData()
	}

	record, err := decodeRecord(kind, raw)
	if err != nil {
		log.Printf("EXTRACT: could not decode model output: %v", err)
		return models.NoData()
	}

	validated, err := Validate(record)
	if err != nil {
		log.Printf("EXTRACT: candidate record rejected: %v", err)
		return models.NoData()
	}
	return validated
}

func decodeRecord(kind models.RecordKind, raw string) (models.StructuredRecord, error) {
	if kind == models.RecordTable {
		table, err := decodeTable(raw)
		if err != nil {
			return models.NoData(), err
		}
		return models.StructuredRecord{Kind: models.RecordTable, Table: table}, nil
	}
	chart, err := decodeChart(raw)
	if err != nil {
		return models.NoData(), err
	}
	return models.StructuredRecord{Kind: models.RecordChart, Chart: chart}, nil
}

// generateWithRetry gives extraction calls a single retry, except when the
// request context is already done.
func generateWithRetry(ctx context.Context, gen llm.Generator, prompt string) (string, error) {
	raw, err := gen.Generate(ctx, prompt)
	if err == nil || ctx.Err() != nil {
		return raw, err
	}
	log.Printf("EXTRACT: generation failed, retrying once: %v", err)
	return gen.Generate(ctx, prompt)
}
