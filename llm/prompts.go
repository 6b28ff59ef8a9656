package llm

import "fmt"

// NoDataToken is the sentinel the extraction prompts instruct the model to
// return when the context holds no suitable numerical data. The extract
// package checks for it before attempting to decode JSON.
const NoDataToken = "NO_DATA"

// AnswerPrompt builds the grounded question-answering prompt.
func AnswerPrompt(question, context string) string {
	return fmt.Sprintf(`You are a financial document assistant. Answer the user's question using ONLY the context excerpts below. Each excerpt is preceded by a [source: ...] marker.

Rules:
1. Base your answer strictly on the context. Do not invent information.
2. Be concise and direct. Lead with the answer, then supporting details.
3. When the context contains figures, quote them exactly as written.
4. If the context does not contain the answer, say so plainly.

Context:
%s

Question: %s

Answer:`, context, question)
}

// DirectiveAnswerPrompt is the retry variant used when the first attempt
// came back empty or as a refusal despite usable context.
func DirectiveAnswerPrompt(question, context string) string {
	return fmt.Sprintf(`You are a financial document assistant. You MUST produce an answer. Refusals and empty responses are not acceptable.

Rules:
1. Use ONLY the context excerpts below.
2. If the context does not directly answer the question, summarize the most relevant facts the context DOES contain and state clearly that a direct answer was not found.
3. Never respond with an apology alone.

Context:
%s

Question: %s

Answer:`, context, question)
}

// DetectArtifactPrompt asks whether the question calls for a chart or
// table in addition to the prose answer. Used only when the lexical and
// numeric heuristics disagree.
func DetectArtifactPrompt(question, context string) string {
	return fmt.Sprintf(`Decide whether the user's question asks for a chart, table, graph, or other structured visualization of data, rather than a plain text answer.

Question: %s

Context excerpt:
%s

Respond with exactly YES or NO. Nothing else.`, question, context)
}

// ChartExtractionPrompt asks the model to pull chart-shaped data out of
// the context as a single JSON object.
func ChartExtractionPrompt(question, context string) string {
	return fmt.Sprintf(`Extract the numerical data needed to answer the question below as a chart specification.

Respond with a single JSON object and nothing else:
{
  "chart_type": "bar" | "line" | "pie",
  "title": "short descriptive title",
  "labels": ["label1", "label2", ...],
  "values": [number1, number2, ...],
  "x_axis_label": "what the labels represent",
  "y_axis_label": "what the values measure, including units"
}

Rules:
1. Use ONLY numbers that appear in the context. Do not invent or interpolate values.
2. labels and values must have the same length and at least two entries.
3. Pick "line" for trends over time, "pie" for parts of a whole, "bar" otherwise.
4. If the context contains no suitable numerical data, respond with exactly %s.

Context:
%s

Question: %s`, NoDataToken, context, question)
}

// TableExtractionPrompt asks the model to pull table-shaped data out of
// the context as a single JSON object.
func TableExtractionPrompt(question, context string) string {
	return fmt.Sprintf(`Extract the data needed to answer the question below as a table specification.

Respond with a single JSON object and nothing else:
{
  "title": "short descriptive title",
  "headers": ["column1", "column2", ...],
  "rows": [["cell", "cell", ...], ["cell", "cell", ...]]
}

Rules:
1. Use ONLY facts that appear in the context. Do not invent cells.
2. Every row must have exactly as many cells as there are headers.
3. Include at least two columns and at least one row.
4. If the context contains no suitable data, respond with exactly %s.

Context:
%s

Question: %s`, NoDataToken, context, question)
}
