package models

// RecordKind tags the closed set of structured-record variants the extractor
// can produce.
type RecordKind string

const (
	RecordChart RecordKind = "chart"
	RecordTable RecordKind = "table"
	RecordNone  RecordKind = "none"
)

// Chart types the renderer accepts.
const (
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
)

// ChartRecord is a candidate chart extracted from retrieved context.
type ChartRecord struct {
	ChartType  string    `json:"chart_type"`
	Labels     []string  `json:"labels"`
	Values     []float64 `json:"values"`
	Title      string    `json:"title,omitempty"`
	XAxisLabel string    `json:"x_axis_label,omitempty"`
	YAxisLabel string    `json:"y_axis_label,omitempty"`
}

// TableRecord is a candidate table extracted from retrieved context.
type TableRecord struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Title   string     `json:"title,omitempty"`
}

// StructuredRecord is the closed union of extraction outcomes. At most one
// of Chart or Table is non-nil; a RecordNone kind carries neither and stands
// for "no meaningful data". Decoding failures collapse into RecordNone
// instead of propagating an error.
type StructuredRecord struct {
	Kind  RecordKind   `json:"kind"`
	Chart *ChartRecord `json:"chart,omitempty"`
	Table *TableRecord `json:"table,omitempty"`
}

// NoData returns the sentinel record used when extraction finds nothing
// meaningful to visualize.
func NoData() StructuredRecord {
	return StructuredRecord{Kind: RecordNone}
}

// IsNone reports whether the record carries no usable data.
func (r StructuredRecord) IsNone() bool {
	switch r.Kind {
	case RecordChart:
		return r.Chart == nil
	case RecordTable:
		return r.Table == nil
	default:
		return true
	}
}
