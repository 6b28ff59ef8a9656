package extract

// JSON Schemas for the two record shapes, checked with gojsonschema after
// decoding. Cross-field rules (label/value count equality, uniform row
// width) cannot be expressed here and live in validate.go.

var chartSchema = map[string]any{
	"type":     "object",
	"required": []any{"chart_type", "labels", "values"},
	"properties": map[string]any{
		"chart_type": map[string]any{
			"type": "string",
			"enum": []any{"bar", "line", "pie"},
		},
		"title": map[string]any{"type": "string"},
		"labels": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items":    map[string]any{"type": "string", "minLength": 1},
		},
		"values": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items":    map[string]any{"type": "number"},
		},
		"x_axis_label": map[string]any{"type": "string"},
		"y_axis_label": map[string]any{"type": "string"},
	},
}

var tableSchema = map[string]any{
	"type":     "object",
	"required": []any{"headers", "rows"},
	"properties": map[string]any{
		"title": map[string]any{"type": "string"},
		"headers": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items":    map[string]any{"type": "string", "minLength": 1},
		},
		"rows": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}
