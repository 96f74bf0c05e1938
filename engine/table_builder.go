package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from a RecordView
// ============================================================================
// Columns name either a dimension (Type "text") or a measure ("number" for
// integers, "decimal" for two-place values). One row per record, view order.
// ============================================================================

// TextColumn declares a left-aligned dimension column.
func TextColumn(key string) Column {
	return Column{Key: key, Label: LabelForDimension(key), Type: "text", Align: "left"}
}

// NumberColumn declares a right-aligned integer measure column.
func NumberColumn(key string) Column {
	return Column{Key: key, Label: LabelForDimension(key), Type: "number", Align: "right"}
}

// DecimalColumn declares a right-aligned two-decimal measure column.
func DecimalColumn(key string) Column {
	return Column{Key: key, Label: LabelForDimension(key), Type: "decimal", Align: "right"}
}

// BuildListTable produces one row per record of view.
// The summary totals every numeric column.
func BuildListTable(title string, view RecordView, columns []Column) *TableData {
	rows := make([][]string, 0, view.Len())
	totals := make(map[string]float64)

	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			switch col.Type {
			case "number":
				v := view.Measure(i, col.Key)
				totals[col.Key] += v
				row = append(row, FormatInt(int(v)))
			case "decimal":
				v := view.Measure(i, col.Key)
				totals[col.Key] += v
				row = append(row, FormatDecimal(v, 2))
			default:
				row = append(row, view.Dimension(i, col.Key))
			}
		}
		rows = append(rows, row)
	}

	summary := &Summary{
		Label:  fmt.Sprintf("Total (%s records)", FormatInt(view.Len())),
		Values: make(map[string]string, len(totals)),
	}
	for _, col := range columns {
		switch col.Type {
		case "number":
			summary.Values[col.Key] = FormatInt(int(totals[col.Key]))
		case "decimal":
			summary.Values[col.Key] = FormatDecimal(totals[col.Key], 2)
		}
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: summary,
	}
}

// Header returns the column labels of a table, for CSV export.
func (t *TableData) Header() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}
