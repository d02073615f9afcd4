package api

import (
	"time"
)

// DatasetSummary describes the dataset currently held for a workspace view.
type DatasetSummary struct {
	ID           string    `json:"id"`
	Workspace    string    `json:"workspace"`
	View         string    `json:"view"`
	Filename     string    `json:"filename"`
	Generation   uint64    `json:"generation"`
	Rows         int       `json:"rows"`
	FilteredRows int       `json:"filtered_rows"`
	Columns      []string  `json:"columns"`
	Departments  []string  `json:"departments,omitempty"`
	SlotFamilies []string  `json:"slot_families,omitempty"`
	Filtered     bool      `json:"filtered"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// RowsResponse is the filtered row set of a view.
type RowsResponse struct {
	Columns []string `json:"columns"`
	Rows    []any    `json:"rows"`
	Total   int      `json:"total"`
}

// MetricResult is one evaluated metric.
type MetricResult struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
	Data  any    `json:"data"`
}

// MetricsResponse carries evaluated metrics together with the filtered
// row count they were computed over.
type MetricsResponse struct {
	View         string         `json:"view"`
	FilteredRows int            `json:"filtered_rows"`
	Metrics      []MetricResult `json:"metrics"`
}

// ViewInfo describes one analysis view for clients building upload forms.
type ViewInfo struct {
	View           string   `json:"view"`
	Title          string   `json:"title"`
	Required       []string `json:"required"`
	SlotFamilies   []string `json:"slot_families,omitempty"`
	DynamicColumns bool     `json:"dynamic_columns"`
	Metrics        []string `json:"metrics"`
}
