package dto

// ImportSummary reports the outcome of one CSV upload. Rejected rows are
// listed individually — a bad row never blocks the valid rows around it.
type ImportSummary struct {
	RowsImported int      `json:"rows_imported"`
	Products     []string `json:"products,omitempty"`
	RowErrors    []string `json:"row_errors,omitempty"`
	// RetrainsQueued counts the async retrain jobs enqueued for the models
	// this upload made stale.
	RetrainsQueued int `json:"retrains_queued"`
}
