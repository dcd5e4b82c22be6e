package harness

// QueryResult is the response of one query step.
type QueryResult struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// Queries holds the responses in step order.
	Queries []QueryResult `json:"queries"`

	// StorageTypes lists the storage types of the built schema.
	StorageTypes []string `json:"storage_types"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryResult{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Response returns the response of the named query.
func (r *Result) Response(name string) (map[string]any, bool) {
	for _, q := range r.Queries {
		if q.Name == name {
			return q.Response, true
		}
	}
	return nil, false
}
