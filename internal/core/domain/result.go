package domain

// ItemResult records the outcome of processing one item in a stage.
type ItemResult struct {
	// Name identifies the item (API name, file path, service name).
	Name string

	// Err is nil on success.
	Err error
}

// BatchResult aggregates per-item outcomes for one pipeline stage.
// Stages report failures explicitly instead of relying on log side
// effects alone.
type BatchResult struct {
	// Succeeded holds the names of items that completed, in order.
	// For file-producing stages these are output paths, so a later
	// stage can consume the list directly.
	Succeeded []string

	// Failed holds the items that did not complete, with reasons.
	Failed []ItemResult
}

// Ok records a successful item.
func (b *BatchResult) Ok(name string) {
	b.Succeeded = append(b.Succeeded, name)
}

// Fail records a failed item.
func (b *BatchResult) Fail(name string, err error) {
	b.Failed = append(b.Failed, ItemResult{Name: name, Err: err})
}

// Merge appends another result's items into this one.
func (b *BatchResult) Merge(other BatchResult) {
	b.Succeeded = append(b.Succeeded, other.Succeeded...)
	b.Failed = append(b.Failed, other.Failed...)
}

// SucceededCount returns the number of successful items.
func (b BatchResult) SucceededCount() int {
	return len(b.Succeeded)
}

// FailedCount returns the number of failed items.
func (b BatchResult) FailedCount() int {
	return len(b.Failed)
}
