package entity

// BatchResult partitions the ids of a batch request into disjoint outcome groups.
// NotReturned is only populated by loan deletion. Failed holds ids whose
// deletion hit a store error; the rest of the batch still runs.
type BatchResult struct {
	Deleted     []string
	NotFound    []string
	NotReturned []string
	Failed      []string
}

// NewBatchResult returns a result with non-nil slices so JSON renders [] instead of null.
func NewBatchResult() *BatchResult {
	return &BatchResult{Deleted: []string{}, NotFound: []string{}, NotReturned: []string{}, Failed: []string{}}
}

// Counts is the dashboard summary of every collection.
type Counts struct {
	Books   int64
	Users   int64
	Loans   int64
	Members int64
}
