package search

// Result is a single search hit returned to the caller.
type Result struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Status  string `json:"status"`
	Column  string `json:"column"`
	Board   string `json:"board"`
}

// Query describes a search request. OwnerID is mandatory: results are always
// restricted to tasks on boards owned by the caller.
type Query struct {
	Text    string
	OwnerID string
	Limit   int
	Offset  int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push tasks into a search index.
type Indexer interface {
	IndexTask(t TaskRecord) error
	DeleteTask(id string) error
}

// TaskRecord is the data we index for a task. OwnerID is denormalized in so
// the index can filter per caller without touching the database.
type TaskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ColumnID    string `json:"columnId"`
	BoardID     string `json:"boardId"`
	OwnerID     string `json:"ownerId"`
}
