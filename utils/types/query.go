// websage/utils/types/query.go
package types

// Source is one retrieved passage backing an answer, in similarity-rank order.
type Source struct {
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// QueryResult is produced fresh per query and never persisted as-is.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type QueryRequest struct {
	Collection string   `json:"collection"`
	Question   string   `json:"question"`
	NumResults int      `json:"n_results,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"` // nil means "use configured default"
}

type CollectionInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
