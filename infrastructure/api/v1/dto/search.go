// Package dto holds the request bodies of the v1 API.
package dto

// SearchAttributes are the search request attributes. Exactly one of Query
// or Vector must be set.
type SearchAttributes struct {
	Query  *string   `json:"query,omitempty"`
	Vector []float32 `json:"vector,omitempty"`
	Limit  *int      `json:"limit,omitempty"`
}

// SearchData is the search request data in JSON:API format.
type SearchData struct {
	Type       string           `json:"type"`
	Attributes SearchAttributes `json:"attributes"`
}

// SearchRequest is a JSON:API search request.
type SearchRequest struct {
	Data SearchData `json:"data"`
}
