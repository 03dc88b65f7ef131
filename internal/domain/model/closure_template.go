package model

// ClosureTemplate is an immutable catalog entry, read-only to this service.
type ClosureTemplate struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	SortOrder int    `json:"sort_order"`
}
