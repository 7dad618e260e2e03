package model

// Filter holds criteria for querying tickets. Each populated field maps to
// one secondary-index key; multiple populated fields intersect.
type Filter struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Type     string   `json:"type,omitempty"`
	Category string   `json:"category,omitempty"`
	Assignee string   `json:"assignee,omitempty"`
	Reporter string   `json:"reporter,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	Sort   string `json:"sort,omitempty"` // e.g. "-priority", "created_at"; prefix "-" = descending
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Empty reports whether no index-backed criteria are set. An empty filter
// falls back to scanning the full ordering index.
func (f Filter) Empty() bool {
	return f.Status == "" && f.Priority == "" && f.Type == "" &&
		f.Category == "" && f.Assignee == "" && f.Reporter == "" &&
		len(f.Tags) == 0
}
