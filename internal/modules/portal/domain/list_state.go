package domain

import "fmt"

// ListState is an immutable snapshot of one list view, handed to listeners
// after every transition.
type ListState[T any] struct {
	Entity     string      `json:"entity"`
	Rows       []T         `json:"rows"`
	Total      int         `json:"total"`
	Loading    bool        `json:"isLoading"`
	Refetching bool        `json:"isRefetching"`
	Error      bool        `json:"isError"`
	ErrorText  string      `json:"error,omitempty"`
	Ready      bool        `json:"ready"`
	Filters    FilterState `json:"filters"`
	Pagination Pagination  `json:"pagination"`
	// Updating lists the keys of rows with an update in flight.
	Updating []string `json:"updating"`
	Pager    string   `json:"pager"`
}

// IsUpdating reports whether the row with the given key has an update in flight.
func (s ListState[T]) IsUpdating(key string) bool {
	for _, k := range s.Updating {
		if k == key {
			return true
		}
	}
	return false
}

// PagerLabel renders the "1–10 of 37" range label of a table footer.
func PagerLabel(p Pagination, rows, total int) string {
	if rows <= 0 {
		return fmt.Sprintf("0–0 of %d", max(total, 0))
	}
	from := p.Offset() + 1
	to := p.Offset() + rows
	if total < to {
		total = to
	}
	return fmt.Sprintf("%d–%d of %d", from, to, total)
}
