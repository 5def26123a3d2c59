package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ColumnFilter is one per filterable column, in the order the user applied them.
type ColumnFilter struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// SortKey orders the result by one column.
type SortKey struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// Pagination is the list window owned by a view.
type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// Normalize returns a copy with defaults and bounds applied.
func (p Pagination) Normalize() Pagination {
	normalized := p
	if normalized.PageIndex < 0 {
		normalized.PageIndex = 0
	}
	if normalized.PageSize <= 0 {
		normalized.PageSize = DefaultPageSize
	}
	if normalized.PageSize > MaxPageSize {
		normalized.PageSize = MaxPageSize
	}
	return normalized
}

// Offset is the server-side row offset of the window.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return n.PageIndex * n.PageSize
}

// FilterState is the column filter list, global filter and sort keys of a view.
type FilterState struct {
	Columns []ColumnFilter `json:"columnFilters"`
	Global  string         `json:"globalFilter"`
	Sorting []SortKey      `json:"sorting"`
}

// Clone returns a deep copy so snapshots never alias controller state.
func (f FilterState) Clone() FilterState {
	cloned := FilterState{Global: f.Global}
	if f.Columns != nil {
		cloned.Columns = append([]ColumnFilter(nil), f.Columns...)
	}
	if f.Sorting != nil {
		cloned.Sorting = append([]SortKey(nil), f.Sorting...)
	}
	return cloned
}

// Column returns the value of a column filter.
func (f FilterState) Column(id string) (string, bool) {
	id = strings.TrimSpace(id)
	for _, c := range f.Columns {
		if c.ID == id {
			return c.Value, true
		}
	}
	return "", false
}

// WithColumn sets, replaces or (for an empty value) removes a column filter,
// keeping the position of existing entries. The bool reports a change.
func (f FilterState) WithColumn(id, value string) (FilterState, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return f, false
	}
	next := f.Clone()
	for i, c := range next.Columns {
		if c.ID != id {
			continue
		}
		if value == "" {
			next.Columns = append(next.Columns[:i], next.Columns[i+1:]...)
			return next, true
		}
		if c.Value == value {
			return f, false
		}
		next.Columns[i].Value = value
		return next, true
	}
	if value == "" {
		return f, false
	}
	next.Columns = append(next.Columns, ColumnFilter{ID: id, Value: value})
	return next, true
}

// WithColumns replaces the whole column filter list, dropping blank entries
// and keeping the first occurrence of a repeated id.
func (f FilterState) WithColumns(columns []ColumnFilter) FilterState {
	next := f.Clone()
	next.Columns = sanitizeColumns(columns)
	return next
}

// Equal compares two filter states including order.
func (f FilterState) Equal(other FilterState) bool {
	if f.Global != other.Global || len(f.Columns) != len(other.Columns) || len(f.Sorting) != len(other.Sorting) {
		return false
	}
	for i := range f.Columns {
		if f.Columns[i] != other.Columns[i] {
			return false
		}
	}
	for i := range f.Sorting {
		if f.Sorting[i] != other.Sorting[i] {
			return false
		}
	}
	return true
}

// ListQuery is everything serialized into the data of a list query envelope.
type ListQuery struct {
	HostID     string
	Filters    FilterState
	Pagination Pagination
}

// Data renders the query the way the portal table endpoints expect it:
// column filters and sorting travel as JSON strings.
func (q ListQuery) Data() (map[string]any, error) {
	page := q.Pagination.Normalize()
	columns := q.Filters.Columns
	if columns == nil {
		columns = []ColumnFilter{}
	}
	sorting := q.Filters.Sorting
	if sorting == nil {
		sorting = []SortKey{}
	}
	filters, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("encode column filters: %w", err)
	}
	sorts, err := json.Marshal(sorting)
	if err != nil {
		return nil, fmt.Errorf("encode sorting: %w", err)
	}
	return map[string]any{
		"hostId":       strings.TrimSpace(q.HostID),
		"offset":       page.Offset(),
		"limit":        page.PageSize,
		"filters":      string(filters),
		"globalFilter": strings.TrimSpace(q.Filters.Global),
		"sorting":      string(sorts),
	}, nil
}

// CanonicalKey builds a stable key for the combination of query parameters.
func (q ListQuery) CanonicalKey() string {
	page := q.Pagination.Normalize()
	var builder strings.Builder
	builder.WriteString("host=")
	builder.WriteString(strings.TrimSpace(q.HostID))
	builder.WriteString("&offset=")
	builder.WriteString(strconv.Itoa(page.Offset()))
	builder.WriteString("&limit=")
	builder.WriteString(strconv.Itoa(page.PageSize))
	builder.WriteString("&global=")
	builder.WriteString(strings.ToLower(strings.TrimSpace(q.Filters.Global)))
	if len(q.Filters.Columns) > 0 {
		builder.WriteString("&filters=")
		for i, c := range q.Filters.Columns {
			if i > 0 {
				builder.WriteString(";")
			}
			builder.WriteString(c.ID)
			builder.WriteString("=")
			builder.WriteString(c.Value)
		}
	}
	if len(q.Filters.Sorting) > 0 {
		builder.WriteString("&sort=")
		for i, s := range q.Filters.Sorting {
			if i > 0 {
				builder.WriteString(";")
			}
			builder.WriteString(s.ID)
			if s.Desc {
				builder.WriteString(":desc")
			}
		}
	}
	return builder.String()
}

func sanitizeColumns(columns []ColumnFilter) []ColumnFilter {
	if len(columns) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(columns))
	sanitized := make([]ColumnFilter, 0, len(columns))
	for _, c := range columns {
		id := strings.TrimSpace(c.ID)
		if id == "" || c.Value == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		sanitized = append(sanitized, ColumnFilter{ID: id, Value: c.Value})
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}
