package usecase

import "strings"

// Definition declares one entity list: its routing keys on the portal, the
// wire key of its result array and the identity of its rows.
type Definition[T any] struct {
	Entity       string
	Service      string
	QueryAction  string
	FreshAction  string
	CreateAction string
	UpdateAction string
	DeleteAction string
	ResultKey    string
	// EditPath is where Update navigates with the fresh record.
	EditPath string
	Key      func(T) string
	// SeedFields are read from navigation state at mount and become column filters.
	SeedFields []string
	// SeedActive adds an active=true column filter at mount.
	SeedActive bool
}

func (d Definition[T]) rowKey(row T) string {
	if d.Key == nil {
		return ""
	}
	return d.Key(row)
}

// compositeKey joins the identity fields of a join-table row.
func compositeKey(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return strings.Join(trimmed, "-")
}

func dedupeRows[T any](rows []T, key func(T) string) []T {
	if key == nil || len(rows) < 2 {
		return rows
	}
	seen := make(map[string]struct{}, len(rows))
	unique := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, row)
	}
	return unique
}
