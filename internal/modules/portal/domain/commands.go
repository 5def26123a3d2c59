package domain

import "encoding/json"

// MountCommand opens a view, optionally seeded by the page that linked to it.
type MountCommand struct {
	Navigation NavigationState `json:"nav"`
	PageSize   int             `json:"pageSize,omitempty"`
}

// SetFilterCommand changes one column filter; an empty value clears it.
type SetFilterCommand struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// SetFiltersCommand replaces the whole column filter list, as a table reset does.
type SetFiltersCommand struct {
	Columns []ColumnFilter `json:"columnFilters"`
}

type SetGlobalFilterCommand struct {
	Value string `json:"value"`
}

type SetSortingCommand struct {
	Sorting []SortKey `json:"sorting"`
}

type SetPaginationCommand struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// RowCommand carries a row as last rendered, including its aggregateVersion.
type RowCommand struct {
	Row  json.RawMessage `json:"row"`
	Path string          `json:"path,omitempty"`
}

const (
	SubmitCreate = "create"
	SubmitUpdate = "update"
)

// SubmitCommand saves the edit form of a view.
type SubmitCommand struct {
	Mode string          `json:"mode"`
	Data json.RawMessage `json:"data"`
}

// ConfirmReply answers a confirmation prompt pushed to the client.
type ConfirmReply struct {
	RequestID string `json:"requestId"`
	Accepted  bool   `json:"accepted"`
}

// SetHostCommand switches the tenant a view lists.
type SetHostCommand struct {
	HostID string `json:"hostId"`
}
