package usecase

import (
	"context"
	"encoding/json"

	"portalConsole/internal/modules/portal/domain"
)

// View is a Controller seen without its row type, as the websocket surface
// and the registry hold it.
type View interface {
	Entity() string
	ID() string
	HostID() string
	Mount(nav domain.NavigationState) error
	SetColumnFilter(id, value string)
	SetColumnFilters(columns []domain.ColumnFilter)
	SetGlobalFilter(value string)
	SetSorting(sorting []domain.SortKey)
	SetPagination(p domain.Pagination)
	SetHost(hostID string)
	Refresh(ctx context.Context) error
	Reload(ctx context.Context) error
	DeleteJSON(ctx context.Context, raw json.RawMessage) error
	UpdateJSON(ctx context.Context, raw json.RawMessage, path string) error
	SubmitJSON(ctx context.Context, mode string, raw json.RawMessage) error
	Snapshot() any
	Watch(fn func(state any)) func()
	Close()
	Wait()
}

var _ View = (*Controller[domain.Role])(nil)
