package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"portalConsole/internal/shared/normalization"
)

// DefaultMaxViews bounds the live views of one process.
const DefaultMaxViews = 1024

// ViewRegistry tracks live views by session and view id. When the bound is
// reached the least recently used view is closed.
type ViewRegistry struct {
	cache *lru.Cache[string, View]
}

func NewViewRegistry(size int) (*ViewRegistry, error) {
	if size <= 0 {
		size = DefaultMaxViews
	}
	cache, err := lru.NewWithEvict[string, View](size, func(key string, view View) {
		slog.Debug("view-registry closing view", slog.String("key", key), slog.String("entity", view.Entity()))
		view.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create view cache: %w", err)
	}
	return &ViewRegistry{cache: cache}, nil
}

func viewKey(sessionID, viewID string) string {
	return strings.TrimSpace(sessionID) + "/" + strings.TrimSpace(viewID)
}

// Add registers view under sessionID, closing any view it replaces.
func (r *ViewRegistry) Add(sessionID string, view View) {
	key := viewKey(sessionID, view.ID())
	if previous, ok := r.cache.Peek(key); ok && previous != view {
		r.cache.Remove(key)
	}
	r.cache.Add(key, view)
}

func (r *ViewRegistry) Get(sessionID, viewID string) (View, bool) {
	return r.cache.Get(viewKey(sessionID, viewID))
}

// Remove closes and forgets a view.
func (r *ViewRegistry) Remove(sessionID, viewID string) {
	r.cache.Remove(viewKey(sessionID, viewID))
}

// RefreshEntity refetches every live view of entity bound to hostID, except
// the view with id skipViewID. It returns the number of views refreshed.
func (r *ViewRegistry) RefreshEntity(ctx context.Context, entity, hostID, skipViewID string) int {
	name := normalization.NormalizeEntity(entity)
	hostID = strings.TrimSpace(hostID)
	refreshed := 0
	for _, view := range r.cache.Values() {
		if view.Entity() != name {
			continue
		}
		if hostID != "" && view.HostID() != hostID {
			continue
		}
		if skipViewID != "" && view.ID() == skipViewID {
			continue
		}
		err := view.Reload(ctx)
		switch {
		case err == nil:
			refreshed++
		case errors.Is(err, ErrNotReady), errors.Is(err, ErrNotMounted), errors.Is(err, ErrControllerClosed):
		default:
			slog.Warn("view-registry refresh failed", slog.String("entity", name), slog.String("viewId", view.ID()), slog.Any("error", err))
		}
	}
	return refreshed
}

// Len is the number of live views.
func (r *ViewRegistry) Len() int { return r.cache.Len() }

// Close closes every live view.
func (r *ViewRegistry) Close() { r.cache.Purge() }
