package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
)

func TestListLoadScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(37)
	c, log := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	env := h.portal.LastQuery(t)
	require.Equal(t, "lightapi.net", env.Host)
	require.Equal(t, "role", env.Service)
	require.Equal(t, "getRole", env.Action)
	require.Equal(t, "0.1.0", env.Version)
	data := queryData(t, env)
	require.Equal(t, "H1", data["hostId"])
	require.Equal(t, 0, data["offset"])
	require.Equal(t, 10, data["limit"])

	state := c.State()
	require.Len(t, state.Rows, 10)
	require.Equal(t, 37, state.Total)
	require.Equal(t, "1–10 of 37", state.Pager)
	require.False(t, state.Loading)
	require.False(t, state.Refetching)
	require.False(t, state.Error)

	states := log.All()
	require.NotEmpty(t, states)
	require.True(t, states[0].Loading, "first load must report isLoading")
	require.False(t, states[0].Refetching)
}

func TestReloadReportsRefetching(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(37)
	c, log := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	before := len(log.All())
	c.SetPagination(domain.Pagination{PageIndex: 1, PageSize: 10})
	c.Wait()

	states := log.All()[before:]
	require.NotEmpty(t, states)
	require.True(t, states[0].Refetching)
	require.False(t, states[0].Loading)
	require.Equal(t, "11–20 of 37", c.State().Pager)
}

func TestRefreshIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(37)
	c, _ := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	first := c.State()
	require.NoError(t, c.Refresh(context.Background()))
	c.Wait()
	second := c.State()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("refetch changed state (-first +second):\n%s", diff)
	}
	queries := h.portal.Queries()
	require.Len(t, queries, 2)
	require.Equal(t, queryData(t, queries[0]), queryData(t, queries[1]))
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(37)
	c, _ := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	require.Len(t, h.portal.Queries(), 1)

	for _, text := range []string{"a", "ad", "adm", "admi", "admin"} {
		c.SetColumnFilter("roleId", text)
		h.clock.Advance(300 * time.Millisecond)
	}
	c.Wait()
	require.Len(t, h.portal.Queries(), 1, "keystrokes inside the window must not fetch")

	h.clock.Advance(DefaultDebounce)
	c.Wait()
	queries := h.portal.Queries()
	require.Len(t, queries, 2)
	require.Equal(t, `[{"id":"roleId","value":"admin"}]`, queryData(t, queries[1])["filters"])

	value, ok := c.State().Filters.Column("roleId")
	require.True(t, ok)
	require.Equal(t, "admin", value)
}

func TestGlobalFilterDebouncedWithColumns(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(5)
	c, _ := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	c.SetGlobalFilter("ops")
	h.clock.Advance(500 * time.Millisecond)
	c.SetColumnFilter("roleDesc", "manager")
	h.clock.Advance(999 * time.Millisecond)
	c.Wait()
	require.Len(t, h.portal.Queries(), 1)

	h.clock.Advance(time.Millisecond)
	c.Wait()
	data := queryData(t, h.portal.LastQuery(t))
	require.Equal(t, "ops", data["globalFilter"])
	require.Equal(t, `[{"id":"roleDesc","value":"manager"}]`, data["filters"])
}

func TestFilterChangeResetsPage(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(37)
	c, _ := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.SetPagination(domain.Pagination{PageIndex: 2, PageSize: 10})
	c.Wait()
	require.Equal(t, 20, queryData(t, h.portal.LastQuery(t))["offset"])

	c.SetSorting([]domain.SortKey{{ID: "roleId", Desc: true}})
	c.Wait()
	require.Equal(t, 20, queryData(t, h.portal.LastQuery(t))["offset"], "sorting keeps the page")

	c.SetGlobalFilter("admin")
	h.clock.Advance(DefaultDebounce)
	c.Wait()
	last := queryData(t, h.portal.LastQuery(t))
	require.Equal(t, 0, last["offset"])
	require.Equal(t, "admin", last["globalFilter"])
	require.Equal(t, 0, c.State().Pagination.PageIndex)

	c.SetPagination(domain.Pagination{PageIndex: 1, PageSize: 10})
	c.Wait()
	c.SetColumnFilters([]domain.ColumnFilter{{ID: "roleId", Value: "x"}})
	c.Wait()
	require.Equal(t, 0, queryData(t, h.portal.LastQuery(t))["offset"])
}

func TestOptimisticDeleteRollsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = func(context.Context, domain.Envelope) ([]byte, error) {
		return []byte(`{"roles":[
			{"hostId":"H1","roleId":"admin","aggregateVersion":3},
			{"hostId":"H1","roleId":"user","aggregateVersion":1},
			{"hostId":"H1","roleId":"ops","aggregateVersion":2}],"total":3}`), nil
	}
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	original := c.State()
	require.Len(t, original.Rows, 3)

	var during domain.ListState[domain.Role]
	h.portal.onCommand = func(_ context.Context, env domain.Envelope) ([]byte, error) {
		during = c.State()
		return nil, &port.PortalError{Status: http.StatusConflict, Code: "ERR10065", Description: "aggregate version mismatch"}
	}

	err := c.Delete(context.Background(), original.Rows[0])
	require.Error(t, err)
	var portalErr *port.PortalError
	require.True(t, errors.As(err, &portalErr))

	require.Len(t, during.Rows, 2)
	require.Equal(t, 2, during.Total)

	commands := h.portal.Commands()
	require.Len(t, commands, 1)
	require.Equal(t, "deleteRole", commands[0].Action)
	body, jerr := json.Marshal(commands[0].Data)
	require.NoError(t, jerr)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))
	require.Equal(t, float64(3), sent["aggregateVersion"])
	require.Equal(t, "admin", sent["roleId"])

	after := c.State()
	if diff := cmp.Diff(original.Rows, after.Rows); diff != "" {
		t.Fatalf("rows not restored (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, after.Total)
	alerts := h.notifier.Alerts()
	require.Len(t, alerts, 1)
	require.Equal(t, "aggregate version mismatch", alerts[0].Message)
	require.Equal(t, 1, h.observer.rollbacks)
}

func TestMutationsCarryListedWireFields(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = func(_ context.Context, env domain.Envelope) ([]byte, error) {
		if env.Action == "getFreshRole" {
			return []byte(`{"hostId":"H1","roleId":"admin","aggregateVersion":4}`), nil
		}
		return []byte(`{"roles":[{"hostId":"H1","roleId":"admin","orgId":"acme","aggregateVersion":3}],"total":1}`), nil
	}
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	require.NoError(t, c.UpdateJSON(context.Background(), json.RawMessage(`{"hostId":"H1","roleId":"admin","aggregateVersion":3}`), ""))
	fresh := queryData(t, h.portal.LastQuery(t))
	require.Equal(t, "acme", fresh["orgId"])
	require.EqualValues(t, 3, fresh["aggregateVersion"])

	require.NoError(t, c.DeleteJSON(context.Background(), json.RawMessage(`{"hostId":"H1","roleId":"admin","aggregateVersion":3}`)))
	commands := h.portal.Commands()
	require.Len(t, commands, 1)
	sent := commands[0].Data.(map[string]any)
	require.Equal(t, "acme", sent["orgId"])
	require.Equal(t, "admin", sent["roleId"])

	// Rows the list never showed go out as decoded.
	require.NoError(t, c.DeleteJSON(context.Background(), json.RawMessage(`{"roleId":"ghost"}`)))
	_, typed := h.portal.Commands()[1].Data.(domain.Role)
	require.True(t, typed)
}

func TestDeleteSuccessKeepsRemoval(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(3)
	var mutated []string
	opts := h.options()
	opts.OnMutated = func(entity, hostID string) { mutated = append(mutated, entity+"@"+hostID) }
	c := NewController(Roles, domain.Session{HostID: "H1"}, h.portal, opts)
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	row := c.State().Rows[1]
	require.NoError(t, c.Delete(context.Background(), row))
	state := c.State()
	require.Len(t, state.Rows, 2)
	require.Equal(t, 2, state.Total)
	require.Empty(t, h.notifier.Alerts())
	require.Equal(t, []string{"roles@H1"}, mutated)
	require.Len(t, h.confirmer.prompts, 1)
	require.Equal(t, row.RoleID, h.confirmer.prompts[0].Key)
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.confirmer.answer = false
	h.portal.onQuery = pagedRoles(3)
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	before := c.State()

	err := c.Delete(context.Background(), before.Rows[0])
	require.ErrorIs(t, err, ErrConfirmationDeclined)
	require.Empty(t, h.portal.Commands())
	if diff := cmp.Diff(before, c.State()); diff != "" {
		t.Fatalf("declined delete changed state:\n%s", diff)
	}
}

func TestDeleteRollbackSkippedAfterNewerData(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(3)
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	row := c.State().Rows[0]

	h.portal.onCommand = func(context.Context, domain.Envelope) ([]byte, error) {
		h.portal.mu.Lock()
		h.portal.onQuery = pagedRoles(2)
		h.portal.mu.Unlock()
		require.NoError(t, c.Refresh(context.Background()))
		c.Wait()
		return nil, errors.New("connection reset")
	}

	require.Error(t, c.Delete(context.Background(), row))
	state := c.State()
	require.Len(t, state.Rows, 2, "newer server rows win over the rollback snapshot")
	require.Equal(t, 2, state.Total)
	require.Len(t, h.notifier.Alerts(), 1)
	require.Zero(t, h.observer.rollbacks)
}

func TestUpdateNavigatesWithFreshRecord(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	c, log := newRoleController(h, "H1")
	defer c.Close()

	var marked bool
	h.portal.onQuery = func(_ context.Context, env domain.Envelope) ([]byte, error) {
		if env.Action == "getFreshRole" {
			marked = c.State().IsUpdating("admin")
			require.ErrorIs(t, c.Update(context.Background(), domain.Role{RoleID: "admin"}, ""), ErrUpdateInFlight)
			return []byte(`{"hostId":"H1","roleId":"admin","roleDesc":"Administrator","aggregateVersion":5}`), nil
		}
		return []byte(`{"roles":[{"hostId":"H1","roleId":"admin","aggregateVersion":4}],"total":1}`), nil
	}
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	require.NoError(t, c.Update(context.Background(), c.State().Rows[0], ""))
	require.True(t, marked, "row must be marked in flight during the fresh fetch")
	require.False(t, c.State().IsUpdating("admin"))

	require.Len(t, h.navigator.navs, 1)
	nav := h.navigator.navs[0]
	require.Equal(t, "/app/form/updateRole", nav.Path)
	require.Equal(t, "/app/access/role", nav.State.Source)
	require.Equal(t, float64(5), nav.State.Data["aggregateVersion"])
	require.Equal(t, "Administrator", nav.State.Data["roleDesc"])

	var sawMarker bool
	for _, s := range log.All() {
		if s.IsUpdating("admin") {
			sawMarker = true
		}
	}
	require.True(t, sawMarker)
}

func TestUpdateFailureAlertsAndLeavesList(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	h.portal.onQuery = func(_ context.Context, env domain.Envelope) ([]byte, error) {
		if env.Action == "getFreshRole" {
			return nil, &port.PortalError{Status: http.StatusNotFound, Description: "role not found"}
		}
		return rolesBody(0, 2, 2), nil
	}
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	before := c.State()

	err := c.Update(context.Background(), before.Rows[0], "/somewhere")
	require.ErrorIs(t, err, port.ErrPortalNotFound)
	require.Empty(t, h.navigator.navs)
	require.Equal(t, "role not found", h.notifier.Alerts()[0].Message)
	if diff := cmp.Diff(before, c.State()); diff != "" {
		t.Fatalf("failed update changed list:\n%s", diff)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	release := make(chan struct{})
	h.portal.onQuery = func(_ context.Context, env domain.Envelope) ([]byte, error) {
		data := env.Data.(map[string]any)
		if data["offset"] == 0 {
			<-release
			return rolesBody(0, 10, 99), nil
		}
		return rolesBody(data["offset"].(int), 10, 37), nil
	}
	c, _ := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	require.Eventually(t, func() bool { return len(h.portal.Queries()) == 1 }, time.Second, time.Millisecond)
	c.SetPagination(domain.Pagination{PageIndex: 1, PageSize: 10})
	require.Eventually(t, func() bool { return c.State().Total == 37 }, time.Second, time.Millisecond)

	close(release)
	c.Wait()
	state := c.State()
	require.Equal(t, 37, state.Total)
	require.Equal(t, "role-10", state.Rows[0].RoleID)
	require.Equal(t, 1, h.observer.stale)
}

func TestCloseDiscardsLateResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	release := make(chan struct{})
	h.portal.onQuery = func(context.Context, domain.Envelope) ([]byte, error) {
		<-release
		return rolesBody(0, 3, 3), nil
	}
	c, log := newRoleController(h, "H1")

	require.NoError(t, c.Mount(domain.NavigationState{}))
	emitted := len(log.All())
	c.Close()
	close(release)
	c.Wait()

	require.Len(t, log.All(), emitted, "no state may be emitted after close")
	require.Empty(t, c.State().Rows)
	require.ErrorIs(t, c.Refresh(context.Background()), ErrControllerClosed)
	require.ErrorIs(t, c.Delete(context.Background(), domain.Role{RoleID: "x"}), ErrControllerClosed)
}

func TestMissingHostSkipsFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(4)
	c, _ := newRoleController(h, "")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	require.Empty(t, h.portal.Queries())
	state := c.State()
	require.False(t, state.Ready)
	require.False(t, state.Error)
	require.ErrorIs(t, c.Refresh(context.Background()), ErrNotReady)

	c.SetHost("H1")
	c.Wait()
	require.Len(t, h.portal.Queries(), 1)
	require.Equal(t, "H1", queryData(t, h.portal.LastQuery(t))["hostId"])
	require.Len(t, c.State().Rows, 4)
}

func TestHostChangeRefetchesFromFirstPage(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(37)
	c, _ := newRoleController(h, "H1")
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.SetPagination(domain.Pagination{PageIndex: 2, PageSize: 10})
	c.Wait()
	require.Equal(t, 20, queryData(t, h.portal.LastQuery(t))["offset"])

	c.SetHost("H2")
	c.Wait()
	data := queryData(t, h.portal.LastQuery(t))
	require.Equal(t, "H2", data["hostId"])
	require.Equal(t, 0, data["offset"])
	require.Equal(t, "H2", c.HostID())

	before := len(h.portal.Queries())
	c.SetHost(" H2 ")
	c.Wait()
	require.Len(t, h.portal.Queries(), before, "same host must not refetch")
}

func TestContextualSeed(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	c := NewController(RolePermissions, domain.Session{HostID: "H1"}, h.portal, h.options())
	defer c.Close()

	require.NoError(t, c.Mount(domain.NavigationState{Data: map[string]any{"roleId": "admin"}, Source: "/app/access/role"}))
	c.Wait()

	queries := h.portal.Queries()
	require.Len(t, queries, 1)
	require.Equal(t, "queryRolePermission", queries[0].Action)
	require.Equal(t, `[{"id":"roleId","value":"admin"},{"id":"active","value":"true"}]`, queryData(t, queries[0])["filters"])

	require.NoError(t, c.Mount(domain.NavigationState{Data: map[string]any{"roleId": "other"}}))
	c.Wait()
	require.Len(t, h.portal.Queries(), 1, "seeding happens once")
	value, _ := c.State().Filters.Column("roleId")
	require.Equal(t, "admin", value)
}

func TestRowIdentityDeduplicates(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = func(context.Context, domain.Envelope) ([]byte, error) {
		return []byte(`{"rolePermissions":[
			{"hostId":"H1","roleId":"admin","endpointId":"ep1","endpoint":"first"},
			{"hostId":"H1","roleId":"admin","endpointId":"ep2"},
			{"hostId":"H1","roleId":"admin","endpointId":"ep1","endpoint":"second"}],"total":3}`), nil
	}
	c := NewController(RolePermissions, domain.Session{HostID: "H1"}, h.portal, h.options())
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	rows := c.State().Rows
	require.Len(t, rows, 2)
	seen := map[string]bool{}
	for _, row := range rows {
		key := RolePermissions.Key(row)
		require.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
	require.Equal(t, "first", rows[0].Endpoint)
}

func TestFetchErrorPreservesLastGoodRows(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(12)
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()
	good := c.State().Rows

	h.portal.mu.Lock()
	h.portal.onQuery = func(context.Context, domain.Envelope) ([]byte, error) {
		return nil, &port.PortalError{Status: http.StatusInternalServerError, Description: "database unavailable"}
	}
	h.portal.mu.Unlock()
	c.SetPagination(domain.Pagination{PageIndex: 1, PageSize: 10})
	c.Wait()

	state := c.State()
	require.True(t, state.Error)
	require.Equal(t, "database unavailable", state.ErrorText)
	require.False(t, state.Loading)
	require.False(t, state.Refetching)
	if diff := cmp.Diff(good, state.Rows); diff != "" {
		t.Fatalf("rows lost on error:\n%s", diff)
	}

	h.portal.mu.Lock()
	h.portal.onQuery = pagedRoles(12)
	h.portal.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))
	c.Wait()
	require.False(t, c.State().Error)
	require.Len(t, c.State().Rows, 2)
}

func TestMalformedResponseIsFetchError(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = func(context.Context, domain.Envelope) ([]byte, error) {
		return []byte(`<html>login</html>`), nil
	}
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	require.True(t, c.State().Error)
	require.Equal(t, 1, h.observer.failures)
}

func TestSubmitCreatesAndRefetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onQuery = pagedRoles(1)
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	require.NoError(t, c.SubmitJSON(context.Background(), "create", json.RawMessage(`{"roleId":"auditor","roleDesc":"Read only"}`)))
	c.Wait()

	commands := h.portal.Commands()
	require.Len(t, commands, 1)
	require.Equal(t, "createRole", commands[0].Action)
	payload := commands[0].Data.(map[string]any)
	require.Equal(t, "H1", payload["hostId"])
	require.Equal(t, "auditor", payload["roleId"])
	require.Len(t, h.portal.Queries(), 2)

	require.ErrorIs(t, c.Submit(context.Background(), "upsert", nil), ErrUnknownSubmitMode)
}

func TestSubmitFailureAlerts(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHarness()
	h.portal.onCommand = func(context.Context, domain.Envelope) ([]byte, error) {
		return nil, &port.PortalError{Status: http.StatusBadRequest, Description: "roleId is required"}
	}
	c, _ := newRoleController(h, "H1")
	defer c.Close()
	require.NoError(t, c.Mount(domain.NavigationState{}))
	c.Wait()

	err := c.Submit(context.Background(), "update", map[string]any{"roleDesc": "x"})
	require.ErrorIs(t, err, port.ErrPortalRejected)
	require.Equal(t, "updateRole", h.portal.Commands()[0].Action)
	require.Equal(t, "roleId is required", h.notifier.Alerts()[0].Message)
	require.Len(t, h.portal.Queries(), 1)
}
