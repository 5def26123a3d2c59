package usecase

import (
	"errors"
	"testing"

	"portalConsole/internal/modules/portal/domain"
)

func TestDefaultCatalogLookupAliases(t *testing.T) {
	catalog := DefaultCatalog()
	cases := map[string]string{
		"rolePermission":  "role-permissions",
		"CONFIG_INSTANCE": "config-instances",
		"user":            "users",
		"roles":           "roles",
	}
	for raw, want := range cases {
		entry, err := catalog.Lookup(raw)
		if err != nil {
			t.Fatalf("lookup %q failed: %v", raw, err)
		}
		if entry.Entity != want {
			t.Fatalf("lookup %q: want %s got %s", raw, want, entry.Entity)
		}
	}
	if _, err := catalog.Lookup("restaurants"); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestDefaultCatalogEntriesAreComplete(t *testing.T) {
	entries := DefaultCatalog().Entries()
	if len(entries) != 20 {
		t.Fatalf("expected 20 entities, got %d", len(entries))
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.Entity] {
			t.Fatalf("duplicate entity %s", e.Entity)
		}
		seen[e.Entity] = true
		if e.Service == "" || e.QueryAction == "" || e.ResultKey == "" || e.DeleteAction == "" || e.FreshAction == "" {
			t.Fatalf("incomplete entry: %+v", e)
		}
		if len(e.KeyFields) == 0 {
			t.Fatalf("entry %s has no key fields", e.Entity)
		}
		if len(e.SeedFields) > 0 && !e.SeedActive {
			t.Fatalf("child list %s must seed active", e.Entity)
		}
	}
	if entries[0].Entity != "roles" || entries[len(entries)-1].Entity != "users" {
		t.Fatalf("unexpected order: %s .. %s", entries[0].Entity, entries[len(entries)-1].Entity)
	}
}

func TestCompositeKeys(t *testing.T) {
	row := domain.RoleRowFilter{RoleID: "admin", EndpointID: "ep1", ColName: " status "}
	if got := RoleRowFilters.Key(row); got != "admin-ep1-status" {
		t.Fatalf("unexpected key %q", got)
	}
	env := domain.ConfigEnvironment{Environment: "dev", PropertyID: "p1"}
	if got := ConfigEnvironments.Key(env); got != "dev-p1" {
		t.Fatalf("unexpected key %q", got)
	}
	if Users.QueryAction != "listUserByHostId" || Users.FreshAction != "getFreshUser" {
		t.Fatalf("unexpected user actions: %+v", Users)
	}
}

func TestEntryOpenBuildsTypedView(t *testing.T) {
	entry, err := DefaultCatalog().Lookup("role-permissions")
	if err != nil {
		t.Fatal(err)
	}
	view := entry.Open(domain.Session{HostID: "H1"}, &fakePortal{}, ControllerOptions{ViewID: "v"})
	defer view.Close()
	if _, ok := view.(*Controller[domain.RolePermission]); !ok {
		t.Fatalf("unexpected view type %T", view)
	}
	if view.Entity() != "role-permissions" || view.HostID() != "H1" || view.ID() != "v" {
		t.Fatalf("unexpected view identity %s %s %s", view.Entity(), view.HostID(), view.ID())
	}
}
