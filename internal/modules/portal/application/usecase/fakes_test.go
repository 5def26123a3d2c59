package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/clock"
)

type portalFunc func(ctx context.Context, env domain.Envelope) ([]byte, error)

// fakePortal records every envelope and answers through the configured funcs.
// Queries arriving with a cancelled context are counted, not recorded, as a
// real transport never sends them.
type fakePortal struct {
	mu        sync.Mutex
	queries   []domain.Envelope
	cancelled int
	commands  []domain.Envelope
	onQuery   portalFunc
	onCommand portalFunc
}

func (p *fakePortal) Query(ctx context.Context, env domain.Envelope) ([]byte, error) {
	p.mu.Lock()
	if err := ctx.Err(); err != nil {
		p.cancelled++
		p.mu.Unlock()
		return nil, err
	}
	p.queries = append(p.queries, env)
	fn := p.onQuery
	p.mu.Unlock()
	if fn == nil {
		return []byte(`{"total":0}`), nil
	}
	return fn(ctx, env)
}

func (p *fakePortal) Command(ctx context.Context, env domain.Envelope) ([]byte, error) {
	p.mu.Lock()
	p.commands = append(p.commands, env)
	fn := p.onCommand
	p.mu.Unlock()
	if fn == nil {
		return []byte(`{"data":{}}`), nil
	}
	return fn(ctx, env)
}

func (p *fakePortal) Queries() []domain.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Envelope(nil), p.queries...)
}

func (p *fakePortal) Cancelled() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

func (p *fakePortal) Commands() []domain.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Envelope(nil), p.commands...)
}

func (p *fakePortal) LastQuery(t *testing.T) domain.Envelope {
	t.Helper()
	queries := p.Queries()
	if len(queries) == 0 {
		t.Fatal("no query sent")
	}
	return queries[len(queries)-1]
}

func queryData(t *testing.T, env domain.Envelope) map[string]any {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("query data is %T, want map", env.Data)
	}
	return data
}

// rolesBody renders count roles starting at offset.
func rolesBody(offset, count, total int) []byte {
	roles := make([]domain.Role, 0, count)
	for i := 0; i < count; i++ {
		roles = append(roles, domain.Role{
			HostID: "H1",
			RoleID: fmt.Sprintf("role-%02d", offset+i),
			Audit:  domain.Audit{AggregateVersion: 1},
		})
	}
	body, _ := json.Marshal(map[string]any{"roles": roles, "total": total})
	return body
}

// pagedRoles serves a fixed set of total roles honoring offset and limit.
func pagedRoles(total int) portalFunc {
	return func(_ context.Context, env domain.Envelope) ([]byte, error) {
		data := env.Data.(map[string]any)
		offset := data["offset"].(int)
		limit := data["limit"].(int)
		count := max(min(limit, total-offset), 0)
		return rolesBody(offset, count, total), nil
	}
}

type recordingConfirmer struct {
	mu      sync.Mutex
	answer  bool
	err     error
	prompts []port.Prompt
}

func (c *recordingConfirmer) Confirm(_ context.Context, prompt port.Prompt) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []port.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, alert port.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
}

func (n *recordingNotifier) Alerts() []port.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]port.Alert(nil), n.alerts...)
}

type recordingNavigator struct {
	mu   sync.Mutex
	navs []port.Navigation
}

func (n *recordingNavigator) Navigate(_ context.Context, nav port.Navigation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navs = append(n.navs, nav)
}

type countingObserver struct {
	mu        sync.Mutex
	fetches   int
	failures  int
	stale     int
	rollbacks int
	mutations map[string]int
}

func (o *countingObserver) ObserveFetch(_ string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetches++
	if err != nil {
		o.failures++
	}
}

func (o *countingObserver) ObserveMutation(_ string, kind string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mutations == nil {
		o.mutations = map[string]int{}
	}
	o.mutations[kind]++
}

func (o *countingObserver) ObserveRollback(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rollbacks++
}

func (o *countingObserver) ObserveStale(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stale++
}

// stateLog keeps every emitted state of a controller.
type stateLog[T any] struct {
	mu     sync.Mutex
	states []domain.ListState[T]
}

func (l *stateLog[T]) record(state domain.ListState[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
}

func (l *stateLog[T]) All() []domain.ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ListState[T](nil), l.states...)
}

type harness struct {
	portal    *fakePortal
	clock     *clock.FakeClock
	confirmer *recordingConfirmer
	notifier  *recordingNotifier
	navigator *recordingNavigator
	observer  *countingObserver
}

func newHarness() *harness {
	return &harness{
		portal:    &fakePortal{},
		clock:     clock.Fake(time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)),
		confirmer: &recordingConfirmer{answer: true},
		notifier:  &recordingNotifier{},
		navigator: &recordingNavigator{},
		observer:  &countingObserver{},
	}
}

func (h *harness) options() ControllerOptions {
	return ControllerOptions{
		ViewID:    "view-1",
		Clock:     h.clock,
		Path:      "/app/access/role",
		Confirmer: h.confirmer,
		Notifier:  h.notifier,
		Navigator: h.navigator,
		Observer:  h.observer,
	}
}

func newRoleController(h *harness, hostID string) (*Controller[domain.Role], *stateLog[domain.Role]) {
	c := NewController(Roles, domain.Session{ID: "sid-1", HostID: hostID, UserID: "u1"}, h.portal, h.options())
	log := &stateLog[domain.Role]{}
	c.Subscribe(log.record)
	return c, log
}
