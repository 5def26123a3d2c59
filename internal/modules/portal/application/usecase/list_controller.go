package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"portalConsole/internal/modules/portal/application/port"
	"portalConsole/internal/modules/portal/domain"
	"portalConsole/internal/shared/clock"
	"portalConsole/internal/shared/logging"
)

var (
	ErrControllerClosed     = errors.New("list view closed")
	ErrNotReady             = errors.New("no host selected")
	ErrNotMounted           = errors.New("list view not mounted")
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrUpdateInFlight       = errors.New("update already in flight")
	ErrUnsupportedAction    = errors.New("action not supported for entity")
	ErrUnknownSubmitMode    = errors.New("unknown submit mode")
)

// ControllerOptions configures a Controller. Zero values select defaults.
type ControllerOptions struct {
	ViewID string
	Clock  clock.Clock
	// Debounce is the quiet period for free-text filter input. Zero selects
	// DefaultDebounce; negative commits input immediately.
	Debounce time.Duration
	PageSize int
	// Host and Version override the envelope routing defaults.
	Host    string
	Version string
	// Path is the current view path handed to the edit view on Update.
	Path      string
	Confirmer port.Confirmer
	Notifier  port.Notifier
	Navigator port.Navigator
	Observer  port.ListObserver
	Logger    *slog.Logger
	// OnMutated is called after a delete, create or update succeeded.
	OnMutated func(entity, hostID string)
}

// Controller owns the state of one entity list view and drives its
// query and command round-trips. It is safe for concurrent use. Listeners
// run on the goroutine that caused the change and must not call back into
// the controller synchronously.
type Controller[T any] struct {
	def       Definition[T]
	portal    port.Portal
	opts      ControllerOptions
	logger    *slog.Logger
	debouncer *Debouncer

	lifetime context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup

	mu             sync.Mutex
	session        domain.Session
	rows           []T
	wire           map[string]map[string]any
	total          int
	loading        bool
	refetching     bool
	failed         bool
	errText        string
	filters        domain.FilterState
	page           domain.Pagination
	updating       map[string]struct{}
	pendingColumns []domain.ColumnFilter
	pendingGlobal  *string
	mounted        bool
	closed         bool
	generation     uint64
	revision       uint64
	cancelFetch    context.CancelFunc
	seq            uint64

	emitMu    sync.Mutex
	emitted   uint64
	listeners map[int]func(domain.ListState[T])
	nextID    int
}

// NewController builds an unmounted controller for def bound to session.
func NewController[T any](def Definition[T], session domain.Session, portal port.Portal, opts ControllerOptions) *Controller[T] {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Confirmer == nil {
		opts.Confirmer = port.AutoConfirm(false)
	}
	if opts.Notifier == nil {
		opts.Notifier = port.DiscardNotifier{}
	}
	if opts.Navigator == nil {
		opts.Navigator = port.DiscardNavigator{}
	}
	if opts.Observer == nil {
		opts.Observer = port.NopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logging.ViewAttrs(def.Entity, opts.ViewID, session.HostID))

	lifetime, stop := context.WithCancel(context.Background())
	return &Controller[T]{
		def:       def,
		portal:    portal,
		opts:      opts,
		logger:    logger,
		debouncer: NewDebouncer(opts.Clock, opts.Debounce),
		lifetime:  lifetime,
		stop:      stop,
		session:   session,
		rows:      []T{},
		page:      domain.Pagination{PageSize: opts.PageSize}.Normalize(),
		updating:  map[string]struct{}{},
		listeners: map[int]func(domain.ListState[T]){},
	}
}

func (c *Controller[T]) Entity() string { return c.def.Entity }

func (c *Controller[T]) ID() string { return c.opts.ViewID }

func (c *Controller[T]) HostID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.HostID
}

// Subscribe registers fn for every state change. The returned func removes it.
func (c *Controller[T]) Subscribe(fn func(domain.ListState[T])) func() {
	c.emitMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.emitMu.Unlock()
	return func() {
		c.emitMu.Lock()
		delete(c.listeners, id)
		c.emitMu.Unlock()
	}
}

// Watch is Subscribe for callers that do not know the row type.
func (c *Controller[T]) Watch(fn func(state any)) func() {
	return c.Subscribe(func(state domain.ListState[T]) { fn(state) })
}

// Mount seeds the filter state from nav and issues the first fetch. Seeding
// happens once; later calls are no-ops.
func (c *Controller[T]) Mount(nav domain.NavigationState) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	filters := c.filters
	for _, field := range c.def.SeedFields {
		if value := nav.Value(field); value != "" {
			filters, _ = filters.WithColumn(field, value)
		}
	}
	if c.def.SeedActive {
		filters, _ = filters.WithColumn("active", "true")
	}
	c.filters = filters
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("list-view mounted", slog.Int("seeded", len(filters.Columns)))
	c.emit(state, seq)
	start()
	return nil
}

// SetColumnFilter records typed input for one column. The change is
// committed after the debounce quiet period.
func (c *Controller[T]) SetColumnFilter(id, value string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	replaced := false
	for i := range c.pendingColumns {
		if c.pendingColumns[i].ID == id {
			c.pendingColumns[i].Value = value
			replaced = true
		}
	}
	if !replaced {
		c.pendingColumns = append(c.pendingColumns, domain.ColumnFilter{ID: id, Value: value})
	}
	c.mu.Unlock()
	c.debouncer.Trigger(c.commitPending)
}

// SetGlobalFilter records typed input for the global filter, committed after
// the debounce quiet period.
func (c *Controller[T]) SetGlobalFilter(value string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingGlobal = &value
	c.mu.Unlock()
	c.debouncer.Trigger(c.commitPending)
}

// SetColumnFilters replaces the column filter list immediately, discarding
// pending column input.
func (c *Controller[T]) SetColumnFilters(columns []domain.ColumnFilter) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingColumns = nil
	next := c.filters.WithColumns(columns)
	if next.Equal(c.filters) {
		c.mu.Unlock()
		return
	}
	c.filters = next
	c.page.PageIndex = 0
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
}

// SetSorting replaces the sort keys. The page index is kept.
func (c *Controller[T]) SetSorting(sorting []domain.SortKey) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.filters.Clone()
	next.Sorting = nil
	for _, s := range sorting {
		if id := strings.TrimSpace(s.ID); id != "" {
			next.Sorting = append(next.Sorting, domain.SortKey{ID: id, Desc: s.Desc})
		}
	}
	if next.Equal(c.filters) {
		c.mu.Unlock()
		return
	}
	c.filters = next
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
}

// SetPagination moves the list window.
func (c *Controller[T]) SetPagination(p domain.Pagination) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := p.Normalize()
	if next == c.page {
		c.mu.Unlock()
		return
	}
	c.page = next
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
}

// SetHost rebinds the view to another tenant. Rows of the previous host are
// dropped and the window returns to the first page.
func (c *Controller[T]) SetHost(hostID string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	hostID = strings.TrimSpace(hostID)
	if hostID == c.session.HostID {
		c.mu.Unlock()
		return
	}
	c.session = c.session.WithHost(hostID)
	c.rows = []T{}
	c.wire = nil
	c.total = 0
	c.page.PageIndex = 0
	c.revision++
	if c.cancelFetch != nil && !c.session.Ready() {
		c.generation++
		c.cancelFetch()
		c.cancelFetch = nil
		c.loading, c.refetching = false, false
	}
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
}

// Refresh commits pending filter input and refetches the current window.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.refetch(ctx, true)
}

// Reload refetches the committed filter state. Pending filter input and its
// quiet period are left alone.
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.refetch(ctx, false)
}

// refetch never mounts: a view refetches only after its own Mount consumed
// the navigation seed.
func (c *Controller[T]) refetch(ctx context.Context, flush bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	err := c.refetchableLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if flush {
		c.debouncer.Cancel()
	}

	c.mu.Lock()
	if err := c.refetchableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if flush {
		c.applyPendingLocked()
	}
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
	return nil
}

func (c *Controller[T]) refetchableLocked() error {
	switch {
	case c.closed:
		return ErrControllerClosed
	case !c.session.Ready():
		return ErrNotReady
	case !c.mounted:
		return ErrNotMounted
	}
	return nil
}

// Delete asks for confirmation, removes every row sharing the key of row
// and sends the delete command. On failure the rows and total are restored,
// unless newer server data arrived in the meantime, and the user is alerted.
func (c *Controller[T]) Delete(ctx context.Context, row T) error {
	if c.def.DeleteAction == "" {
		return ErrUnsupportedAction
	}
	key := c.def.rowKey(row)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	hostID := c.session.HostID
	c.mu.Unlock()

	accepted, err := c.opts.Confirmer.Confirm(ctx, port.Prompt{
		Entity:  c.def.Entity,
		Title:   "Confirm delete",
		Message: fmt.Sprintf("Are you sure you want to delete %s %s?", singular(c.def.Entity), key),
		Key:     key,
	})
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !accepted {
		c.logger.Debug("list-view delete declined", slog.String("key", key))
		return ErrConfirmationDeclined
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	payload := c.payloadLocked(row)
	previousRows := c.rows
	previousTotal := c.total
	revision := c.revision
	kept := make([]T, 0, len(c.rows))
	for _, r := range c.rows {
		if c.def.rowKey(r) != key {
			kept = append(kept, r)
		}
	}
	removed := len(c.rows) - len(kept)
	c.rows = kept
	c.total = max(c.total-removed, 0)
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)

	envelope := domain.NewEnvelope(c.opts.Host, c.def.Service, c.def.DeleteAction, c.opts.Version, payload)
	_, err = c.portal.Command(ctx, envelope)
	c.opts.Observer.ObserveMutation(c.def.Entity, port.MutationDelete, err)
	if err == nil {
		c.logger.Info("list-view delete accepted", slog.String("key", key), slog.Int("removed", removed))
		c.mutated(hostID)
		return nil
	}

	c.logger.Warn("list-view delete failed", slog.String("key", key), slog.Any("error", err))
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("delete %s: %w", c.def.Entity, err)
	}
	if c.revision == revision {
		c.rows = previousRows
		c.total = previousTotal
		c.opts.Observer.ObserveRollback(c.def.Entity)
	}
	state, seq = c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	c.opts.Notifier.Notify(ctx, port.Alert{Entity: c.def.Entity, Severity: port.SeverityError, Message: port.Describe(err)})
	return fmt.Errorf("delete %s: %w", c.def.Entity, err)
}

// Update fetches the authoritative version of row and navigates to the
// edit view with it. The row is marked in flight until the call returns.
func (c *Controller[T]) Update(ctx context.Context, row T, path string) error {
	if c.def.FreshAction == "" {
		return ErrUnsupportedAction
	}
	key := c.def.rowKey(row)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if _, busy := c.updating[key]; busy {
		c.mu.Unlock()
		return ErrUpdateInFlight
	}
	c.updating[key] = struct{}{}
	payload := c.payloadLocked(row)
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)

	defer func() {
		c.mu.Lock()
		delete(c.updating, key)
		if c.closed {
			c.mu.Unlock()
			return
		}
		state, seq := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(state, seq)
	}()

	envelope := domain.NewEnvelope(c.opts.Host, c.def.Service, c.def.FreshAction, c.opts.Version, payload)
	fresh, err := c.fetchFresh(ctx, envelope)
	c.opts.Observer.ObserveMutation(c.def.Entity, port.MutationFresh, err)
	if err != nil {
		c.logger.Warn("list-view fresh fetch failed", slog.String("key", key), slog.Any("error", err))
		if !c.isClosed() {
			c.opts.Notifier.Notify(ctx, port.Alert{Entity: c.def.Entity, Severity: port.SeverityError, Message: port.Describe(err)})
		}
		return fmt.Errorf("fetch fresh %s: %w", c.def.Entity, err)
	}
	if c.isClosed() {
		return ErrControllerClosed
	}

	source := strings.TrimSpace(path)
	if source == "" {
		source = c.opts.Path
	}
	c.opts.Navigator.Navigate(ctx, port.Navigation{
		Entity: c.def.Entity,
		Path:   c.def.EditPath,
		State:  domain.NavigationState{Data: fresh, Source: source},
	})
	return nil
}

// Submit saves an edit form through the create or update command and
// refetches the list on success.
func (c *Controller[T]) Submit(ctx context.Context, mode string, payload map[string]any) error {
	var action, kind string
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case domain.SubmitCreate:
		action, kind = c.def.CreateAction, port.MutationCreate
	case domain.SubmitUpdate:
		action, kind = c.def.UpdateAction, port.MutationUpdate
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSubmitMode, mode)
	}
	if action == "" {
		return ErrUnsupportedAction
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	hostID := c.session.HostID
	c.mu.Unlock()

	data := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}
	if _, ok := data["hostId"]; !ok && hostID != "" {
		data["hostId"] = hostID
	}

	envelope := domain.NewEnvelope(c.opts.Host, c.def.Service, action, c.opts.Version, data)
	_, err := c.portal.Command(ctx, envelope)
	c.opts.Observer.ObserveMutation(c.def.Entity, kind, err)
	if err != nil {
		c.logger.Warn("list-view submit failed", slog.String("action", action), slog.Any("error", err))
		if !c.isClosed() {
			c.opts.Notifier.Notify(ctx, port.Alert{Entity: c.def.Entity, Severity: port.SeverityError, Message: port.Describe(err)})
		}
		return fmt.Errorf("%s %s: %w", kind, c.def.Entity, err)
	}
	c.logger.Info("list-view submit accepted", slog.String("action", action))
	c.mutated(hostID)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
	return nil
}

// DeleteJSON is Delete for a row decoded from its wire form.
func (c *Controller[T]) DeleteJSON(ctx context.Context, raw json.RawMessage) error {
	row, err := decodeRow[T](raw)
	if err != nil {
		return err
	}
	return c.Delete(ctx, row)
}

// UpdateJSON is Update for a row decoded from its wire form.
func (c *Controller[T]) UpdateJSON(ctx context.Context, raw json.RawMessage, path string) error {
	row, err := decodeRow[T](raw)
	if err != nil {
		return err
	}
	return c.Update(ctx, row, path)
}

// SubmitJSON is Submit for a form payload in its wire form.
func (c *Controller[T]) SubmitJSON(ctx context.Context, mode string, raw json.RawMessage) error {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return fmt.Errorf("decode %s payload: %w", c.def.Entity, errors.Join(domain.ErrMalformedResponse, err))
	}
	return c.Submit(ctx, mode, payload)
}

// State returns the current snapshot.
func (c *Controller[T]) State() domain.ListState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, _ := c.snapshotLocked()
	return state
}

// Snapshot is State for callers that do not know the row type.
func (c *Controller[T]) Snapshot() any { return c.State() }

// Close cancels in-flight work and pending input. Responses that arrive
// afterwards are discarded. Close is idempotent.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.mu.Unlock()
	c.debouncer.Stop()
	c.stop()
	c.logger.Debug("list-view closed")
}

// Wait blocks until no fetch is in flight.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

func (c *Controller[T]) commitPending() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.applyPendingLocked() {
		c.mu.Unlock()
		return
	}
	start := c.scheduleFetchLocked()
	state, seq := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(state, seq)
	start()
}

// applyPendingLocked folds debounced input into the filter state and resets
// the page index when anything changed.
func (c *Controller[T]) applyPendingLocked() bool {
	next := c.filters
	changed := false
	for _, pending := range c.pendingColumns {
		var columnChanged bool
		next, columnChanged = next.WithColumn(pending.ID, pending.Value)
		changed = changed || columnChanged
	}
	if c.pendingGlobal != nil {
		if *c.pendingGlobal != next.Global {
			next = next.Clone()
			next.Global = *c.pendingGlobal
			changed = true
		}
	}
	c.pendingColumns = nil
	c.pendingGlobal = nil
	if !changed {
		return false
	}
	c.filters = next
	c.page.PageIndex = 0
	return true
}

// scheduleFetchLocked prepares a fetch for the current state, superseding
// any fetch in flight, and returns the func that launches it. The caller
// emits the loading state first. Without a host the fetch is skipped.
func (c *Controller[T]) scheduleFetchLocked() func() {
	if c.closed || !c.mounted || !c.session.Ready() {
		return func() {}
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.generation++
	generation := c.generation
	ctx, cancel := context.WithCancel(c.lifetime)
	c.cancelFetch = cancel
	if len(c.rows) == 0 {
		c.loading, c.refetching = true, false
	} else {
		c.loading, c.refetching = false, true
	}
	query := domain.ListQuery{HostID: c.session.HostID, Filters: c.filters.Clone(), Pagination: c.page}

	c.wg.Add(1)
	return func() { go c.fetch(ctx, cancel, generation, query) }
}

func (c *Controller[T]) fetch(ctx context.Context, cancel context.CancelFunc, generation uint64, query domain.ListQuery) {
	defer c.wg.Done()
	defer cancel()

	if c.superseded(ctx, generation) {
		c.opts.Observer.ObserveStale(c.def.Entity)
		c.logger.Debug("list-view superseded fetch skipped", slog.Uint64("generation", generation))
		return
	}
	started := c.opts.Clock.Now()
	page, err := c.queryPage(ctx, query)
	elapsed := c.opts.Clock.Now().Sub(started)

	c.mu.Lock()
	if c.closed || generation != c.generation {
		c.mu.Unlock()
		c.opts.Observer.ObserveStale(c.def.Entity)
		c.logger.Debug("list-view stale response discarded", slog.Uint64("generation", generation))
		return
	}
	if err != nil {
		c.failed = true
		c.errText = port.Describe(err)
	} else {
		c.rows = dedupeRows(page.Items, c.def.Key)
		c.wire = c.wireRows(page)
		c.total = page.Total
		c.failed = false
		c.errText = ""
		c.revision++
	}
	c.loading, c.refetching = false, false
	c.cancelFetch = nil
	state, seq := c.snapshotLocked()
	c.mu.Unlock()

	c.opts.Observer.ObserveFetch(c.def.Entity, elapsed, err)
	if err != nil {
		c.logger.Error("list-view fetch failed", slog.String("queryKey", query.CanonicalKey()), slog.Any("error", err))
	} else {
		c.logger.Debug("list-view fetched", slog.String("queryKey", query.CanonicalKey()), slog.Int("rows", len(state.Rows)), slog.Int("total", state.Total))
	}
	c.emit(state, seq)
}

func (c *Controller[T]) queryPage(ctx context.Context, query domain.ListQuery) (domain.Page[T], error) {
	data, err := query.Data()
	if err != nil {
		return domain.Page[T]{}, err
	}
	envelope := domain.NewEnvelope(c.opts.Host, c.def.Service, c.def.QueryAction, c.opts.Version, data)
	body, err := c.portal.Query(ctx, envelope)
	if err != nil {
		return domain.Page[T]{}, err
	}
	return domain.DecodePage[T](body, c.def.ResultKey)
}

func (c *Controller[T]) fetchFresh(ctx context.Context, envelope domain.Envelope) (map[string]any, error) {
	body, err := c.portal.Query(ctx, envelope)
	if err != nil {
		return nil, err
	}
	record, err := domain.DecodeRecord[map[string]any](body)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: empty record", domain.ErrMalformedResponse)
	}
	return record, nil
}

func (c *Controller[T]) snapshotLocked() (domain.ListState[T], uint64) {
	c.seq++
	updating := make([]string, 0, len(c.updating))
	for key := range c.updating {
		updating = append(updating, key)
	}
	sort.Strings(updating)
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	return domain.ListState[T]{
		Entity:     c.def.Entity,
		Rows:       rows,
		Total:      c.total,
		Loading:    c.loading,
		Refetching: c.refetching,
		Error:      c.failed,
		ErrorText:  c.errText,
		Ready:      c.session.Ready(),
		Filters:    c.filters.Clone(),
		Pagination: c.page,
		Updating:   updating,
		Pager:      domain.PagerLabel(c.page, len(rows), c.total),
	}, c.seq
}

// emit delivers state to listeners unless a newer snapshot was already
// delivered.
func (c *Controller[T]) emit(state domain.ListState[T], seq uint64) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if seq <= c.emitted {
		return
	}
	c.emitted = seq
	for _, fn := range c.listeners {
		fn(state)
	}
}

func (c *Controller[T]) superseded(ctx context.Context, generation uint64) bool {
	if ctx.Err() != nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed || generation != c.generation
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller[T]) mutated(hostID string) {
	if c.opts.OnMutated != nil {
		c.opts.OnMutated(c.def.Entity, hostID)
	}
}

// wireRows indexes the portal's own objects by row key, first one winning
// as in dedupeRows.
func (c *Controller[T]) wireRows(page domain.Page[T]) map[string]map[string]any {
	if len(page.Wire) != len(page.Items) {
		return nil
	}
	out := make(map[string]map[string]any, len(page.Items))
	for i, item := range page.Items {
		key := c.def.rowKey(item)
		if _, seen := out[key]; !seen {
			out[key] = page.Wire[i]
		}
	}
	return out
}

// payloadLocked is the row sent with delete and fresh-fetch commands: the
// object the portal listed, with the fields of row laid over it.
func (c *Controller[T]) payloadLocked(row T) any {
	listed, ok := c.wire[c.def.rowKey(row)]
	if !ok {
		return row
	}
	body, err := json.Marshal(row)
	if err != nil {
		return row
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return row
	}
	out := make(map[string]any, len(listed)+len(fields))
	for k, v := range listed {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func decodeRow[T any](raw json.RawMessage) (T, error) {
	var row T
	if len(raw) == 0 {
		return row, fmt.Errorf("%w: missing row", domain.ErrMalformedResponse)
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return row, fmt.Errorf("%w: decode row: %v", domain.ErrMalformedResponse, err)
	}
	return row, nil
}

func singular(entity string) string {
	name := strings.ReplaceAll(entity, "-", " ")
	if strings.HasSuffix(name, "ies") {
		return strings.TrimSuffix(name, "ies") + "y"
	}
	return strings.TrimSuffix(name, "s")
}
