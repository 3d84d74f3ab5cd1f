package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/goliatone/go-customer-groups/pkg/activity"
)

// Telemetry and activity event names.
const (
	EventRowsResolved    = "customer_groups.rows.resolve"
	EventExpand          = "customer_groups.tree.expand"
	EventCollapse        = "customer_groups.tree.collapse"
	EventToggle          = "customer_groups.tree.toggle"
	EventExpandAll       = "customer_groups.tree.expand_all"
	EventCollapseAll     = "customer_groups.tree.collapse_all"
	EventFilterChanged   = "customer_groups.view.filter"
	EventColumnsChanged  = "customer_groups.view.columns"
	EventDatasetReloaded = "customer_groups.dataset.reload"
	EventDatasetRejected = "customer_groups.dataset.reject"
	EventIntegrityIssue  = "customer_groups.dataset.integrity_issue"
)

var (
	errMissingSource = errors.New("groups: record source not configured")
	errMissingViewer = errors.New("groups: viewer context missing user id")
	errUnknownGroup  = errors.New("groups: unknown group id")

	errDatasetRejected = errors.New("groups: dataset rejected")
)

// IsUnknownGroup reports whether err came from an operation on a group that is
// not in the dataset.
func IsUnknownGroup(err error) bool {
	return errors.Is(err, errUnknownGroup)
}

// IsIntegrity reports whether err is a strict reload rejecting a dataset with
// excluded records.
func IsIntegrity(err error) bool {
	return errors.Is(err, errDatasetRejected)
}

// IsMissingViewer reports whether err was caused by a viewer without a user id.
func IsMissingViewer(err error) bool {
	return errors.Is(err, errMissingViewer)
}

// Options configures the Service. Every collaborator is an interface so hosts
// can swap implementations.
type Options struct {
	Source          RecordSource
	StateStore      ViewStateStore
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Logger          *slog.Logger
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	InitialExpanded []int
	DefaultColumns  []ColumnKey
}

// Service serves per-viewer tree views over a cached record set.
type Service struct {
	opts     Options
	activity *activity.Emitter

	mu      sync.RWMutex
	records []GroupRecord
	forest  Forest
	loaded  bool

	// viewerLocks serializes load/apply/save per user id.
	viewerLocks sync.Map
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.StateStore == nil {
		opts.StateStore = NewInMemoryViewStateStore()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// ReloadOptions tunes a dataset reload.
type ReloadOptions struct {
	// Strict keeps the current dataset when any fetched record would be
	// excluded from the tree.
	Strict bool
}

// Reload fetches the records again and rebuilds the cached forest. Integrity
// faults are logged and reported but do not fail the reload.
func (s *Service) Reload(ctx context.Context) (BuildReport, error) {
	return s.ReloadWith(ctx, ReloadOptions{})
}

// ReloadWith is Reload with options. A strict reload that finds integrity
// faults returns an error matched by IsIntegrity and leaves the live dataset
// and subscribers untouched.
func (s *Service) ReloadWith(ctx context.Context, opts ReloadOptions) (BuildReport, error) {
	if s.opts.Source == nil {
		return BuildReport{}, errMissingSource
	}
	records, err := s.opts.Source.FetchAll(ctx)
	if err != nil {
		return BuildReport{}, fmt.Errorf("groups: fetch records: %w", err)
	}
	forest := BuildForest(records)
	s.reportIntegrity(ctx, forest.Report)

	if opts.Strict && !forest.Report.OK() {
		s.recordTelemetry(ctx, EventDatasetRejected, map[string]any{
			"records": len(records),
			"issues":  len(forest.Report.Issues),
		})
		return forest.Report, fmt.Errorf("%w: %w", errDatasetRejected, forest.Report.Err())
	}

	s.mu.Lock()
	s.records = cloneRecords(records)
	s.forest = forest
	s.loaded = true
	s.mu.Unlock()

	s.recordTelemetry(ctx, EventDatasetReloaded, map[string]any{
		"records":        len(records),
		"attached":       forest.Size(),
		"issues":         len(forest.Report.Issues),
		"issues_by_kind": issueCounts(forest.Report),
	})
	if err := s.opts.RefreshHook.GroupsUpdated(ctx, RefreshEvent{Reason: "reload"}); err != nil {
		return forest.Report, err
	}
	return forest.Report, nil
}

func (s *Service) reportIntegrity(ctx context.Context, report BuildReport) {
	for _, issue := range report.Issues {
		attrs := []any{"id", issue.ID, "kind", string(issue.Kind)}
		if issue.ParentID != nil {
			attrs = append(attrs, "parent_id", *issue.ParentID)
		}
		s.opts.Logger.WarnContext(ctx, "customer group excluded from tree", attrs...)
		s.recordTelemetry(ctx, EventIntegrityIssue, map[string]any{
			"id":   issue.ID,
			"kind": string(issue.Kind),
		})
	}
}

func issueCounts(report BuildReport) map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, issue := range report.Issues {
		counts[issue.Kind]++
	}
	return counts
}

func (s *Service) snapshot(ctx context.Context) ([]GroupRecord, Forest, error) {
	s.mu.RLock()
	loaded := s.loaded
	records, forest := s.records, s.forest
	s.mu.RUnlock()
	if loaded {
		return records, forest, nil
	}
	if _, err := s.Reload(ctx); err != nil {
		return nil, Forest{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.forest, nil
}

// Records returns a copy of the cached record set.
func (s *Service) Records(ctx context.Context) ([]GroupRecord, error) {
	records, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return cloneRecords(records), nil
}

// Rows computes the visible view for the viewer.
func (s *Service) Rows(ctx context.Context, viewer ViewerContext) (View, error) {
	if viewer.UserID == "" {
		return View{}, errMissingViewer
	}
	records, _, err := s.snapshot(ctx)
	if err != nil {
		return View{}, err
	}
	state, err := s.loadState(ctx, viewer)
	if err != nil {
		return View{}, err
	}
	view := Compute(records, state, viewer.Locale)
	s.recordTelemetry(ctx, EventRowsResolved, map[string]any{
		"viewer":  viewer.UserID,
		"visible": len(view.Rows),
		"matched": view.MatchedRows,
		"total":   view.TotalRows,
	})
	return view, nil
}

// Stats aggregates the summary cards over the cached dataset.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	_, forest, err := s.snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(forest), nil
}

// ViewState returns the viewer's current state, defaults applied.
func (s *Service) ViewState(ctx context.Context, viewer ViewerContext) (ViewState, error) {
	if viewer.UserID == "" {
		return ViewState{}, errMissingViewer
	}
	return s.loadState(ctx, viewer)
}

// Expand shows the children of a group.
func (s *Service) Expand(ctx context.Context, viewer ViewerContext, id int) error {
	return s.mutateGroup(ctx, viewer, id, EventExpand, func(state *ViewState) {
		state.Expanded.Expand(id)
	})
}

// Collapse hides the children of a group.
func (s *Service) Collapse(ctx context.Context, viewer ViewerContext, id int) error {
	return s.mutateGroup(ctx, viewer, id, EventCollapse, func(state *ViewState) {
		state.Expanded.Collapse(id)
	})
}

// Toggle flips a group between expanded and collapsed.
func (s *Service) Toggle(ctx context.Context, viewer ViewerContext, id int) error {
	return s.mutateGroup(ctx, viewer, id, EventToggle, func(state *ViewState) {
		state.Expanded.Toggle(id)
	})
}

// ExpandAll expands every group in the dataset.
func (s *Service) ExpandAll(ctx context.Context, viewer ViewerContext) error {
	records, _, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return s.mutate(ctx, viewer, EventExpandAll, "", map[string]any{"count": len(ids)}, func(state *ViewState) error {
		state.Expanded.ExpandAll(ids)
		return nil
	})
}

// CollapseAll collapses every group.
func (s *Service) CollapseAll(ctx context.Context, viewer ViewerContext) error {
	return s.mutate(ctx, viewer, EventCollapseAll, "", nil, func(state *ViewState) error {
		state.Expanded.CollapseAll()
		return nil
	})
}

// SetFilter replaces the viewer's filter with parsed user input.
func (s *Service) SetFilter(ctx context.Context, viewer ViewerContext, input FilterInput) error {
	criteria := input.Criteria()
	return s.mutate(ctx, viewer, EventFilterChanged, "", map[string]any{
		"active": criteria.ActiveCount(),
	}, func(state *ViewState) error {
		state.Filter = criteria
		return nil
	})
}

// SetColumns replaces the viewer's visible columns. Unknown keys are rejected.
func (s *Service) SetColumns(ctx context.Context, viewer ViewerContext, columns []string) error {
	keys, err := ParseColumns(columns)
	if err != nil {
		return err
	}
	return s.mutate(ctx, viewer, EventColumnsChanged, "", map[string]any{
		"columns": len(keys),
	}, func(state *ViewState) error {
		state.Columns = keys
		return nil
	})
}

func (s *Service) mutateGroup(ctx context.Context, viewer ViewerContext, id int, event string, apply func(*ViewState)) error {
	_, forest, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if _, ok := forest.Node(id); !ok {
		return fmt.Errorf("%w: %d", errUnknownGroup, id)
	}
	return s.mutate(ctx, viewer, event, strconv.Itoa(id), map[string]any{"group_id": id}, func(state *ViewState) error {
		apply(state)
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, viewer ViewerContext, event, objectID string, payload map[string]any, apply func(*ViewState) error) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	if err := s.applyState(ctx, viewer, apply); err != nil {
		return err
	}
	refresh := RefreshEvent{Reason: event, UserID: viewer.UserID}
	if id, ok := payload["group_id"].(int); ok {
		refresh.GroupID = id
	}
	if err := s.opts.RefreshHook.GroupsUpdated(ctx, refresh); err != nil {
		return err
	}
	telemetry := map[string]any{"viewer": viewer.UserID}
	for key, value := range payload {
		telemetry[key] = value
	}
	s.recordTelemetry(ctx, event, telemetry)
	s.emitActivity(ctx, viewer, event, objectID, payload)
	return nil
}

func (s *Service) applyState(ctx context.Context, viewer ViewerContext, apply func(*ViewState) error) error {
	lock := s.viewerLock(viewer.UserID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, viewer)
	if err != nil {
		return err
	}
	if err := apply(&state); err != nil {
		return err
	}
	return s.opts.StateStore.SaveViewState(ctx, viewer, state)
}

func (s *Service) viewerLock(userID string) *sync.Mutex {
	if lock, ok := s.viewerLocks.Load(userID); ok {
		return lock.(*sync.Mutex)
	}
	lock, _ := s.viewerLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *Service) loadState(ctx context.Context, viewer ViewerContext) (ViewState, error) {
	state, err := s.opts.StateStore.ViewState(ctx, viewer)
	if errors.Is(err, ErrViewStateNotFound) {
		return s.defaultState(), nil
	}
	if err != nil {
		return ViewState{}, err
	}
	return state, nil
}

func (s *Service) defaultState() ViewState {
	return ViewState{
		Expanded: NewExpansionState(s.opts.InitialExpanded...),
		Columns:  normalizeColumns(s.opts.DefaultColumns),
	}
}

func (s *Service) emitActivity(ctx context.Context, viewer ViewerContext, verb, objectID string, metadata map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	if err := s.activity.Emit(ctx, viewActivity(ctx, viewer, verb, objectID, metadata)); err != nil {
		s.opts.Logger.WarnContext(ctx, "activity emit failed", "verb", verb, "error", err)
	}
}

// NotifyGroupsUpdated exposes refresh hook invocation for commands and transports.
func (s *Service) NotifyGroupsUpdated(ctx context.Context, event RefreshEvent) error {
	return s.opts.RefreshHook.GroupsUpdated(ctx, event)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopRefreshHook struct{}

func (noopRefreshHook) GroupsUpdated(context.Context, RefreshEvent) error {
	return nil
}
