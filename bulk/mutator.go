package bulk

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/brokercrm/crm-service/authz"
)

// Request is one bulk mutation: a set of target record ids plus a patch.
type Request struct {
	TargetIDs []int64
	Patch     Patch
}

// Result reports the per-item outcome of one bulk mutation. FailedIDs is
// the union of ids narrowed out by scoping and ids no row write matched.
type Result struct {
	UpdatedCount int64   `json:"updated_count"`
	FailedIDs    []int64 `json:"failed"`
}

// Store executes the write step of a bulk mutation. Each method runs its
// whole body inside one transaction: any row failure aborts and reverts
// every row. The returned slice holds the ids whose row actually changed.
type Store interface {
	ExecuteUniform(ctx context.Context, resource string, ids []int64, set map[string]any) ([]int64, error)
	ExecutePerTarget(ctx context.Context, resource string, patches []TargetPatch) ([]int64, error)
}

// Sink receives one entry per committed row change. Fire-and-forget: the
// implementation owns its error channel and must never block or fail the
// mutation that already committed.
type Sink interface {
	Record(ctx context.Context, resource string, resourceID int64, actorID string, patch map[string]any)
}

// Mutator applies a patch to many records under the caller's access scope.
//
// Per-target state machine: pending -> {filtered_out | updated | failed}.
// Scope filtering fully precedes the write transaction; partial application
// exists only at the authorization layer, never at the persistence layer.
type Mutator struct {
	desks authz.DeskLookup
	store Store
	sink  Sink
	log   *zap.Logger
}

func NewMutator(desks authz.DeskLookup, store Store, sink Sink, log *zap.Logger) *Mutator {
	return &Mutator{desks: desks, store: store, sink: sink, log: log}
}

// Apply runs the bulk mutation for the identity behind set.
//
// Request-level rejections (no transaction opened): empty target set,
// empty patch after allow-listing. Scope narrowing is silent: inaccessible
// ids move to failed and the operation proceeds on the permitted subset,
// unless that subset is empty (ErrPartialBatchDenied). The write itself is
// all-or-nothing; any row error rolls back the whole step
// (ErrPersistenceFailure).
func (m *Mutator) Apply(ctx context.Context, set *authz.EffectivePermissionSet, resource string, req Request) (*Result, error) {
	targets := DedupeTargets(req.TargetIDs)
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	patch := req.Patch
	if p, ok := patch.(PerTargetPatch); ok {
		// One entry per id keeps updated_count bounded by the distinct
		// target count and the activity sink at one entry per row.
		patch = p.collapse()
	}
	if patch == nil || patch.empty() {
		return nil, ErrEmptyPatch
	}

	var failed []int64
	working := targets

	// Step 2: narrow the working set before any write. Admins skip per-row
	// scoping entirely; the scope builder already reports all for them.
	scope := authz.BuildScope(set, resource)
	if scope.Kind != authz.ScopeAll {
		working = working[:0:0]
		for _, id := range targets {
			deskID, found, err := m.desks.DeskOf(ctx, resource, id)
			if err != nil {
				return nil, fmt.Errorf("%w: desk lookup: %v", authz.ErrAuthorizationUnavailable, err)
			}
			if found && scope.AllowsDesk(deskID) {
				working = append(working, id)
			} else {
				failed = append(failed, id)
			}
		}
	}
	if len(working) == 0 {
		sortIDs(failed)
		return &Result{UpdatedCount: 0, FailedIDs: failed}, authz.ErrPartialBatchDenied
	}

	// Step 4: one transaction for the whole write.
	updated, err := m.execute(ctx, resource, working, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authz.ErrPersistenceFailure, err)
	}

	// Step 5: activity entries only for rows that committed.
	m.emit(ctx, set.Identity().ID, resource, updated, patch)

	// Step 6: ids the write did not touch (missing rows, no column delta)
	// join the narrowed ids in failed.
	updatedSet := make(map[int64]bool, len(updated))
	for _, id := range updated {
		updatedSet[id] = true
	}
	for _, id := range working {
		if !updatedSet[id] {
			failed = append(failed, id)
		}
	}
	sortIDs(failed)
	return &Result{UpdatedCount: int64(len(updated)), FailedIDs: failed}, nil
}

func (m *Mutator) execute(ctx context.Context, resource string, working []int64, patch Patch) ([]int64, error) {
	switch p := patch.(type) {
	case UniformPatch:
		return m.store.ExecuteUniform(ctx, resource, working, p)
	case PerTargetPatch:
		inSet := make(map[int64]bool, len(working))
		for _, id := range working {
			inSet[id] = true
		}
		entries := make([]TargetPatch, 0, len(p))
		for _, t := range p {
			if inSet[t.ID] && len(t.Set) > 0 {
				entries = append(entries, t)
			}
		}
		return m.store.ExecutePerTarget(ctx, resource, entries)
	default:
		return nil, fmt.Errorf("unsupported patch type %T", patch)
	}
}

func (m *Mutator) emit(ctx context.Context, actorID, resource string, updated []int64, patch Patch) {
	switch p := patch.(type) {
	case UniformPatch:
		for _, id := range updated {
			m.sink.Record(ctx, resource, id, actorID, p)
		}
	case PerTargetPatch:
		byID := make(map[int64]map[string]any, len(p))
		for _, t := range p {
			byID[t.ID] = t.Set
		}
		for _, id := range updated {
			m.sink.Record(ctx, resource, id, actorID, byID[id])
		}
	}
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
