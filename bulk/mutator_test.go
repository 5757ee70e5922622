package bulk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/models"
)

type fakeDesks struct {
	desks map[int64]int64
	err   error
}

func (f *fakeDesks) DeskOf(_ context.Context, _ string, id int64) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	d, ok := f.desks[id]
	return d, ok, nil
}

type fakeStore struct {
	uniformIDs   []int64
	perTargetIDs []int64
	err          error

	gotUniformIDs []int64
	gotEntries    []TargetPatch
	calls         int
}

func (f *fakeStore) ExecuteUniform(_ context.Context, _ string, ids []int64, _ map[string]any) ([]int64, error) {
	f.calls++
	f.gotUniformIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	if f.uniformIDs != nil {
		return f.uniformIDs, nil
	}
	return ids, nil
}

func (f *fakeStore) ExecutePerTarget(_ context.Context, _ string, patches []TargetPatch) ([]int64, error) {
	f.calls++
	f.gotEntries = patches
	if f.err != nil {
		return nil, f.err
	}
	if f.perTargetIDs != nil {
		return f.perTargetIDs, nil
	}
	ids := make([]int64, 0, len(patches))
	for _, p := range patches {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

type recordedEntry struct {
	resource string
	id       int64
	actor    string
}

type fakeSink struct{ entries []recordedEntry }

func (f *fakeSink) Record(_ context.Context, resource string, id int64, actor string, _ map[string]any) {
	f.entries = append(f.entries, recordedEntry{resource, id, actor})
}

func salesSet(t *testing.T, desks ...int64) *authz.EffectivePermissionSet {
	t.Helper()
	ident := &models.Identity{ID: "agent-1", Roles: []string{models.RoleSales}, DeskIDs: desks}
	set, err := authz.NewAggregator(staticGrants{authz.PermLeadsAssign}).Aggregate(context.Background(), ident)
	require.NoError(t, err)
	return set
}

func adminSet(t *testing.T) *authz.EffectivePermissionSet {
	t.Helper()
	ident := &models.Identity{ID: "admin-1", Roles: []string{models.RoleAdmin}}
	set, err := authz.NewAggregator(staticGrants{authz.PermLeadsAssign}).Aggregate(context.Background(), ident)
	require.NoError(t, err)
	return set
}

type staticGrants []string

func (s staticGrants) RolePermissions(context.Context, []string) ([]string, error) { return s, nil }

// Scenario A: sales identity on desk 7, lead 3 sits on desk 9. The batch is
// narrowed, not aborted, and lead 3 is reported back.
func TestApplyNarrowsForeignDeskLeads(t *testing.T) {
	desks := &fakeDesks{desks: map[int64]int64{1: 7, 2: 7, 3: 9}}
	st := &fakeStore{}
	sink := &fakeSink{}
	m := NewMutator(desks, st, sink, zap.NewNop())

	res, err := m.Apply(context.Background(), salesSet(t, 7), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2, 3},
		Patch:     UniformPatch{"assigned_to": "agent-1"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.UpdatedCount)
	assert.Equal(t, []int64{3}, res.FailedIDs)
	assert.Equal(t, []int64{1, 2}, st.gotUniformIDs)
	assert.Len(t, sink.entries, 2)
	assert.Equal(t, "agent-1", sink.entries[0].actor)
}

// Scenario B: admin skips per-row scoping and every row is eligible.
func TestApplyAdminSkipsScoping(t *testing.T) {
	desks := &fakeDesks{err: errors.New("desk lookup must not run for admins")}
	st := &fakeStore{}
	m := NewMutator(desks, st, &fakeSink{}, zap.NewNop())

	res, err := m.Apply(context.Background(), adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2, 3},
		Patch:     UniformPatch{"status": "contacted"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.UpdatedCount)
	assert.Empty(t, res.FailedIDs)
}

// Scenario C: empty target set is a request-level failure; the store is
// never touched.
func TestApplyRequestLevelRejections(t *testing.T) {
	st := &fakeStore{}
	m := NewMutator(&fakeDesks{}, st, &fakeSink{}, zap.NewNop())
	ctx := context.Background()

	_, err := m.Apply(ctx, adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: nil,
		Patch:     UniformPatch{"status": "won"},
	})
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = m.Apply(ctx, adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{1},
		Patch:     UniformPatch{},
	})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	_, err = m.Apply(ctx, adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{1},
		Patch:     PerTargetPatch{{ID: 1, Set: map[string]any{}}},
	})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	assert.Zero(t, st.calls, "no write may happen for request-level failures")
}

func TestApplyAllTargetsFilteredOut(t *testing.T) {
	desks := &fakeDesks{desks: map[int64]int64{1: 9, 2: 9}}
	st := &fakeStore{}
	m := NewMutator(desks, st, &fakeSink{}, zap.NewNop())

	res, err := m.Apply(context.Background(), salesSet(t, 7), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2},
		Patch:     UniformPatch{"status": "won"},
	})
	assert.ErrorIs(t, err, authz.ErrPartialBatchDenied)
	require.NotNil(t, res)
	assert.EqualValues(t, 0, res.UpdatedCount)
	assert.Equal(t, []int64{1, 2}, res.FailedIDs)
	assert.Zero(t, st.calls, "no transaction may open for a fully denied batch")
}

// Narrowing law: failed ⊇ every target the identity cannot access. Missing
// records narrowed at scoping time land in failed too.
func TestApplyNarrowingLaw(t *testing.T) {
	desks := &fakeDesks{desks: map[int64]int64{1: 7, 3: 9}} // 2 does not exist
	st := &fakeStore{}
	m := NewMutator(desks, st, &fakeSink{}, zap.NewNop())

	res, err := m.Apply(context.Background(), salesSet(t, 7), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2, 3},
		Patch:     UniformPatch{"status": "won"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, res.FailedIDs)
	assert.EqualValues(t, 1, res.UpdatedCount)
}

// Atomicity: a persistence failure yields zero updates and no activity
// entries, never a partial count.
func TestApplyPersistenceFailureIsTotal(t *testing.T) {
	st := &fakeStore{err: errors.New("constraint violation")}
	sink := &fakeSink{}
	m := NewMutator(&fakeDesks{}, st, sink, zap.NewNop())

	res, err := m.Apply(context.Background(), adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2},
		Patch: PerTargetPatch{
			{ID: 1, Set: map[string]any{"status": "won"}},
			{ID: 2, Set: map[string]any{"status": "lost"}},
		},
	})
	assert.ErrorIs(t, err, authz.ErrPersistenceFailure)
	assert.Nil(t, res)
	assert.Empty(t, sink.entries)
}

// Rows the write did not change (deleted meanwhile, or no column delta)
// are reported as failed alongside the narrowed ids.
func TestApplyUnmatchedRowsReportedFailed(t *testing.T) {
	st := &fakeStore{uniformIDs: []int64{1}} // store says only lead 1 changed
	m := NewMutator(&fakeDesks{}, st, &fakeSink{}, zap.NewNop())

	res, err := m.Apply(context.Background(), adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2, 3},
		Patch:     UniformPatch{"status": "won"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UpdatedCount)
	assert.Equal(t, []int64{2, 3}, res.FailedIDs)
}

// Per-target entries outside the working set are dropped before the write.
func TestApplyPerTargetRestrictedToWorkingSet(t *testing.T) {
	desks := &fakeDesks{desks: map[int64]int64{1: 7, 2: 9}}
	st := &fakeStore{}
	m := NewMutator(desks, st, &fakeSink{}, zap.NewNop())

	res, err := m.Apply(context.Background(), salesSet(t, 7), authz.ResourceLeads, Request{
		TargetIDs: []int64{1, 2},
		Patch: PerTargetPatch{
			{ID: 1, Set: map[string]any{"status": "won"}},
			{ID: 2, Set: map[string]any{"status": "lost"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, st.gotEntries, 1)
	assert.EqualValues(t, 1, st.gotEntries[0].ID)
	assert.Equal(t, []int64{2}, res.FailedIDs)
}

// Duplicated target ids collapse before scoping and writing.
func TestApplyDedupesTargets(t *testing.T) {
	st := &fakeStore{}
	m := NewMutator(&fakeDesks{}, st, &fakeSink{}, zap.NewNop())

	res, err := m.Apply(context.Background(), adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{5, 5, 6, 5},
		Patch:     UniformPatch{"status": "won"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, st.gotUniformIDs)
	assert.EqualValues(t, 2, res.UpdatedCount)
}

// Duplicate per-target entries for one id merge into a single write and a
// single activity entry; updated_count never exceeds the distinct targets.
func TestApplyPerTargetDuplicateEntriesMerge(t *testing.T) {
	st := &fakeStore{}
	sink := &fakeSink{}
	m := NewMutator(&fakeDesks{}, st, sink, zap.NewNop())

	res, err := m.Apply(context.Background(), adminSet(t), authz.ResourceLeads, Request{
		TargetIDs: []int64{5},
		Patch: PerTargetPatch{
			{ID: 5, Set: map[string]any{"status": "won"}},
			{ID: 5, Set: map[string]any{"source": "referral"}},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UpdatedCount)
	require.Len(t, st.gotEntries, 1)
	assert.Equal(t, map[string]any{"status": "won", "source": "referral"}, st.gotEntries[0].Set)
	assert.Len(t, sink.entries, 1)
}

func TestApplyDeskLookupFailureFailsClosed(t *testing.T) {
	desks := &fakeDesks{err: errors.New("connection refused")}
	st := &fakeStore{}
	m := NewMutator(desks, st, &fakeSink{}, zap.NewNop())

	_, err := m.Apply(context.Background(), salesSet(t, 7), authz.ResourceLeads, Request{
		TargetIDs: []int64{1},
		Patch:     UniformPatch{"status": "won"},
	})
	assert.ErrorIs(t, err, authz.ErrAuthorizationUnavailable)
	assert.Zero(t, st.calls)
}
