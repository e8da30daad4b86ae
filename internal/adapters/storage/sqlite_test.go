package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

func newTestRepo(t *testing.T) *SQLiteAdapter {
	t.Helper()
	repo, err := NewSQLiteAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testEvent(action domain.EventAction, serviceID string, ts time.Time) domain.Event {
	return domain.Event{
		ID:             uuid.NewString(),
		Action:         action,
		ServiceID:      serviceID,
		Characteristic: "Mutation::tcp_port",
		Value:          "8080",
		Outcome:        domain.OutcomeOK,
		Timestamp:      ts,
	}
}

func TestSaveAndListEvents(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveEvent(testEvent(domain.ActionMutationFired, "svc-1", base)))
	require.NoError(t, repo.SaveEvent(testEvent(domain.ActionRiskUpdated, "svc-2", base.Add(time.Minute))))
	require.NoError(t, repo.SaveEvent(testEvent(domain.ActionPolicyTranslated, "svc-3", base.Add(2*time.Minute))))

	events, err := repo.ListEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, "svc-3", events[0].ServiceID)
	assert.Equal(t, domain.ActionPolicyTranslated, events[0].Action)
	assert.Equal(t, "svc-1", events[2].ServiceID)
}

func TestListEvents_Limit(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveEvent(testEvent(domain.ActionMutationFired, "svc-1", base.Add(time.Duration(i)*time.Second))))
	}

	events, err := repo.ListEvents(2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	all, err := repo.ListEvents(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSaveEvent_RoundTripFields(t *testing.T) {
	repo := newTestRepo(t)
	want := domain.Event{
		ID:             uuid.NewString(),
		Action:         domain.ActionRiskUpdated,
		ServiceID:      "svc-9",
		Characteristic: domain.CharacteristicRiskScore,
		Value:          "7.5",
		Outcome:        domain.OutcomeFailed,
		Detail:         "catalog write: unreachable",
		Timestamp:      time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveEvent(want))

	events, err := repo.ListEvents(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	got := events[0]
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Action, got.Action)
	assert.Equal(t, want.Detail, got.Detail)
	assert.Equal(t, want.Outcome, got.Outcome)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
}
