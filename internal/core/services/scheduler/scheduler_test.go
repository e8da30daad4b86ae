package scheduler

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

type push struct {
	ServiceID      string
	Characteristic domain.Characteristic
}

// fakeSync records pushes and can be told to fail them.
type fakeSync struct {
	mu     sync.Mutex
	pushes []push
	fail   bool
}

func (f *fakeSync) PushCharacteristic(_ context.Context, serviceID string, c domain.Characteristic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, push{ServiceID: serviceID, Characteristic: c})
	if f.fail {
		return &domain.SyncError{Kind: domain.SyncUnreachable, Op: "write"}
	}
	return nil
}

func (f *fakeSync) FindByPlatformID(context.Context, string) ([]domain.ServiceInstance, error) {
	return nil, nil
}

func (f *fakeSync) FindByServiceOrder(context.Context, string) ([]domain.ServiceInstance, error) {
	return nil, nil
}

func (f *fakeSync) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

func (f *fakeSync) lastPush() (push, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pushes) == 0 {
		return push{}, false
	}
	return f.pushes[len(f.pushes)-1], true
}

func mutationInstance(id string, values ...domain.CharacteristicValue) domain.ServiceInstance {
	return domain.ServiceInstance{
		ID:    id,
		Name:  "svc-" + id,
		State: "active",
		Characteristics: []domain.Characteristic{
			{Name: "Mutation::Port", Values: values},
		},
	}
}

func slowRule() []domain.CharacteristicValue {
	return []domain.CharacteristicValue{
		{Value: "min", Alias: domain.AliasInterval},
		{Value: "3600", Alias: domain.AliasValueFrom},
		{Value: "7200", Alias: domain.AliasValueTo},
		{Value: "[80, 8080]"},
	}
}

func instantRule() []domain.CharacteristicValue {
	return []domain.CharacteristicValue{
		{Value: "min", Alias: domain.AliasInterval},
		{Value: "0", Alias: domain.AliasValueFrom},
		{Value: "60", Alias: domain.AliasValueTo},
		{Value: "[80, 8080, 10000-11000]"},
	}
}

func waitForArmed(t *testing.T, s *Scheduler) ScheduledMutation {
	t.Helper()
	var snap ScheduledMutation
	require.Eventually(t, func() bool {
		schedules := s.Snapshot()
		if len(schedules) != 1 || schedules[0].NextFireAt.IsZero() {
			return false
		}
		snap = schedules[0]
		return true
	}, time.Second, 5*time.Millisecond)
	return snap
}

func TestObserveArmsSchedule(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	s.Observe(mutationInstance("svc-1", slowRule()...))

	snap := waitForArmed(t, s)
	assert.Equal(t, "svc-1", snap.ServiceID)
	assert.Equal(t, "Port", snap.Target)
	assert.Equal(t, domain.IntervalMin, snap.Policy)
	assert.True(t, snap.NextFireAt.After(time.Now().Add(time.Hour)))
}

func TestObserveUnchangedRuleIsNoOp(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	inst := mutationInstance("svc-1", slowRule()...)
	s.Observe(inst)
	before := waitForArmed(t, s)

	// Periodic re-reads of an unchanged characteristic must not re-arm.
	s.Observe(inst)
	s.Observe(inst)
	time.Sleep(20 * time.Millisecond)

	after := waitForArmed(t, s)
	assert.Equal(t, before.NextFireAt, after.NextFireAt)
}

func TestObserveChangedRuleReplacesSchedule(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	s.Observe(mutationInstance("svc-1", slowRule()...))
	before := waitForArmed(t, s)

	changed := slowRule()
	changed[1].Value = "10800" // new valueFrom
	changed[2].Value = "10800"
	s.Observe(mutationInstance("svc-1", changed...))

	require.Eventually(t, func() bool {
		schedules := s.Snapshot()
		return len(schedules) == 1 &&
			!schedules[0].NextFireAt.IsZero() &&
			!schedules[0].NextFireAt.Equal(before.NextFireAt)
	}, time.Second, 5*time.Millisecond)
}

func TestObserveRemovedRuleCancels(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	s.Observe(mutationInstance("svc-1", slowRule()...))
	waitForArmed(t, s)

	// Same service re-observed without the mutation characteristic.
	s.Observe(domain.ServiceInstance{ID: "svc-1", State: "active"})
	assert.Empty(t, s.Snapshot())
}

func TestObserveInactivePolicyNeverSchedules(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	values := slowRule()
	values[0].Value = "inactive"
	s.Observe(mutationInstance("svc-1", values...))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, s.Snapshot())
	assert.Zero(t, sink.pushCount())
}

func TestObserveDecodeErrorSkipsOnlyBadRule(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	inst := domain.ServiceInstance{
		ID:    "svc-1",
		State: "active",
		Characteristics: []domain.Characteristic{
			{Name: "Mutation::Port", Values: []domain.CharacteristicValue{
				{Value: "bogus", Alias: domain.AliasInterval},
			}},
			{Name: "Mutation::Addr", Values: slowRule()},
		},
	}
	s.Observe(inst)

	snap := waitForArmed(t, s)
	assert.Equal(t, "Addr", snap.Target)
}

func TestFiringPushesDomainValueAndRearms(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	s.SetRand(rand.New(rand.NewSource(7)))
	defer s.Stop()

	s.Observe(mutationInstance("svc-1", instantRule()...))

	require.Eventually(t, func() bool {
		return sink.pushCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	valueDomain, err := domain.ParseValueDomain("[80, 8080, 10000-11000]")
	require.NoError(t, err)

	last, ok := sink.lastPush()
	require.True(t, ok)
	assert.Equal(t, "svc-1", last.ServiceID)
	assert.Equal(t, "Port", last.Characteristic.Name)

	raw, ok := last.Characteristic.Primary()
	require.True(t, ok)
	v, err := strconv.ParseInt(raw, 10, 64)
	require.NoError(t, err)
	assert.True(t, valueDomain.Contains(v), "pushed %d outside the domain", v)
}

func TestPushFailureDoesNotStallSchedule(t *testing.T) {
	sink := &fakeSync{fail: true}
	s := NewScheduler(sink)
	defer s.Stop()

	s.Observe(mutationInstance("svc-1", instantRule()...))

	// Every push fails, yet the timer keeps re-arming.
	require.Eventually(t, func() bool {
		return sink.pushCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, s.Snapshot(), 1)
}

func TestPruneCancelsVanishedServices(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	s.Observe(mutationInstance("svc-1", slowRule()...))
	s.Observe(mutationInstance("svc-2", slowRule()...))
	require.Eventually(t, func() bool {
		return len(s.Snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	s.Prune(map[string]bool{"svc-2": true})

	schedules := s.Snapshot()
	require.Len(t, schedules, 1)
	assert.Equal(t, "svc-2", schedules[0].ServiceID)
}

func TestIndependentKeysDoNotInterfere(t *testing.T) {
	sink := &fakeSync{}
	s := NewScheduler(sink)
	defer s.Stop()

	inst := domain.ServiceInstance{
		ID:    "svc-1",
		State: "active",
		Characteristics: []domain.Characteristic{
			{Name: "Mutation::Port", Values: instantRule()},
			{Name: "Mutation::Addr", Values: slowRule()},
		},
	}
	s.Observe(inst)

	require.Eventually(t, func() bool {
		return sink.pushCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	// Only the fast rule fires; the slow one stays armed untouched.
	sink.mu.Lock()
	for _, p := range sink.pushes {
		assert.Equal(t, "Port", p.Characteristic.Name)
	}
	sink.mu.Unlock()
	assert.Len(t, s.Snapshot(), 2)
}
