package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/telemetry"
)

// Key identifies one live mutation schedule.
type Key struct {
	ServiceID string
	Target    string
}

// ScheduledMutation is a read-only snapshot of one armed schedule.
type ScheduledMutation struct {
	ServiceID  string                `json:"service_id"`
	Target     string                `json:"target"`
	Policy     domain.IntervalPolicy `json:"policy"`
	NextFireAt time.Time             `json:"next_fire_at"`
}

// entry is the process-local timer state for one key. It is owned by a
// single goroutine; only nextFireAt is shared with Snapshot readers.
type entry struct {
	rule   domain.MutationRule
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	nextFireAt time.Time
}

func (e *entry) setNextFireAt(t time.Time) {
	e.mu.Lock()
	e.nextFireAt = t
	e.mu.Unlock()
}

func (e *entry) getNextFireAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextFireAt
}

// Scheduler owns one timer per (service instance, mutation target) pair.
// Each key runs an independent cancellable loop: wait, sample, push,
// recompute, re-arm. Firings for the same key are strictly sequential;
// firings across keys are independent and may overlap.
type Scheduler struct {
	pusher   ports.CatalogSync
	events   ports.EventRepository
	notifier ports.EventNotifier

	ctx       context.Context
	ctxCancel context.CancelFunc
	wg        sync.WaitGroup

	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.Mutex
	entries map[Key]*entry
}

// NewScheduler creates a scheduler pushing mutated values through the
// given catalog sync.
func NewScheduler(pusher ports.CatalogSync) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		pusher:    pusher,
		ctx:       ctx,
		ctxCancel: cancel,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		entries:   make(map[Key]*entry),
	}
}

// SetEventRepository attaches the local activity trail.
func (s *Scheduler) SetEventRepository(repo ports.EventRepository) {
	s.events = repo
}

// SetNotifier attaches a live event fan-out.
func (s *Scheduler) SetNotifier(n ports.EventNotifier) {
	s.notifier = n
}

// SetRand replaces the sampling source. Intended for tests.
func (s *Scheduler) SetRand(rng *rand.Rand) {
	s.rngMu.Lock()
	s.rng = rng
	s.rngMu.Unlock()
}

// Observe reconciles the schedule table with one observation of a service
// instance. Valid Mutation::* characteristics become armed schedules;
// unchanged rules are no-ops; changed rules supersede their predecessor;
// vanished or inactive rules cancel theirs. Decode errors are local to the
// offending characteristic and never affect other rules.
func (s *Scheduler) Observe(instance domain.ServiceInstance) {
	desired := make(map[Key]domain.MutationRule)
	for _, c := range instance.Characteristics {
		if !strings.HasPrefix(c.Name, domain.MutationPrefix) {
			continue
		}
		rule, err := domain.DecodeMutationRule(c)
		if err != nil {
			s.reportDecodeError(instance.ID, c.Name, err)
			continue
		}
		if !rule.Active() {
			continue
		}
		desired[Key{ServiceID: instance.ID, Target: rule.Target}] = rule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if key.ServiceID != instance.ID {
			continue
		}
		rule, wanted := desired[key]
		if !wanted {
			s.removeLocked(key, e)
			continue
		}
		if e.rule.Equal(rule) {
			// Unchanged re-observation: keep the pending timer untouched.
			delete(desired, key)
			continue
		}
		// Superseded: cancel the pending wait, re-arm below from the new
		// rule. An in-flight push is allowed to complete.
		s.removeLocked(key, e)
	}

	for key, rule := range desired {
		s.armLocked(key, rule)
	}
}

// Prune cancels every schedule whose service instance is no longer in the
// active set.
func (s *Scheduler) Prune(activeIDs map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if !activeIDs[key.ServiceID] {
			s.removeLocked(key, e)
		}
	}
}

// Snapshot returns the armed schedules sorted by key.
func (s *Scheduler) Snapshot() []ScheduledMutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScheduledMutation, 0, len(s.entries))
	for key, e := range s.entries {
		out = append(out, ScheduledMutation{
			ServiceID:  key.ServiceID,
			Target:     key.Target,
			Policy:     e.rule.Policy,
			NextFireAt: e.getNextFireAt(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceID != out[j].ServiceID {
			return out[i].ServiceID < out[j].ServiceID
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Stop cancels all schedules and waits for their loops to exit.
func (s *Scheduler) Stop() {
	s.ctxCancel()
	s.wg.Wait()

	s.mu.Lock()
	for key := range s.entries {
		delete(s.entries, key)
		telemetry.ActiveRules.Dec()
	}
	s.mu.Unlock()
}

// armLocked starts the wait-and-fire loop for a key. Caller holds s.mu.
func (s *Scheduler) armLocked(key Key, rule domain.MutationRule) {
	runCtx, cancel := context.WithCancel(s.ctx)
	e := &entry{rule: rule, cancel: cancel, done: make(chan struct{})}
	s.entries[key] = e
	telemetry.ActiveRules.Inc()

	s.wg.Add(1)
	go s.run(runCtx, key, e)
}

// removeLocked cancels a key's pending wait and drops it from the table.
// Caller holds s.mu.
func (s *Scheduler) removeLocked(key Key, e *entry) {
	e.cancel()
	delete(s.entries, key)
	telemetry.ActiveRules.Dec()
}

// run is the per-key scheduling loop. Waiting is passive; the only
// blocking work is the push inside fire, which is deliberately detached
// from the loop's cancellation so a supersede never aborts it midway.
func (s *Scheduler) run(ctx context.Context, key Key, e *entry) {
	defer s.wg.Done()
	defer close(e.done)

	for {
		delay := s.nextDelay(e.rule)
		e.setNextFireAt(s.now().Add(delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(ctx, key, e.rule)

		if ctx.Err() != nil {
			return
		}
	}
}

// fire samples a value from the rule's domain and pushes it to the
// Catalog. Push failures are logged and re-armed, never fatal: a transient
// outage self-heals on the next tick.
func (s *Scheduler) fire(ctx context.Context, key Key, rule domain.MutationRule) {
	pushCtx, span := otel.Tracer("mutation-scheduler").Start(context.WithoutCancel(ctx), "Fire")
	defer span.End()
	span.SetAttributes(
		attribute.String("service.id", key.ServiceID),
		attribute.String("mutation.target", key.Target),
	)

	value := s.sample(rule.Domain)
	c := domain.NewValueCharacteristic(rule.Target, value)

	outcome := domain.OutcomeOK
	detail := ""
	if err := s.pusher.PushCharacteristic(pushCtx, key.ServiceID, c); err != nil {
		outcome = domain.OutcomeFailed
		detail = err.Error()
		span.RecordError(err)
		slog.Warn("mutation push failed",
			"service", key.ServiceID,
			"target", key.Target,
			"value", value,
			"error", err)
	} else {
		slog.Info("mutation fired",
			"service", key.ServiceID,
			"target", key.Target,
			"value", value)
	}
	telemetry.MutationsFired.WithLabelValues(outcome).Inc()

	s.record(domain.Event{
		ID:             uuid.NewString(),
		Action:         domain.ActionMutationFired,
		ServiceID:      key.ServiceID,
		Characteristic: key.Target,
		Value:          strconv.FormatInt(value, 10),
		Outcome:        outcome,
		Detail:         detail,
		Timestamp:      s.now(),
	})
}

func (s *Scheduler) record(event domain.Event) {
	if s.events != nil {
		if err := s.events.SaveEvent(event); err != nil {
			slog.Warn("failed to persist event", "action", event.Action, "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}

func (s *Scheduler) reportDecodeError(serviceID, name string, err error) {
	kind := "other"
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		kind = string(decodeErr.Kind)
	}
	telemetry.DecodeErrors.WithLabelValues(kind).Inc()
	slog.Warn("skipping malformed mutation characteristic",
		"service", serviceID,
		"characteristic", name,
		"error", err)
}

// sample draws from a value domain under the shared source's lock;
// rand.Rand is not safe for concurrent loops otherwise.
func (s *Scheduler) sample(d domain.ValueDomain) int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return d.Sample(s.rng)
}

func (s *Scheduler) nextDelay(rule domain.MutationRule) time.Duration {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rule.NextDelay(s.rng)
}
