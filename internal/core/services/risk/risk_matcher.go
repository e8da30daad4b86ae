package risk

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/telemetry"
)

// Report summarizes one risk application run. Updates are per-instance and
// partial: one instance's failure never hides another's success.
type Report struct {
	CPE     string   `json:"cpe"`
	Matched int      `json:"matched"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// Matcher finds service instances by platform identifier and updates their
// privacy/risk score characteristics.
type Matcher struct {
	sync     ports.CatalogSync
	events   ports.EventRepository
	notifier ports.EventNotifier
}

// NewMatcher creates a risk matcher on top of the catalog sync.
func NewMatcher(sync ports.CatalogSync) *Matcher {
	return &Matcher{sync: sync}
}

// SetEventRepository attaches the local activity trail.
func (m *Matcher) SetEventRepository(repo ports.EventRepository) {
	m.events = repo
}

// SetNotifier attaches a live event fan-out.
func (m *Matcher) SetNotifier(n ports.EventNotifier) {
	m.notifier = n
}

// ApplyRisk pushes "Privacy score" and "Risk score" characteristics to
// every instance whose CPE characteristic equals cpe. Instances are updated
// independently and in parallel, with no ordering between them. A
// domain.MatchError is returned when nothing matches; per-instance push
// failures are collected in the report, never promoted to an overall error.
func (m *Matcher) ApplyRisk(ctx context.Context, cpe string, privacyScore, riskScore float64) (Report, error) {
	ctx, span := otel.Tracer("risk-matcher").Start(ctx, "ApplyRisk")
	defer span.End()
	span.SetAttributes(attribute.String("platform.cpe", cpe))

	instances, err := m.sync.FindByPlatformID(ctx, cpe)
	if err != nil {
		span.RecordError(err)
		return Report{CPE: cpe}, err
	}
	if len(instances) == 0 {
		return Report{CPE: cpe}, &domain.MatchError{CPE: cpe}
	}

	report := Report{CPE: cpe, Matched: len(instances)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, inst := range instances {
		wg.Add(1)
		go func(inst domain.ServiceInstance) {
			defer wg.Done()
			err := m.updateInstance(ctx, inst, privacyScore, riskScore)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, inst.ID)
				return
			}
			report.Updated++
		}(inst)
	}
	wg.Wait()
	sort.Strings(report.Failed)

	slog.Info("risk scores applied",
		"cpe", cpe,
		"matched", report.Matched,
		"updated", report.Updated,
		"failed", len(report.Failed))
	return report, nil
}

// updateInstance pushes both score characteristics to one instance. Either
// push failing marks the whole instance as failed.
func (m *Matcher) updateInstance(ctx context.Context, inst domain.ServiceInstance, privacyScore, riskScore float64) error {
	characteristics := []domain.Characteristic{
		domain.NewScoreCharacteristic(domain.CharacteristicPrivacyScore, privacyScore),
		domain.NewScoreCharacteristic(domain.CharacteristicRiskScore, riskScore),
	}

	var pushErr error
	for _, c := range characteristics {
		if err := m.sync.PushCharacteristic(ctx, inst.ID, c); err != nil {
			slog.Warn("risk score push failed", "service", inst.ID, "characteristic", c.Name, "error", err)
			pushErr = err
			break
		}
	}

	outcome := domain.OutcomeOK
	detail := ""
	if pushErr != nil {
		outcome = domain.OutcomeFailed
		detail = pushErr.Error()
	}
	telemetry.RiskUpdates.WithLabelValues(outcome).Inc()

	m.record(domain.Event{
		ID:             uuid.NewString(),
		Action:         domain.ActionRiskUpdated,
		ServiceID:      inst.ID,
		Characteristic: domain.CharacteristicRiskScore,
		Value:          strconv.FormatFloat(riskScore, 'f', -1, 64),
		Outcome:        outcome,
		Detail:         detail,
		Timestamp:      time.Now(),
	})
	return pushErr
}

func (m *Matcher) record(event domain.Event) {
	if m.events != nil {
		if err := m.events.SaveEvent(event); err != nil {
			slog.Warn("failed to persist event", "action", event.Action, "error", err)
		}
	}
	if m.notifier != nil {
		m.notifier.Notify(event)
	}
}
