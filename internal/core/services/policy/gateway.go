package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/telemetry"
)

// Gateway receives security-policy documents scoped to a service order,
// dispatches them to the category translator, and pushes the resulting
// configuration to the order's service instances. Dispatch is a closed
// mapping: unknown categories are rejected at the door.
type Gateway struct {
	sync         ports.CatalogSync
	orchestrator ports.SecurityOrchestrator
	events       ports.EventRepository
	notifier     ports.EventNotifier
	translators  map[domain.PolicyCategory]translator
}

// NewGateway creates a translation gateway with all four category
// translators registered.
func NewGateway(sync ports.CatalogSync) *Gateway {
	return &Gateway{
		sync: sync,
		translators: map[domain.PolicyCategory]translator{
			domain.PolicyFirewall:          translateFirewall,
			domain.PolicySIEM:              translateSIEM,
			domain.PolicyTelemetry:         translateTelemetry,
			domain.PolicyChannelProtection: translateChannelProtection,
		},
	}
}

// SetOrchestrator attaches the external security orchestrator the raw MSPL
// document is forwarded to before translation.
func (g *Gateway) SetOrchestrator(o ports.SecurityOrchestrator) {
	g.orchestrator = o
}

// SetEventRepository attaches the local activity trail.
func (g *Gateway) SetEventRepository(repo ports.EventRepository) {
	g.events = repo
}

// SetNotifier attaches a live event fan-out.
func (g *Gateway) SetNotifier(n ports.EventNotifier) {
	g.notifier = n
}

// Translate processes one policy document. On any translation error the
// request is rejected whole: no partial configuration reaches the Catalog.
// rawBody is the document as received, forwarded untouched to the security
// orchestrator.
func (g *Gateway) Translate(ctx context.Context, doc domain.SecurityPolicyDocument, rawBody []byte) (domain.ConcreteConfig, error) {
	ctx, span := otel.Tracer("policy-gateway").Start(ctx, "Translate")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", doc.ServiceOrderID),
		attribute.String("policy.category", string(doc.Category)),
	)

	translate, ok := g.translators[doc.Category]
	if !ok {
		telemetry.PoliciesTranslated.WithLabelValues(string(doc.Category), domain.OutcomeFailed).Inc()
		return domain.ConcreteConfig{}, &domain.TranslationError{
			Kind:     domain.TranslationUnsupportedCategory,
			Category: string(doc.Category),
		}
	}

	config, err := translate(doc.Rules)
	if err != nil {
		telemetry.PoliciesTranslated.WithLabelValues(string(doc.Category), domain.OutcomeFailed).Inc()
		span.RecordError(err)
		return domain.ConcreteConfig{}, err
	}

	if g.orchestrator != nil && len(rawBody) > 0 {
		if err := g.orchestrator.SendMSPL(ctx, rawBody); err != nil {
			telemetry.PoliciesTranslated.WithLabelValues(string(doc.Category), domain.OutcomeFailed).Inc()
			span.RecordError(err)
			return domain.ConcreteConfig{}, fmt.Errorf("forwarding policy to security orchestrator: %w", err)
		}
	}

	if err := g.push(ctx, doc.ServiceOrderID, config); err != nil {
		telemetry.PoliciesTranslated.WithLabelValues(string(doc.Category), domain.OutcomeFailed).Inc()
		span.RecordError(err)
		return domain.ConcreteConfig{}, err
	}

	telemetry.PoliciesTranslated.WithLabelValues(string(doc.Category), domain.OutcomeOK).Inc()
	g.record(domain.Event{
		ID:             uuid.NewString(),
		Action:         domain.ActionPolicyTranslated,
		ServiceID:      doc.ServiceOrderID,
		Characteristic: string(doc.Category),
		Outcome:        domain.OutcomeOK,
		Timestamp:      time.Now(),
	})
	slog.Info("policy translated", "order", doc.ServiceOrderID, "category", doc.Category)
	return config, nil
}

// push delivers the translated configuration to every instance of the
// service order.
func (g *Gateway) push(ctx context.Context, orderID string, config domain.ConcreteConfig) error {
	instances, err := g.sync.FindByServiceOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return &domain.SyncError{Kind: domain.SyncRejected, Op: "resolve order " + orderID}
	}

	for _, inst := range instances {
		for _, c := range config.Characteristics {
			if err := g.sync.PushCharacteristic(ctx, inst.ID, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Gateway) record(event domain.Event) {
	if g.events != nil {
		if err := g.events.SaveEvent(event); err != nil {
			slog.Warn("failed to persist event", "action", event.Action, "error", err)
		}
	}
	if g.notifier != nil {
		g.notifier.Notify(event)
	}
}
