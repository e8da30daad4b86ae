package catalog

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/telemetry"
)

// SyncService implements ports.CatalogSync on top of a CatalogClient.
// Pushes are idempotent: re-sending the value an instance already carries
// performs no write and triggers no propagation.
type SyncService struct {
	client ports.CatalogClient
}

// NewSyncService creates a new catalog synchronization service.
func NewSyncService(client ports.CatalogClient) *SyncService {
	return &SyncService{client: client}
}

var _ ports.CatalogSync = (*SyncService)(nil)

// PushCharacteristic writes a characteristic value on a service instance
// and triggers the Catalog's lifecycle-supervision propagation. The
// propagation is fire-and-forget: its failures are logged, not returned,
// and never retried here.
func (s *SyncService) PushCharacteristic(ctx context.Context, serviceID string, c domain.Characteristic) error {
	ctx, span := otel.Tracer("catalog-sync").Start(ctx, "PushCharacteristic")
	defer span.End()
	span.SetAttributes(
		attribute.String("service.id", serviceID),
		attribute.String("characteristic.name", c.Name),
	)

	instance, err := s.client.GetServiceInstance(ctx, serviceID)
	if err != nil {
		telemetry.SyncErrors.WithLabelValues("read").Inc()
		span.RecordError(err)
		return err
	}

	if current, ok := instance.Characteristic(c.Name); ok && current.Equal(c) {
		slog.Debug("characteristic already up to date", "service", serviceID, "characteristic", c.Name)
		span.AddEvent("no-op push")
		return nil
	}

	if err := s.client.UpdateCharacteristic(ctx, serviceID, c); err != nil {
		telemetry.SyncErrors.WithLabelValues("write").Inc()
		span.RecordError(err)
		return err
	}

	if err := s.client.TriggerSupervision(ctx, serviceID); err != nil {
		slog.Warn("lifecycle supervision trigger failed", "service", serviceID, "error", err)
		telemetry.SyncErrors.WithLabelValues("supervision").Inc()
	}
	return nil
}

// FindByPlatformID returns all instances whose CPE characteristic equals
// cpe exactly. Result order is unspecified.
func (s *SyncService) FindByPlatformID(ctx context.Context, cpe string) ([]domain.ServiceInstance, error) {
	return s.client.FindByCharacteristic(ctx, domain.CharacteristicCPE, cpe)
}

// FindByServiceOrder returns the instances belonging to a service order.
func (s *SyncService) FindByServiceOrder(ctx context.Context, orderID string) ([]domain.ServiceInstance, error) {
	return s.client.FindByServiceOrder(ctx, orderID)
}
