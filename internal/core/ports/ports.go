package ports

import (
	"context"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

// CatalogClient is the outbound surface of the Catalog: characteristic
// reads, characteristic writes, and the lifecycle-supervision trigger.
// Implementations translate transport failures into domain.SyncError.
type CatalogClient interface {
	// GetServiceInstance fetches one service instance by id.
	GetServiceInstance(ctx context.Context, id string) (domain.ServiceInstance, error)
	// ListServiceInstances returns all service instances known to the
	// Catalog, terminated ones included.
	ListServiceInstances(ctx context.Context) ([]domain.ServiceInstance, error)
	// FindByCharacteristic returns instances whose named characteristic's
	// primary value equals value exactly. Result order is unspecified.
	FindByCharacteristic(ctx context.Context, name, value string) ([]domain.ServiceInstance, error)
	// FindByServiceOrder returns the instances belonging to a service order.
	FindByServiceOrder(ctx context.Context, orderID string) ([]domain.ServiceInstance, error)
	// UpdateCharacteristic writes a characteristic value on an instance.
	UpdateCharacteristic(ctx context.Context, serviceID string, c domain.Characteristic) error
	// TriggerSupervision starts the Catalog's lifecycle-supervision
	// propagation for an instance.
	TriggerSupervision(ctx context.Context, serviceID string) error
}

// CatalogSync pushes characteristic state into the Catalog idempotently and
// resolves instances for the matching entry points.
type CatalogSync interface {
	PushCharacteristic(ctx context.Context, serviceID string, c domain.Characteristic) error
	FindByPlatformID(ctx context.Context, cpe string) ([]domain.ServiceInstance, error)
	FindByServiceOrder(ctx context.Context, orderID string) ([]domain.ServiceInstance, error)
}

// SecurityOrchestrator forwards raw MSPL documents to the external
// security orchestrator.
type SecurityOrchestrator interface {
	SendMSPL(ctx context.Context, body []byte) error
}

// EventRepository stores the local activity trail.
type EventRepository interface {
	SaveEvent(event domain.Event) error
	ListEvents(limit int) ([]domain.Event, error)
	Close() error
}

// EventNotifier receives activity events for live fan-out to websocket
// clients. Implementations must not block the caller.
type EventNotifier interface {
	Notify(event domain.Event)
}
