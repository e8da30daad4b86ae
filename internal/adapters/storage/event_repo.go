package storage

import (
	"github.com/nfvsec/nmtd/internal/core/domain"
)

// SaveEvent appends one activity record to the trail.
func (a *SQLiteAdapter) SaveEvent(event domain.Event) error {
	model := toModel(event)
	return a.db.Create(&model).Error
}

// ListEvents returns the most recent events, newest first. A non-positive
// limit returns everything.
func (a *SQLiteAdapter) ListEvents(limit int) ([]domain.Event, error) {
	query := a.db.Order("timestamp desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []EventModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]domain.Event, len(models))
	for i, m := range models {
		events[i] = toDomain(m)
	}
	return events, nil
}
