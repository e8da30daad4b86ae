package storage

import "github.com/nfvsec/nmtd/internal/core/domain"

func toModel(e domain.Event) EventModel {
	return EventModel{
		ID:             e.ID,
		Action:         string(e.Action),
		ServiceID:      e.ServiceID,
		Characteristic: e.Characteristic,
		Value:          e.Value,
		Outcome:        e.Outcome,
		Detail:         e.Detail,
		Timestamp:      e.Timestamp,
	}
}

func toDomain(m EventModel) domain.Event {
	return domain.Event{
		ID:             m.ID,
		Action:         domain.EventAction(m.Action),
		ServiceID:      m.ServiceID,
		Characteristic: m.Characteristic,
		Value:          m.Value,
		Outcome:        m.Outcome,
		Detail:         m.Detail,
		Timestamp:      m.Timestamp,
	}
}
