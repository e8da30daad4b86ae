package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

func sampleEvents() []domain.Event {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Event{
		{ID: "e1", Action: domain.ActionMutationFired, ServiceID: "svc-1",
			Characteristic: "Mutation::tcp_port", Value: "8080",
			Outcome: domain.OutcomeOK, Timestamp: base},
		{ID: "e2", Action: domain.ActionRiskUpdated, ServiceID: "svc-2",
			Characteristic: domain.CharacteristicRiskScore, Value: "7.5",
			Outcome: domain.OutcomeOK, Timestamp: base.Add(time.Minute)},
		{ID: "e3", Action: domain.ActionPolicyTranslated, ServiceID: "svc-3",
			Characteristic: "Firewall rules", Value: "",
			Outcome: domain.OutcomeFailed, Detail: "catalog write: unreachable",
			Timestamp: base.Add(2 * time.Minute)},
	}
}

func TestNewActivityReport(t *testing.T) {
	report := NewActivityReport(sampleEvents())

	assert.Equal(t, 1, report.Mutations)
	assert.Equal(t, 1, report.RiskPushes)
	assert.Equal(t, 1, report.Policies)
	assert.Equal(t, 1, report.Failures)
}

func TestExportActivityReport(t *testing.T) {
	exporter := NewPDFExporter()

	data, err := exporter.ExportActivityReport(NewActivityReport(sampleEvents()))
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should be a PDF document")
}

func TestExportActivityReport_Empty(t *testing.T) {
	exporter := NewPDFExporter()

	data, err := exporter.ExportActivityReport(NewActivityReport(nil))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportActivityReport_ManyEventsPaginates(t *testing.T) {
	events := make([]domain.Event, 0, 120)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		events = append(events, domain.Event{
			ID: "e", Action: domain.ActionMutationFired, ServiceID: "svc-1",
			Characteristic: "Mutation::tcp_port", Value: "8080",
			Outcome: domain.OutcomeOK, Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	data, err := NewPDFExporter().ExportActivityReport(NewActivityReport(events))
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
