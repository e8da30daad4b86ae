package domain

import "time"

// EventAction identifies the kind of activity recorded in the audit trail.
type EventAction string

const (
	ActionMutationFired    EventAction = "MUTATION_FIRED"
	ActionRiskUpdated      EventAction = "RISK_UPDATED"
	ActionPolicyTranslated EventAction = "POLICY_TRANSLATED"
)

// Event outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Event is an operator-facing record of one side-car activity. The Catalog
// remains the system of record for characteristic state; events exist only
// for local inspection and reporting.
type Event struct {
	ID             string      `json:"id"`
	Action         EventAction `json:"action"`
	ServiceID      string      `json:"service_id"`
	Characteristic string      `json:"characteristic"`
	Value          string      `json:"value"`
	Outcome        string      `json:"outcome"`
	Detail         string      `json:"detail,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}
