package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PolicyCategory is the closed set of security-policy categories this
// system can translate.
type PolicyCategory string

const (
	PolicyFirewall          PolicyCategory = "firewall"
	PolicySIEM              PolicyCategory = "siem"
	PolicyTelemetry         PolicyCategory = "telemetry"
	PolicyChannelProtection PolicyCategory = "channel_protection"
)

// ParsePolicyCategory parses a declared policy type case-insensitively.
func ParsePolicyCategory(s string) (PolicyCategory, error) {
	switch PolicyCategory(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyFirewall:
		return PolicyFirewall, nil
	case PolicySIEM:
		return PolicySIEM, nil
	case PolicyTelemetry:
		return PolicyTelemetry, nil
	case PolicyChannelProtection:
		return PolicyChannelProtection, nil
	default:
		return "", fmt.Errorf("unsupported policy category %q", s)
	}
}

// SecurityPolicyDocument is an abstract, category-tagged security control
// scoped to a service order. The rules payload is opaque until a category
// translator parses it. Documents are consumed once per receipt and not
// retained.
type SecurityPolicyDocument struct {
	ServiceOrderID string          `json:"service_order_id"`
	Category       PolicyCategory  `json:"policy_type"`
	Rules          json.RawMessage `json:"rules"`
}

// FirewallRule is one concrete filtering rule.
type FirewallRule struct {
	Name     string `json:"name"`
	SrcAddr  string `json:"srcAddr"`
	DstAddr  string `json:"dstAddr"`
	Action   string `json:"action"`
	Protocol string `json:"protocol,omitempty"`
}

// FirewallConfig is the translated firewall configuration.
type FirewallConfig struct {
	Rules []FirewallRule `json:"rules"`
}

// SIEMConfig subscribes a service's event stream to a SIEM collector.
type SIEMConfig struct {
	CollectorEndpoint string   `json:"collector_endpoint"`
	EventSources      []string `json:"event_sources,omitempty"`
}

// TelemetryConfig deploys or reconfigures a telemetry collection agent.
type TelemetryConfig struct {
	Deploy           bool   `json:"deploy"`
	DomainID         string `json:"domainID"`
	FlavorID         string `json:"flavorID"`
	ExporterEndpoint string `json:"exporterEndpoint"`
}

// ChannelProtectionConfig carries the parameters of a protected channel
// between two endpoints.
type ChannelProtectionConfig struct {
	LocalAddress  string `json:"local_address"`
	RemoteAddress string `json:"remote_address"`
	EncKey1       string `json:"enc_key_1"`
	EncKey2       string `json:"enc_key_2"`
	IntKey1       string `json:"int_key_1"`
	IntKey2       string `json:"int_key_2"`
}

// ConcreteConfig is the result of translating a policy document: a
// category-specific configuration expressed as Catalog characteristics.
type ConcreteConfig struct {
	Category        PolicyCategory   `json:"category"`
	Characteristics []Characteristic `json:"characteristics"`
}
