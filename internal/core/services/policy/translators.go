package policy

import (
	"encoding/json"
	"fmt"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

// Configuration characteristics produced by the translators.
const (
	CharacteristicFirewallRules     = "Firewall rules"
	CharacteristicSIEMSubscription  = "SIEM subscription"
	CharacteristicTelemetrySpec     = "Telemetry collection"
	CharacteristicChannelProtection = "Channel protection"
)

// translator is a total function from an opaque policy payload to the
// category's concrete configuration.
type translator func(rules json.RawMessage) (domain.ConcreteConfig, error)

func malformed(category domain.PolicyCategory, detail string) error {
	return &domain.TranslationError{
		Kind:     domain.TranslationMalformedPolicy,
		Category: string(category),
		Detail:   detail,
	}
}

func decodePayload(category domain.PolicyCategory, raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return malformed(category, "empty rules payload")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return malformed(category, err.Error())
	}
	return nil
}

// configCharacteristic serializes a translated configuration into a single
// primary-slot characteristic.
func configCharacteristic(name string, v any) (domain.Characteristic, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return domain.Characteristic{}, err
	}
	return domain.Characteristic{
		Name:   name,
		Values: []domain.CharacteristicValue{{Value: string(encoded)}},
	}, nil
}

func translateFirewall(raw json.RawMessage) (domain.ConcreteConfig, error) {
	var rules []domain.FirewallRule
	if err := decodePayload(domain.PolicyFirewall, raw, &rules); err != nil {
		return domain.ConcreteConfig{}, err
	}
	if len(rules) == 0 {
		return domain.ConcreteConfig{}, malformed(domain.PolicyFirewall, "no filtering rules")
	}
	for i, r := range rules {
		switch r.Action {
		case "allow", "deny", "drop", "reject":
		default:
			return domain.ConcreteConfig{}, malformed(domain.PolicyFirewall,
				fmt.Sprintf("rule %d has unknown action %q", i, r.Action))
		}
		if r.SrcAddr == "" && r.DstAddr == "" {
			return domain.ConcreteConfig{}, malformed(domain.PolicyFirewall,
				fmt.Sprintf("rule %d has no addresses", i))
		}
	}

	c, err := configCharacteristic(CharacteristicFirewallRules, domain.FirewallConfig{Rules: rules})
	if err != nil {
		return domain.ConcreteConfig{}, err
	}
	return domain.ConcreteConfig{
		Category:        domain.PolicyFirewall,
		Characteristics: []domain.Characteristic{c},
	}, nil
}

func translateSIEM(raw json.RawMessage) (domain.ConcreteConfig, error) {
	var cfg domain.SIEMConfig
	if err := decodePayload(domain.PolicySIEM, raw, &cfg); err != nil {
		return domain.ConcreteConfig{}, err
	}
	if cfg.CollectorEndpoint == "" {
		return domain.ConcreteConfig{}, malformed(domain.PolicySIEM, "missing collector_endpoint")
	}

	c, err := configCharacteristic(CharacteristicSIEMSubscription, cfg)
	if err != nil {
		return domain.ConcreteConfig{}, err
	}
	return domain.ConcreteConfig{
		Category:        domain.PolicySIEM,
		Characteristics: []domain.Characteristic{c},
	}, nil
}

func translateTelemetry(raw json.RawMessage) (domain.ConcreteConfig, error) {
	var cfg domain.TelemetryConfig
	if err := decodePayload(domain.PolicyTelemetry, raw, &cfg); err != nil {
		return domain.ConcreteConfig{}, err
	}
	if cfg.Deploy && cfg.ExporterEndpoint == "" {
		return domain.ConcreteConfig{}, malformed(domain.PolicyTelemetry, "deploy without exporterEndpoint")
	}

	c, err := configCharacteristic(CharacteristicTelemetrySpec, cfg)
	if err != nil {
		return domain.ConcreteConfig{}, err
	}
	return domain.ConcreteConfig{
		Category:        domain.PolicyTelemetry,
		Characteristics: []domain.Characteristic{c},
	}, nil
}

func translateChannelProtection(raw json.RawMessage) (domain.ConcreteConfig, error) {
	var cfg domain.ChannelProtectionConfig
	if err := decodePayload(domain.PolicyChannelProtection, raw, &cfg); err != nil {
		return domain.ConcreteConfig{}, err
	}
	if cfg.LocalAddress == "" || cfg.RemoteAddress == "" {
		return domain.ConcreteConfig{}, malformed(domain.PolicyChannelProtection, "missing channel endpoint address")
	}

	c, err := configCharacteristic(CharacteristicChannelProtection, cfg)
	if err != nil {
		return domain.ConcreteConfig{}, err
	}
	return domain.ConcreteConfig{
		Category:        domain.PolicyChannelProtection,
		Characteristics: []domain.Characteristic{c},
	}, nil
}
