package domain

import (
	"fmt"
	"strconv"
)

// Well-known characteristic names and aliases used by the Catalog wire format.
const (
	MutationPrefix = "Mutation::"

	AliasInterval  = "interval"
	AliasValueFrom = "valueFrom"
	AliasValueTo   = "valueTo"

	CharacteristicCPE          = "CPE"
	CharacteristicPrivacyScore = "Privacy score"
	CharacteristicRiskScore    = "Risk score"
)

// CharacteristicValue is a single (value, alias) entry of a characteristic.
// An empty alias marks the primary value slot.
type CharacteristicValue struct {
	Value string `json:"value"`
	Alias string `json:"alias"`
}

// Characteristic is a named, multi-valued attribute attached to a service
// instance in the Catalog. Aliases are unique within one characteristic's
// value list when non-empty.
type Characteristic struct {
	Name   string                `json:"name"`
	Values []CharacteristicValue `json:"values"`
}

// FindAlias returns the value of the entry carrying the given alias.
func (c Characteristic) FindAlias(alias string) (string, bool) {
	for _, v := range c.Values {
		if v.Alias == alias {
			return v.Value, true
		}
	}
	return "", false
}

// Primary returns the value of the entry with an empty alias.
func (c Characteristic) Primary() (string, bool) {
	return c.FindAlias("")
}

// NewValueCharacteristic builds a plain single-valued characteristic holding
// the stringified value in its primary slot.
func NewValueCharacteristic(name string, value int64) Characteristic {
	return Characteristic{
		Name:   name,
		Values: []CharacteristicValue{{Value: strconv.FormatInt(value, 10)}},
	}
}

// NewScoreCharacteristic builds a plain characteristic holding a numeric
// score.
func NewScoreCharacteristic(name string, score float64) Characteristic {
	return Characteristic{
		Name:   name,
		Values: []CharacteristicValue{{Value: strconv.FormatFloat(score, 'f', -1, 64)}},
	}
}

// Equal compares two characteristics by field-set equality: same name and
// the same ordered (value, alias) entries.
func (c Characteristic) Equal(other Characteristic) bool {
	if c.Name != other.Name || len(c.Values) != len(other.Values) {
		return false
	}
	for i, v := range c.Values {
		if v != other.Values[i] {
			return false
		}
	}
	return true
}

// ServiceInstance is a deployed network service known to the Catalog.
// It is read-only to this system except for characteristic writes routed
// through the Catalog itself.
type ServiceInstance struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	State           string           `json:"state"`
	ServiceOrderID  string           `json:"service_order_id"`
	Characteristics []Characteristic `json:"characteristics"`
}

// Characteristic returns the named characteristic, if present.
func (s ServiceInstance) Characteristic(name string) (Characteristic, bool) {
	for _, c := range s.Characteristics {
		if c.Name == name {
			return c, true
		}
	}
	return Characteristic{}, false
}

// CPE returns the platform identifier of the instance's base software, or
// an empty string when none is set.
func (s ServiceInstance) CPE() string {
	c, ok := s.Characteristic(CharacteristicCPE)
	if !ok {
		return ""
	}
	v, _ := c.Primary()
	return v
}

// Active reports whether the instance is still live in the Catalog.
func (s ServiceInstance) Active() bool {
	return s.State != "terminated"
}

func (s ServiceInstance) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}
