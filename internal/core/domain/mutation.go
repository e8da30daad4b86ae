package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// IntervalPolicy selects how the delay until the next mutation is computed
// from the [From, To] bound pair.
type IntervalPolicy string

const (
	IntervalMin      IntervalPolicy = "min"
	IntervalMax      IntervalPolicy = "max"
	IntervalRandom   IntervalPolicy = "random"
	IntervalInactive IntervalPolicy = "inactive"
)

// ParseIntervalPolicy parses a policy keyword case-insensitively. Unknown
// keywords are a decode-time error, never a silent default.
func ParseIntervalPolicy(keyword string) (IntervalPolicy, error) {
	switch IntervalPolicy(strings.ToLower(strings.TrimSpace(keyword))) {
	case IntervalMin:
		return IntervalMin, nil
	case IntervalMax:
		return IntervalMax, nil
	case IntervalRandom:
		return IntervalRandom, nil
	case IntervalInactive:
		return IntervalInactive, nil
	default:
		return "", fmt.Errorf("unknown interval policy %q", keyword)
	}
}

// MutationRule is the decoded scheduling and value-domain specification
// carried by a Mutation::* characteristic. Rules are immutable: each
// observation of the source characteristic yields a fresh rule, compared by
// value to decide whether to reschedule.
type MutationRule struct {
	Target  string
	Policy  IntervalPolicy
	FromSec int64
	ToSec   int64
	Domain  ValueDomain
}

// Active reports whether the rule ever schedules a firing.
func (r MutationRule) Active() bool {
	return r.Policy != IntervalInactive
}

// Equal compares two rules by value.
func (r MutationRule) Equal(other MutationRule) bool {
	return r.Target == other.Target &&
		r.Policy == other.Policy &&
		r.FromSec == other.FromSec &&
		r.ToSec == other.ToSec &&
		r.Domain.Equal(other.Domain)
}

// NextDelay computes the delay until the rule's next firing. The caller
// must not invoke it for inactive rules.
func (r MutationRule) NextDelay(rng *rand.Rand) time.Duration {
	var sec int64
	switch r.Policy {
	case IntervalMin:
		sec = r.FromSec
	case IntervalMax:
		sec = r.ToSec
	case IntervalRandom:
		sec = r.FromSec + rng.Int63n(r.ToSec-r.FromSec+1)
	}
	return time.Duration(sec) * time.Second
}

// DecodeMutationRule decodes a Mutation::<Name> characteristic into a rule.
// The value list must carry the policy keyword under alias "interval", the
// numeric bounds under "valueFrom"/"valueTo", and the value-domain
// specification in the empty-alias slot. Inactive rules tolerate a missing
// domain since they never sample.
func DecodeMutationRule(c Characteristic) (MutationRule, error) {
	target, ok := strings.CutPrefix(c.Name, MutationPrefix)
	if !ok || target == "" {
		return MutationRule{}, &DecodeError{
			Kind:           DecodeMalformedDomain,
			Characteristic: c.Name,
			Detail:         "name does not carry a mutation target",
		}
	}

	keyword, _ := c.FindAlias(AliasInterval)
	policy, err := ParseIntervalPolicy(keyword)
	if err != nil {
		return MutationRule{}, &DecodeError{
			Kind:           DecodeUnknownPolicy,
			Characteristic: c.Name,
			Detail:         err.Error(),
		}
	}

	from, err := decodeBound(c, AliasValueFrom)
	if err != nil {
		return MutationRule{}, err
	}
	to, err := decodeBound(c, AliasValueTo)
	if err != nil {
		return MutationRule{}, err
	}
	if from > to {
		return MutationRule{}, &DecodeError{
			Kind:           DecodeMissingBound,
			Characteristic: c.Name,
			Detail:         fmt.Sprintf("interval bounds inverted: %d > %d", from, to),
		}
	}

	rule := MutationRule{Target: target, Policy: policy, FromSec: from, ToSec: to}
	if policy == IntervalInactive {
		return rule, nil
	}

	spec, ok := c.Primary()
	if !ok {
		return MutationRule{}, &DecodeError{
			Kind:           DecodeMalformedDomain,
			Characteristic: c.Name,
			Detail:         "missing value domain entry",
		}
	}
	valueDomain, err := ParseValueDomain(spec)
	if err != nil {
		return MutationRule{}, &DecodeError{
			Kind:           DecodeMalformedDomain,
			Characteristic: c.Name,
			Detail:         err.Error(),
		}
	}
	rule.Domain = valueDomain
	return rule, nil
}

func decodeBound(c Characteristic, alias string) (int64, error) {
	raw, ok := c.FindAlias(alias)
	if !ok {
		return 0, &DecodeError{
			Kind:           DecodeMissingBound,
			Characteristic: c.Name,
			Detail:         "missing " + alias,
		}
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &DecodeError{
			Kind:           DecodeMissingBound,
			Characteristic: c.Name,
			Detail:         fmt.Sprintf("%s %q is not numeric", alias, raw),
		}
	}
	return v, nil
}

// EncodeMutationRule serializes a rule back into the Mutation::<Target>
// wire shape. Decoding the result yields a rule equal to the input.
func EncodeMutationRule(r MutationRule) Characteristic {
	values := []CharacteristicValue{
		{Value: string(r.Policy), Alias: AliasInterval},
		{Value: strconv.FormatInt(r.FromSec, 10), Alias: AliasValueFrom},
		{Value: strconv.FormatInt(r.ToSec, 10), Alias: AliasValueTo},
	}
	if len(r.Domain.Entries) > 0 {
		values = append(values, CharacteristicValue{Value: r.Domain.String()})
	}
	return Characteristic{Name: MutationPrefix + r.Target, Values: values}
}
