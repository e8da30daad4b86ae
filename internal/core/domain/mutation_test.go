package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portMutationCharacteristic() Characteristic {
	return Characteristic{
		Name: "Mutation::Port",
		Values: []CharacteristicValue{
			{Value: "random", Alias: AliasInterval},
			{Value: "10", Alias: AliasValueFrom},
			{Value: "60", Alias: AliasValueTo},
			{Value: "[80, 8080, 10000-11000]"},
		},
	}
}

func TestDecodeMutationRule(t *testing.T) {
	rule, err := DecodeMutationRule(portMutationCharacteristic())
	require.NoError(t, err)

	assert.Equal(t, "Port", rule.Target)
	assert.Equal(t, IntervalRandom, rule.Policy)
	assert.Equal(t, int64(10), rule.FromSec)
	assert.Equal(t, int64(60), rule.ToSec)
	assert.Equal(t, int64(1003), rule.Domain.Size())
	assert.True(t, rule.Active())
}

func TestDecodeMutationRule_CaseInsensitivePolicy(t *testing.T) {
	c := portMutationCharacteristic()
	c.Values[0].Value = "RaNdOm"

	rule, err := DecodeMutationRule(c)
	require.NoError(t, err)
	assert.Equal(t, IntervalRandom, rule.Policy)
}

func TestDecodeMutationRule_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Characteristic)
		kind   DecodeErrorKind
	}{
		{
			name:   "unknown policy keyword",
			mutate: func(c *Characteristic) { c.Values[0].Value = "bogus" },
			kind:   DecodeUnknownPolicy,
		},
		{
			name:   "missing interval entry",
			mutate: func(c *Characteristic) { c.Values = c.Values[1:] },
			kind:   DecodeUnknownPolicy,
		},
		{
			name: "missing valueFrom",
			mutate: func(c *Characteristic) {
				c.Values = append(c.Values[:1], c.Values[2:]...)
			},
			kind: DecodeMissingBound,
		},
		{
			name:   "non-numeric bound",
			mutate: func(c *Characteristic) { c.Values[2].Value = "sixty" },
			kind:   DecodeMissingBound,
		},
		{
			name:   "inverted bounds",
			mutate: func(c *Characteristic) { c.Values[1].Value = "120" },
			kind:   DecodeMissingBound,
		},
		{
			name: "missing domain entry",
			mutate: func(c *Characteristic) {
				c.Values = c.Values[:3]
			},
			kind: DecodeMalformedDomain,
		},
		{
			name:   "unparsable domain",
			mutate: func(c *Characteristic) { c.Values[3].Value = "[80, oops]" },
			kind:   DecodeMalformedDomain,
		},
		{
			name:   "empty domain",
			mutate: func(c *Characteristic) { c.Values[3].Value = "[]" },
			kind:   DecodeMalformedDomain,
		},
		{
			name:   "empty target name",
			mutate: func(c *Characteristic) { c.Name = "Mutation::" },
			kind:   DecodeMalformedDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := portMutationCharacteristic()
			tt.mutate(&c)

			_, err := DecodeMutationRule(c)
			require.Error(t, err)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tt.kind, decodeErr.Kind)
		})
	}
}

func TestDecodeMutationRule_InactiveWithoutDomain(t *testing.T) {
	c := Characteristic{
		Name: "Mutation::Port",
		Values: []CharacteristicValue{
			{Value: "inactive", Alias: AliasInterval},
			{Value: "0", Alias: AliasValueFrom},
			{Value: "0", Alias: AliasValueTo},
		},
	}

	rule, err := DecodeMutationRule(c)
	require.NoError(t, err)
	assert.False(t, rule.Active())
}

func TestEncodeMutationRule_RoundTrip(t *testing.T) {
	original, err := DecodeMutationRule(portMutationCharacteristic())
	require.NoError(t, err)

	encoded := EncodeMutationRule(original)
	decoded, err := DecodeMutationRule(encoded)
	require.NoError(t, err)

	assert.True(t, original.Equal(decoded))
}

func TestNewValueCharacteristic(t *testing.T) {
	c := NewValueCharacteristic("Port", 8080)
	assert.Equal(t, "Port", c.Name)
	require.Len(t, c.Values, 1)
	assert.Equal(t, "8080", c.Values[0].Value)
	assert.Empty(t, c.Values[0].Alias)
}

func TestNextDelay(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	minRule := MutationRule{Policy: IntervalMin, FromSec: 10, ToSec: 60}
	assert.Equal(t, 10*time.Second, minRule.NextDelay(rng))

	maxRule := MutationRule{Policy: IntervalMax, FromSec: 10, ToSec: 60}
	assert.Equal(t, 60*time.Second, maxRule.NextDelay(rng))

	randRule := MutationRule{Policy: IntervalRandom, FromSec: 10, ToSec: 60}
	for i := 0; i < 200; i++ {
		d := randRule.NextDelay(rng)
		assert.GreaterOrEqual(t, d, 10*time.Second)
		assert.LessOrEqual(t, d, 60*time.Second)
	}

	// Degenerate bounds are valid for all non-inactive policies.
	fixed := MutationRule{Policy: IntervalRandom, FromSec: 30, ToSec: 30}
	assert.Equal(t, 30*time.Second, fixed.NextDelay(rng))
}

func TestMutationRuleEqual(t *testing.T) {
	a, err := DecodeMutationRule(portMutationCharacteristic())
	require.NoError(t, err)
	b := a
	assert.True(t, a.Equal(b))

	b.ToSec = 90
	assert.False(t, a.Equal(b))

	c := a
	c.Domain = ValueDomain{Entries: []ValueEntry{{Lo: 80, Hi: 80}}}
	assert.False(t, a.Equal(c))
}
