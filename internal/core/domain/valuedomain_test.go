package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueDomain(t *testing.T) {
	d, err := ParseValueDomain("[80, 8080, 10000-11000]")
	require.NoError(t, err)

	require.Len(t, d.Entries, 3)
	assert.Equal(t, ValueEntry{Lo: 80, Hi: 80}, d.Entries[0])
	assert.Equal(t, ValueEntry{Lo: 8080, Hi: 8080}, d.Entries[1])
	assert.Equal(t, ValueEntry{Lo: 10000, Hi: 11000}, d.Entries[2])
	assert.Equal(t, int64(1003), d.Size())
}

func TestParseValueDomain_Variants(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		size    int64
		wantErr bool
	}{
		{name: "no brackets", spec: "80, 443", size: 2},
		{name: "single value", spec: "[22]", size: 1},
		{name: "single range", spec: "1024-2048", size: 1025},
		{name: "messy whitespace", spec: "[ 80 ,  8080 , 10-12 ]", size: 5},
		{name: "empty", spec: "", wantErr: true},
		{name: "empty brackets", spec: "[]", wantErr: true},
		{name: "only commas", spec: "[,,]", wantErr: true},
		{name: "non-numeric token", spec: "[80, http]", wantErr: true},
		{name: "inverted range", spec: "[200-100]", wantErr: true},
		{name: "half range", spec: "[100-]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseValueDomain(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, d.Size())
		})
	}
}

func TestValueDomainAt(t *testing.T) {
	d, err := ParseValueDomain("[80, 8080, 10000-11000]")
	require.NoError(t, err)

	assert.Equal(t, int64(80), d.At(0))
	assert.Equal(t, int64(8080), d.At(1))
	assert.Equal(t, int64(10000), d.At(2))
	assert.Equal(t, int64(11000), d.At(1002))
}

func TestValueDomainSample(t *testing.T) {
	d, err := ParseValueDomain("[80, 8080, 10000-11000]")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	seen := make(map[int64]bool)
	for i := 0; i < 20000; i++ {
		v := d.Sample(rng)
		assert.True(t, d.Contains(v), "sampled %d outside the domain", v)
		seen[v] = true
	}

	// Discrete values and both range endpoints are reachable.
	assert.True(t, seen[80])
	assert.True(t, seen[8080])
	assert.True(t, seen[10000])
	assert.True(t, seen[11000])
}

func TestValueDomainString(t *testing.T) {
	d, err := ParseValueDomain("[ 80,8080 , 10000-11000]")
	require.NoError(t, err)
	assert.Equal(t, "[80, 8080, 10000-11000]", d.String())
}
