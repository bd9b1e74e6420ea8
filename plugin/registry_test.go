package plugin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	name    string
	payload any
}

func newRegistry(t *testing.T, names ...string) *Registry[*probe] {
	t.Helper()
	r := NewRegistry[*probe]("test")
	for _, name := range names {
		name := name
		r.Register(name, func(payload any) (*probe, error) {
			return &probe{name: name, payload: payload}, nil
		})
	}
	return r
}

func TestResolveNamingConvention(t *testing.T) {
	r := newRegistry(t, "MACD_Cross")

	tests := []string{"MACD_Cross", "MACDCross", "macd_cross", "macdcross", "MACD_CROSS"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := r.Resolve(name, nil)
			require.NoError(t, err)
			assert.Equal(t, "MACD_Cross", p.name)
		})
	}
}

func TestResolvePayloadPassthrough(t *testing.T) {
	r := newRegistry(t, "Volume_Threshold")

	payload := map[string]int{"days": 7}
	p, err := r.Resolve("Volume_Threshold", payload)
	require.NoError(t, err)
	assert.Equal(t, payload, p.payload)

	p, err = r.Resolve("Volume_Threshold", nil)
	require.NoError(t, err)
	assert.Nil(t, p.payload)
}

func TestResolveNotFound(t *testing.T) {
	r := newRegistry(t, "MACD_Cross")

	for _, name := range []string{"KDJ_Cross", "macd-cross", "", "no such"} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			_, err := r.Resolve(name, nil)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestResolveConstructionError(t *testing.T) {
	r := NewRegistry[*probe]("test")
	r.Register("Broken", func(any) (*probe, error) {
		return nil, errors.New("bad config")
	})
	r.Register("Panics", func(any) (*probe, error) {
		panic("boom")
	})

	_, err := r.Resolve("Broken", nil)
	assert.ErrorIs(t, err, ErrConstruction)

	_, err = r.Resolve("Panics", nil)
	assert.ErrorIs(t, err, ErrConstruction)
	assert.Contains(t, err.Error(), "boom")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := newRegistry(t, "MACD_Cross")
	assert.Panics(t, func() {
		r.Register("MACDCross", func(any) (*probe, error) { return nil, nil })
	})
	assert.Panics(t, func() {
		r.Register("bad name", func(any) (*probe, error) { return nil, nil })
	})
}

func TestResolveAllSentinel(t *testing.T) {
	r := newRegistry(t, "Volume_Threshold", "Price_Threshold", "MA_Trend")

	all, err := r.ResolveAll([]string{"all"})
	require.NoError(t, err)
	require.Len(t, all, 3)

	seen := map[string]bool{}
	for _, p := range all {
		assert.Nil(t, p.payload, "bulk resolution must not pass a payload")
		assert.False(t, seen[p.name], "duplicate instance for %s", p.name)
		seen[p.name] = true
	}
}

func TestResolveAllExplicitNames(t *testing.T) {
	r := newRegistry(t, "Volume_Threshold", "Price_Threshold")

	got, err := r.ResolveAll([]string{"Price_Threshold"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Price_Threshold", got[0].name)
}

func TestResolveAllPartialFailure(t *testing.T) {
	r := newRegistry(t, "Volume_Threshold")

	got, err := r.ResolveAll([]string{"Volume_Threshold", "Missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	require.Len(t, got, 1, "sibling resolutions must survive a bad name")
	assert.Equal(t, "Volume_Threshold", got[0].name)
}

func TestNamesSorted(t *testing.T) {
	r := newRegistry(t, "Volume_Threshold", "MA_Trend", "Price_Threshold")
	assert.Equal(t, []string{"MA_Trend", "Price_Threshold", "Volume_Threshold"}, r.Names())
}
