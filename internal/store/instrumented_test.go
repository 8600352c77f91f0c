package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedStoreCounts(t *testing.T) {
	s := NewInstrumentedStore(NewMemStore(WithQuota(8)))

	require.NoError(t, s.Set("a", "1"))
	_, _, _ = s.Get("a")
	_, _, _ = s.Get("b")
	require.NoError(t, s.Delete("a"))
	_, _ = s.Keys()
	_, _ = s.Len()
	require.NoError(t, s.Clear())
	assert.Error(t, s.Set("too", "long-value"))

	m := s.GetMetrics()
	assert.Equal(t, uint64(2), m.SetCount)
	assert.Equal(t, uint64(2), m.GetCount)
	assert.Equal(t, uint64(1), m.DeleteCount)
	assert.Equal(t, uint64(1), m.ClearCount)
	assert.Equal(t, uint64(2), m.ScanCount)
	assert.Equal(t, uint64(1), m.ErrorCount)

	s.ResetMetrics()
	assert.Equal(t, MetricsSnapshot{}, s.GetMetrics())
}

func TestInstrumentedStoreDelegates(t *testing.T) {
	inner := NewMemStore()
	s := NewInstrumentedStore(inner)

	require.NoError(t, s.Set("k", "v"))
	v, found, err := inner.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}
