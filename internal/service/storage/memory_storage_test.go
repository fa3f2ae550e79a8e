package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_GetFresh(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	s.Set("a", 1)

	v, ok := s.GetFresh("a", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.GetFresh("a", 0)
	assert.False(t, ok)

	_, ok = s.GetFresh("missing", time.Minute)
	assert.False(t, ok)

	// A stale entry is still reachable through plain Get.
	v, ok = s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestMemoryStorage_DirtyTracking(t *testing.T) {
	s := NewMemoryStorage[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	dirty := s.GetDirty()
	assert.Len(t, dirty, 2)

	s.ClearDirty([]string{"a"})
	dirty = s.GetDirty()
	require.Len(t, dirty, 1)
	assert.Equal(t, 2, dirty["b"])

	s.Set("a", 3)
	assert.Len(t, s.GetDirty(), 2)
}

func TestMemoryStorage_DeleteAndCount(t *testing.T) {
	s := NewMemoryStorage[int, string]()
	s.Set(1, "x")
	assert.Equal(t, 1, s.Count())

	assert.True(t, s.Delete(1))
	assert.False(t, s.Delete(1))
	assert.Equal(t, 0, s.Count())
}
