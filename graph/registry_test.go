package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeInstance struct {
	destroyed bool
}

func (f *fakeInstance) destroy() { f.destroyed = true }

func TestRegistryAddGet(t *testing.T) {
	r := NewRegistry()
	a := &fakeInstance{}
	b := &fakeInstance{}

	ha := r.Add(a)
	hb := r.Add(b)

	require.NotEqual(t, Handle(0), ha)
	require.NotEqual(t, ha, hb)
	require.Same(t, a, r.Get(ha))
	require.Same(t, b, r.Get(hb))
	require.Equal(t, 2, r.Len())
}

func TestRegistryHandlesNeverReused(t *testing.T) {
	r := NewRegistry()
	handles := make(map[Handle]bool)
	for i := 0; i < 64; i++ {
		h := r.Add(&fakeInstance{})
		require.False(t, handles[h], "handle %d reused", h)
		handles[h] = true
	}
}

func TestRegistryGetInvalidHandlePanics(t *testing.T) {
	r := NewRegistry()
	require.Panics(t, func() { r.Get(0) })
	require.Panics(t, func() { r.Get(999) })
}

func TestRegistryAddNilPanics(t *testing.T) {
	r := NewRegistry()
	require.Panics(t, func() { r.Add(nil) })
}

func TestRegistryDestroyDestroysEveryEntry(t *testing.T) {
	r := NewRegistry()
	insts := make([]*fakeInstance, 40)
	for i := range insts {
		insts[i] = &fakeInstance{}
		r.Add(insts[i])
	}
	r.Destroy()
	for i, inst := range insts {
		require.True(t, inst.destroyed, "instance %d not destroyed", i)
	}
	require.Equal(t, 0, r.Len())
}
