package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageArrayInstanceLenAndAt(t *testing.T) {
	images := []*ImageInstance{
		{name: "a"},
		{name: "b"},
		{name: "c"},
	}
	arr := newImageArrayInstance("array", images, false)
	require.Equal(t, "array", arr.Name())
	require.Equal(t, 3, arr.Len())
	require.Equal(t, "b", arr.At(1).Name())
}

func TestImageArrayInstanceDestroyDoesNotPanicWithNilDriverHandles(t *testing.T) {
	images := []*ImageInstance{{name: "slot"}, {name: "slot"}}
	arr := newImageArrayInstance("array", images, false)
	require.NotPanics(t, func() { arr.destroy() })
}

func TestExternalImageArrayInstanceDestroyIsNoop(t *testing.T) {
	images := []*ImageInstance{{name: "slot", external: true}}
	arr := newImageArrayInstance("external-array", images, true)
	require.NotPanics(t, func() { arr.destroy() })
}

func TestImageArrayInstanceAcceptRecursesIntoEveryElement(t *testing.T) {
	images := []*ImageInstance{{name: "a"}, {name: "b"}}
	arr := newImageArrayInstance("array", images, false)
	m := newSyncManager()
	arr.accept(m, syncCtx{usage: Read})
	require.Len(t, m.transitions, 2)
}
