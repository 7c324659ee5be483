package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftforge/frame/driver"
)

func TestGroupBindingsBySetOrdersAscending(t *testing.T) {
	bindings := []ResourceBinding{
		{SetIndex: 1, BindIndex: 0, Type: driver.DTexture},
		{SetIndex: 0, BindIndex: 1, Type: driver.DBuffer},
		{SetIndex: 0, BindIndex: 0, Type: driver.DConstant},
		{SetIndex: 2, BindIndex: 0, Type: driver.DSampler},
	}
	sets, bySet, err := groupBindingsBySet(bindings)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, sets)
	require.Len(t, bySet[0], 2)
	require.Len(t, bySet[1], 1)
	require.Len(t, bySet[2], 1)
	require.Equal(t, driver.DTexture, bySet[1][0].Type)
}

func TestGroupBindingsBySetRejectsDuplicateBindIndexWithinSet(t *testing.T) {
	bindings := []ResourceBinding{
		{SetIndex: 0, BindIndex: 0},
		{SetIndex: 0, BindIndex: 0},
	}
	_, _, err := groupBindingsBySet(bindings)
	require.ErrorIs(t, err, ErrConfig)
}

func TestGroupBindingsBySetAllowsSameBindIndexInDifferentSets(t *testing.T) {
	bindings := []ResourceBinding{
		{SetIndex: 0, BindIndex: 0},
		{SetIndex: 1, BindIndex: 0},
	}
	sets, bySet, err := groupBindingsBySet(bindings)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, sets)
	require.Len(t, bySet[0], 1)
	require.Len(t, bySet[1], 1)
}

func TestGroupBindingsBySetIgnoresAttachments(t *testing.T) {
	bindings := []ResourceBinding{
		{SetIndex: 0, BindIndex: 0, Attachment: true},
		{SetIndex: 0, BindIndex: 0},
	}
	sets, bySet, err := groupBindingsBySet(bindings)
	require.NoError(t, err)
	require.Equal(t, []int{0}, sets)
	require.Len(t, bySet[0], 1)
}

func TestGroupBindingsBySetEmptyReturnsNil(t *testing.T) {
	sets, bySet, err := groupBindingsBySet(nil)
	require.NoError(t, err)
	require.Nil(t, sets)
	require.Nil(t, bySet)
}
