package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftforge/frame/driver"
)

func TestCreateImageRejectsZeroExtentFromZeroReference(t *testing.T) {
	a := NewAllocator(driver.Dim3D{Width: 0, Height: 0, Depth: 1})
	tpl := NewImageTemplate("target", driver.RGBA8un, driver.IView2D, 1)
	_, err := a.CreateImage(tpl)
	require.ErrorIs(t, err, ErrAllocation)
}

func TestCreateImageArrayRejectsNonPositiveCount(t *testing.T) {
	a := NewAllocator(driver.Dim3D{Width: 1024, Height: 1024, Depth: 1})
	tpl := NewImageTemplate("shadow", driver.RGBA8un, driver.IView2D, 1)
	_, err := a.CreateImageArray(tpl, 0)
	require.ErrorIs(t, err, ErrAllocation)

	_, err = a.CreateImageArray(tpl, -1)
	require.ErrorIs(t, err, ErrAllocation)
}

func TestCreateImageRejectsZeroExtentFromAbsoluteSize(t *testing.T) {
	a := NewAllocator(driver.Dim3D{Width: 1920, Height: 1080, Depth: 1})
	tpl := NewImageTemplate("target", driver.RGBA8un, driver.IView2D, 1).
		WithAbsoluteSize(driver.Dim3D{Width: 0, Height: 64, Depth: 1})
	_, err := a.CreateImage(tpl)
	require.ErrorIs(t, err, ErrAllocation)
}
