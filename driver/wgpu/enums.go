package wgpu

import (
	"github.com/gogpu/gputypes"
	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// dim2D and dim3D name the two gputypes.TextureDimension values this
// backend produces; NewImage never creates 1D images.
const (
	dim2D = gputypes.TextureDimension2D
	dim3D = gputypes.TextureDimension3D
)

func gputypesDimension(size driver.Dim3D) gputypes.TextureDimension {
	if size.Depth > 1 {
		return dim3D
	}
	return dim2D
}

func toAddrMode(m driver.AddrMode) wg.AddressMode {
	switch m {
	case driver.AMirror:
		return gputypes.AddressModeMirrorRepeat
	case driver.AClamp:
		return gputypes.AddressModeClampToEdge
	default:
		return gputypes.AddressModeRepeat
	}
}

func toFilterMode(f driver.Filter) wg.FilterMode {
	if f == driver.FLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func toCompareFunc(f driver.CmpFunc) wg.CompareFunction {
	switch f {
	case driver.CLess:
		return gputypes.CompareFunctionLess
	case driver.CEqual:
		return gputypes.CompareFunctionEqual
	case driver.CLessEqual:
		return gputypes.CompareFunctionLessEqual
	case driver.CGreater:
		return gputypes.CompareFunctionGreater
	case driver.CNotEqual:
		return gputypes.CompareFunctionNotEqual
	case driver.CGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case driver.CAlways:
		return gputypes.CompareFunctionAlways
	default:
		return gputypes.CompareFunctionNever
	}
}

func toViewDimension(t driver.ViewType) gputypes.TextureViewDimension {
	switch t {
	case driver.IView1D, driver.IView1DArray:
		return gputypes.TextureViewDimension2D // no 1D view dimension is re-exported; 2D is the closest fit.
	case driver.IView3D:
		return gputypes.TextureViewDimension3D
	case driver.IViewCube:
		return gputypes.TextureViewDimensionCube
	case driver.IViewCubeArray:
		return gputypes.TextureViewDimensionCubeArray
	case driver.IView2DArray, driver.IView2DMSArray:
		return gputypes.TextureViewDimension2DArray
	default:
		return gputypes.TextureViewDimension2D
	}
}
