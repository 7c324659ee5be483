package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// errUnsupportedFormat is returned for driver.PixelFmt values that
// have no corresponding constant re-exported by the wgpu binding.
// Only the "commonly used" subset of gputypes.TextureFormat is
// surfaced at the wgpu package level; formats outside that subset
// (e.g. 16-bit float, single/two channel) cannot be requested through
// this backend. See DESIGN.md.
var errUnsupportedFormat = fmt.Errorf("wgpu: pixel format not supported by this backend")

func toWGPUFormat(pf driver.PixelFmt) (wg.TextureFormat, error) {
	switch pf {
	case driver.RGBA8un:
		return wg.TextureFormatRGBA8Unorm, nil
	case driver.RGBA8sRGB:
		return wg.TextureFormatRGBA8UnormSrgb, nil
	case driver.BGRA8un:
		return wg.TextureFormatBGRA8Unorm, nil
	case driver.BGRA8sRGB:
		return wg.TextureFormatBGRA8UnormSrgb, nil
	case driver.D32f:
		return wg.TextureFormatDepth32Float, nil
	case driver.D16un:
		// Depth16Unorm is not re-exported; Depth24Plus is the
		// closest available depth-only format.
		return wg.TextureFormatDepth24Plus, nil
	default:
		return 0, fmt.Errorf("%w: %v", errUnsupportedFormat, pf)
	}
}

func toUsage(usg driver.Usage, isBuffer bool) (bufU wg.BufferUsage, texU wg.TextureUsage) {
	if isBuffer {
		bufU |= wg.BufferUsageCopySrc | wg.BufferUsageCopyDst
		if usg&driver.UVertexData != 0 {
			bufU |= wg.BufferUsageVertex
		}
		if usg&driver.UIndexData != 0 {
			bufU |= wg.BufferUsageIndex
		}
		if usg&driver.UShaderConst != 0 {
			bufU |= wg.BufferUsageUniform
		}
		if usg&(driver.UShaderRead|driver.UShaderWrite) != 0 {
			bufU |= wg.BufferUsageStorage
		}
		return bufU, 0
	}
	texU |= wg.TextureUsageCopySrc | wg.TextureUsageCopyDst
	if usg&driver.UShaderSample != 0 {
		texU |= wg.TextureUsageTextureBinding
	}
	if usg&(driver.UShaderRead|driver.UShaderWrite) != 0 {
		texU |= wg.TextureUsageStorageBinding
	}
	if usg&driver.URenderTarget != 0 {
		texU |= wg.TextureUsageRenderAttachment
	}
	return 0, texU
}

func toStage(s driver.Stage) wg.ShaderStages {
	var out wg.ShaderStages
	if s&driver.SVertex != 0 {
		out |= wg.ShaderStageVertex
	}
	if s&driver.SFragment != 0 {
		out |= wg.ShaderStageFragment
	}
	if s&driver.SCompute != 0 {
		out |= wg.ShaderStageCompute
	}
	return out
}

func toLoadOp(op driver.LoadOp) wg.LoadOp {
	if op == driver.LLoad {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func toStoreOp(op driver.StoreOp) wg.StoreOp {
	if op == driver.SDontCare {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

func toColor(c [4]float32) wg.Color {
	return wg.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}
