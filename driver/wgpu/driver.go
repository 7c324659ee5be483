// Package wgpu implements the driver package's interfaces on top of
// a WebGPU binding, providing a portable (non-cgo) backend.
package wgpu

import (
	"fmt"

	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

func init() {
	driver.Register(&wgpuDriver{})
}

// wgpuDriver is the driver.Driver implementation backed by
// github.com/gogpu/wgpu. Open is idempotent: the same *gpu is
// returned to every caller once opened, per the Driver contract.
type wgpuDriver struct {
	gpu *gpu
}

func (d *wgpuDriver) Name() string { return "wgpu" }

func (d *wgpuDriver) Open() (driver.GPU, error) {
	if d.gpu != nil {
		return d.gpu, nil
	}

	inst, err := wg.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w: %v", driver.ErrNotInstalled, err)
	}

	adapter, err := inst.RequestAdapter(nil)
	if err != nil {
		inst.Release()
		return nil, fmt.Errorf("wgpu: %w: %v", driver.ErrNoDevice, err)
	}

	dev, err := adapter.RequestDevice(&wg.DeviceDescriptor{Label: "frame-graph"})
	if err != nil {
		adapter.Release()
		inst.Release()
		return nil, fmt.Errorf("wgpu: %w: %v", driver.ErrNoDevice, err)
	}

	g := &gpu{
		drv:      d,
		instance: inst,
		adapter:  adapter,
		device:   dev,
		queue:    dev.Queue(),
		limits:   defaultLimits(),
	}
	d.gpu = g
	return g, nil
}

func (d *wgpuDriver) Close() {
	if d.gpu == nil {
		return
	}
	g := d.gpu
	d.gpu = nil
	g.device.Release()
	g.adapter.Release()
	g.instance.Release()
}

// defaultLimits reports generous, fixed implementation limits.
//
// gputypes.Limits (the value returned by Adapter.Limits) is organized
// around WebGPU's own binding/buffer/texture limit vocabulary, which
// does not map field-for-field onto driver.Limits' descriptor-heap and
// framebuffer-oriented vocabulary, and its source is not present in
// the example corpus to ground a conversion against. Fixed values
// matching typical desktop WebGPU implementations are used instead;
// see DESIGN.md.
func defaultLimits() driver.Limits {
	return driver.Limits{
		MaxImage1D:        8192,
		MaxImage2D:        8192,
		MaxImageCube:      8192,
		MaxImage3D:        2048,
		MaxLayers:         2048,
		MaxDescHeaps:      4,
		MaxDBuffer:        16,
		MaxDImage:         16,
		MaxDConstant:      16,
		MaxDTexture:       16,
		MaxDSampler:       16,
		MaxDBufferRange:   1 << 30,
		MaxDConstantRange: 1 << 16,
		MaxColorTargets:   8,
		MaxFBSize:         [2]int{8192, 8192},
		MaxFBLayers:       2048,
		MaxPointSize:      64,
		MaxViewports:      16,
		MaxVertexIn:       16,
		MaxFragmentIn:     16,
		MaxDispatch:       [3]int{65535, 65535, 65535},
	}
}
