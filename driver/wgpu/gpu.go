package wgpu

import (
	"fmt"

	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// gpu is the driver.GPU implementation backed by a wgpu device.
type gpu struct {
	drv      *wgpuDriver
	instance *wg.Instance
	adapter  *wg.Adapter
	device   *wg.Device
	queue    *wg.Queue
	limits   driver.Limits
}

func (g *gpu) Driver() driver.Driver { return g.drv }

func (g *gpu) Limits() driver.Limits { return g.limits }

// Commit finishes recording on every command buffer (if not already
// finished) and submits them as a single batch. It blocks until the
// batch completes, matching Queue.Submit's synchronous contract; the
// result is reported on ch exactly as the interface requires.
func (g *gpu) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	bufs := make([]*wg.CommandBuffer, 0, len(cb))
	for _, c := range cb {
		cmd, ok := c.(*cmdBuffer)
		if !ok {
			if ch != nil {
				ch <- fmt.Errorf("wgpu: foreign CmdBuffer implementation")
			}
			return
		}
		fin, err := cmd.finish()
		if err != nil {
			if ch != nil {
				ch <- err
			}
			return
		}
		bufs = append(bufs, fin)
	}
	err := g.queue.Submit(bufs...)
	if ch != nil {
		ch <- err
	}
}

func (g *gpu) NewCmdBuffer() (driver.CmdBuffer, error) {
	return &cmdBuffer{gpu: g}, nil
}

func (g *gpu) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	if len(sub) == 0 {
		return nil, fmt.Errorf("wgpu: NewRenderPass: no subpasses")
	}
	rp := &renderPass{gpu: g, att: append([]driver.Attachment(nil), att...), sub: append([]driver.Subpass(nil), sub...)}
	return rp, nil
}

func (g *gpu) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("wgpu: NewShaderCode: empty code")
	}
	// SPIR-V words are little-endian 32-bit; the binding accepts a
	// []uint32 directly rather than a raw byte slice.
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("wgpu: NewShaderCode: data is not a multiple of 4 bytes")
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	mod, err := g.device.CreateShaderModule(&wg.ShaderModuleDescriptor{Label: "shader", SPIRV: words})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewShaderCode: %w", err)
	}
	return &shaderCode{mod: mod}, nil
}

func (g *gpu) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return newDescHeap(g, ds)
}

func (g *gpu) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	return newDescTable(g, dh)
}

func (g *gpu) NewPipeline(state any) (driver.Pipeline, error) {
	switch st := state.(type) {
	case *driver.GraphState:
		return newGraphicsPipeline(g, st)
	case *driver.CompState:
		return newComputePipeline(g, st)
	default:
		return nil, fmt.Errorf("wgpu: NewPipeline: state must be *driver.GraphState or *driver.CompState")
	}
}

func (g *gpu) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("wgpu: NewBuffer: size must be positive")
	}
	bufU, _ := toUsage(usg, true)
	if visible {
		bufU |= wg.BufferUsageMapRead | wg.BufferUsageMapWrite
	}
	buf, err := g.device.CreateBuffer(&wg.BufferDescriptor{
		Label: "buffer",
		Size:  uint64(size),
		Usage: bufU,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewBuffer: %w", err)
	}
	b := &buffer{gpu: g, buf: buf, size: size, visible: visible}
	if visible {
		b.shadow = make([]byte, size)
	}
	return b, nil
}

func (g *gpu) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	fmtW, err := toWGPUFormat(pf)
	if err != nil {
		return nil, err
	}
	_, texU := toUsage(usg, false)
	dim := gputypesDimension(size)
	depthOrLayers := uint32(layers)
	if dim == dim3D {
		depthOrLayers = uint32(size.Depth)
	}
	if levels <= 0 {
		levels = 1
	}
	if samples <= 0 {
		samples = 1
	}
	tex, err := g.device.CreateTexture(&wg.TextureDescriptor{
		Label:         "image",
		Size:          wg.Extent3D{Width: uint32(size.Width), Height: uint32(size.Height), DepthOrArrayLayers: depthOrLayers},
		MipLevelCount: uint32(levels),
		SampleCount:   uint32(samples),
		Dimension:     dim,
		Format:        fmtW,
		Usage:         texU,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewImage: %w", err)
	}
	return &image{gpu: g, tex: tex, format: pf, size: size, layers: layers, levels: levels, samples: samples}, nil
}

func (g *gpu) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	if spln == nil {
		spln = &driver.Sampling{}
	}
	desc := &wg.SamplerDescriptor{
		Label:        "sampler",
		AddressModeU: toAddrMode(spln.AddrU),
		AddressModeV: toAddrMode(spln.AddrV),
		AddressModeW: toAddrMode(spln.AddrW),
		MagFilter:    toFilterMode(spln.Mag),
		MinFilter:    toFilterMode(spln.Min),
		MipmapFilter: toFilterMode(spln.Mipmap),
		LodMinClamp:  spln.MinLOD,
		LodMaxClamp:  spln.MaxLOD,
		Compare:      toCompareFunc(spln.Cmp),
		Anisotropy:   uint16(spln.MaxAniso),
	}
	s, err := g.device.CreateSampler(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewSampler: %w", err)
	}
	return &sampler{s: s}, nil
}
