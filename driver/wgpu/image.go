package wgpu

import (
	"fmt"

	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// image implements driver.Image.
type image struct {
	gpu     *gpu
	tex     *wg.Texture
	format  driver.PixelFmt
	size    driver.Dim3D
	layers  int
	levels  int
	samples int
}

func (im *image) Destroy() {
	if im.tex != nil {
		im.tex.Release()
		im.tex = nil
	}
}

func (im *image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	fmtW, err := toWGPUFormat(im.format)
	if err != nil {
		return nil, err
	}
	v, err := im.gpu.device.CreateTextureView(im.tex, &wg.TextureViewDescriptor{
		Label:           "image-view",
		Format:          fmtW,
		Dimension:       toViewDimension(typ),
		BaseMipLevel:    uint32(level),
		MipLevelCount:   uint32(levels),
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: uint32(layers),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewView: %w", err)
	}
	return &imageView{view: v}, nil
}

// imageView implements driver.ImageView.
type imageView struct {
	view *wg.TextureView
}

func (v *imageView) Destroy() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
}

// sampler implements driver.Sampler.
type sampler struct {
	s *wg.Sampler
}

func (s *sampler) Destroy() {
	if s.s != nil {
		s.s.Release()
		s.s = nil
	}
}

// shaderCode implements driver.ShaderCode.
type shaderCode struct {
	mod *wg.ShaderModule
}

func (c *shaderCode) Destroy() {
	if c.mod != nil {
		c.mod.Release()
		c.mod = nil
	}
}
