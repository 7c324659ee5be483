package wgpu

import (
	"fmt"

	"github.com/driftforge/frame/driver"
)

// renderPass implements driver.RenderPass.
//
// Unlike Vulkan, the wgpu binding has no persistent render pass
// object — render pass configuration (load/store ops, attachment
// formats) is supplied fresh to CommandEncoder.BeginRenderPass for
// every pass instance. renderPass therefore just remembers the
// Attachment/Subpass description so that BeginPass (on the command
// buffer) and pipeline creation (which needs attachment formats) can
// reconstruct the equivalent wgpu descriptor on demand.
type renderPass struct {
	gpu *gpu
	att []driver.Attachment
	sub []driver.Subpass
}

func (rp *renderPass) Destroy() {}

func (rp *renderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	if len(iv) != len(rp.att) {
		return nil, fmt.Errorf("wgpu: NewFB: expected %d views, got %d", len(rp.att), len(iv))
	}
	views := make([]*imageView, len(iv))
	for i, v := range iv {
		wv, ok := v.(*imageView)
		if !ok {
			return nil, fmt.Errorf("wgpu: NewFB: foreign ImageView implementation")
		}
		views[i] = wv
	}
	return &framebuf{rp: rp, views: views, width: width, height: height, layers: layers}, nil
}

// framebuf implements driver.Framebuf.
type framebuf struct {
	rp     *renderPass
	views  []*imageView
	width  int
	height int
	layers int
}

func (fb *framebuf) Destroy() {}
