package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/wsi"
)

// nativeWindow is an optional interface a wsi.Window implementation
// may satisfy to expose the platform display/window handles a wgpu
// Surface needs. The wsi package's Window interface itself carries no
// such accessor (it is kept as a pure, platform-agnostic façade), so
// only window implementations that choose to implement this extra
// interface can be presented to; others make NewSwapchain fail with
// driver.ErrWindow. See DESIGN.md.
type nativeWindow interface {
	NativeHandles() (display, window uintptr)
}

func (g *gpu) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	nw, ok := win.(nativeWindow)
	if !ok {
		return nil, fmt.Errorf("%w: window does not expose native handles", driver.ErrWindow)
	}
	display, handle := nw.NativeHandles()

	surf, err := g.instance.CreateSurface(display, handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", driver.ErrCannotPresent, err)
	}

	sc := &swapchain{gpu: g, win: win, surf: surf, imageCount: imageCount, format: driver.BGRA8un}
	if err := sc.configure(); err != nil {
		surf.Release()
		return nil, err
	}
	return sc, nil
}

// swapchain implements driver.Swapchain.
//
// The wgpu binding surfaces exactly one current texture at a time
// (GetCurrentTexture/Present), rather than a fixed, pre-created ring
// of images as the Vulkan-flavored driver.Swapchain interface assumes.
// Views() therefore reports a single-entry slice that is replaced on
// every successful Next, and acquiredTex/acquiredView track the
// texture acquired by the most recent Next call so Present can release
// it afterwards.
type swapchain struct {
	gpu        *gpu
	win        wsi.Window
	surf       *wg.Surface
	imageCount int
	format     driver.PixelFmt

	view         *imageView
	acquiredTex  *wg.SurfaceTexture
	destroyed    bool
}

func (s *swapchain) configure() error {
	fmtW, err := toWGPUFormat(s.format)
	if err != nil {
		return err
	}
	err = s.surf.Configure(s.gpu.device, &wg.SurfaceConfiguration{
		Width:       uint32(s.win.Width()),
		Height:      uint32(s.win.Height()),
		Format:      fmtW,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", driver.ErrSwapchain, err)
	}
	return nil
}

func (s *swapchain) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.surf.Unconfigure()
	s.surf.Release()
}

func (s *swapchain) Views() []driver.ImageView {
	if s.view == nil {
		return nil
	}
	return []driver.ImageView{s.view}
}

func (s *swapchain) Next(cb driver.CmdBuffer) (int, error) {
	tex, suboptimal, err := s.surf.GetCurrentTexture()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", driver.ErrSwapchain, err)
	}
	_ = suboptimal
	view, err := tex.CreateView(nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", driver.ErrSwapchain, err)
	}
	s.acquiredTex = tex
	s.view = &imageView{view: view}
	return 0, nil
}

func (s *swapchain) Present(index int, cb driver.CmdBuffer) error {
	if s.acquiredTex == nil {
		return fmt.Errorf("%w: Present called without a matching Next", driver.ErrSwapchain)
	}
	if s.view != nil {
		s.view.Destroy()
		s.view = nil
	}
	err := s.surf.Present(s.acquiredTex)
	s.acquiredTex = nil
	if err != nil {
		return fmt.Errorf("%w: %v", driver.ErrSwapchain, err)
	}
	return nil
}

func (s *swapchain) Recreate() error {
	s.surf.Unconfigure()
	return s.configure()
}

func (s *swapchain) Format() driver.PixelFmt { return s.format }
