package graph

import (
	"log"

	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/wsi"
)

// FrameData coordinates the command buffers and swapchain image used
// by each of a fixed number of in-flight frames, and owns recovery
// from a stale/suboptimal swapchain by recreating it and skipping the
// frame that triggered it.
//
// The number of in-flight frames is fixed at construction; Begin
// cycles through them round-robin, matching the triple-buffered
// command-buffer pattern used throughout the driver façade's own
// examples.
type FrameData struct {
	gpu driver.GPU
	win wsi.Window
	sc  driver.Swapchain

	cmdBufs []driver.CmdBuffer
	current int
}

// NewFrameData creates a FrameData with frameCount in-flight frames,
// each with its own command buffer, presenting to a swapchain created
// for win.
func NewFrameData(gpu driver.GPU, win wsi.Window, frameCount int) (*FrameData, error) {
	presenter, ok := gpu.(driver.Presenter)
	if !ok {
		return nil, deviceErrf("GPU does not support presentation")
	}
	sc, err := presenter.NewSwapchain(win, frameCount+1)
	if err != nil {
		return nil, deviceErrf("NewSwapchain: %v", err)
	}
	cmdBufs := make([]driver.CmdBuffer, frameCount)
	for i := range cmdBufs {
		cb, err := gpu.NewCmdBuffer()
		if err != nil {
			sc.Destroy()
			return nil, deviceErrf("NewCmdBuffer: %v", err)
		}
		cmdBufs[i] = cb
	}
	return &FrameData{gpu: gpu, win: win, sc: sc, cmdBufs: cmdBufs}, nil
}

// FrameCount returns the number of in-flight frames.
func (f *FrameData) FrameCount() int { return len(f.cmdBufs) }

// Extent returns the window's current size as a driver.Dim3D, for use
// as an Allocator's relative-size reference.
func (f *FrameData) Extent() driver.Dim3D {
	return driver.Dim3D{Width: f.win.Width(), Height: f.win.Height(), Depth: 1}
}

// Begin advances to the next in-flight frame, acquires its swapchain
// image, and begins recording its command buffer. It returns the
// frame index (to pass to FrameGraph.Execute), the command buffer to
// record into, and the acquired swapchain image view. If the
// swapchain is stale, Begin recreates it and returns
// ErrSwapchainStale; the caller should skip the frame and retry next
// tick rather than treating this as fatal.
func (f *FrameData) Begin() (frameIndex int, cmd driver.CmdBuffer, view driver.ImageView, err error) {
	frameIndex = f.current
	f.current = (f.current + 1) % len(f.cmdBufs)
	cmd = f.cmdBufs[frameIndex]

	if err = cmd.Begin(); err != nil {
		return frameIndex, cmd, nil, deviceErrf("CmdBuffer.Begin: %v", err)
	}
	if _, err = f.sc.Next(cmd); err != nil {
		if recreateErr := f.sc.Recreate(); recreateErr != nil {
			return frameIndex, cmd, nil, deviceErrf("Swapchain.Recreate: %v", recreateErr)
		}
		return frameIndex, cmd, nil, ErrSwapchainStale
	}
	views := f.sc.Views()
	return frameIndex, cmd, views[0], nil
}

// End ends cmd's recording, commits it, and presents the frame's
// swapchain image. done receives the commit result asynchronously;
// passing nil is valid when the caller does not need to observe it.
func (f *FrameData) End(cmd driver.CmdBuffer, done chan<- error) error {
	if err := cmd.End(); err != nil {
		return deviceErrf("CmdBuffer.End: %v", err)
	}
	if err := f.sc.Present(0, cmd); err != nil {
		return deviceErrf("Swapchain.Present: %v", err)
	}
	f.gpu.Commit([]driver.CmdBuffer{cmd}, done)
	return nil
}

// Resize recreates the swapchain after a window resize. It should be
// called in response to the wsi.WindowHandler's resize notification,
// followed by updating any Allocator's reference extent and
// reallocating size-relative resources.
func (f *FrameData) Resize() error {
	log.Printf("graph: resizing swapchain to %dx%d", f.win.Width(), f.win.Height())
	if err := f.sc.Recreate(); err != nil {
		return deviceErrf("Swapchain.Recreate: %v", err)
	}
	return nil
}

// Destroy destroys the swapchain and every in-flight command buffer.
func (f *FrameData) Destroy() {
	for _, cb := range f.cmdBufs {
		cb.Destroy()
	}
	f.sc.Destroy()
}
