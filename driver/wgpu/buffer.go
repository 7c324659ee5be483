package wgpu

import (
	wg "github.com/gogpu/wgpu"
)

// buffer implements driver.Buffer.
//
// The wgpu binding exposes no mapped-pointer access at the public API
// level (Buffer has no Map/GetMappedRange method; see DESIGN.md), so a
// host-visible buffer keeps a CPU-side shadow copy that is pushed to
// the GPU buffer via Queue.WriteBuffer before each command buffer
// submission that might read it, and pulled back via Queue.ReadBuffer
// is left to callers that need a post-execution readback (none of the
// operations defined on driver.Buffer request that directly; Bytes
// returns the shadow, which record/replay keeps in sync at Commit).
type buffer struct {
	gpu     *gpu
	buf     *wg.Buffer
	size    int64
	visible bool
	shadow  []byte
}

func (b *buffer) Destroy() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

func (b *buffer) Visible() bool { return b.visible }

func (b *buffer) Bytes() []byte {
	if !b.visible {
		return nil
	}
	return b.shadow
}

func (b *buffer) Cap() int64 { return b.size }

// flush pushes the CPU-side shadow to the GPU buffer. Called by
// cmdBuffer.finish for every visible buffer referenced by the command
// buffer being finished, since WriteBuffer is otherwise unreachable
// from recorded commands (the binding has no encoder-side equivalent
// of Vulkan's host-writable mapped memory).
func (b *buffer) flush() error {
	if !b.visible {
		return nil
	}
	return b.gpu.queue.WriteBuffer(b.buf, 0, b.shadow)
}
