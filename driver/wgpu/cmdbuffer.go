package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// cmdBuffer implements driver.CmdBuffer.
//
// Barrier and Transition are recorded as no-ops: the wgpu binding
// tracks resource usage automatically inside a command encoder, so
// there is nothing for an explicit barrier to do at this layer. The
// graph package's Synchronization Manager still computes and counts
// barriers against the driver.Barrier/Transition vocabulary exactly as
// specified — only this backend's interpretation of that vocabulary is
// a no-op. See DESIGN.md.
type cmdBuffer struct {
	gpu *gpu

	enc      *wg.CommandEncoder
	finished *wg.CommandBuffer

	rpass *wg.RenderPassEncoder
	cpass *wg.ComputePassEncoder

	curRP  *renderPass
	curFB  *framebuf
	curSub int
	clear  []driver.ClearValue

	pipe *pipeline

	touched map[*buffer]struct{}
}

func (c *cmdBuffer) Destroy() {
	if c.enc != nil {
		c.enc = nil
	}
}

func (c *cmdBuffer) Begin() error {
	enc, err := c.gpu.device.CreateCommandEncoder(&wg.CommandEncoderDescriptor{Label: "cmd"})
	if err != nil {
		return fmt.Errorf("wgpu: Begin: %w", err)
	}
	c.enc = enc
	c.finished = nil
	c.rpass = nil
	c.cpass = nil
	c.curRP = nil
	c.curFB = nil
	c.pipe = nil
	c.touched = map[*buffer]struct{}{}
	return nil
}

func (c *cmdBuffer) touch(b driver.Buffer) {
	if wb, ok := b.(*buffer); ok && wb.visible {
		c.touched[wb] = struct{}{}
	}
}

func (c *cmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	rp, ok := pass.(*renderPass)
	if !ok {
		return
	}
	f, ok := fb.(*framebuf)
	if !ok {
		return
	}
	c.curRP = rp
	c.curFB = f
	c.curSub = 0
	c.clear = clear
	c.beginSubpass()
}

func (c *cmdBuffer) beginSubpass() {
	if c.curRP == nil || c.curSub >= len(c.curRP.sub) {
		return
	}
	sub := c.curRP.sub[c.curSub]

	desc := &wg.RenderPassDescriptor{Label: "pass"}
	for _, idx := range sub.Color {
		cv := driver.ClearValue{}
		if idx < len(c.clear) {
			cv = c.clear[idx]
		}
		desc.ColorAttachments = append(desc.ColorAttachments, wg.RenderPassColorAttachment{
			View:       c.curFB.views[idx].view,
			LoadOp:     toLoadOp(c.curRP.att[idx].Load[0]),
			StoreOp:    toStoreOp(c.curRP.att[idx].Store[0]),
			ClearValue: toColor(cv.Color),
		})
	}
	if sub.DS >= 0 && sub.DS < len(c.curRP.att) {
		cv := driver.ClearValue{}
		if sub.DS < len(c.clear) {
			cv = c.clear[sub.DS]
		}
		att := c.curRP.att[sub.DS]
		desc.DepthStencilAttachment = &wg.RenderPassDepthStencilAttachment{
			View:            c.curFB.views[sub.DS].view,
			DepthLoadOp:     toLoadOp(att.Load[0]),
			DepthStoreOp:    toStoreOp(att.Store[0]),
			DepthClearValue: cv.Depth,
			StencilLoadOp:   toLoadOp(att.Load[1]),
			StencilStoreOp:  toStoreOp(att.Store[1]),
		}
	}

	rpass, err := c.enc.BeginRenderPass(desc)
	if err == nil {
		c.rpass = rpass
	}
}

func (c *cmdBuffer) NextSubpass() {
	if c.rpass != nil {
		c.rpass.End()
		c.rpass = nil
	}
	c.curSub++
	c.beginSubpass()
}

func (c *cmdBuffer) EndPass() {
	if c.rpass != nil {
		c.rpass.End()
		c.rpass = nil
	}
	c.curRP = nil
	c.curFB = nil
}

func (c *cmdBuffer) BeginWork(wait bool) {
	cpass, err := c.enc.BeginComputePass(&wg.ComputePassDescriptor{Label: "work"})
	if err == nil {
		c.cpass = cpass
	}
}

func (c *cmdBuffer) EndWork() {
	if c.cpass != nil {
		c.cpass.End()
		c.cpass = nil
	}
}

func (c *cmdBuffer) BeginBlit(wait bool) {}

func (c *cmdBuffer) EndBlit() {}

func (c *cmdBuffer) SetPipeline(pl driver.Pipeline) {
	p, ok := pl.(*pipeline)
	if !ok {
		return
	}
	c.pipe = p
	if c.rpass != nil && p.render != nil {
		c.rpass.SetPipeline(p.render)
	}
	if c.cpass != nil && p.compute != nil {
		c.cpass.SetPipeline(p.compute)
	}
}

func (c *cmdBuffer) SetViewport(vp []driver.Viewport) {
	if c.rpass == nil || len(vp) == 0 {
		return
	}
	v := vp[0]
	c.rpass.SetViewport(v.X, v.Y, v.Width, v.Height, v.Znear, v.Zfar)
}

func (c *cmdBuffer) SetScissor(sciss []driver.Scissor) {
	if c.rpass == nil || len(sciss) == 0 {
		return
	}
	s := sciss[0]
	c.rpass.SetScissorRect(uint32(s.X), uint32(s.Y), uint32(s.Width), uint32(s.Height))
}

func (c *cmdBuffer) SetBlendColor(r, g, b, a float32) {
	if c.rpass == nil {
		return
	}
	c.rpass.SetBlendConstant(&gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)})
}

func (c *cmdBuffer) SetStencilRef(value uint32) {
	if c.rpass != nil {
		c.rpass.SetStencilReference(value)
	}
}

func (c *cmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	if c.rpass == nil {
		return
	}
	for i, b := range buf {
		wb, ok := b.(*buffer)
		if !ok {
			continue
		}
		c.touch(b)
		var o uint64
		if off != nil {
			o = uint64(off[i])
		}
		c.rpass.SetVertexBuffer(uint32(start+i), wb.buf, o)
	}
}

func (c *cmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	if c.rpass == nil {
		return
	}
	wb, ok := buf.(*buffer)
	if !ok {
		return
	}
	c.touch(buf)
	idxFmt := gputypes.IndexFormatUint16
	if format == driver.Index32 {
		idxFmt = gputypes.IndexFormatUint32
	}
	c.rpass.SetIndexBuffer(wb.buf, idxFmt, uint64(off))
}

func (c *cmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	t, ok := table.(*descTable)
	if !ok || c.rpass == nil {
		return
	}
	c.bindTable(t, start, heapCopy, func(idx uint32, g *wg.BindGroup) { c.rpass.SetBindGroup(idx, g, nil) })
}

func (c *cmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
	t, ok := table.(*descTable)
	if !ok || c.cpass == nil {
		return
	}
	c.bindTable(t, start, heapCopy, func(idx uint32, g *wg.BindGroup) { c.cpass.SetBindGroup(idx, g, nil) })
}

func (c *cmdBuffer) bindTable(t *descTable, start int, heapCopy []int, bind func(uint32, *wg.BindGroup)) {
	for i, h := range t.heaps {
		cpy := 0
		if i < len(heapCopy) {
			cpy = heapCopy[i]
		}
		g, err := h.group(cpy)
		if err != nil || g == nil {
			continue
		}
		bind(uint32(start+i), g)
	}
}

func (c *cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	if c.rpass != nil {
		c.rpass.Draw(uint32(vertCount), uint32(instCount), uint32(baseVert), uint32(baseInst))
	}
}

func (c *cmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	if c.rpass != nil {
		c.rpass.DrawIndexed(uint32(idxCount), uint32(instCount), uint32(baseIdx), int32(vertOff), uint32(baseInst))
	}
}

func (c *cmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {
	if c.cpass != nil {
		c.cpass.Dispatch(uint32(grpCountX), uint32(grpCountY), uint32(grpCountZ))
	}
}

func (c *cmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	from, ok1 := param.From.(*buffer)
	to, ok2 := param.To.(*buffer)
	if !ok1 || !ok2 || c.enc == nil {
		return
	}
	c.touch(param.From)
	c.touch(param.To)
	c.enc.CopyBufferToBuffer(from.buf, uint64(param.FromOff), to.buf, uint64(param.ToOff), uint64(param.Size))
}

// CopyImage, CopyBufToImg, CopyImgToBuf and Fill have no counterpart
// in the wgpu binding's public CommandEncoder/Queue surface (no
// texture-copy or buffer-fill command is exposed anywhere in the
// package). The three copies are recorded as no-ops. Fill writes value
// into the CPU-side shadow of a host-visible buffer, which finish
// pushes to the GPU, and does nothing for other buffers; see DESIGN.md.
func (c *cmdBuffer) CopyImage(param *driver.ImageCopy)     {}
func (c *cmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {}
func (c *cmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {}
func (c *cmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	wb, ok := buf.(*buffer)
	if !ok || !wb.visible {
		return
	}
	c.touch(buf)
	end := off + size
	if end > int64(len(wb.shadow)) {
		end = int64(len(wb.shadow))
	}
	for i := off; i < end; i++ {
		wb.shadow[i] = value
	}
}

func (c *cmdBuffer) Barrier(b []driver.Barrier)         {}
func (c *cmdBuffer) Transition(t []driver.Transition)   {}

func (c *cmdBuffer) End() error {
	if c.rpass != nil {
		c.rpass.End()
		c.rpass = nil
	}
	if c.cpass != nil {
		c.cpass.End()
		c.cpass = nil
	}
	fin, err := c.enc.Finish()
	if err != nil {
		return fmt.Errorf("wgpu: End: %w", err)
	}
	c.finished = fin
	return nil
}

func (c *cmdBuffer) Reset() error {
	return c.Begin()
}

// finish returns the recorded *wg.CommandBuffer, calling End first if
// the caller has not already done so, and flushes any host-visible
// buffers that recorded commands referenced.
func (c *cmdBuffer) finish() (*wg.CommandBuffer, error) {
	if c.finished == nil {
		if err := c.End(); err != nil {
			return nil, err
		}
	}
	for b := range c.touched {
		if err := b.flush(); err != nil {
			return nil, err
		}
	}
	return c.finished, nil
}
