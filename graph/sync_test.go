package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftforge/frame/driver"
)

// fakeCmdBuffer is a no-op driver.CmdBuffer that only records the
// number of Barrier/Transition calls, for exercising the
// Synchronization Manager without a real GPU.
type fakeCmdBuffer struct {
	barrierCalls    int
	transitionCalls int
}

func (f *fakeCmdBuffer) Destroy()                                                         {}
func (f *fakeCmdBuffer) Begin() error                                                     { return nil }
func (f *fakeCmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
}
func (f *fakeCmdBuffer) NextSubpass()                                               {}
func (f *fakeCmdBuffer) EndPass()                                                   {}
func (f *fakeCmdBuffer) BeginWork(wait bool)                                        {}
func (f *fakeCmdBuffer) EndWork()                                                   {}
func (f *fakeCmdBuffer) BeginBlit(wait bool)                                        {}
func (f *fakeCmdBuffer) EndBlit()                                                   {}
func (f *fakeCmdBuffer) SetPipeline(pl driver.Pipeline)                             {}
func (f *fakeCmdBuffer) SetViewport(vp []driver.Viewport)                           {}
func (f *fakeCmdBuffer) SetScissor(sciss []driver.Scissor)                          {}
func (f *fakeCmdBuffer) SetBlendColor(r, g, b, a float32)                           {}
func (f *fakeCmdBuffer) SetStencilRef(value uint32)                                 {}
func (f *fakeCmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64)   {}
func (f *fakeCmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
}
func (f *fakeCmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
}
func (f *fakeCmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
}
func (f *fakeCmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int)            {}
func (f *fakeCmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
}
func (f *fakeCmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {}
func (f *fakeCmdBuffer) CopyBuffer(param *driver.BufferCopy)          {}
func (f *fakeCmdBuffer) CopyImage(param *driver.ImageCopy)            {}
func (f *fakeCmdBuffer) CopyBufToImg(param *driver.BufImgCopy)        {}
func (f *fakeCmdBuffer) CopyImgToBuf(param *driver.BufImgCopy)        {}
func (f *fakeCmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {}
func (f *fakeCmdBuffer) Barrier(b []driver.Barrier)                  { f.barrierCalls++ }
func (f *fakeCmdBuffer) Transition(t []driver.Transition)            { f.transitionCalls++ }
func (f *fakeCmdBuffer) End() error                                  { return nil }
func (f *fakeCmdBuffer) Reset() error                                { return nil }

var _ driver.CmdBuffer = (*fakeCmdBuffer)(nil)

func TestDestStageFromShaderStages(t *testing.T) {
	require.Equal(t, allGraphicsSync, destStageFromShaderStages(driver.SFragment))
	require.Equal(t, driver.SComputeShading, destStageFromShaderStages(driver.SCompute))
	require.Equal(t, driver.SAll, destStageFromShaderStages(driver.SVertex))
	require.Equal(t, driver.SAll, destStageFromShaderStages(driver.SVertex|driver.SFragment))
	require.Equal(t, driver.SAll, destStageFromShaderStages(0))
}

func TestImageDestStateColorAttachmentWrite(t *testing.T) {
	access, layout := imageDestState(syncCtx{usage: Write, attachment: true}, false)
	require.Equal(t, driver.AColorWrite, access)
	require.Equal(t, driver.LColorTarget, layout)
}

func TestImageDestStateDepthAttachmentWrite(t *testing.T) {
	access, layout := imageDestState(syncCtx{usage: Write, attachment: true}, true)
	require.Equal(t, driver.ADSRead|driver.ADSWrite, access)
	require.Equal(t, driver.LDSTarget, layout)
}

func TestImageDestStateStorageWrite(t *testing.T) {
	access, layout := imageDestState(syncCtx{usage: Write}, false)
	require.Equal(t, driver.AShaderRead|driver.AShaderWrite, access)
	require.Equal(t, driver.LCommon, layout)
}

func TestImageDestStateShaderReadColorAndDepth(t *testing.T) {
	access, layout := imageDestState(syncCtx{usage: Read}, false)
	require.Equal(t, driver.AShaderRead, access)
	require.Equal(t, driver.LShaderRead, layout)

	access, layout = imageDestState(syncCtx{usage: Read}, true)
	require.Equal(t, driver.AShaderRead, access)
	require.Equal(t, driver.LDSRead, layout)
}

func TestSyncManagerEmitIssuesIdentityBarrierWhenNoResources(t *testing.T) {
	reg := NewRegistry()
	m := newSyncManager()
	cmd := &fakeCmdBuffer{}
	node := &frameGraphNode{pass: &dummyPass{}}
	m.emit(cmd, reg, node)
	require.Equal(t, 1, cmd.barrierCalls)
	require.Equal(t, 0, cmd.transitionCalls)
	require.Equal(t, 1, m.emits)
}

func TestSyncManagerEmitImageProducesOneTransitionCall(t *testing.T) {
	reg := NewRegistry()
	img := &ImageInstance{name: "color", layout: driver.LUndefined}
	h := reg.Add(img)
	cmd := &fakeCmdBuffer{}
	node := &frameGraphNode{
		pass:   &dummyPass{},
		writes: []ResourceBinding{{Resource: h, Usage: Write, Attachment: true}},
	}
	m := newSyncManager()
	m.emit(cmd, reg, node)
	require.Equal(t, 1, cmd.transitionCalls)
	require.Equal(t, 0, cmd.barrierCalls)
	require.Equal(t, driver.LColorTarget, img.layout)
}

func TestSyncManagerEmitBufferProducesOneBarrierCall(t *testing.T) {
	reg := NewRegistry()
	buf := &BufferInstance{name: "scene"}
	h := reg.Add(buf)
	cmd := &fakeCmdBuffer{}
	node := &frameGraphNode{
		pass:  &dummyPass{},
		reads: []ResourceBinding{{Resource: h, Usage: Read, Stages: driver.SVertex}},
	}
	m := newSyncManager()
	m.emit(cmd, reg, node)
	require.Equal(t, 0, cmd.transitionCalls)
	require.Equal(t, 1, cmd.barrierCalls)
	require.Equal(t, driver.AShaderRead, buf.access)
}

func TestSyncManagerEmitSkipsSamplerButStillEmitsIdentityBarrier(t *testing.T) {
	reg := NewRegistry()
	splr := &SamplerInstance{name: "linear"}
	h := reg.Add(splr)
	cmd := &fakeCmdBuffer{}
	node := &frameGraphNode{
		pass:  &dummyPass{},
		reads: []ResourceBinding{{Resource: h, Usage: Read}},
	}
	m := newSyncManager()
	m.emit(cmd, reg, node)
	require.Equal(t, 0, cmd.transitionCalls)
	require.Equal(t, 1, cmd.barrierCalls)
}

// TestSyncManagerEmitImageArrayProducesOneTransitionPerElement covers
// Scenario 5 (§8): a pass reading a 16-element ImageArrayInstance
// produces one image transition per contained element, all carrying
// the same destination layout, inside the single Transition call
// emit issues for the node.
func TestSyncManagerEmitImageArrayProducesOneTransitionPerElement(t *testing.T) {
	reg := NewRegistry()
	const n = 16
	images := make([]*ImageInstance, n)
	for i := range images {
		images[i] = &ImageInstance{name: fmt.Sprintf("shadow-%d", i), layout: driver.LUndefined}
	}
	arr := newImageArrayInstance("shadowArray", images, false)
	h := reg.Add(arr)

	cmd := &fakeCmdBuffer{}
	node := &frameGraphNode{
		pass:  &dummyPass{},
		reads: []ResourceBinding{{Resource: h, Usage: Read}},
	}
	m := newSyncManager()
	m.emit(cmd, reg, node)

	require.Equal(t, 1, cmd.transitionCalls)
	require.Equal(t, 0, cmd.barrierCalls)
	require.Len(t, m.transitions, n)
	for _, tr := range m.transitions {
		require.Equal(t, driver.LShaderRead, tr.LayoutAfter)
	}
	for _, img := range images {
		require.Equal(t, driver.LShaderRead, img.layout)
	}
}

func TestFrameBoundaryEmitsExactlyOneBarrier(t *testing.T) {
	cmd := &fakeCmdBuffer{}
	m := newSyncManager()
	m.frameBoundary(cmd)
	require.Equal(t, 0, cmd.transitionCalls)
	require.Equal(t, 1, cmd.barrierCalls)
}

// dummyPass is a minimal graph.Pass used only to satisfy
// frameGraphNode.pass in tests that never call its methods beyond
// BindPoint.
type dummyPass struct{}

func (dummyPass) Name() string                                    { return "dummy" }
func (dummyPass) BindPoint() BindPoint                             { return BindGraphics }
func (dummyPass) Resources(usage Usage) []ResourceBinding          { return nil }
func (dummyPass) Execute(cmd driver.CmdBuffer, frameIndex int)     {}
