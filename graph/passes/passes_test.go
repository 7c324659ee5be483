package passes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/graph"
)

func TestCullingResourceSplit(t *testing.T) {
	c := &Culling{Candidates: 1, Params: 2, Visible: 3}
	reads := c.Resources(graph.Read)
	writes := c.Resources(graph.Write)
	require.Len(t, reads, 2)
	require.Len(t, writes, 1)
	require.Equal(t, graph.Handle(3), writes[0].Resource)
	require.Equal(t, graph.BindCompute, c.BindPoint())
}

func TestGeometryAttachmentsAreNotDescriptors(t *testing.T) {
	g := &Geometry{Scene: 1, Albedo: 2, AlbedoSampler: 3, Color: 4, Depth: 5}
	writes := g.Resources(graph.Write)
	require.Len(t, writes, 2)
	for _, w := range writes {
		require.True(t, w.Attachment)
	}
	reads := g.Resources(graph.Read)
	require.Len(t, reads, 2)
	require.Equal(t, driver.DTexture, reads[1].Type)
	require.Equal(t, graph.Handle(3), reads[1].Sampler)
}

func TestPostProcessReadsAttachmentOutputAsTexture(t *testing.T) {
	p := &PostProcess{Input: 10, InputSampler: 11, Output: 12}
	reads := p.Resources(graph.Read)
	require.Len(t, reads, 1)
	require.False(t, reads[0].Attachment)
	require.Equal(t, driver.DTexture, reads[0].Type)
}

func TestShadowAtlasWritesCascadeArrayAsAttachment(t *testing.T) {
	s := &ShadowAtlas{Scene: 1, Cascades: 2, CascadeCount: 16}
	writes := s.Resources(graph.Write)
	require.Len(t, writes, 1)
	require.True(t, writes[0].Attachment)
	require.Equal(t, graph.Handle(2), writes[0].Resource)
	require.Equal(t, 16, writes[0].Count)
	require.Equal(t, graph.BindGraphics, s.BindPoint())

	reads := s.Resources(graph.Read)
	require.Len(t, reads, 1)
	require.Equal(t, driver.DConstant, reads[0].Type)
}

func TestShadowAtlasExecuteRendersOneSubpassPerFramebuffer(t *testing.T) {
	s := &ShadowAtlas{
		Framebufs: []driver.Framebuf{nil, nil, nil},
	}
	cmd := &passCountingCmdBuffer{}
	require.NotPanics(t, func() { s.Execute(cmd, 0) })
	require.Equal(t, 3, cmd.passes)
}

// passCountingCmdBuffer is a noopCmdBuffer that counts BeginPass calls.
type passCountingCmdBuffer struct {
	noopCmdBuffer
	passes int
}

func (c *passCountingCmdBuffer) BeginPass(driver.RenderPass, driver.Framebuf, []driver.ClearValue) {
	c.passes++
}

func TestToneMapPushConstantRange(t *testing.T) {
	tm := &ToneMap{Input: 1, Output: 2}
	pc := tm.PushConstants()
	require.Equal(t, 8, pc.Size)
	require.Equal(t, driver.SCompute, pc.Stages)
}

func TestToneMapParamsBytesLength(t *testing.T) {
	p := ToneMapParams{Exposure: 1.5, Gamma: 2.2}
	require.Len(t, p.Bytes(), 8)
}

func TestToneMapExecuteCallsProvider(t *testing.T) {
	called := false
	tm := &ToneMap{
		Input:  1,
		Output: 2,
		Params: func(frameIndex int) []byte {
			called = true
			return ToneMapParams{Exposure: 1, Gamma: 2.2}.Bytes()
		},
	}
	tm.Execute(&noopCmdBuffer{}, 0)
	require.True(t, called)
}

// noopCmdBuffer implements driver.CmdBuffer doing nothing, enough to
// exercise Pass.Execute bodies in isolation.
type noopCmdBuffer struct{}

func (noopCmdBuffer) Destroy()                                             {}
func (noopCmdBuffer) Begin() error                                         { return nil }
func (noopCmdBuffer) BeginPass(driver.RenderPass, driver.Framebuf, []driver.ClearValue) {
}
func (noopCmdBuffer) NextSubpass()             {}
func (noopCmdBuffer) EndPass()                 {}
func (noopCmdBuffer) BeginWork(bool)           {}
func (noopCmdBuffer) EndWork()                 {}
func (noopCmdBuffer) BeginBlit(bool)           {}
func (noopCmdBuffer) EndBlit()                 {}
func (noopCmdBuffer) SetPipeline(driver.Pipeline)       {}
func (noopCmdBuffer) SetViewport([]driver.Viewport)     {}
func (noopCmdBuffer) SetScissor([]driver.Scissor)       {}
func (noopCmdBuffer) SetBlendColor(float32, float32, float32, float32) {}
func (noopCmdBuffer) SetStencilRef(uint32)                             {}
func (noopCmdBuffer) SetVertexBuf(int, []driver.Buffer, []int64)       {}
func (noopCmdBuffer) SetIndexBuf(driver.IndexFmt, driver.Buffer, int64) {}
func (noopCmdBuffer) SetDescTableGraph(driver.DescTable, int, []int)   {}
func (noopCmdBuffer) SetDescTableComp(driver.DescTable, int, []int)    {}
func (noopCmdBuffer) Draw(int, int, int, int)              {}
func (noopCmdBuffer) DrawIndexed(int, int, int, int, int)  {}
func (noopCmdBuffer) Dispatch(int, int, int)                {}
func (noopCmdBuffer) CopyBuffer(*driver.BufferCopy)         {}
func (noopCmdBuffer) CopyImage(*driver.ImageCopy)           {}
func (noopCmdBuffer) CopyBufToImg(*driver.BufImgCopy)       {}
func (noopCmdBuffer) CopyImgToBuf(*driver.BufImgCopy)       {}
func (noopCmdBuffer) Fill(driver.Buffer, int64, byte, int64) {}
func (noopCmdBuffer) Barrier([]driver.Barrier)              {}
func (noopCmdBuffer) Transition([]driver.Transition)        {}
func (noopCmdBuffer) End() error                            { return nil }
func (noopCmdBuffer) Reset() error                          { return nil }

var _ driver.CmdBuffer = noopCmdBuffer{}
