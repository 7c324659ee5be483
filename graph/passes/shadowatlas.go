package passes

import (
	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/graph"
)

// ShadowAtlas renders one depth cascade per element of a fixed-size
// image array, generalizing the original engine's single shadow_map
// render target (graphics/Render Engine/FrameGraph.cpp's
// ShadowMapPass) to a cascaded atlas — the data model's
// ImageArrayInstance exists precisely for resources like this one.
// Cascades binds the whole array as a single write attachment; the
// Synchronization Manager's visitor recurses into every element when
// computing barriers for this pass.
type ShadowAtlas struct {
	Scene        graph.Handle // uniform buffer, read
	Cascades     graph.Handle // ImageArrayInstance of depth images, write
	CascadeCount int

	RenderPass  driver.RenderPass
	Framebufs   []driver.Framebuf // one per cascade, same length as CascadeCount
	Pipeline    driver.Pipeline
	Viewport    driver.Viewport
	Scissor     driver.Scissor
	VertexBuf   driver.Buffer
	VertexCount int
}

// Name implements graph.Pass.
func (s *ShadowAtlas) Name() string { return "shadow_atlas" }

// BindPoint implements graph.Pass.
func (s *ShadowAtlas) BindPoint() graph.BindPoint { return graph.BindGraphics }

// Resources implements graph.Pass.
func (s *ShadowAtlas) Resources(usage graph.Usage) []graph.ResourceBinding {
	switch usage {
	case graph.Read:
		return []graph.ResourceBinding{
			{Resource: s.Scene, Usage: graph.Read, SetIndex: 0, BindIndex: 0, Type: driver.DConstant, Stages: driver.SVertex},
		}
	case graph.Write:
		return []graph.ResourceBinding{
			{Resource: s.Cascades, Usage: graph.Write, Attachment: true, Count: s.CascadeCount},
		}
	}
	return nil
}

// Execute implements graph.Pass, rendering one subpass per cascade
// framebuffer.
func (s *ShadowAtlas) Execute(cmd driver.CmdBuffer, frameIndex int) {
	for _, fb := range s.Framebufs {
		cmd.BeginPass(s.RenderPass, fb, []driver.ClearValue{{Depth: 1}})
		cmd.SetPipeline(s.Pipeline)
		cmd.SetViewport([]driver.Viewport{s.Viewport})
		cmd.SetScissor([]driver.Scissor{s.Scissor})
		cmd.SetVertexBuf(0, []driver.Buffer{s.VertexBuf}, []int64{0})
		cmd.Draw(s.VertexCount, 1, 0, 0)
		cmd.EndPass()
	}
}
