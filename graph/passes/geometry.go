package passes

import (
	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/graph"
)

// Geometry is a graphics pass that draws opaque geometry into a color
// and a depth attachment, sampling one albedo texture. Its
// driver-level pipeline is compiled by a graph.PipelineBuilder; the
// render pass, framebuffer and pipeline are all assigned before the
// owning FrameGraph is first executed; Geometry itself only records
// the per-frame draw commands.
type Geometry struct {
	Scene         graph.Handle // uniform buffer, read
	Albedo        graph.Handle // sampled texture, read
	AlbedoSampler graph.Handle // companion sampler for Albedo

	Color graph.Handle // color attachment, write
	Depth graph.Handle // depth attachment, write

	RenderPass driver.RenderPass
	Framebuf   driver.Framebuf
	Pipeline   driver.Pipeline
	Viewport   driver.Viewport
	Scissor    driver.Scissor
	Clear      [2]driver.ClearValue

	VertexBuf   driver.Buffer
	VertexCount int
}

// Name implements graph.Pass.
func (g *Geometry) Name() string { return "geometry" }

// BindPoint implements graph.Pass.
func (g *Geometry) BindPoint() graph.BindPoint { return graph.BindGraphics }

// Resources implements graph.Pass.
func (g *Geometry) Resources(usage graph.Usage) []graph.ResourceBinding {
	switch usage {
	case graph.Read:
		return []graph.ResourceBinding{
			{Resource: g.Scene, Usage: graph.Read, SetIndex: 0, BindIndex: 0, Type: driver.DConstant, Stages: driver.SVertex | driver.SFragment},
			{Resource: g.Albedo, Usage: graph.Read, SetIndex: 0, BindIndex: 1, Type: driver.DTexture, Stages: driver.SFragment, Sampler: g.AlbedoSampler},
		}
	case graph.Write:
		return []graph.ResourceBinding{
			{Resource: g.Color, Usage: graph.Write, Attachment: true},
			{Resource: g.Depth, Usage: graph.Write, Attachment: true},
		}
	}
	return nil
}

// Execute implements graph.Pass.
func (g *Geometry) Execute(cmd driver.CmdBuffer, frameIndex int) {
	cmd.BeginPass(g.RenderPass, g.Framebuf, g.Clear[:])
	cmd.SetPipeline(g.Pipeline)
	cmd.SetViewport([]driver.Viewport{g.Viewport})
	cmd.SetScissor([]driver.Scissor{g.Scissor})
	cmd.SetVertexBuf(0, []driver.Buffer{g.VertexBuf}, []int64{0})
	cmd.Draw(g.VertexCount, 1, 0, 0)
	cmd.EndPass()
}
