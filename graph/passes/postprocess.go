package passes

import (
	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/graph"
)

// PostProcess is a compute pass that reads the Geometry pass's color
// output as a sampled texture and writes a full-screen storage image,
// illustrating a non-attachment read of a resource another pass wrote
// as an attachment.
type PostProcess struct {
	Input        graph.Handle // sampled texture, read (written by Geometry as a color attachment)
	InputSampler graph.Handle
	Output       graph.Handle // storage image, write

	GroupsX, GroupsY int
}

// Name implements graph.Pass.
func (p *PostProcess) Name() string { return "post_process" }

// BindPoint implements graph.Pass.
func (p *PostProcess) BindPoint() graph.BindPoint { return graph.BindCompute }

// Resources implements graph.Pass.
func (p *PostProcess) Resources(usage graph.Usage) []graph.ResourceBinding {
	switch usage {
	case graph.Read:
		return []graph.ResourceBinding{
			{Resource: p.Input, Usage: graph.Read, SetIndex: 0, BindIndex: 0, Type: driver.DTexture, Stages: driver.SCompute, Sampler: p.InputSampler},
		}
	case graph.Write:
		return []graph.ResourceBinding{
			{Resource: p.Output, Usage: graph.Write, SetIndex: 0, BindIndex: 1, Type: driver.DImage, Stages: driver.SCompute},
		}
	}
	return nil
}

// Execute implements graph.Pass.
func (p *PostProcess) Execute(cmd driver.CmdBuffer, frameIndex int) {
	cmd.BeginWork(false)
	cmd.Dispatch(p.GroupsX, p.GroupsY, 1)
	cmd.EndWork()
}
