// Package passes implements a small illustrative subset of the
// representative pass set a deferred renderer built on the Frame
// Graph would declare: a culling compute pass, a geometry pass with
// color and depth attachments, a post-processing compute pass
// consuming the geometry pass's outputs, a tone-map compute pass, and
// a shadow-atlas graphics pass writing one cascade per array element.
// They exist to exercise every binding kind graph.Pass supports, not
// to implement an actual renderer.
package passes

import (
	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/graph"
)

// Culling dispatches a compute shader that tests each candidate draw
// against the frame's view frustum and writes the surviving indices
// to a storage buffer for the geometry pass to read indirectly.
type Culling struct {
	Candidates graph.Handle // storage buffer, read
	Params     graph.Handle // uniform buffer, read
	Visible    graph.Handle // storage buffer, write

	GroupsX, GroupsY, GroupsZ int
}

// Name implements graph.Pass.
func (c *Culling) Name() string { return "culling" }

// BindPoint implements graph.Pass.
func (c *Culling) BindPoint() graph.BindPoint { return graph.BindCompute }

// Resources implements graph.Pass.
func (c *Culling) Resources(usage graph.Usage) []graph.ResourceBinding {
	switch usage {
	case graph.Read:
		return []graph.ResourceBinding{
			{Resource: c.Candidates, Usage: graph.Read, SetIndex: 0, BindIndex: 0, Type: driver.DBuffer, Stages: driver.SCompute},
			{Resource: c.Params, Usage: graph.Read, SetIndex: 0, BindIndex: 1, Type: driver.DConstant, Stages: driver.SCompute},
		}
	case graph.Write:
		return []graph.ResourceBinding{
			{Resource: c.Visible, Usage: graph.Write, SetIndex: 0, BindIndex: 2, Type: driver.DBuffer, Stages: driver.SCompute},
		}
	}
	return nil
}

// Execute implements graph.Pass.
func (c *Culling) Execute(cmd driver.CmdBuffer, frameIndex int) {
	cmd.BeginWork(false)
	cmd.Dispatch(c.GroupsX, c.GroupsY, c.GroupsZ)
	cmd.EndWork()
}
