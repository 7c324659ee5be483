package passes

import (
	"encoding/binary"
	"math"

	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/graph"
)

// ToneMapParams is the push-constant payload ToneMap writes every
// frame: the exposure and gamma values a Provider reads from a
// config.Config.
type ToneMapParams struct {
	Exposure float32
	Gamma    float32
}

// Bytes encodes p in the tight little-endian layout its shader
// expects.
func (p ToneMapParams) Bytes() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.Exposure))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Gamma))
	return buf
}

// ToneMap is the final compute pass of the illustrative set: it reads
// the post-processed storage image and writes directly into the
// frame's swapchain image (an External resource the caller adds via
// graph.FrameGraph.AddExternal), driven by a per-frame Provider
// supplying exposure/gamma as a push constant.
type ToneMap struct {
	Input  graph.Handle // storage image, read
	Output graph.Handle // swapchain image, write, External

	Params graph.Provider

	GroupsX, GroupsY int
}

// Name implements graph.Pass.
func (t *ToneMap) Name() string { return "tone_map" }

// BindPoint implements graph.Pass.
func (t *ToneMap) BindPoint() graph.BindPoint { return graph.BindCompute }

// Resources implements graph.Pass.
func (t *ToneMap) Resources(usage graph.Usage) []graph.ResourceBinding {
	switch usage {
	case graph.Read:
		return []graph.ResourceBinding{
			{Resource: t.Input, Usage: graph.Read, SetIndex: 0, BindIndex: 0, Type: driver.DImage, Stages: driver.SCompute},
		}
	case graph.Write:
		return []graph.ResourceBinding{
			{Resource: t.Output, Usage: graph.Write, SetIndex: 0, BindIndex: 1, Type: driver.DImage, Stages: driver.SCompute},
		}
	}
	return nil
}

// PushConstants returns the push-constant range ToneMap declares.
// PipelineBuilder does not add it to the pipeline layout.
func (t *ToneMap) PushConstants() graph.PushConstantRange {
	return graph.PushConstantRange{Size: 8, Stages: driver.SCompute}
}

// Execute implements graph.Pass. The push-constant bytes produced by
// Params are not written through driver.CmdBuffer — the façade
// exposes no push-constant command — so a real pipeline would bind
// them through the descriptor heap as a small constant-buffer
// descriptor instead; Params is retained here to document the
// per-frame data a real implementation would upload.
func (t *ToneMap) Execute(cmd driver.CmdBuffer, frameIndex int) {
	if t.Params != nil {
		_ = t.Params(frameIndex)
	}
	cmd.BeginWork(false)
	cmd.Dispatch(t.GroupsX, t.GroupsY, 1)
	cmd.EndWork()
}
