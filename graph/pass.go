package graph

import (
	"github.com/driftforge/frame/driver"
)

// BindPoint identifies which pipeline a Pass's commands target, which
// in turn tells the Synchronization Manager how to classify a
// resource binding's destination shader stages when the pass itself
// does not name them explicitly.
type BindPoint int

// Pipeline bind points.
const (
	BindGraphics BindPoint = iota
	BindCompute
)

// CreationType distinguishes a resource the Frame Graph allocates and
// owns (Internal) from one created and owned by another subsystem —
// typically a swapchain image — that the graph only references
// (External). Destroy is a no-op for External instances.
type CreationType int

// Resource creation types.
const (
	Internal CreationType = iota
	External
)

// ResourceBinding declares one resource a Pass reads or writes: which
// resource, how it is used, whether it is bound as a render-pass
// attachment rather than through a descriptor, and — for descriptor
// bindings — the descriptor set/binding slot, type, visible shader
// stages and array length the Pipeline Builder should compile into
// the pass's descriptor set layout.
type ResourceBinding struct {
	Resource Handle
	Usage    Usage

	// Attachment is true when the binding is consumed as a color,
	// depth/stencil or resolve render-pass attachment rather than
	// through a descriptor set. SetIndex/BindIndex/Type/Count are
	// ignored when Attachment is true; Stages, when non-zero, still
	// selects the destination stage of the Synchronization Manager's
	// barrier for the binding.
	Attachment bool

	SetIndex  int
	BindIndex int
	Type      driver.DescType
	Stages    driver.Stage
	Count     int

	// Sampler is the Handle of a SamplerInstance paired with this
	// binding when Type is driver.DTexture, or zero when the binding
	// needs no companion sampler.
	Sampler Handle
}

// PushConstantRange declares a push-constant range a Pass uses: its
// byte size and the shader stages that may read it. PipelineBuilder
// does not add it to the pipeline layout; the driver façade has no
// push-constant range.
type PushConstantRange struct {
	Size   int
	Stages driver.Stage
}

// Provider supplies the bytes a Pass writes into a push-constant
// range or a mapped buffer for the given frame index. It is called
// once per frame, on the render thread, immediately before the owning
// Pass executes.
type Provider func(frameIndex int) []byte

// Pass is implemented by every render or compute node the Frame Graph
// schedules. AddPass calls Resources twice, once for Read and once for
// Write, so a Pass may compute its two binding lists however
// is convenient (a fixed table, a switch on usage, or two stored
// slices) as long as no Handle appears in both lists — the Frame
// Graph rejects that at AddPass per the read+write-on-one-binding
// rule.
type Pass interface {
	// Name identifies the pass in diagnostics and debug labels.
	Name() string

	// BindPoint reports whether the pass's commands target the
	// graphics or the compute pipeline.
	BindPoint() BindPoint

	// Resources returns the pass's resource bindings for the given
	// usage. The Frame Graph calls this during AddPass (to build the
	// dependency graph) and keeps the returned bindings; the
	// Synchronization Manager works from those stored bindings.
	// PipelineBuilder.BuildGraphics/BuildCompute call it again to lay
	// out the pass's descriptor sets.
	Resources(usage Usage) []ResourceBinding

	// Execute records the pass's commands into cmd for the given
	// in-flight frame index. By the time Execute runs, every resource
	// returned from Resources is already in the state (layout,
	// access, pipeline stage) the binding's Usage and Attachment flag
	// imply; Execute must not issue its own barriers.
	Execute(cmd driver.CmdBuffer, frameIndex int)
}
