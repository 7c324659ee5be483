package graph

import (
	"github.com/driftforge/frame/driver"
)

const allGraphicsSync = driver.SVertexInput | driver.SVertexShading | driver.SFragmentShading |
	driver.SColorOutput | driver.SDSOutput | driver.SDraw

// destStageFromShaderStages derives the destination driver.Sync scope
// a resource binding's next consumer falls into, from the shader
// stage mask it declared. Exactly driver.SFragment maps to every
// graphics pipeline stage (the façade exposes no finer-grained
// fragment-only scope); exactly driver.SCompute maps to compute
// shading; anything else — vertex-only, a combined mask, or zero —
// falls back to SAll, the safe superset.
func destStageFromShaderStages(stages driver.Stage) driver.Sync {
	switch stages {
	case driver.SFragment:
		return allGraphicsSync
	case driver.SCompute:
		return driver.SComputeShading
	default:
		return driver.SAll
	}
}

// destStage is destStageFromShaderStages, except that a binding naming
// no shader stages takes its scope from the owning pass's bind point.
func destStage(ctx syncCtx) driver.Sync {
	switch {
	case ctx.stages != 0:
		return destStageFromShaderStages(ctx.stages)
	case ctx.bindPoint == BindCompute:
		return driver.SComputeShading
	}
	return allGraphicsSync
}

// imageDestState computes the destination (access, layout) an image
// binding moves into, given its usage/attachment classification and
// whether the image holds depth/stencil data. A render-pass
// attachment write is classified by img.depth (ADSRead|ADSWrite with
// LDSTarget for depth, AColorWrite with LColorTarget otherwise); a
// non-attachment write is a shader storage-image write, which reads
// back the prior contents as well (a storage image binding is
// read-modify-write in both graphics and compute), so it carries
// AShaderRead|AShaderWrite and the common (general) layout; a
// non-attachment read is a shader read, using LDSRead for depth and
// LShaderRead otherwise — the same rule applies whether the reading
// pass is graphics or compute.
func imageDestState(ctx syncCtx, depth bool) (driver.Access, driver.Layout) {
	if ctx.attachment {
		if depth {
			return driver.ADSRead | driver.ADSWrite, driver.LDSTarget
		}
		return driver.AColorWrite, driver.LColorTarget
	}
	if ctx.usage == Write {
		return driver.AShaderRead | driver.AShaderWrite, driver.LCommon
	}
	if depth {
		return driver.AShaderRead, driver.LDSRead
	}
	return driver.AShaderRead, driver.LShaderRead
}

// bufferDestAccess computes the destination access scope a buffer
// binding moves into.
func bufferDestAccess(ctx syncCtx) driver.Access {
	if ctx.usage == Write {
		return driver.AShaderWrite
	}
	return driver.AShaderRead
}

// syncManager computes and emits the barriers and layout transitions
// a FrameGraph needs between consecutive nodes. One emit call per
// node is the countable unit the "sorted_nodes + 2" invariant (§8 #5)
// is measured against: the driver façade splits what Vulkan would
// issue as a single combined pipeline barrier into a separate
// Transition call (image layouts) and Barrier call (everything else),
// so emit wraps both behind one logical operation per node instead of
// counting raw driver calls.
type syncManager struct {
	transitions []driver.Transition
	barriers    []driver.Barrier
	emits       int
}

func newSyncManager() *syncManager { return &syncManager{} }

func (m *syncManager) visitImage(img *ImageInstance, ctx syncCtx) {
	access, layout := imageDestState(ctx, img.depth)
	stage := destStage(ctx)
	m.transitions = append(m.transitions, driver.Transition{
		Barrier: driver.Barrier{
			SyncBefore:   img.stage,
			SyncAfter:    stage,
			AccessBefore: img.access,
			AccessAfter:  access,
		},
		LayoutBefore: img.layout,
		LayoutAfter:  layout,
		IView:        img.view,
	})
	img.access, img.layout, img.stage = access, layout, stage
}

func (m *syncManager) visitBuffer(buf *BufferInstance, ctx syncCtx) {
	access := bufferDestAccess(ctx)
	stage := destStage(ctx)
	m.barriers = append(m.barriers, driver.Barrier{
		SyncBefore:   buf.stage,
		SyncAfter:    stage,
		AccessBefore: buf.access,
		AccessAfter:  access,
	})
	buf.access, buf.stage = access, stage
}

// emit synchronizes every resource node reads and writes and records
// the resulting barriers/transitions into cmd. Bindings whose
// resource is not Synchronizable (a sampler) are skipped. Every call
// counts as exactly one emission, even when the node has nothing to
// synchronize: the "sorted_nodes + 2" invariant (§8 Testable Property
// 5) counts nodes, not resources, so a resourceless node still emits
// a no-op identity barrier rather than contributing zero.
func (m *syncManager) emit(cmd driver.CmdBuffer, reg *Registry, node *frameGraphNode) {
	m.transitions = m.transitions[:0]
	m.barriers = m.barriers[:0]

	visit := func(b ResourceBinding, usage Usage) {
		inst := reg.Get(b.Resource)
		sy, ok := inst.(Synchronizable)
		if !ok {
			return
		}
		sy.accept(m, syncCtx{
			usage:      usage,
			attachment: b.Attachment,
			bindPoint:  node.pass.BindPoint(),
			stages:     b.Stages,
		})
	}
	for _, b := range node.reads {
		visit(b, Read)
	}
	for _, b := range node.writes {
		visit(b, Write)
	}

	m.emits++
	switch {
	case len(m.transitions) > 0:
		cmd.Transition(m.transitions)
		if len(m.barriers) > 0 {
			cmd.Barrier(m.barriers)
		}
	case len(m.barriers) > 0:
		cmd.Barrier(m.barriers)
	default:
		cmd.Barrier([]driver.Barrier{{
			SyncBefore:   driver.SNone,
			SyncAfter:    driver.SNone,
			AccessBefore: driver.ANone,
			AccessAfter:  driver.ANone,
		}})
	}
}

// frameBoundary emits a single coarse barrier covering every pending
// host/GPU access, using the façade's broadest access scopes since no
// explicit host-access scope exists in the driver vocabulary. The
// Frame Graph calls this once before the first node and once after
// the last node of every Execute.
func (m *syncManager) frameBoundary(cmd driver.CmdBuffer) {
	m.emits++
	cmd.Barrier([]driver.Barrier{{
		SyncBefore:   driver.SAll,
		SyncAfter:    driver.SAll,
		AccessBefore: driver.AAnyRead | driver.AAnyWrite,
		AccessAfter:  driver.AAnyRead | driver.AAnyWrite,
	}})
}
