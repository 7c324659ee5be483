package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// pipeline implements driver.Pipeline, wrapping either a render or a
// compute pipeline.
type pipeline struct {
	render  *wg.RenderPipeline
	compute *wg.ComputePipeline
}

func (p *pipeline) Destroy() {
	if p.render != nil {
		p.render.Release()
		p.render = nil
	}
	if p.compute != nil {
		p.compute.Release()
		p.compute = nil
	}
}

func newGraphicsPipeline(g *gpu, st *driver.GraphState) (*pipeline, error) {
	vertMod, ok := st.VertFunc.Code.(*shaderCode)
	if !ok || vertMod.mod == nil {
		return nil, fmt.Errorf("wgpu: GraphState.VertFunc.Code is not a valid shader")
	}
	table, ok := st.Desc.(*descTable)
	if !ok {
		return nil, fmt.Errorf("wgpu: GraphState.Desc is not a valid descriptor table")
	}
	rp, ok := st.Pass.(*renderPass)
	if !ok {
		return nil, fmt.Errorf("wgpu: GraphState.Pass is not a valid render pass")
	}
	if st.Subpass < 0 || st.Subpass >= len(rp.sub) {
		return nil, fmt.Errorf("wgpu: GraphState.Subpass out of range")
	}
	sub := rp.sub[st.Subpass]

	desc := &wg.RenderPipelineDescriptor{
		Label:  "graphics-pipeline",
		Layout: table.layout,
		Vertex: wg.VertexState{
			Module:     vertMod.mod,
			EntryPoint: st.VertFunc.Name,
			Buffers:    toVertexBuffers(st.Input),
		},
		Primitive:   toPrimitiveState(st.Topology, st.Raster),
		Multisample: gputypes.MultisampleState{Count: uint32(max1(st.Samples))},
	}

	if sub.DS >= 0 && sub.DS < len(rp.att) {
		fmtW, err := toWGPUFormat(rp.att[sub.DS].Format)
		if err != nil {
			return nil, err
		}
		desc.DepthStencil = toDepthStencilState(fmtW, st.DS)
	}

	if st.FragFunc.Code != nil {
		fragMod, ok := st.FragFunc.Code.(*shaderCode)
		if !ok || fragMod.mod == nil {
			return nil, fmt.Errorf("wgpu: GraphState.FragFunc.Code is not a valid shader")
		}
		targets, err := toColorTargets(rp, sub, st.Blend)
		if err != nil {
			return nil, err
		}
		desc.Fragment = &wg.FragmentState{
			Module:     fragMod.mod,
			EntryPoint: st.FragFunc.Name,
			Targets:    targets,
		}
	}

	rpl, err := g.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewPipeline: %w", err)
	}
	return &pipeline{render: rpl}, nil
}

func newComputePipeline(g *gpu, st *driver.CompState) (*pipeline, error) {
	mod, ok := st.Func.Code.(*shaderCode)
	if !ok || mod.mod == nil {
		return nil, fmt.Errorf("wgpu: CompState.Func.Code is not a valid shader")
	}
	table, ok := st.Desc.(*descTable)
	if !ok {
		return nil, fmt.Errorf("wgpu: CompState.Desc is not a valid descriptor table")
	}
	cpl, err := g.device.CreateComputePipeline(&wg.ComputePipelineDescriptor{
		Label:      "compute-pipeline",
		Layout:     table.layout,
		Module:     mod.mod,
		EntryPoint: st.Func.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewPipeline: %w", err)
	}
	return &pipeline{compute: cpl}, nil
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func toVertexFormat(f driver.VertexFmt) gputypes.VertexFormat {
	switch f {
	case driver.Int8x2:
		return gputypes.VertexFormatSint8x2
	case driver.Int8x4:
		return gputypes.VertexFormatSint8x4
	case driver.UInt8x2:
		return gputypes.VertexFormatUint8x2
	case driver.UInt8x4:
		return gputypes.VertexFormatUint8x4
	case driver.Int16x2:
		return gputypes.VertexFormatSint16x2
	case driver.Int16x4:
		return gputypes.VertexFormatSint16x4
	case driver.UInt16x2:
		return gputypes.VertexFormatUint16x2
	case driver.UInt16x4:
		return gputypes.VertexFormatUint16x4
	case driver.Int32:
		return gputypes.VertexFormatSint32
	case driver.Int32x2:
		return gputypes.VertexFormatSint32x2
	case driver.Int32x3:
		return gputypes.VertexFormatSint32x3
	case driver.Int32x4:
		return gputypes.VertexFormatSint32x4
	case driver.UInt32:
		return gputypes.VertexFormatUint32
	case driver.UInt32x2:
		return gputypes.VertexFormatUint32x2
	case driver.UInt32x3:
		return gputypes.VertexFormatUint32x3
	case driver.UInt32x4:
		return gputypes.VertexFormatUint32x4
	case driver.Float32:
		return gputypes.VertexFormatFloat32
	case driver.Float32x2:
		return gputypes.VertexFormatFloat32x2
	case driver.Float32x3:
		return gputypes.VertexFormatFloat32x3
	case driver.Float32x4:
		return gputypes.VertexFormatFloat32x4
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

func toVertexBuffers(in []driver.VertexIn) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, len(in))
	for i, vi := range in {
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(vi.Stride),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{{
				Format:         toVertexFormat(vi.Format),
				Offset:         0,
				ShaderLocation: uint32(vi.Nr),
			}},
		}
	}
	return out
}

func toPrimitiveState(topo driver.Topology, rs driver.RasterState) gputypes.PrimitiveState {
	ps := gputypes.PrimitiveState{Topology: toTopology(topo)}
	if rs.Clockwise {
		ps.FrontFace = gputypes.FrontFaceCW
	} else {
		ps.FrontFace = gputypes.FrontFaceCCW
	}
	switch rs.Cull {
	case driver.CFront:
		ps.CullMode = gputypes.CullModeFront
	case driver.CBack:
		ps.CullMode = gputypes.CullModeBack
	default:
		ps.CullMode = gputypes.CullModeNone
	}
	return ps
}

func toTopology(t driver.Topology) gputypes.PrimitiveTopology {
	switch t {
	case driver.TLine:
		return gputypes.PrimitiveTopologyLineList
	case driver.TLnStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case driver.TTriStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case driver.TPoint:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func toDepthStencilState(fmtW gputypes.TextureFormat, ds driver.DSState) *gputypes.DepthStencilState {
	return &gputypes.DepthStencilState{
		Format:            fmtW,
		DepthWriteEnabled: ds.DepthWrite,
		DepthCompare:      toCompareFunc(ds.DepthCmp),
	}
}

func toColorTargets(rp *renderPass, sub driver.Subpass, bs driver.BlendState) ([]gputypes.ColorTargetState, error) {
	targets := make([]gputypes.ColorTargetState, len(sub.Color))
	for i, attIdx := range sub.Color {
		fmtW, err := toWGPUFormat(rp.att[attIdx].Format)
		if err != nil {
			return nil, err
		}
		cb := driver.ColorBlend{WriteMask: driver.CAll}
		if i < len(bs.Color) {
			cb = bs.Color[i]
		} else if len(bs.Color) > 0 && !bs.IndependentBlend {
			cb = bs.Color[0]
		}
		targets[i] = gputypes.ColorTargetState{Format: fmtW, WriteMask: toColorWriteMask(cb.WriteMask)}
		if cb.Blend {
			targets[i].Blend = &gputypes.BlendState{
				Color: gputypes.BlendComponent{
					Operation: toBlendOp(cb.Op[0]),
					SrcFactor: toBlendFactor(cb.SrcFac[0]),
					DstFactor: toBlendFactor(cb.DstFac[0]),
				},
				Alpha: gputypes.BlendComponent{
					Operation: toBlendOp(cb.Op[1]),
					SrcFactor: toBlendFactor(cb.SrcFac[1]),
					DstFactor: toBlendFactor(cb.DstFac[1]),
				},
			}
		}
	}
	return targets, nil
}

func toColorWriteMask(m driver.ColorMask) gputypes.ColorWriteMask {
	var out gputypes.ColorWriteMask
	if m&driver.CRed != 0 {
		out |= gputypes.ColorWriteMaskRed
	}
	if m&driver.CGreen != 0 {
		out |= gputypes.ColorWriteMaskGreen
	}
	if m&driver.CBlue != 0 {
		out |= gputypes.ColorWriteMaskBlue
	}
	if m&driver.CAlpha != 0 {
		out |= gputypes.ColorWriteMaskAlpha
	}
	return out
}

func toBlendOp(op driver.BlendOp) gputypes.BlendOperation {
	switch op {
	case driver.BSubtract:
		return gputypes.BlendOperationSubtract
	case driver.BRevSubtract:
		return gputypes.BlendOperationReverseSubtract
	case driver.BMin:
		return gputypes.BlendOperationMin
	case driver.BMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

func toBlendFactor(f driver.BlendFac) gputypes.BlendFactor {
	switch f {
	case driver.BOne:
		return gputypes.BlendFactorOne
	case driver.BSrcColor:
		return gputypes.BlendFactorSrc
	case driver.BInvSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case driver.BSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case driver.BInvSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case driver.BDstColor:
		return gputypes.BlendFactorDst
	case driver.BInvDstColor:
		return gputypes.BlendFactorOneMinusDst
	case driver.BDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case driver.BInvDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case driver.BSrcAlphaSaturated:
		return gputypes.BlendFactorSrcAlphaSaturated
	case driver.BBlendColor:
		return gputypes.BlendFactorConstant
	case driver.BInvBlendColor:
		return gputypes.BlendFactorOneMinusConstant
	default:
		return gputypes.BlendFactorZero
	}
}
