package graph

import (
	"sort"

	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/internal/ctxt"
)

// shaderCache loads shader modules once per path and reference-counts
// them across every pipeline that shares a shader file, destroying a
// module only once its last referencing pipeline is destroyed.
type shaderCache struct {
	entries map[string]*shaderEntry
}

type shaderEntry struct {
	code driver.ShaderCode
	refs int
}

func newShaderCache() *shaderCache {
	return &shaderCache{entries: make(map[string]*shaderEntry)}
}

// load returns the ShaderCode for path, decoding and caching it on
// first use and incrementing its reference count on every call.
func (c *shaderCache) load(path string, data []byte) (driver.ShaderCode, error) {
	if e, ok := c.entries[path]; ok {
		e.refs++
		return e.code, nil
	}
	code, err := ctxt.GPU().NewShaderCode(data)
	if err != nil {
		return nil, allocErrf("shader %s: %v", path, err)
	}
	c.entries[path] = &shaderEntry{code: code, refs: 1}
	return code, nil
}

// release decrements path's reference count, destroying its
// ShaderCode once the count reaches zero.
func (c *shaderCache) release(path string) {
	e, ok := c.entries[path]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		e.code.Destroy()
		delete(c.entries, path)
	}
}

// PipelineBuilder compiles a Pass's resource bindings into a
// descriptor heap, descriptor table and pipeline, following the
// shader path each pass names. One PipelineBuilder is shared by every
// pass added to a FrameGraph so that passes requiring the same shader
// file reuse its compiled ShaderCode (see shaderCache).
type PipelineBuilder struct {
	shaders *shaderCache
}

// NewPipelineBuilder returns an empty PipelineBuilder.
func NewPipelineBuilder() *PipelineBuilder {
	return &PipelineBuilder{shaders: newShaderCache()}
}

// CompiledPipeline is the result of building a Pass's GPU-side
// pipeline state: one descriptor heap per descriptor set the pass
// declared, the descriptor table combining them for draws/dispatches,
// and the pipeline itself.
type CompiledPipeline struct {
	Heaps    []driver.DescHeap
	Table    driver.DescTable
	Pipeline driver.Pipeline

	shaderPaths []string
}

// Destroy releases the heaps, table and pipeline, and releases this
// pipeline's references on any shared shader modules.
func (b *PipelineBuilder) Destroy(cp *CompiledPipeline) {
	if cp.Pipeline != nil {
		cp.Pipeline.Destroy()
	}
	if cp.Table != nil {
		cp.Table.Destroy()
	}
	for _, h := range cp.Heaps {
		h.Destroy()
	}
	for _, p := range cp.shaderPaths {
		b.shaders.release(p)
	}
}

// groupBindingsBySet partitions bindings (a Pass's combined Read+Write
// binding list, excluding Attachment bindings) into one
// driver.Descriptor slice per descriptor set, and returns the set
// indices in ascending order for layout-compatible binding. Within a
// set, duplicate BindIndex values are rejected. It performs no driver
// calls, so it can be exercised without a GPU.
func groupBindingsBySet(bindings []ResourceBinding) (sets []int, bySet map[int][]driver.Descriptor, err error) {
	bySet = make(map[int][]driver.Descriptor)
	seen := make(map[[2]int]bool)
	for _, bind := range bindings {
		if bind.Attachment {
			continue
		}
		key := [2]int{bind.SetIndex, bind.BindIndex}
		if seen[key] {
			return nil, nil, configErrf("duplicate binding at set %d, index %d", bind.SetIndex, bind.BindIndex)
		}
		seen[key] = true
		n := bind.Count
		if n <= 0 {
			n = 1
		}
		bySet[bind.SetIndex] = append(bySet[bind.SetIndex], driver.Descriptor{
			Type:   bind.Type,
			Stages: bind.Stages,
			Nr:     bind.BindIndex,
			Len:    n,
		})
	}
	if len(bySet) == 0 {
		return nil, nil, nil
	}
	sets = make([]int, 0, len(bySet))
	for s := range bySet {
		sets = append(sets, s)
	}
	sort.Ints(sets)
	return sets, bySet, nil
}

// descHeaps compiles bindings into one driver.DescHeap per descriptor
// set, ordered ascending by SetIndex for layout-compatible binding.
// driver.DescHeap is the façade's per-set descriptor-set-layout
// abstraction and driver.DescTable combines an ordered slice of heaps,
// so a Pass declaring bindings across multiple sets must compile one
// heap per set rather than flattening every binding into one heap.
func (b *PipelineBuilder) descHeaps(bindings []ResourceBinding) ([]driver.DescHeap, error) {
	sets, bySet, err := groupBindingsBySet(bindings)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, nil
	}

	heaps := make([]driver.DescHeap, 0, len(sets))
	destroyAll := func() {
		for _, h := range heaps {
			h.Destroy()
		}
	}
	for _, s := range sets {
		heap, err := ctxt.GPU().NewDescHeap(bySet[s])
		if err != nil {
			destroyAll()
			return nil, allocErrf("NewDescHeap: %v", err)
		}
		if err := heap.New(1); err != nil {
			heap.Destroy()
			destroyAll()
			return nil, allocErrf("DescHeap.New: %v", err)
		}
		heaps = append(heaps, heap)
	}
	return heaps, nil
}

// BuildGraphics compiles a graphics Pass into a CompiledPipeline. vert
// and frag are the compiled shader module bytes for the pass's vertex
// and fragment stages; vertPath/fragPath key the shader cache.
func (b *PipelineBuilder) BuildGraphics(p Pass, state *driver.GraphState, vertPath string, vert []byte, fragPath string, frag []byte) (*CompiledPipeline, error) {
	vertCode, err := b.shaders.load(vertPath, vert)
	if err != nil {
		return nil, err
	}
	fragCode, err := b.shaders.load(fragPath, frag)
	if err != nil {
		b.shaders.release(vertPath)
		return nil, err
	}
	state.VertFunc = driver.ShaderFunc{Code: vertCode, Name: "main"}
	state.FragFunc = driver.ShaderFunc{Code: fragCode, Name: "main"}

	bindings := append(append([]ResourceBinding{}, p.Resources(Read)...), p.Resources(Write)...)
	heaps, err := b.descHeaps(bindings)
	if err != nil {
		b.shaders.release(vertPath)
		b.shaders.release(fragPath)
		return nil, err
	}
	table, err := ctxt.GPU().NewDescTable(heaps)
	if err != nil {
		for _, h := range heaps {
			h.Destroy()
		}
		b.shaders.release(vertPath)
		b.shaders.release(fragPath)
		return nil, allocErrf("NewDescTable: %v", err)
	}
	state.Desc = table

	pl, err := ctxt.GPU().NewPipeline(state)
	if err != nil {
		table.Destroy()
		for _, h := range heaps {
			h.Destroy()
		}
		b.shaders.release(vertPath)
		b.shaders.release(fragPath)
		return nil, allocErrf("NewPipeline: %v", err)
	}
	return &CompiledPipeline{
		Heaps:       heaps,
		Table:       table,
		Pipeline:    pl,
		shaderPaths: []string{vertPath, fragPath},
	}, nil
}

// BuildCompute compiles a compute Pass into a CompiledPipeline.
// compPath keys the shader cache; comp is the compiled shader module
// bytes for the pass's single compute stage.
func (b *PipelineBuilder) BuildCompute(p Pass, compPath string, comp []byte) (*CompiledPipeline, error) {
	code, err := b.shaders.load(compPath, comp)
	if err != nil {
		return nil, err
	}

	bindings := append(append([]ResourceBinding{}, p.Resources(Read)...), p.Resources(Write)...)
	heaps, err := b.descHeaps(bindings)
	if err != nil {
		b.shaders.release(compPath)
		return nil, err
	}
	table, err := ctxt.GPU().NewDescTable(heaps)
	if err != nil {
		for _, h := range heaps {
			h.Destroy()
		}
		b.shaders.release(compPath)
		return nil, allocErrf("NewDescTable: %v", err)
	}

	state := &driver.CompState{
		Func: driver.ShaderFunc{Code: code, Name: "main"},
		Desc: table,
	}
	pl, err := ctxt.GPU().NewPipeline(state)
	if err != nil {
		table.Destroy()
		for _, h := range heaps {
			h.Destroy()
		}
		b.shaders.release(compPath)
		return nil, allocErrf("NewPipeline: %v", err)
	}
	return &CompiledPipeline{
		Heaps:       heaps,
		Table:       table,
		Pipeline:    pl,
		shaderPaths: []string{compPath},
	}, nil
}
