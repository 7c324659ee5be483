package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	wg "github.com/gogpu/wgpu"

	"github.com/driftforge/frame/driver"
)

// descHeap implements driver.DescHeap.
//
// A heap owns one wg.BindGroupLayout derived from the Descriptor list
// given at creation, and a slice of wg.BindGroup "copies" — WebGPU
// bind groups are immutable once built, so each Set* call marks the
// copy's entries dirty and the actual *wg.BindGroup is rebuilt lazily,
// the next time it is needed for binding.
type descHeap struct {
	gpu     *gpu
	descs   []driver.Descriptor
	layout  *wg.BindGroupLayout
	bindOf  map[int]uint32 // descriptor Nr -> starting WGSL binding index
	nBind   uint32
	entries [][]wg.BindGroupEntry // per copy, one entry per binding
	groups  []*wg.BindGroup       // per copy, lazily (re)built
	dirty   []bool
}

func newDescHeap(g *gpu, ds []driver.Descriptor) (*descHeap, error) {
	h := &descHeap{gpu: g, descs: append([]driver.Descriptor(nil), ds...), bindOf: map[int]uint32{}}

	var layoutEntries []gputypes.BindGroupLayoutEntry
	var next uint32
	for _, d := range ds {
		h.bindOf[d.Nr] = next
		n := d.Len
		if n <= 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			layoutEntries = append(layoutEntries, bindGroupLayoutEntry(next, d))
			next++
		}
	}
	h.nBind = next

	layout, err := g.device.CreateBindGroupLayout(&wg.BindGroupLayoutDescriptor{
		Label:   "desc-heap",
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewDescHeap: %w", err)
	}
	h.layout = layout
	return h, nil
}

func bindGroupLayoutEntry(binding uint32, d driver.Descriptor) gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: toStage(d.Stages),
	}
	switch d.Type {
	case driver.DBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	case driver.DConstant:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case driver.DImage:
		e.StorageTexture = &gputypes.StorageTextureBindingLayout{Access: gputypes.StorageTextureAccessReadWrite}
	case driver.DTexture:
		e.Texture = &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeFloat}
	case driver.DSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	}
	return e
}

func (h *descHeap) Destroy() {
	for _, g := range h.groups {
		if g != nil {
			g.Release()
		}
	}
	h.groups = nil
	if h.layout != nil {
		h.layout.Release()
		h.layout = nil
	}
}

func (h *descHeap) New(n int) error {
	h.Destroy()
	h.layout = nil
	if n == 0 {
		h.entries = nil
		h.dirty = nil
		return nil
	}
	// Recreate the layout (Destroy released it above).
	var layoutEntries []gputypes.BindGroupLayoutEntry
	var next uint32
	for _, d := range h.descs {
		cnt := d.Len
		if cnt <= 0 {
			cnt = 1
		}
		for i := 0; i < cnt; i++ {
			layoutEntries = append(layoutEntries, bindGroupLayoutEntry(next, d))
			next++
		}
	}
	layout, err := h.gpu.device.CreateBindGroupLayout(&wg.BindGroupLayoutDescriptor{Label: "desc-heap", Entries: layoutEntries})
	if err != nil {
		return fmt.Errorf("wgpu: DescHeap.New: %w", err)
	}
	h.layout = layout
	h.entries = make([][]wg.BindGroupEntry, n)
	h.groups = make([]*wg.BindGroup, n)
	h.dirty = make([]bool, n)
	for i := range h.entries {
		h.entries[i] = make([]wg.BindGroupEntry, h.nBind)
		for b := range h.entries[i] {
			h.entries[i][b].Binding = uint32(b)
		}
	}
	return nil
}

func (h *descHeap) set(cpy, nr, start int, n int, fn func(i int) wg.BindGroupEntry) {
	if cpy < 0 || cpy >= len(h.entries) {
		return
	}
	base := int(h.bindOf[nr]) + start
	for i := 0; i < n; i++ {
		idx := base + i
		if idx < 0 || idx >= len(h.entries[cpy]) {
			continue
		}
		e := fn(i)
		e.Binding = uint32(idx)
		h.entries[cpy][idx] = e
	}
	h.dirty[cpy] = true
}

func (h *descHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	h.set(cpy, nr, start, len(buf), func(i int) wg.BindGroupEntry {
		b, _ := buf[i].(*buffer)
		var o, s uint64
		if off != nil {
			o = uint64(off[i])
		}
		if size != nil {
			s = uint64(size[i])
		}
		var wb *wg.Buffer
		if b != nil {
			wb = b.buf
		}
		return wg.BindGroupEntry{Buffer: wb, Offset: o, Size: s}
	})
}

func (h *descHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	h.set(cpy, nr, start, len(iv), func(i int) wg.BindGroupEntry {
		v, _ := iv[i].(*imageView)
		var wv *wg.TextureView
		if v != nil {
			wv = v.view
		}
		return wg.BindGroupEntry{TextureView: wv}
	})
}

func (h *descHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	h.set(cpy, nr, start, len(splr), func(i int) wg.BindGroupEntry {
		s, _ := splr[i].(*sampler)
		var ws *wg.Sampler
		if s != nil {
			ws = s.s
		}
		return wg.BindGroupEntry{Sampler: ws}
	})
}

func (h *descHeap) Count() int { return len(h.entries) }

// group returns the (rebuilding if necessary) *wg.BindGroup for copy cpy.
func (h *descHeap) group(cpy int) (*wg.BindGroup, error) {
	if cpy < 0 || cpy >= len(h.entries) {
		return nil, fmt.Errorf("wgpu: descriptor heap copy %d out of range", cpy)
	}
	if h.groups[cpy] != nil && !h.dirty[cpy] {
		return h.groups[cpy], nil
	}
	if h.groups[cpy] != nil {
		h.groups[cpy].Release()
	}
	g, err := h.gpu.device.CreateBindGroup(&wg.BindGroupDescriptor{
		Label:   "desc-heap-copy",
		Layout:  h.layout,
		Entries: h.entries[cpy],
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: rebuild bind group: %w", err)
	}
	h.groups[cpy] = g
	h.dirty[cpy] = false
	return g, nil
}

// descTable implements driver.DescTable: an ordered list of heaps
// bound together as a pipeline's full set of bind groups.
type descTable struct {
	gpu    *gpu
	heaps  []*descHeap
	layout *wg.PipelineLayout
}

func newDescTable(g *gpu, dh []driver.DescHeap) (*descTable, error) {
	t := &descTable{gpu: g}
	var layouts []*wg.BindGroupLayout
	for _, h := range dh {
		dh, ok := h.(*descHeap)
		if !ok {
			return nil, fmt.Errorf("wgpu: NewDescTable: foreign DescHeap implementation")
		}
		t.heaps = append(t.heaps, dh)
		layouts = append(layouts, dh.layout)
	}
	layout, err := g.device.CreatePipelineLayout(&wg.PipelineLayoutDescriptor{Label: "desc-table", BindGroupLayouts: layouts})
	if err != nil {
		return nil, fmt.Errorf("wgpu: NewDescTable: %w", err)
	}
	t.layout = layout
	return t, nil
}

func (t *descTable) Destroy() {
	if t.layout != nil {
		t.layout.Release()
		t.layout = nil
	}
}
