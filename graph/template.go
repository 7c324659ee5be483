package graph

import (
	"github.com/driftforge/frame/driver"
)

// ImageTemplate describes an image the Resource Allocator should
// create: its view type, format, usage flags, and either a file path
// to decode its initial contents from or a clear value to initialize
// it with. Size is resolved from whichever of relative scale or
// absolute extent was set most recently (WithRelativeSize /
// WithAbsoluteSize), matching the sum-type rule spec.md §3 assigns to
// the underlying data model.
type ImageTemplate struct {
	name     string
	viewType driver.ViewType
	depth    bool
	format   driver.PixelFmt
	usage    driver.Usage
	mipmaps  bool

	relScale    float32
	absSize     driver.Dim3D
	absIsLatest bool

	file string

	hasClear    bool
	clearColor  [4]float32
	clearDepth  float32
}

// NewImageTemplate returns a template for an image named name, with
// the given format and view type, sized as a multiple (relScale) of
// the swapchain's current extent — the common case for render targets
// that must track window resizes.
func NewImageTemplate(name string, format driver.PixelFmt, viewType driver.ViewType, relScale float32) *ImageTemplate {
	return &ImageTemplate{
		name:     name,
		viewType: viewType,
		format:   format,
		relScale: relScale,
	}
}

// WithDepth marks the template as holding depth/stencil data.
func (t *ImageTemplate) WithDepth(depth bool) *ImageTemplate {
	t.depth = depth
	return t
}

// WithUsage sets the driver.Usage flags the Allocator creates the
// image with. The Allocator adds driver.UShaderSample to every image,
// and driver.UGeneric to depth images; it infers no other usage from
// the pass bindings that reference the image.
func (t *ImageTemplate) WithUsage(usage driver.Usage) *ImageTemplate {
	t.usage = usage
	return t
}

// WithViewType overrides the template's default view type.
func (t *ImageTemplate) WithViewType(vt driver.ViewType) *ImageTemplate {
	t.viewType = vt
	return t
}

// WithMipmaps requests that the Allocator generate a full mipmap
// chain for the image.
func (t *ImageTemplate) WithMipmaps(mipmaps bool) *ImageTemplate {
	t.mipmaps = mipmaps
	return t
}

// WithClearColor requests the image be created uninitialized, to be
// cleared to color the first time a pass binds it as a color
// attachment. It clears any file path previously set.
func (t *ImageTemplate) WithClearColor(color [4]float32) *ImageTemplate {
	t.file = ""
	t.hasClear = true
	t.clearColor = color
	return t
}

// WithClearDepth requests the image be created uninitialized, to be
// cleared to depth the first time a pass binds it as a depth
// attachment. It clears any file path previously set.
func (t *ImageTemplate) WithClearDepth(depth float32) *ImageTemplate {
	t.file = ""
	t.hasClear = true
	t.clearDepth = depth
	return t
}

// WithFile requests the Allocator decode path as the image's initial
// contents. The format the decoder picks from the file's channel
// count replaces the template's format. It clears any clear value
// previously set.
func (t *ImageTemplate) WithFile(path string) *ImageTemplate {
	t.hasClear = false
	t.file = path
	return t
}

// WithRelativeSize sets the image's size as a multiple of the current
// swapchain extent, rounded to the nearest whole pixel. It takes precedence
// over any absolute size previously set, and is itself overridden by
// a later WithAbsoluteSize call.
func (t *ImageTemplate) WithRelativeSize(scale float32) *ImageTemplate {
	t.relScale = scale
	t.absIsLatest = false
	return t
}

// WithAbsoluteSize sets the image's fixed size in pixels, independent
// of the swapchain extent. It takes precedence over any relative
// scale previously set, and is itself overridden by a later
// WithRelativeSize call.
func (t *ImageTemplate) WithAbsoluteSize(size driver.Dim3D) *ImageTemplate {
	t.absSize = size
	t.absIsLatest = true
	return t
}

// resolveExtent returns the template's extent given the current
// reference (swapchain) extent, per the "whichever was set last"
// rule.
func (t *ImageTemplate) resolveExtent(reference driver.Dim3D) driver.Dim3D {
	if t.absIsLatest {
		return t.absSize
	}
	return driver.Dim3D{
		Width:  scaleDim(reference.Width, t.relScale),
		Height: scaleDim(reference.Height, t.relScale),
		Depth:  1,
	}
}

// scaleDim scales v by scale, rounding to the nearest whole pixel. It
// does not clamp to a minimum of 1: a zero reference dimension (e.g.
// a zero-sized window) must propagate as a literal zero, so the
// Allocator's zero-extent rejection (§8's "window size zero is
// rejected") actually has something to reject.
func scaleDim(v int, scale float32) int {
	return int(float32(v)*scale + 0.5)
}

// BufferTemplate describes a buffer the Resource Allocator should
// create: its size in bytes, usage flags, and whether it must be
// host-visible (mappable for a Provider to write into every frame).
type BufferTemplate struct {
	name    string
	size    int64
	usage   driver.Usage
	visible bool
}

// NewBufferTemplate returns a template for a buffer named name with
// the given size in bytes and usage flags.
func NewBufferTemplate(name string, size int64, usage driver.Usage) *BufferTemplate {
	return &BufferTemplate{name: name, size: size, usage: usage}
}

// WithHostVisible requests the Allocator create the buffer in
// host-visible memory, so its Bytes() can be written directly by a
// Provider each frame instead of requiring a staging upload.
func (t *BufferTemplate) WithHostVisible(visible bool) *BufferTemplate {
	t.visible = visible
	return t
}

// SamplerTemplate describes a sampler the Resource Allocator should
// create.
type SamplerTemplate struct {
	name     string
	sampling driver.Sampling
}

// NewSamplerTemplate returns a template for a sampler named name with
// the given sampling parameters.
func NewSamplerTemplate(name string, sampling driver.Sampling) *SamplerTemplate {
	return &SamplerTemplate{name: name, sampling: sampling}
}
