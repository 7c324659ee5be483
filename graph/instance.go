package graph

import (
	"github.com/driftforge/frame/driver"
)

// Usage classifies how a pass uses a resource binding: to read from it
// or to write (including render-target attachments, which always
// count as writes).
type Usage int

// Resource usages.
const (
	Read Usage = iota
	Write
)

// ResourceInstance is the common interface satisfied by every live
// GPU object the Registry owns. Only the three kinds that participate
// in barrier synchronization (ImageInstance, ImageArrayInstance,
// BufferInstance) additionally implement Synchronizable; a
// SamplerInstance is immutable after creation and carries no
// synchronization state.
type ResourceInstance interface {
	// destroy releases the underlying driver resources, unless the
	// instance is EXTERNAL (owned by another subsystem).
	destroy()
}

// syncCtx carries everything the Synchronization Manager's visitor
// needs to classify a binding: its usage, whether it is an attachment
// binding, the owning pass's bind point, and the shader stages that
// will observe the resource.
type syncCtx struct {
	usage      Usage
	attachment bool
	bindPoint  BindPoint
	stages     driver.Stage
}

// syncVisitor is implemented by the Synchronization Manager. Every
// Synchronizable instance dispatches to exactly one of these methods
// from its accept method, giving the manager a polymorphic view over
// the image/buffer variants without a type switch at the call site.
type syncVisitor interface {
	visitImage(img *ImageInstance, ctx syncCtx)
	visitBuffer(buf *BufferInstance, ctx syncCtx)
}

// Synchronizable is implemented by the resource instance kinds the
// Synchronization Manager can compute barriers for.
type Synchronizable interface {
	ResourceInstance
	accept(v syncVisitor, ctx syncCtx)
}

// ImageInstance is a live GPU image: an image handle, a default view,
// and the current (layout, access, stage) triple that describes the
// state the GPU will observe the next time a command references it.
//
// Per the engine's concurrency model, the Synchronization Manager is
// the only writer of layout/access/stage during graph execution;
// everything else must treat these as read-only.
type ImageInstance struct {
	name     string
	image    driver.Image
	view     driver.ImageView
	format   driver.PixelFmt
	extent   driver.Dim3D
	depth    bool
	external bool

	clear    driver.ClearValue
	hasClear bool

	layout driver.Layout
	access driver.Access
	stage  driver.Sync
}

// Name returns the instance's human-readable name, used in
// diagnostics.
func (i *ImageInstance) Name() string { return i.name }

// Image returns the underlying driver.Image.
func (i *ImageInstance) Image() driver.Image { return i.image }

// View returns the instance's default driver.ImageView.
func (i *ImageInstance) View() driver.ImageView { return i.view }

// Format returns the instance's pixel format.
func (i *ImageInstance) Format() driver.PixelFmt { return i.format }

// Extent returns the instance's size.
func (i *ImageInstance) Extent() driver.Dim3D { return i.extent }

// Depth reports whether the instance holds depth/stencil data.
func (i *ImageInstance) Depth() bool { return i.depth }

// ClearValue returns the clear value a pass should use when this
// instance is bound as a freshly-cleared attachment, and whether the
// template that created it requested one.
func (i *ImageInstance) ClearValue() (driver.ClearValue, bool) { return i.clear, i.hasClear }

// Layout returns the instance's current driver.Layout, as last
// written by the Synchronization Manager.
func (i *ImageInstance) Layout() driver.Layout { return i.layout }

// Access returns the instance's current driver.Access scope.
func (i *ImageInstance) Access() driver.Access { return i.access }

// Stage returns the instance's current driver.Sync scope.
func (i *ImageInstance) Stage() driver.Sync { return i.stage }

func (i *ImageInstance) accept(v syncVisitor, ctx syncCtx) { v.visitImage(i, ctx) }

func (i *ImageInstance) destroy() {
	if i.external {
		return
	}
	if i.view != nil {
		i.view.Destroy()
	}
	if i.image != nil {
		i.image.Destroy()
	}
}

// ImageArrayInstance is a logical fixed-capacity array of image
// slots. Allocator.CreateImageArray fills every slot from one
// ImageTemplate; there is no callback-based way to populate the
// slots. The Synchronization Manager's visitor
// recurses into it, producing one barrier per contained image; all
// share the usage and shader-stage derivation of the array binding
// itself.
type ImageArrayInstance struct {
	name     string
	images   []*ImageInstance
	external bool
}

// newImageArrayInstance wraps images (already-created slots) as a
// single fixed-capacity ImageArrayInstance named name. external marks
// every contained image as owned by another subsystem, so destroy is
// a no-op for the array as a whole.
func newImageArrayInstance(name string, images []*ImageInstance, external bool) *ImageArrayInstance {
	return &ImageArrayInstance{name: name, images: images, external: external}
}

// Name returns the array's human-readable name.
func (a *ImageArrayInstance) Name() string { return a.name }

// Len returns the array's capacity.
func (a *ImageArrayInstance) Len() int { return len(a.images) }

// At returns the ImageInstance at the given slot.
func (a *ImageArrayInstance) At(i int) *ImageInstance { return a.images[i] }

func (a *ImageArrayInstance) accept(v syncVisitor, ctx syncCtx) {
	for _, img := range a.images {
		img.accept(v, ctx)
	}
}

func (a *ImageArrayInstance) destroy() {
	if a.external {
		return
	}
	for _, img := range a.images {
		img.destroy()
	}
}

// BufferInstance is a live GPU buffer together with the current
// (access, stage) it is known to be in.
type BufferInstance struct {
	name     string
	buffer   driver.Buffer
	size     int64
	external bool

	access driver.Access
	stage  driver.Sync
}

// Name returns the instance's human-readable name.
func (b *BufferInstance) Name() string { return b.name }

// Buffer returns the underlying driver.Buffer.
func (b *BufferInstance) Buffer() driver.Buffer { return b.buffer }

// Size returns the buffer's requested size in bytes.
func (b *BufferInstance) Size() int64 { return b.size }

// Access returns the instance's current driver.Access scope.
func (b *BufferInstance) Access() driver.Access { return b.access }

// Stage returns the instance's current driver.Sync scope.
func (b *BufferInstance) Stage() driver.Sync { return b.stage }

func (b *BufferInstance) accept(v syncVisitor, ctx syncCtx) { v.visitBuffer(b, ctx) }

func (b *BufferInstance) destroy() {
	if !b.external && b.buffer != nil {
		b.buffer.Destroy()
	}
}

// SamplerInstance wraps an immutable driver.Sampler. It carries no
// synchronization state and does not implement Synchronizable:
// samplers are never transitioned or barriered.
type SamplerInstance struct {
	name     string
	sampler  driver.Sampler
	external bool
}

// Name returns the sampler's human-readable name.
func (s *SamplerInstance) Name() string { return s.name }

// Sampler returns the underlying driver.Sampler.
func (s *SamplerInstance) Sampler() driver.Sampler { return s.sampler }

func (s *SamplerInstance) destroy() {
	if !s.external && s.sampler != nil {
		s.sampler.Destroy()
	}
}
