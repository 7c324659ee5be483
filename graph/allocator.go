package graph

import (
	"bufio"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/driftforge/frame/driver"
	"github.com/driftforge/frame/internal/ctxt"
)

const allocPrefix = "allocator: "

// Allocator creates the concrete GPU resources a Frame Graph's
// templates describe: images (from a clear value or a decoded image
// file) and buffers, resolving relative sizes against a reference
// extent that tracks the current swapchain size.
//
// Allocator is not safe for concurrent use; all calls happen on the
// render thread during graph construction and on swapchain resize.
type Allocator struct {
	reference driver.Dim3D
	pending   []pendingUpload
}

// pendingUpload is a staging buffer awaiting a Flush to copy its
// contents into the image it was decoded for.
type pendingUpload struct {
	staging driver.Buffer
	img     *ImageInstance
	extent  driver.Dim3D
}

// NewAllocator returns an Allocator whose relative-size templates
// resolve against reference — typically the current swapchain
// extent.
func NewAllocator(reference driver.Dim3D) *Allocator {
	return &Allocator{reference: reference}
}

// SetReference updates the extent relative-size templates resolve
// against, for use after a swapchain resize.
func (a *Allocator) SetReference(reference driver.Dim3D) {
	a.reference = reference
}

// CreateImage realizes t as a live ImageInstance: it resolves the
// template's size, decodes its file (if any) or records its clear
// value, and creates the backing driver.Image and default view.
func (a *Allocator) CreateImage(t *ImageTemplate) (*ImageInstance, error) {
	extent := t.resolveExtent(a.reference)
	if extent.Width <= 0 || extent.Height <= 0 {
		return nil, allocErrf("%s: zero-sized image", t.name)
	}

	format := t.format
	var pixels []byte
	if t.file != "" {
		decoded, decFmt, err := decodeImageFile(t.file)
		if err != nil {
			return nil, allocErrf("%s: %v", t.name, err)
		}
		pixels = decoded
		format = decFmt
	}

	levels := 1
	if t.mipmaps {
		levels = mipLevels(extent.Width, extent.Height)
	}

	usage := t.usage | driver.UShaderSample
	if t.depth {
		usage |= driver.UGeneric
	}

	img, err := ctxt.GPU().NewImage(format, extent, 1, levels, 1, usage)
	if err != nil {
		return nil, allocErrf("%s: NewImage: %v", t.name, err)
	}
	view, err := img.NewView(t.viewType, 0, 1, 0, levels)
	if err != nil {
		img.Destroy()
		return nil, allocErrf("%s: NewView: %v", t.name, err)
	}

	inst := &ImageInstance{
		name:   t.name,
		image:  img,
		view:   view,
		format: format,
		extent: extent,
		depth:  t.depth,
		layout: driver.LUndefined,
		access: driver.ANone,
		stage:  driver.SNone,
	}
	if t.hasClear {
		inst.hasClear = true
		if t.depth {
			inst.clear = driver.ClearValue{Depth: t.clearDepth}
		} else {
			inst.clear = driver.ClearValue{Color: t.clearColor}
		}
	}
	if pixels != nil {
		staging, err := ctxt.GPU().NewBuffer(int64(len(pixels)), true, driver.UGeneric)
		if err != nil {
			view.Destroy()
			img.Destroy()
			return nil, allocErrf("%s: staging NewBuffer: %v", t.name, err)
		}
		copy(staging.Bytes(), pixels)
		a.pending = append(a.pending, pendingUpload{staging: staging, img: inst, extent: extent})
	}
	return inst, nil
}

// CreateImageArray realizes t as count independently created image
// slots sharing the same format/size/usage, wrapped in a single
// ImageArrayInstance (§3's ImageArrayInstance: "a logical
// fixed-capacity array of image slots"). Each slot is created exactly
// as CreateImage would create a standalone image from t; callers that
// need per-slot content (e.g. a shadow-cascade atlas populated by a
// dedicated pass per slot) clear each slot's contents after creation
// by binding it individually, outside the array, the same way any
// other write target is populated.
func (a *Allocator) CreateImageArray(t *ImageTemplate, count int) (*ImageArrayInstance, error) {
	if count <= 0 {
		return nil, allocErrf("%s: image array count must be positive", t.name)
	}
	images := make([]*ImageInstance, count)
	for i := 0; i < count; i++ {
		img, err := a.CreateImage(t)
		if err != nil {
			for _, created := range images[:i] {
				created.destroy()
			}
			return nil, err
		}
		images[i] = img
	}
	return newImageArrayInstance(t.name, images, false), nil
}

// Flush records a copy from every staging buffer queued by CreateImage
// since the last Flush into cmd, inside one BeginBlit/EndBlit block,
// then releases the staging buffers. The Synchronization Manager must
// transition the affected images to LCopyDst before Flush and away
// from it afterwards; Flush itself only issues CopyBufToImg commands.
func (a *Allocator) Flush(cmd driver.CmdBuffer) {
	if len(a.pending) == 0 {
		return
	}
	cmd.BeginBlit(false)
	for _, p := range a.pending {
		cmd.CopyBufToImg(&driver.BufImgCopy{
			Buf:  p.staging,
			Img:  p.img.image,
			Size: p.extent,
		})
	}
	cmd.EndBlit()
	for _, p := range a.pending {
		p.staging.Destroy()
	}
	a.pending = a.pending[:0]
}

// CreateBuffer realizes t as a live BufferInstance.
func (a *Allocator) CreateBuffer(t *BufferTemplate) (*BufferInstance, error) {
	if t.size <= 0 {
		return nil, allocErrf("%s: zero-sized buffer", t.name)
	}
	buf, err := ctxt.GPU().NewBuffer(t.size, t.visible, t.usage)
	if err != nil {
		return nil, allocErrf("%s: NewBuffer: %v", t.name, err)
	}
	return &BufferInstance{
		name:   t.name,
		buffer: buf,
		size:   t.size,
		access: driver.ANone,
		stage:  driver.SNone,
	}, nil
}

// CreateSampler realizes t as a live SamplerInstance.
func (a *Allocator) CreateSampler(t *SamplerTemplate) (*SamplerInstance, error) {
	splr, err := ctxt.GPU().NewSampler(&t.sampling)
	if err != nil {
		return nil, allocErrf("%s: NewSampler: %v", t.name, err)
	}
	return &SamplerInstance{name: t.name, sampler: splr}, nil
}

func mipLevels(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w /= 2
		h /= 2
		n++
	}
	return n
}

// decodeImageFile reads path and returns its pixels in the format the
// channel-count rule assigns: single-channel (image.Gray) sources
// decode to R8un; everything else Go's image package can open is
// normalized to four 8-bit channels and decodes to RGBA8un (the
// standard library does not preserve a source PNG/JPEG's original
// channel count once decoded, so the 2/3-channel cases of the rule
// collapse into the 4-channel case here). Radiance .hdr files decode
// to RGBA32f via a dedicated parser below, since no example in the
// corpus imports an HDR/Radiance decoder. image/png, image/jpeg, bmp
// and tiff are registered for the standard decode path.
func decodeImageFile(path string) ([]byte, driver.PixelFmt, error) {
	if strings.HasSuffix(strings.ToLower(path), ".hdr") {
		return decodeRadianceHDR(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(out[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return out, driver.R8un, nil
	default:
		out := make([]byte, w*h*4)
		i := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, al := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				out[i] = byte(r >> 8)
				out[i+1] = byte(g >> 8)
				out[i+2] = byte(b >> 8)
				out[i+3] = byte(al >> 8)
				i += 4
			}
		}
		return out, driver.RGBA8un, nil
	}
}

// decodeRadianceHDR parses the subset of the Radiance .hdr (RGBE)
// format needed to recover a flat, uncompressed or run-length-encoded
// RGBE scanline stream and convert it to RGBA32f. It supports the
// common "new-style" RLE scanlines (the format virtually every
// Radiance/.hdr writer in the wild produces) and falls back to flat
// RGBE reads otherwise.
func decodeRadianceHDR(path string) ([]byte, driver.PixelFmt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "#?") {
		return nil, 0, fmt.Errorf(allocPrefix+"%s: not a Radiance HDR file", path)
	}
	var width, height int
	for {
		line, err = r.ReadString('\n')
		if err != nil {
			return nil, 0, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
	}
	dims, err := r.ReadString('\n')
	if err != nil {
		return nil, 0, err
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(dims), "-Y %d +X %d", &height, &width); err != nil {
		return nil, 0, fmt.Errorf(allocPrefix+"%s: unsupported resolution line %q", path, dims)
	}
	if width <= 0 || height <= 0 {
		return nil, 0, fmt.Errorf(allocPrefix+"%s: invalid dimensions", path)
	}

	out := make([]byte, width*height*4*4) // RGBA32f
	scan := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readHDRScanline(r, scan, width); err != nil {
			return nil, 0, err
		}
		for x := 0; x < width; x++ {
			rr, g, b, e := scan[x*4], scan[x*4+1], scan[x*4+2], scan[x*4+3]
			fr, fg, fb := rgbeToFloat(rr, g, b, e)
			off := (y*width + x) * 16
			putFloat32(out[off:], fr)
			putFloat32(out[off+4:], fg)
			putFloat32(out[off+8:], fb)
			putFloat32(out[off+12:], 1)
		}
	}
	return out, driver.RGBA32f, nil
}

func readHDRScanline(r *bufio.Reader, scan []byte, width int) error {
	hdr := make([]byte, 4)
	if _, err := fullRead(r, hdr); err != nil {
		return err
	}
	if hdr[0] != 2 || hdr[1] != 2 || int(hdr[2])<<8|int(hdr[3]) != width || width < 8 || width > 0x7fff {
		// Flat, non-RLE scanline: hdr is the first pixel.
		copy(scan[0:4], hdr)
		if _, err := fullRead(r, scan[4:width*4]); err != nil {
			return err
		}
		return nil
	}
	for ch := 0; ch < 4; ch++ {
		x := 0
		for x < width {
			n, err := r.ReadByte()
			if err != nil {
				return err
			}
			if n > 128 {
				count := int(n) - 128
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				for i := 0; i < count; i++ {
					scan[(x+i)*4+ch] = v
				}
				x += count
			} else {
				count := int(n)
				buf := make([]byte, count)
				if _, err := fullRead(r, buf); err != nil {
					return err
				}
				for i := 0; i < count; i++ {
					scan[(x+i)*4+ch] = buf[i]
				}
				x += count
			}
		}
	}
	return nil
}

func fullRead(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		k, err := r.Read(buf[n:])
		n += k
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	scale := ldexp(1, int(e)-(128+8))
	return float32(float64(r) * scale), float32(float64(g) * scale), float32(float64(b) * scale)
}

func ldexp(frac float64, exp int) float64 {
	for exp > 0 {
		frac *= 2
		exp--
	}
	for exp < 0 {
		frac /= 2
		exp++
	}
	return frac
}

func putFloat32(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}
