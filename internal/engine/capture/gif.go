package capture

import (
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"math"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// GIFOptions controls animation encoding.
type GIFOptions struct {
	// Workers bounds concurrent frame quantization. Zero means 2.
	Workers int
	// MaxWidth downscales wider frames, keeping aspect. Zero keeps size.
	MaxWidth int
	// Dither enables Floyd-Steinberg error diffusion.
	Dither bool
	// Transparent keeps background pixels transparent; otherwise frames
	// are flattened onto black.
	Transparent bool
}

// DefaultWorkers is the quantization pool size when none is configured.
const DefaultWorkers = 2

// alphaThreshold splits partially covered pixels into opaque or clear.
const alphaThreshold = 128

// transparentIndex is the palette slot reserved for clear pixels.
const transparentIndex = 0

// gifPalette is the web-safe cube plus a transparent entry at index 0.
var gifPalette = func() color.Palette {
	p := make(color.Palette, 0, len(palette.WebSafe)+1)
	p = append(p, color.RGBA{})
	return append(p, palette.WebSafe...)
}()

// EncodeGIF quantizes frames in parallel and assembles a looping
// animation. Frames keep their order regardless of which worker finishes
// first. The canvas size comes from the first frame; later frames of a
// different size are fitted onto it.
func EncodeGIF(ctx context.Context, frames []Frame, opts GIFOptions) (*gif.GIF, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var size image.Point
	if len(frames) > 0 {
		size = frameSize(frames[0].Image.Bounds(), opts.MaxWidth)
	}

	images := make([]*image.Paletted, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			images[i] = quantize(f.Image, size, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	anim := &gif.GIF{
		Image:     images,
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: 0,
	}
	for i, f := range frames {
		anim.Delay[i] = centiseconds(f.Delay)
		// Clear each frame before the next so transparent areas do not
		// show earlier frames through.
		anim.Disposal[i] = gif.DisposalBackground
	}
	if len(images) > 0 {
		anim.Config = image.Config{ColorModel: gifPalette, Width: size.X, Height: size.Y}
		anim.BackgroundIndex = transparentIndex
	}
	return anim, nil
}

// quantize fits, binarizes alpha and maps one frame onto the palette.
func quantize(src *image.RGBA, size image.Point, opts GIFOptions) *image.Paletted {
	img := fitTo(src, size)
	flattenAlpha(img, opts.Transparent)

	dst := image.NewPaletted(img.Bounds(), gifPalette)
	if opts.Dither {
		draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, img.Bounds().Min)
	} else {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	if opts.Transparent {
		// Dithering can push error into clear pixels; pin them back.
		for y := 0; y < img.Rect.Dy(); y++ {
			for x := 0; x < img.Rect.Dx(); x++ {
				if img.Pix[y*img.Stride+x*4+3] == 0 {
					dst.SetColorIndex(dst.Rect.Min.X+x, dst.Rect.Min.Y+y, transparentIndex)
				}
			}
		}
	}
	return dst
}

// frameSize is the size a frame with bounds b is stored at: no wider than
// maxWidth, aspect kept, at least one pixel high.
func frameSize(b image.Rectangle, maxWidth int) image.Point {
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return image.Pt(w, h)
	}
	h = int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	return image.Pt(maxWidth, max(h, 1))
}

// fitTo returns a copy of src on a clear canvas of exactly size. A source
// with another aspect is scaled to fit and centered; the border stays clear.
func fitTo(src *image.RGBA, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	b := src.Bounds()
	if b.Size() == size {
		draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
		return dst
	}
	if b.Empty() || size.X <= 0 || size.Y <= 0 {
		return dst
	}

	scale := min(float64(size.X)/float64(b.Dx()), float64(size.Y)/float64(b.Dy()))
	w := min(max(int(math.Round(float64(b.Dx())*scale)), 1), size.X)
	h := min(max(int(math.Round(float64(b.Dy())*scale)), 1), size.Y)
	off := image.Pt((size.X-w)/2, (size.Y-h)/2)
	draw.ApproxBiLinear.Scale(dst, image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}, src, b, draw.Src, nil)
	return dst
}

// flattenAlpha makes every pixel either fully opaque or fully clear. Pixels
// are premultiplied, so opaque ones are the color composited over black.
func flattenAlpha(img *image.RGBA, keepTransparent bool) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		if keepTransparent && a < alphaThreshold {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
			continue
		}
		img.Pix[i+3] = 0xff
	}
}

// centiseconds converts a frame delay to GIF units. Viewers treat delays
// under 2 as 10, so 2 is the floor.
func centiseconds(d time.Duration) int {
	cs := int(math.Round(float64(d) / float64(10*time.Millisecond)))
	if cs < 2 {
		cs = 2
	}
	return cs
}
