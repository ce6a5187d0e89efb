package hud

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Printable ASCII is baked into the atlas; anything else draws as '?'.
const (
	firstGlyph   = 32
	lastGlyph    = 126
	atlasCols    = 16
	fallbackRune = '?'
)

// Font is a fixed-width bitmap font baked into an alpha atlas.
type Font struct {
	Atlas          *image.Alpha
	GlyphW, GlyphH int
}

// NewFont rasterizes basicfont's 7x13 face.
func NewFont() *Font {
	return newFontFromFace(basicfont.Face7x13, 7, 13)
}

func newFontFromFace(face font.Face, gw, gh int) *Font {
	count := lastGlyph - firstGlyph + 1
	rows := (count + atlasCols - 1) / atlasCols
	atlas := image.NewAlpha(image.Rect(0, 0, atlasCols*gw, rows*gh))

	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: atlas, Src: image.Opaque, Face: face}
	for r := firstGlyph; r <= lastGlyph; r++ {
		col, row := cell(rune(r))
		d.Dot = fixed.P(col*gw, row*gh+ascent)
		d.DrawString(string(rune(r)))
	}
	return &Font{Atlas: atlas, GlyphW: gw, GlyphH: gh}
}

func cell(r rune) (col, row int) {
	if r < firstGlyph || r > lastGlyph {
		r = fallbackRune
	}
	i := int(r - firstGlyph)
	return i % atlasCols, i / atlasCols
}

// GlyphUV returns the atlas texture coordinates of r.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	col, row := cell(r)
	b := f.Atlas.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	u0 = float32(col*f.GlyphW) / w
	v0 = float32(row*f.GlyphH) / h
	u1 = u0 + float32(f.GlyphW)/w
	v1 = v0 + float32(f.GlyphH)/h
	return
}

// MeasureText returns the size of the widest line and the total height.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, cols, maxCols := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cols = 0
			continue
		}
		cols++
		maxCols = max(maxCols, cols)
	}
	return float32(maxCols*f.GlyphW) * scale, float32(lines*f.GlyphH) * scale
}

// rgbaAtlas expands the alpha atlas into white RGBA texels for upload.
func (f *Font) rgbaAtlas() *image.RGBA {
	b := f.Atlas.Bounds()
	img := image.NewRGBA(b)
	draw.DrawMask(img, b, image.White, image.Point{}, f.Atlas, b.Min, draw.Src)
	return img
}
