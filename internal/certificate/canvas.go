package certificate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // templates may be PNG
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ImageCanvas is a drawable certificate page.
type ImageCanvas interface {
	// DrawText paints text with the left end of its baseline at the given pixel.
	DrawText(text string, at image.Point)
	// Encode writes the canvas as a JPEG.
	Encode(w io.Writer) error
}

// rgbaCanvas draws stroked text onto a private RGBA copy of the template.
type rgbaCanvas struct {
	img     *image.RGBA
	face    font.Face
	color   image.Image
	offsets []image.Point
	quality int
}

// newCanvas decodes template into a fresh RGBA image.
// face must not be shared with another canvas.
func newCanvas(template []byte, face font.Face, l Layout) (*rgbaCanvas, error) {
	src, _, err := image.Decode(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	return &rgbaCanvas{
		img:     dst,
		face:    face,
		color:   image.NewUniform(l.Color),
		offsets: strokeOffsets(l.Stroke),
		quality: l.Quality,
	}, nil
}

func (c *rgbaCanvas) DrawText(text string, at image.Point) {
	d := &font.Drawer{Dst: c.img, Src: c.color, Face: c.face}
	for _, off := range c.offsets {
		d.Dot = fixed.Point26_6{
			X: fixed.I(at.X + off.X),
			Y: fixed.I(at.Y + off.Y),
		}
		d.DrawString(text)
	}
}

func (c *rgbaCanvas) Encode(w io.Writer) error {
	return jpeg.Encode(w, c.img, &jpeg.Options{Quality: c.quality})
}

// strokeOffsets returns every integer offset within radius r, which drawn in
// the fill colour approximates an outline r pixels thick.
func strokeOffsets(r int) []image.Point {
	if r <= 0 {
		return []image.Point{{}}
	}
	var pts []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				pts = append(pts, image.Pt(dx, dy))
			}
		}
	}
	return pts
}

// newFace builds a face at the layout size. sfnt.Font is shared; the face is not.
func newFace(f *sfnt.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

var _ ImageCanvas = (*rgbaCanvas)(nil)

// DefaultColor is the overlay red.
var DefaultColor = color.RGBA{R: 250, A: 255}
