// Package debugimg renders density field cross-sections to images.
package debugimg

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"dcterrain/internal/density"
)

// Slice describes an axis-aligned cross-section.
type Slice struct {
	Axis   int     // Normal axis: 0 = x, 1 = y, 2 = z
	Offset float32 // Position along Axis
	Min    [2]float32
	Max    [2]float32
	Pixels int // Width and height of the image

	// Band is the distance that maps to full colour saturation.
	Band float32
}

var (
	inside  = color.RGBA{R: 70, G: 110, B: 40, A: 255}
	outside = color.RGBA{R: 60, G: 120, B: 200, A: 255}
	surface = color.RGBA{R: 250, G: 250, B: 250, A: 255}
)

// Point maps pixel (px, py) to world space. py grows downward.
func (s Slice) Point(px, py int) mgl32.Vec3 {
	u := s.Min[0] + (float32(px)+0.5)/float32(s.Pixels)*(s.Max[0]-s.Min[0])
	v := s.Max[1] - (float32(py)+0.5)/float32(s.Pixels)*(s.Max[1]-s.Min[1])
	switch s.Axis {
	case 0:
		return mgl32.Vec3{s.Offset, v, u}
	case 1:
		return mgl32.Vec3{u, s.Offset, v}
	default:
		return mgl32.Vec3{u, v, s.Offset}
	}
}

// Render samples f across the slice.
func Render(f density.Field, s Slice) *image.RGBA {
	band := s.Band
	if band <= 0 {
		band = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, s.Pixels, s.Pixels))
	for py := 0; py < s.Pixels; py++ {
		for px := 0; px < s.Pixels; px++ {
			d := f.Sample(s.Point(px, py)).Distance
			img.SetRGBA(px, py, shade(d, band))
		}
	}
	return img
}

func shade(d, band float32) color.RGBA {
	t := float32(math.Min(1, math.Abs(float64(d/band))))
	base := outside
	if d < 0 {
		base = inside
	}
	mix := func(a, b uint8) uint8 { return uint8(float32(a)*(1-t) + float32(b)*t) }
	return color.RGBA{R: mix(surface.R, base.R), G: mix(surface.G, base.G), B: mix(surface.B, base.B), A: 255}
}

var (
	faceOnce sync.Once
	faceErr  error
	labelFnt font.Face
)

func labelFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("parse font: %w", err)
			return
		}
		labelFnt, faceErr = opentype.NewFace(f, &opentype.FaceOptions{Size: 12, DPI: 72, Hinting: font.HintingFull})
	})
	return labelFnt, faceErr
}

// Label draws text in the top-left corner of img.
func Label(img draw.Image, text string) error {
	face, err := labelFace()
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(4, 4+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}

// WritePNG renders the slice with a caption and writes it to path.
func WritePNG(path string, f density.Field, s Slice) error {
	img := Render(f, s)
	axis := [3]string{"x", "y", "z"}[s.Axis]
	if err := Label(img, fmt.Sprintf("%s = %.1f", axis, s.Offset)); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create slice image: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode slice image: %w", err)
	}
	return out.Close()
}
