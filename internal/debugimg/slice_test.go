package debugimg

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
)

func TestSlicePoint(t *testing.T) {
	s := Slice{Axis: 1, Offset: 3, Min: [2]float32{-10, -10}, Max: [2]float32{10, 10}, Pixels: 20}
	p := s.Point(0, 0)
	if !p.ApproxEqual(mgl32.Vec3{-9.5, 3, 9.5}) {
		t.Errorf("Point(0,0) = %v", p)
	}
	p = s.Point(19, 19)
	if !p.ApproxEqual(mgl32.Vec3{9.5, 3, -9.5}) {
		t.Errorf("Point(19,19) = %v", p)
	}
}

func TestRenderSphereSlice(t *testing.T) {
	f := density.Sphere{Radius: 5}
	s := Slice{Axis: 2, Min: [2]float32{-10, -10}, Max: [2]float32{10, 10}, Pixels: 40, Band: 2}
	img := Render(f, s)
	centre := img.RGBAAt(20, 20)
	corner := img.RGBAAt(0, 0)
	if centre != inside {
		t.Errorf("centre = %v, want inside colour", centre)
	}
	if corner != outside {
		t.Errorf("corner = %v, want outside colour", corner)
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slice.png")
	s := Slice{Axis: 0, Min: [2]float32{-8, -8}, Max: [2]float32{8, 8}, Pixels: 64, Band: 4}
	if err := WritePNG(path, density.Plane{Height: 0}, s); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}
