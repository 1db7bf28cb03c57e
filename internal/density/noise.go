package density

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

// NoiseParams tunes NoiseTerrain.
type NoiseParams struct {
	Seed             int64
	SurfaceLevel     float32 // world Y of the mean surface
	SurfaceScale     float32 // horizontal noise frequency
	SurfaceMagnitude float32 // height amplitude in world units
	WarpScale        float32
	WarpMagnitude    float32
	CaveScale        float32
	CaveMagnitude    float32 // 0 disables caves
	Octaves          int
	Persistence      float32
	Lacunarity       float32
	DerivativeStep   float32
}

// DefaultNoiseParams returns rolling hills with shallow caves.
func DefaultNoiseParams(seed int64) NoiseParams {
	return NoiseParams{
		Seed:             seed,
		SurfaceLevel:     0,
		SurfaceScale:     1.0 / 256.0,
		SurfaceMagnitude: 48,
		WarpScale:        1.0 / 512.0,
		WarpMagnitude:    32,
		CaveScale:        1.0 / 48.0,
		CaveMagnitude:    12,
		Octaves:          4,
		Persistence:      0.5,
		Lacunarity:       2.0,
		DerivativeStep:   0.05,
	}
}

// NoiseTerrain is a height surface displaced by fractal simplex noise, with
// optional 3D cave carving. It is not an exact distance field, only a
// well-behaved implicit one.
type NoiseTerrain struct {
	params  NoiseParams
	surface opensimplex.Noise
	warp    opensimplex.Noise
	caves   opensimplex.Noise
}

// NewNoiseTerrain creates a noise terrain. Seeds of the three noise sources
// are derived from params.Seed so one seed reproduces the whole field.
func NewNoiseTerrain(params NoiseParams) *NoiseTerrain {
	if params.Octaves < 1 {
		params.Octaves = 1
	}
	if params.DerivativeStep <= 0 {
		params.DerivativeStep = 0.05
	}
	return &NoiseTerrain{
		params:  params,
		surface: opensimplex.New(params.Seed),
		warp:    opensimplex.New(params.Seed ^ 0x5bd1e995),
		caves:   opensimplex.New(params.Seed ^ 0x27d4eb2f),
	}
}

// Params returns the parameters the terrain was built with.
func (t *NoiseTerrain) Params() NoiseParams {
	return t.params
}

// Sample implements Field.
func (t *NoiseTerrain) Sample(p mgl32.Vec3) IsoSample {
	return IsoSample{
		Distance: t.Distance(p),
		Normal:   Gradient(t.Distance, p, t.params.DerivativeStep),
	}
}

// Distance evaluates the scalar field only.
func (t *NoiseTerrain) Distance(p mgl32.Vec3) float32 {
	pr := t.params
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])

	if pr.WarpMagnitude != 0 {
		ws := float64(pr.WarpScale)
		x += float64(pr.WarpMagnitude) * t.warp.Eval2(x*ws, z*ws)
		z += float64(pr.WarpMagnitude) * t.warp.Eval2(z*ws+31.7, x*ws-11.3)
	}

	height := float64(pr.SurfaceMagnitude) * t.fbm2(x*float64(pr.SurfaceScale), z*float64(pr.SurfaceScale))
	d := y - float64(pr.SurfaceLevel) - height

	if pr.CaveMagnitude > 0 {
		cs := float64(pr.CaveScale)
		cave := t.caves.Eval3(x*cs, y*cs, z*cs)
		// Caves only open where the noise peaks, leaving most rock solid.
		if cave > 0.4 {
			d = max(d, float64(pr.CaveMagnitude)*(cave-0.4))
		}
	}
	return float32(d)
}

// fbm2 sums octaves of 2D simplex noise normalized to roughly [-1, 1].
func (t *NoiseTerrain) fbm2(x, z float64) float64 {
	pr := t.params
	sum, amp, freq, norm := 0.0, 1.0, 1.0, 0.0
	for i := 0; i < pr.Octaves; i++ {
		sum += amp * t.surface.Eval2(x*freq, z*freq)
		norm += amp
		amp *= float64(pr.Persistence)
		freq *= float64(pr.Lacunarity)
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
