// Package config provides configuration loading and runtime settings.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"dcterrain/internal/csg"
	"dcterrain/internal/density"
	"dcterrain/internal/meshing"
	"dcterrain/internal/octree"
	"dcterrain/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all terrain configuration parameters.
type Config struct {
	Mesher    MesherConfig    `yaml:"mesher"`
	Octree    OctreeConfig    `yaml:"octree"`
	Streamer  StreamerConfig  `yaml:"streamer"`
	CSG       CSGConfig       `yaml:"csg"`
	Density   DensityConfig   `yaml:"density"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Edits are applied once at startup, in order.
	Edits []csg.Operation `yaml:"edits"`
}

// MesherConfig holds dual contouring parameters.
type MesherConfig struct {
	GridSize          int     `yaml:"grid_size"`           // Samples per chunk axis
	CenterBias        float32 `yaml:"center_bias"`         // Weight of the pull toward the cell centre
	MaxCornerDistance float32 `yaml:"max_corner_distance"` // In cells; farther corners are ignored
	Clamp             bool    `yaml:"clamp"`
	ClampRange        float32 `yaml:"clamp_range"` // Cells a clamped vertex may leave its cell by
	Capacity          int     `yaml:"capacity"`    // Largest grid buffers are sized for (0 = grid_size)
	Backend           string  `yaml:"backend"`     // cpu or parallel
	Workers           int     `yaml:"workers"`     // Parallel backend goroutines
}

// OctreeConfig holds LOD octree parameters.
type OctreeConfig struct {
	InitialWorldSize int    `yaml:"initial_world_size"`
	MinNodeSize      int    `yaml:"min_node_size"`
	Center           [3]int `yaml:"center"`
}

// StreamerConfig holds chunk streaming parameters.
type StreamerConfig struct {
	ChunksPerFrame  int `yaml:"chunks_per_frame"`
	UpdateFrequency int `yaml:"update_frequency"` // Frames between octree evaluations
	FadeFrames      int `yaml:"fade_frames"`
}

// CSGConfig holds edit bucketing parameters.
type CSGConfig struct {
	PerLevelRadius float32 `yaml:"per_level_radius"` // Radius an edit needs per extra LOD level
	OperationLimit int     `yaml:"operation_limit"`  // Operations folded into one remesh
}

// SphereConfig describes an analytic sphere field.
type SphereConfig struct {
	Center [3]float32 `yaml:"center"`
	Radius float32    `yaml:"radius"`
}

// SolidConfig describes an sdfx primitive used as the whole field.
type SolidConfig struct {
	Shape  string     `yaml:"shape"` // box, cylinder or sphere
	Size   [3]float32 `yaml:"size"`
	Round  float32    `yaml:"round"`
	Center [3]float32 `yaml:"center"`
}

// DensityConfig selects and tunes the base field.
type DensityConfig struct {
	Kind             string       `yaml:"kind"` // noise, sphere or solid
	Seed             int64        `yaml:"seed"`
	SurfaceLevel     float32      `yaml:"surface_level"`
	SurfaceScale     float32      `yaml:"surface_scale"`
	SurfaceMagnitude float32      `yaml:"surface_magnitude"`
	WarpScale        float32      `yaml:"warp_scale"`
	WarpMagnitude    float32      `yaml:"warp_magnitude"`
	CaveScale        float32      `yaml:"cave_scale"`
	CaveMagnitude    float32      `yaml:"cave_magnitude"`
	Octaves          int          `yaml:"octaves"`
	Persistence      float32      `yaml:"persistence"`
	Lacunarity       float32      `yaml:"lacunarity"`
	DerivativeStep   float32      `yaml:"derivative_step"`
	Sphere           SphereConfig `yaml:"sphere"`
	Solid            SolidConfig  `yaml:"solid"`
}

// TelemetryConfig holds stats output parameters.
type TelemetryConfig struct {
	StatsPath   string  `yaml:"stats_path"`    // Per-frame CSV, empty disables
	SlowFrameMs float64 `yaml:"slow_frame_ms"` // Frames slower than this are logged
}

// Load reads the embedded defaults, overlays path if given and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fixes recoverable settings, logging each change, and rejects the
// rest.
func (c *Config) Validate() error {
	m := &c.Mesher
	if m.GridSize < 3 {
		return fmt.Errorf("%w: mesher.grid_size %d, need at least 3", ErrInvalid, m.GridSize)
	}
	if m.Capacity == 0 {
		m.Capacity = m.GridSize
	}
	if m.Capacity < m.GridSize {
		return fmt.Errorf("%w: mesher.capacity %d is smaller than grid_size %d", ErrInvalid, m.Capacity, m.GridSize)
	}
	switch m.Backend {
	case "", "cpu":
		m.Backend = "cpu"
	case "parallel":
		if m.Workers < 1 {
			m.Workers = 1
		}
	default:
		return fmt.Errorf("%w: mesher.backend %q", ErrInvalid, m.Backend)
	}

	o := &c.Octree
	if o.InitialWorldSize < 4 {
		return fmt.Errorf("%w: octree.initial_world_size %d, need at least 4", ErrInvalid, o.InitialWorldSize)
	}
	if o.MinNodeSize > o.InitialWorldSize {
		log.Printf("config: octree.min_node_size %d is larger than initial_world_size, adjusted to %d", o.MinNodeSize, o.InitialWorldSize)
		o.MinNodeSize = o.InitialWorldSize
	}
	if o.MinNodeSize < 2 {
		o.MinNodeSize = 2
	}

	s := &c.Streamer
	s.ChunksPerFrame = clampChunksPerFrame(s.ChunksPerFrame)
	if s.UpdateFrequency < 1 {
		s.UpdateFrequency = 1
	}
	if s.FadeFrames < 0 {
		s.FadeFrames = 0
	}

	if c.CSG.OperationLimit < 1 {
		c.CSG.OperationLimit = csg.DefaultOperationLimit
	}
	if c.CSG.PerLevelRadius <= 0 {
		return fmt.Errorf("%w: csg.per_level_radius must be positive", ErrInvalid)
	}

	switch c.Density.Kind {
	case "noise", "sphere":
	case "solid":
		if _, err := c.Field(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		return fmt.Errorf("%w: density.kind %q", ErrInvalid, c.Density.Kind)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// MesherParams returns the per-cell tunables.
func (c *Config) MesherParams() meshing.Params {
	return meshing.Params{
		CenterBias:        c.Mesher.CenterBias,
		MaxCornerDistance: c.Mesher.MaxCornerDistance,
		Clamp:             c.Mesher.Clamp,
		ClampRange:        c.Mesher.ClampRange,
	}
}

// Field builds the base density field.
func (c *Config) Field() (density.Field, error) {
	d := c.Density
	switch d.Kind {
	case "sphere":
		return density.Sphere{Center: mgl32.Vec3(d.Sphere.Center), Radius: d.Sphere.Radius}, nil
	case "solid":
		return density.NewSolid(d.Solid.Shape, mgl32.Vec3(d.Solid.Size), d.Solid.Round, mgl32.Vec3(d.Solid.Center), d.DerivativeStep)
	}
	return density.NewNoiseTerrain(density.NoiseParams{
		Seed:             d.Seed,
		SurfaceLevel:     d.SurfaceLevel,
		SurfaceScale:     d.SurfaceScale,
		SurfaceMagnitude: d.SurfaceMagnitude,
		WarpScale:        d.WarpScale,
		WarpMagnitude:    d.WarpMagnitude,
		CaveScale:        d.CaveScale,
		CaveMagnitude:    d.CaveMagnitude,
		Octaves:          d.Octaves,
		Persistence:      d.Persistence,
		Lacunarity:       d.Lacunarity,
		DerivativeStep:   d.DerivativeStep,
	}), nil
}

// Backend builds the configured compute backend for base. The returned
// function releases its resources.
func (c *Config) Backend(base density.Field) (meshing.Backend, func()) {
	if c.Mesher.Backend == "parallel" {
		b := meshing.NewParallelBackend(base, c.MesherParams(), c.Mesher.Capacity, c.Mesher.Workers)
		return b, b.Shutdown
	}
	return meshing.NewCPUBackend(base, c.MesherParams(), c.Mesher.Capacity), func() {}
}

// TerrainOptions returns the world options. The chunk budget is read from
// the runtime settings every frame.
func (c *Config) TerrainOptions() world.Options {
	return world.Options{
		GridSize:        c.Mesher.GridSize,
		WorldCenter:     octree.Coord(c.Octree.Center),
		WorldSize:       c.Octree.InitialWorldSize,
		MinNodeSize:     c.Octree.MinNodeSize,
		UpdateFrequency: c.Streamer.UpdateFrequency,
		ChunksPerFrame:  GetChunksPerFrame,
		FadeFrames:      c.Streamer.FadeFrames,
		PerLevelRadius:  c.CSG.PerLevelRadius,
		OperationLimit:  c.CSG.OperationLimit,
	}
}
