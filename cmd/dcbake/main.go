// Command dcbake streams terrain along a straight flight path without a
// window and writes frame statistics, meshes and density slices.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"dcterrain/internal/config"
	"dcterrain/internal/csg"
	"dcterrain/internal/debugimg"
	"dcterrain/internal/meshing"
	"dcterrain/internal/octree"
	"dcterrain/internal/profiling"
	"dcterrain/internal/telemetry"
	"dcterrain/internal/world"
	"dcterrain/pkg/objfile"
)

type options struct {
	configPath string
	outputDir  string
	frames     int
	speed      float64
	height     float64
	writeOBJ   bool
	sliceY     float64
	slicePx    int
	dumpConfig bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.StringVar(&o.outputDir, "output-dir", "bake", "Directory for stats, meshes and images")
	flag.IntVar(&o.frames, "frames", 600, "Frames to simulate")
	flag.Float64Var(&o.speed, "speed", 2, "Viewer speed along +X in world units per frame")
	flag.Float64Var(&o.height, "height", 40, "Viewer height")
	flag.BoolVar(&o.writeOBJ, "obj", true, "Export loaded chunk meshes as terrain.obj")
	flag.Float64Var(&o.sliceY, "slice-y", 0, "Height of the density slice image")
	flag.IntVar(&o.slicePx, "slice-px", 512, "Slice image size in pixels (0 disables)")
	flag.BoolVar(&o.dumpConfig, "dump-config", true, "Write the effective config next to the outputs")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-done
		log.Println("dcbake: bye")
	})
	closer.Checked(func() error {
		defer close(done)
		return run(ctx, o)
	}, true)
	closer.Close()
}

func run(ctx context.Context, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	cfg.Apply()

	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if o.dumpConfig {
		if err := cfg.WriteYAML(filepath.Join(o.outputDir, "config.yaml")); err != nil {
			return err
		}
	}

	statsPath := cfg.Telemetry.StatsPath
	if statsPath == "" {
		statsPath = filepath.Join(o.outputDir, "frames.csv")
	}
	out, err := telemetry.Create(statsPath)
	if err != nil {
		return err
	}
	defer out.Close()
	rec := telemetry.NewRecorder(out, cfg.Telemetry.SlowFrameMs)

	base, err := cfg.Field()
	if err != nil {
		return err
	}
	backend, shutdown := cfg.Backend(base)
	defer shutdown()

	terrain := world.NewTerrain(cfg.TerrainOptions(), backend, world.NopConsumer{})
	for _, op := range cfg.Edits {
		terrain.AddOperation(op.Position, op.Radius, op.Shape, op.Kind)
	}
	log.Printf("dcbake: %d frames, grid %d, backend %s, %d edits", o.frames, cfg.Mesher.GridSize, cfg.Mesher.Backend, len(cfg.Edits))

	pos := mgl32.Vec3{0, float32(o.height), 0}
	for frame := 0; frame < o.frames; frame++ {
		if ctx.Err() != nil {
			log.Printf("dcbake: interrupted at frame %d", frame)
			break
		}
		profiling.ResetFrame()
		start := time.Now()
		vps := []octree.Viewpoint{{Position: pos, Importance: 1}}
		if err := terrain.Tick(ctx, vps); err != nil {
			if errors.Is(err, meshing.ErrCapacityExceeded) {
				return fmt.Errorf("mesher.capacity %d is too small: %w", cfg.Mesher.Capacity, err)
			}
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		if err := rec.Record(telemetry.Capture(terrain, time.Since(start))); err != nil {
			return err
		}
		pos = pos.Add(mgl32.Vec3{float32(o.speed), 0, 0})
	}

	log.Printf("dcbake: %s slow=%d", rec.Summary(), rec.SlowFrames())
	log.Printf("dcbake: hottest %s", profiling.TopN(5))

	if o.writeOBJ {
		if err := writeOBJ(filepath.Join(o.outputDir, "terrain.obj"), terrain.Chunks()); err != nil {
			return err
		}
	}
	if o.slicePx > 0 {
		field := csg.Field{Base: base, Ops: cfg.Edits}
		slice := debugimg.Slice{
			Axis:   1,
			Offset: float32(o.sliceY),
			Min:    [2]float32{pos.X() - 256, pos.Z() - 256},
			Max:    [2]float32{pos.X() + 256, pos.Z() + 256},
			Pixels: o.slicePx,
			Band:   16,
		}
		if err := debugimg.WritePNG(filepath.Join(o.outputDir, "slice.png"), field, slice); err != nil {
			return err
		}
	}
	return nil
}

func writeOBJ(path string, chunks []*world.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	w := objfile.NewWriter(f)
	for _, c := range chunks {
		if !c.Active() {
			continue
		}
		name := fmt.Sprintf("chunk_%d_%d_%d_s%d", c.GridPosition()[0], c.GridPosition()[1], c.GridPosition()[2], c.Size())
		if err := w.WriteMesh(name, c.Mesh(), c.WorldPosition()); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	log.Printf("dcbake: wrote %d chunks to %s", w.Objects(), path)
	return f.Close()
}
