package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"dcterrain/internal/config"
	"dcterrain/internal/csg"
	"dcterrain/internal/graphics"
	"dcterrain/internal/octree"
	"dcterrain/internal/profiling"
	"dcterrain/internal/telemetry"
	"dcterrain/internal/world"
)

type viewer struct {
	window   *glfw.Window
	camera   *graphics.Camera
	terrain  *world.Terrain
	renderer *graphics.TerrainRenderer
	cfg      *config.Config
	paused   bool

	// Base field plus every edit so far, for picking
	field csg.Field
}

func (v *viewer) addOperation(op csg.Operation) []csg.CellKey {
	v.field.Ops = append(v.field.Ops, op)
	return v.terrain.AddOperation(op.Position, op.Radius, op.Shape, op.Kind)
}

func initGL() error {
	if err := gl.Init(); err != nil {
		return err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(0.62, 0.76, 0.92, 1.0)
	return nil
}

func (v *viewer) run(ctx context.Context) error {
	frames := 0
	lastFPSCheckTime := time.Now()
	lastTime := time.Now()

	out, err := telemetry.Create(v.cfg.Telemetry.StatsPath)
	if err != nil {
		return err
	}
	defer out.Close()
	rec := telemetry.NewRecorder(out, v.cfg.Telemetry.SlowFrameMs)

	for !v.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if !v.paused {
			v.fly(dt)
		}

		vps := []octree.Viewpoint{{Position: v.camera.Position, Importance: 1}}
		if err := v.terrain.Tick(ctx, vps); err != nil {
			return err
		}
		tickDur := time.Since(now)

		v.renderer.Sync()
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		drawn := v.renderer.Draw(v.camera, config.GetWireframe())

		func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

		if err := rec.Record(telemetry.Capture(v.terrain, tickDur)); err != nil {
			return err
		}
		frames++

		if time.Since(lastFPSCheckTime) >= time.Second {
			fmt.Printf("FPS: %d drawn=%d queued=%d budget=%d | %s\n",
				frames, drawn, v.terrain.Streamer().Queue().Len(), config.GetChunksPerFrame(), profiling.TopN(3))
			frames = 0
			lastFPSCheckTime = time.Now()
		}
	}
	fmt.Println(rec.Summary())
	return nil
}

func (v *viewer) fly(dt float32) {
	speed := 60 * dt
	if v.window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		speed *= 5
	}
	var forward, right, up float32
	if v.window.GetKey(glfw.KeyW) == glfw.Press {
		forward += speed
	}
	if v.window.GetKey(glfw.KeyS) == glfw.Press {
		forward -= speed
	}
	if v.window.GetKey(glfw.KeyD) == glfw.Press {
		right += speed
	}
	if v.window.GetKey(glfw.KeyA) == glfw.Press {
		right -= speed
	}
	if v.window.GetKey(glfw.KeySpace) == glfw.Press {
		up += speed
	}
	if v.window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		up -= speed
	}
	v.camera.Move(forward, right, up)
}
