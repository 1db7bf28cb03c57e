// Command dcview flies a camera over streamed dual-contoured terrain.
package main

import (
	"context"
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/config"
	"dcterrain/internal/csg"
	"dcterrain/internal/graphics"
	"dcterrain/internal/physics"
	"dcterrain/internal/world"
)

const (
	winWidth  = 1280
	winHeight = 720
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("dcview: %v", err)
	}
	cfg.Apply()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		panic(err)
	}

	renderer, err := graphics.NewTerrainRenderer(cfg.Streamer.FadeFrames)
	if err != nil {
		panic(err)
	}
	defer renderer.Delete()

	base, err := cfg.Field()
	if err != nil {
		log.Fatalf("dcview: %v", err)
	}
	backend, shutdown := cfg.Backend(base)
	defer shutdown()

	terrain := world.NewTerrain(cfg.TerrainOptions(), backend, renderer)
	v := &viewer{
		window:   window,
		terrain:  terrain,
		renderer: renderer,
		cfg:      cfg,
		field:    csg.Field{Base: base},
	}
	for _, op := range cfg.Edits {
		v.addOperation(op)
	}

	// Spawn above the ground at the world centre
	groundY := physics.FindGroundLevel(0, 0, 1000, -1000, 0, v.field)
	v.camera = graphics.NewCamera(winWidth, winHeight, mgl32.Vec3{0, groundY + 40, 0})
	setupInputHandlers(v)

	if err := v.run(context.Background()); err != nil {
		log.Fatalf("dcview: %v", err)
	}
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winWidth, winHeight, "dcview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := initGL(); err != nil {
		return nil, err
	}

	glfw.SwapInterval(1)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}
