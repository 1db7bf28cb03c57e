package main

import (
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"

	"dcterrain/internal/config"
	"dcterrain/internal/csg"
	"dcterrain/internal/physics"
)

// Edit radius for clicks
const editRadius = 8

func setupInputHandlers(v *viewer) {
	v.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !v.paused {
			v.camera.HandleMouseMovement(xpos, ypos)
		}
	})

	v.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if v.paused || action != glfw.Press {
			return
		}
		kind := csg.Union
		if button == glfw.MouseButtonRight {
			kind = csg.Subtraction
		}
		shape := csg.Sphere
		if mods&glfw.ModShift != 0 {
			shape = csg.Box
		}
		hit := physics.Raycast(v.camera.Position, v.camera.Front(), physics.MinReachDistance, physics.MaxReachDistance, v.field)
		if !hit.Hit {
			return
		}
		op := csg.Operation{Position: hit.Position, Radius: editRadius, Shape: shape, Kind: kind}
		keys := v.addOperation(op)
		log.Printf("dcview: %s %s at %v touched %d cells", kind, shape, hit.Position, len(keys))
	})

	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyF:
			config.ToggleWireframe()
		case glfw.KeyU:
			v.terrain.UpdateAll()
		case glfw.KeyEqual, glfw.KeyKPAdd:
			config.SetChunksPerFrame(config.GetChunksPerFrame() + 1)
		case glfw.KeyMinus, glfw.KeyKPSubtract:
			config.SetChunksPerFrame(config.GetChunksPerFrame() - 1)
		case glfw.KeyEscape:
			v.paused = !v.paused
			if v.paused {
				w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			} else {
				w.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
				v.camera.ResetMouse()
			}
		case glfw.KeyQ:
			w.SetShouldClose(true)
		}
	})
}
