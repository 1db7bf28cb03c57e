package config

import "sync"

// RuntimeSettings holds values a running tool may change between frames
type RuntimeSettings struct {
	mu             sync.RWMutex
	chunksPerFrame int
	wireframe      bool
}

var globalRuntimeSettings = &RuntimeSettings{
	chunksPerFrame: 4, // default value
}

func clampChunksPerFrame(n int) int {
	if n < 1 {
		return 1
	}
	if n > 64 {
		return 64
	}
	return n
}

// GetChunksPerFrame returns the current remesh budget per frame
func GetChunksPerFrame() int {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.chunksPerFrame
}

// SetChunksPerFrame sets the remesh budget per frame
func SetChunksPerFrame(n int) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.chunksPerFrame = clampChunksPerFrame(n)
}

// GetWireframe reports whether meshes are drawn as lines
func GetWireframe() bool {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.wireframe
}

// ToggleWireframe flips wireframe drawing and returns the new state
func ToggleWireframe() bool {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.wireframe = !globalRuntimeSettings.wireframe
	return globalRuntimeSettings.wireframe
}

// Apply copies the startup values of cfg into the runtime settings
func (c *Config) Apply() {
	SetChunksPerFrame(c.Streamer.ChunksPerFrame)
}
