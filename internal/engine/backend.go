package engine

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/neildanson/sdf/internal/engine/gpu"
	"github.com/neildanson/sdf/internal/scene"
)

// Backend defines where heavy rendering computations are executed.
type Backend int32

const (
	BackendCPU Backend = iota
	BackendGPU
)

func (b Backend) String() string {
	if b == BackendGPU {
		return "gpu"
	}
	return "cpu"
}

var currentBackend atomic.Int32

// SetBackend selects active render backend (CPU or GPU).
// If an unknown value is passed, CPU backend will be used.
func SetBackend(b Backend) {
	switch b {
	case BackendCPU, BackendGPU:
		currentBackend.Store(int32(b))
	default:
		currentBackend.Store(int32(BackendCPU))
	}
}

// GetBackend returns currently selected render backend.
func GetBackend() Backend {
	return Backend(currentBackend.Load())
}

// fallBackToCPU switches the process to the CPU backend after a GPU failure.
// Only the caller that performs the switch logs it.
func fallBackToCPU(err error) {
	if currentBackend.CompareAndSwap(int32(BackendGPU), int32(BackendCPU)) {
		log.Printf("render: gpu backend failed, falling back to cpu: %v", err)
	}
}

// gpuRender is replaced in tests.
var gpuRender = renderGPU

// renderGPU runs the frame on the compute shader backend and quantizes the
// result with the same rule as the CPU path.
func renderGPU(sc *scene.Scene, origin scene.Vec3, cfg RenderConfig, buf *PixelBuffer) error {
	maxBounces := cfg.MaxBounces
	if maxBounces <= 0 {
		maxBounces = defaultMaxBounces
	}
	linear := make([]float32, cfg.Width*cfg.Height*3)
	err := gpu.Render(sc, origin, gpu.RenderConfig{
		Width:        cfg.Width,
		Height:       cfg.Height,
		SamplesPerPx: cfg.SamplesPerPx,
		MaxBounces:   maxBounces,
		Seed:         cfg.Seed,
	}, linear)
	if err != nil {
		return fmt.Errorf("gpu render: %w", err)
	}
	for i := range buf.Pix {
		buf.Pix[i] = toRGB(v(float64(linear[i*3]), float64(linear[i*3+1]), float64(linear[i*3+2])))
	}
	return nil
}
