package engine

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/neildanson/sdf/internal/scene"
)

// RenderConfig defines internal render parameters.
type RenderConfig struct {
	Width        int
	Height       int
	SamplesPerPx int
	MaxBounces   int
	// Seed fixes every random stream of the frame. Zero picks a seed from the clock.
	Seed int64
}

// frame is the read-only state shared by all workers while rendering.
type frame struct {
	cam        camera
	tracer     *tracer
	samples    int
	maxBounces int
}

func newFrame(sc *scene.Scene, origin scene.Vec3, cfg RenderConfig) *frame {
	maxBounces := cfg.MaxBounces
	if maxBounces <= 0 {
		maxBounces = defaultMaxBounces
	}
	return &frame{
		cam: newCamera(origin, cfg.Width, cfg.Height),
		tracer: &tracer{
			marcher: marcher{world: sceneToWorld(sc)},
			sky:     newSkyGradient(sc.SkyOrDefault()),
		},
		samples:    cfg.SamplesPerPx,
		maxBounces: maxBounces,
	}
}

// RenderFrame renders the scene from origin into a new buffer. Bounce
// depth comes from the scene settings.
func RenderFrame(sc *scene.Scene, origin scene.Vec3, width, height, samples int) PixelBuffer {
	cfg := RenderConfig{
		Width:        width,
		Height:       height,
		SamplesPerPx: samples,
		MaxBounces:   sc.Settings.MaxBounces,
	}
	buf := NewPixelBuffer(width, height)
	RenderFrameInto(sc, origin, cfg, &buf, nil)
	return buf
}

// RenderFrameInto renders the scene into buf, reallocating it when the
// size does not match cfg. If progress is not nil, it is called from worker
// goroutines after finished tiles to allow interactive preview.
func RenderFrameInto(sc *scene.Scene, origin scene.Vec3, cfg RenderConfig, buf *PixelBuffer, progress func()) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		*buf = NewPixelBuffer(0, 0)
		return
	}
	if buf.Width != cfg.Width || buf.Height != cfg.Height || len(buf.Pix) != cfg.Width*cfg.Height {
		*buf = NewPixelBuffer(cfg.Width, cfg.Height)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if GetBackend() == BackendGPU {
		err := gpuRender(sc, origin, cfg, buf)
		if err == nil {
			if progress != nil {
				progress()
			}
			return
		}
		fallBackToCPU(err)
	}

	renderCPU(newFrame(sc, origin, cfg), cfg, buf, progress)
}

// workerCount is runtime.NumCPU, overridable through SDF_WORKERS.
func workerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if env := os.Getenv("SDF_WORKERS"); env != "" {
		if custom, err := strconv.Atoi(env); err == nil && custom > 0 && custom <= 128 {
			n = custom
		}
	}
	return n
}

const tileSize = 32

type tile struct {
	index          int
	x0, y0, x1, y1 int
}

func makeTiles(width, height int) []tile {
	tiles := make([]tile, 0, ((width+tileSize-1)/tileSize)*((height+tileSize-1)/tileSize))
	for ty := 0; ty < height; ty += tileSize {
		for tx := 0; tx < width; tx += tileSize {
			tiles = append(tiles, tile{
				index: len(tiles),
				x0:    tx,
				y0:    ty,
				x1:    min(tx+tileSize, width),
				y1:    min(ty+tileSize, height),
			})
		}
	}
	return tiles
}

// renderCPU drains a tile queue with a fixed worker pool. Every tile owns
// its random stream and its pixels, so workers share nothing mutable.
func renderCPU(f *frame, cfg RenderConfig, buf *PixelBuffer, progress func()) {
	all := makeTiles(cfg.Width, cfg.Height)
	tiles := make(chan tile, len(all))
	for _, t := range all {
		tiles <- t
	}
	close(tiles)

	totalTiles := len(all)
	var processedTiles int
	var progressMu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tiles {
				rng := newSeededRandSource(tileSeed(cfg.Seed, t.index))
				for y := t.y0; y < t.y1; y++ {
					row := y * cfg.Width
					for x := t.x0; x < t.x1; x++ {
						buf.Pix[row+x] = toRGB(f.samplePixel(x, y, rng))
					}
				}

				if progress != nil {
					progressMu.Lock()
					processedTiles++
					updateThreshold := max(1, totalTiles/20)
					shouldUpdate := processedTiles%updateThreshold == 0 || processedTiles == totalTiles
					progressMu.Unlock()
					if shouldUpdate {
						progress()
					}
				}
			}
		}()
	}
	wg.Wait()
}
