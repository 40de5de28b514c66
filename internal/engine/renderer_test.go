package engine

import (
	"math"
	"runtime"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/neildanson/sdf/internal/scene"
)

func TestRenderSphereSilhouette(t *testing.T) {
	const size = 64
	sc := scene.Default()
	cfg := RenderConfig{Width: size, Height: size, SamplesPerPx: 4, MaxBounces: 5, Seed: 11}
	var buf PixelBuffer
	RenderFrameInto(sc, sc.Camera.Position, cfg, &buf, nil)

	// A unit sphere 3 units away subtends tan(asin(1/3)) in NDC.
	edge := 1 / math.Sqrt(8)
	const margin = 0.05
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := (float64(x)+0.5)/size*2 - 1
			ny := (float64(y)+0.5)/size*2 - 1
			r := math.Hypot(nx, ny)
			c := buf.At(x, y)
			switch {
			case r < edge-margin && c.B > 128:
				t.Fatalf("pixel (%d,%d) r=%.3f inside silhouette has sky color %+v", x, y, r, c)
			case r > edge+margin && c.B != 255:
				t.Fatalf("pixel (%d,%d) r=%.3f outside silhouette has color %+v", x, y, r, c)
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	sc := scene.Default()
	cfg := RenderConfig{Width: 48, Height: 40, SamplesPerPx: 2, Seed: 99}

	render := func(workers int) PixelBuffer {
		t.Setenv("SDF_WORKERS", strconv.Itoa(workers))
		var buf PixelBuffer
		RenderFrameInto(sc, sc.Camera.Position, cfg, &buf, nil)
		return buf
	}
	a, b := render(1), render(5)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel %d differs between worker counts: %+v vs %+v", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestRenderWritesEveryPixel(t *testing.T) {
	sc := scene.Default()
	cfg := RenderConfig{Width: 70, Height: 37, SamplesPerPx: 1, Seed: 3}

	// No shading result has these channel values.
	sentinel := RGB{R: 1, G: 2, B: 3}
	buf := NewPixelBuffer(cfg.Width, cfg.Height)
	for i := range buf.Pix {
		buf.Pix[i] = sentinel
	}

	var calls atomic.Int32
	RenderFrameInto(sc, sc.Camera.Position, cfg, &buf, func() { calls.Add(1) })
	for i, c := range buf.Pix {
		if c == sentinel {
			t.Fatalf("pixel %d was not written", i)
		}
	}
	if calls.Load() == 0 {
		t.Fatal("progress was never called")
	}
}

func TestRenderFrameResizesBuffer(t *testing.T) {
	sc := scene.Default()
	buf := RenderFrame(sc, sc.Camera.Position, 10, 6, 1)
	if buf.Width != 10 || buf.Height != 6 || len(buf.Pix) != 60 {
		t.Fatalf("buffer = %dx%d with %d pixels", buf.Width, buf.Height, len(buf.Pix))
	}

	RenderFrameInto(sc, sc.Camera.Position, RenderConfig{Width: 0, Height: 5}, &buf, nil)
	if len(buf.Pix) != 0 {
		t.Fatalf("zero width render kept %d pixels", len(buf.Pix))
	}
}

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", runtime.NumCPU()},
		{"4", 4},
		{"128", 128},
		{"0", runtime.NumCPU()},
		{"129", runtime.NumCPU()},
		{"many", runtime.NumCPU()},
	}
	for _, tt := range tests {
		t.Setenv("SDF_WORKERS", tt.env)
		if got := workerCount(); got != tt.want {
			t.Errorf("workerCount() with SDF_WORKERS=%q = %d, want %d", tt.env, got, tt.want)
		}
	}
}

func TestMakeTilesCoversImage(t *testing.T) {
	const w, h = 70, 37
	seen := make([]int, w*h)
	tiles := makeTiles(w, h)
	for i, tl := range tiles {
		if tl.index != i {
			t.Fatalf("tile %d has index %d", i, tl.index)
		}
		for y := tl.y0; y < tl.y1; y++ {
			for x := tl.x0; x < tl.x1; x++ {
				seen[y*w+x]++
			}
		}
	}
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("pixel %d covered %d times", i, n)
		}
	}
	if len(tiles) != 3*2 {
		t.Fatalf("got %d tiles, want 6", len(tiles))
	}
}
