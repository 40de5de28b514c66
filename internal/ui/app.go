package ui

import (
	"fmt"
	"image"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/neildanson/sdf/internal/engine"
	"github.com/neildanson/sdf/internal/scene"
)

// logFilter drops harmless GLFW scancode warnings from the log.
type logFilter struct {
	original io.Writer
}

func (f *logFilter) Write(p []byte) (n int, err error) {
	if strings.Contains(string(p), "Invalid scancode") {
		return len(p), nil
	}
	return f.original.Write(p)
}

// Options configures the live preview.
type Options struct {
	Settings scene.RenderSettings
	// Seed fixes the noise pattern of every frame. Zero reseeds each frame.
	Seed       int64
	OutputPath string
}

// Run opens the preview window and renders frames back to back until the
// window is closed. The camera origin follows the scene orbit in wall-clock time.
func Run(sc *scene.Scene, opts Options) error {
	log.Printf("ui: starting with scene %q, %dx%d, %d spp, backend=%s",
		sc.Name, opts.Settings.Width, opts.Settings.Height, opts.Settings.SamplesPerPx, engine.GetBackend())

	originalLogWriter := log.Writer()
	log.SetOutput(&logFilter{original: originalLogWriter})
	defer log.SetOutput(originalLogWriter)

	cfg := engine.RenderConfig{
		Width:        opts.Settings.Width,
		Height:       opts.Settings.Height,
		SamplesPerPx: opts.Settings.SamplesPerPx,
		MaxBounces:   opts.Settings.MaxBounces,
		Seed:         opts.Seed,
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("run preview: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	outPath := opts.OutputPath
	if outPath == "" {
		outPath = "ui_render.png"
	}

	a := app.New()
	w := a.NewWindow("SDF Ray Marcher")

	var mu sync.Mutex // guards cam and img
	cam := sc.Camera
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))

	imgCanvas := canvas.NewImageFromImage(img)
	imgCanvas.FillMode = canvas.ImageFillContain
	imgCanvas.ScaleMode = canvas.ImageScalePixels
	imgCanvas.SetMinSize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))

	status := widget.NewLabel("Rendering...")
	frameLabel := widget.NewLabel("Frame: -")
	posLabel := widget.NewLabel("")
	showPosition := func(c scene.Camera) {
		posLabel.SetText(fmt.Sprintf("Camera: (%.2f, %.2f, %.2f)", c.Position.X, c.Position.Y, c.Position.Z))
	}
	showPosition(cam)

	clock := newAnimClock(nil)
	var closed atomic.Bool
	done := make(chan struct{})

	// Frames are rendered strictly one after another: frame N+1 starts only
	// after frame N has been copied into the canvas image.
	go func() {
		defer close(done)
		var buf engine.PixelBuffer
		frames := 0
		for !closed.Load() {
			if !clock.Running() {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			mu.Lock()
			c := cam
			mu.Unlock()

			origin := engine.OrbitOrigin(c, clock.Elapsed())
			start := time.Now()
			engine.RenderFrameInto(sc, origin, cfg, &buf, nil)
			elapsed := time.Since(start)

			mu.Lock()
			copied := buf.CopyTo(img)
			mu.Unlock()
			if !copied {
				log.Printf("ui: frame %dx%d does not fit the %dx%d canvas image", buf.Width, buf.Height, cfg.Width, cfg.Height)
				return
			}
			if closed.Load() {
				return
			}
			imgCanvas.Refresh()

			frames++
			frameLabel.SetText(fmt.Sprintf("Frame %d: %v (%.1f fps)", frames, elapsed.Round(time.Millisecond), 1/elapsed.Seconds()))
			if frames%100 == 0 {
				log.Printf("ui: frame %d took %v", frames, elapsed)
			}
		}
	}()

	var pauseBtn *widget.Button
	pauseBtn = widget.NewButton("Pause", func() {
		if clock.Toggle() {
			pauseBtn.SetText("Pause")
			status.SetText("Rendering...")
		} else {
			pauseBtn.SetText("Resume")
			status.SetText("Paused")
		}
	})

	outputPath := widget.NewEntry()
	outputPath.SetText(outPath)

	saveImageBtn := widget.NewButton("Save image", func() {
		path := outputPath.Text
		if path == "" {
			path = outPath
		}
		mu.Lock()
		snapshot := image.NewRGBA(img.Bounds())
		copy(snapshot.Pix, img.Pix)
		mu.Unlock()

		status.SetText("Saving image...")
		go func() {
			if err := engine.SaveImage(path, snapshot); err != nil {
				status.SetText(fmt.Sprintf("Save image error: %v", err))
				return
			}
			status.SetText(fmt.Sprintf("Image saved to %s", path))
		}()
	})

	controls := container.NewVBox(
		widget.NewLabel(fmt.Sprintf("%dx%d, %d spp, %s backend", cfg.Width, cfg.Height, cfg.SamplesPerPx, engine.GetBackend())),
		widget.NewLabel("WASDQE move, arrows turn orbit"),
		container.NewHBox(pauseBtn, saveImageBtn),
		outputPath,
		status,
		frameLabel,
		posLabel,
	)

	w.SetContent(container.NewBorder(nil, controls, nil, nil, imgCanvas))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		mu.Lock()
		msg, changed := applyKey(&cam, ev.Name)
		c := cam
		mu.Unlock()
		if !changed {
			if msg != "" {
				status.SetText(msg)
			}
			return
		}
		status.SetText(msg)
		showPosition(c)
	})

	w.SetOnClosed(func() {
		closed.Store(true)
	})

	w.ShowAndRun()
	closed.Store(true)
	<-done
	return nil
}
