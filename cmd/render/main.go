package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/neildanson/sdf/internal/engine"
	"github.com/neildanson/sdf/internal/publish"
	"github.com/neildanson/sdf/internal/scene"
	"github.com/neildanson/sdf/internal/ui"
)

type options struct {
	scenePath   string
	initScene   string
	mode        string
	useGPU      bool
	headless    bool
	output      string
	samples     int
	width       int
	height      int
	seed        int64
	supersample int
	uploadKey   string
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("sdf: load .env: %v", err)
	}

	var opts options
	flag.StringVar(&opts.scenePath, "scene", "", "path to scene JSON file (default: built-in unit sphere)")
	flag.StringVar(&opts.initScene, "init-scene", "", "write the built-in scene to this path and exit")
	flag.StringVar(&opts.mode, "mode", "preview", "render mode: preview or final")
	flag.BoolVar(&opts.useGPU, "gpu", false, "use GPU backend for rendering (if available)")
	flag.BoolVar(&opts.headless, "headless", false, "render a single frame without UI and save it")
	flag.StringVar(&opts.output, "out", "output.png", "output image (.png, .bmp, .tif)")
	flag.IntVar(&opts.samples, "samples", 0, "samples per pixel (0: scene or mode default)")
	flag.IntVar(&opts.width, "width", 0, "image width (0: scene or mode default)")
	flag.IntVar(&opts.height, "height", 0, "image height (0: scene or mode default)")
	flag.Int64Var(&opts.seed, "seed", envSeed(), "random seed, 0 picks one per frame (env SDF_SEED)")
	flag.IntVar(&opts.supersample, "supersample", 1, "render at N times the size and downsample (headless)")
	flag.StringVar(&opts.uploadKey, "upload", "", "S3 object key for the headless image (uses S3_* env)")
	flag.Parse()

	log.Printf("sdf: flags scene=%q mode=%s gpu=%v headless=%v out=%s", opts.scenePath, opts.mode, opts.useGPU, opts.headless, opts.output)

	if opts.initScene != "" {
		if err := scene.Save(opts.initScene, scene.Default()); err != nil {
			log.Fatalf("sdf: %v", err)
		}
		log.Printf("sdf: wrote %s", opts.initScene)
		return
	}

	if opts.useGPU {
		engine.SetBackend(engine.BackendGPU)
	} else {
		engine.SetBackend(engine.BackendCPU)
	}

	sc, err := loadScene(opts.scenePath)
	if err != nil {
		log.Fatalf("sdf: %v", err)
	}
	settings := resolveSettings(sc.Settings, opts)

	if opts.headless {
		if err := renderHeadless(sc, settings, opts); err != nil {
			log.Println("headless render error:", err)
			os.Exit(1)
		}
		return
	}

	if err := ui.Run(sc, ui.Options{Settings: settings, Seed: opts.seed, OutputPath: opts.output}); err != nil {
		log.Println("ui error:", err)
		os.Exit(1)
	}
}

func envSeed() int64 {
	if env := os.Getenv("SDF_SEED"); env != "" {
		if seed, err := strconv.ParseInt(env, 10, 64); err == nil {
			return seed
		}
		log.Printf("sdf: ignoring invalid SDF_SEED %q", env)
	}
	return 0
}

func loadScene(path string) (*scene.Scene, error) {
	if path == "" {
		return scene.Default(), nil
	}
	sc, err := scene.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	return sc, nil
}

// resolveSettings layers mode defaults, scene settings and flags, in that order.
func resolveSettings(fromScene scene.RenderSettings, opts options) scene.RenderSettings {
	st := engine.RenderSettingsForMode(opts.mode)
	if opts.mode != "final" {
		if fromScene.Width > 0 && fromScene.Height > 0 {
			st.Width, st.Height = fromScene.Width, fromScene.Height
		}
		if fromScene.SamplesPerPx > 0 {
			st.SamplesPerPx = fromScene.SamplesPerPx
		}
	}
	if fromScene.MaxBounces > 0 {
		st.MaxBounces = fromScene.MaxBounces
	}
	if opts.width > 0 {
		st.Width = opts.width
	}
	if opts.height > 0 {
		st.Height = opts.height
	}
	if opts.samples > 0 {
		st.SamplesPerPx = opts.samples
	}
	return st
}

func renderHeadless(sc *scene.Scene, settings scene.RenderSettings, opts options) error {
	ss := max(opts.supersample, 1)
	renderSettings := settings
	renderSettings.Width *= ss
	renderSettings.Height *= ss

	start := time.Now()
	img, err := engine.RenderScene(sc, renderSettings, opts.seed)
	if err != nil {
		return fmt.Errorf("render scene: %w", err)
	}
	log.Printf("sdf: rendered %dx%d (%d spp, %s) in %v",
		renderSettings.Width, renderSettings.Height, renderSettings.SamplesPerPx, engine.GetBackend(), time.Since(start).Round(time.Millisecond))

	if ss > 1 {
		img = engine.Downsample(img, settings.Width, settings.Height)
	}

	if err := engine.SaveImage(opts.output, img); err != nil {
		return err
	}
	log.Printf("sdf: saved %s", opts.output)

	if opts.uploadKey == "" {
		return nil
	}
	uploader, err := publish.NewUploader(publish.ConfigFromEnv())
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.output)
	if err != nil {
		return fmt.Errorf("read output: %w", err)
	}
	if err := uploader.Upload(context.Background(), opts.uploadKey, data); err != nil {
		return err
	}
	log.Printf("sdf: uploaded %s (%d bytes)", opts.uploadKey, len(data))
	return nil
}
