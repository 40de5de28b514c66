package engine

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/neildanson/sdf/internal/scene"
)

// RenderScene renders the scene from its static camera position using
// provided settings.
func RenderScene(sc *scene.Scene, settings scene.RenderSettings, seed int64) (image.Image, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, fmt.Errorf("render scene: invalid size %dx%d", settings.Width, settings.Height)
	}
	cfg := RenderConfig{
		Width:        settings.Width,
		Height:       settings.Height,
		SamplesPerPx: settings.SamplesPerPx,
		MaxBounces:   settings.MaxBounces,
		Seed:         seed,
	}
	var buf PixelBuffer
	RenderFrameInto(sc, sc.Camera.Position, cfg, &buf, nil)
	return buf.ToImage(), nil
}

// RenderSettingsForMode returns reasonable defaults for preview/final modes.
func RenderSettingsForMode(mode string) scene.RenderSettings {
	switch mode {
	case "final":
		return scene.RenderSettings{
			Width:        1920,
			Height:       1080,
			SamplesPerPx: 256,
			MaxBounces:   8,
		}
	default:
		return scene.RenderSettings{
			Width:        400,
			Height:       225,
			SamplesPerPx: 10,
			MaxBounces:   defaultMaxBounces,
		}
	}
}

// Downsample scales img to width x height with bilinear filtering. Used to
// resolve supersampled renders.
func Downsample(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SaveImage writes an image to path, picking the encoder from the file
// extension (.png, .bmp, .tif, .tiff). Unknown extensions are rejected.
func SaveImage(path string, img image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = EncodePNG
	case ".bmp":
		encode = bmp.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("save image: unsupported extension %q", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("save image %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	return nil
}
