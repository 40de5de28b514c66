package engine

import (
	"image"
	"image/color"
	"math"
)

// RGB is one quantized output pixel.
type RGB struct {
	R, G, B uint8
}

// PixelBuffer is a row-major frame: pixel (x, y) lives at Pix[y*Width+x].
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewPixelBuffer allocates a black buffer.
func NewPixelBuffer(width, height int) PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return PixelBuffer{Width: width, Height: height, Pix: make([]RGB, width*height)}
}

// At returns the pixel at (x, y).
func (b PixelBuffer) At(x, y int) RGB {
	return b.Pix[y*b.Width+x]
}

// ToImage copies the buffer into a new opaque RGBA image.
func (b PixelBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	b.CopyTo(img)
	return img
}

// CopyTo writes the buffer into img. It reports false and leaves img
// untouched when the sizes differ.
func (b PixelBuffer) CopyTo(img *image.RGBA) bool {
	bounds := img.Bounds()
	if bounds.Dx() != b.Width || bounds.Dy() != b.Height {
		return false
	}
	for y := 0; y < b.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			c := b.Pix[y*b.Width+x]
			i := x * 4
			row[i] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = 255
		}
	}
	return true
}

// toByte quantizes a linear channel. Values outside [0, 1] are clamped
// before the cast so bright multi-bounce radiance cannot wrap.
func toByte(c float64) uint8 {
	if math.IsNaN(c) {
		return 0
	}
	f := 255.99 * c
	if f < 0 {
		f = 0
	} else if f > 255 {
		f = 255
	}
	return uint8(f)
}

func toRGB(c vec3) RGB {
	return RGB{R: toByte(c.x), G: toByte(c.y), B: toByte(c.z)}
}

// RGBA implements color.Color so buffers can feed image helpers directly.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}
