package engine

import (
	"image"
	"math"
	"testing"
)

func TestToByte(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 127},
		{1, 255},
		{2.5, 255},
		{math.Inf(1), 255},
		{math.Inf(-1), 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := toByte(tt.in); got != tt.want {
			t.Errorf("toByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPixelBufferImage(t *testing.T) {
	buf := NewPixelBuffer(3, 2)
	buf.Pix[1*3+2] = RGB{R: 10, G: 20, B: 30}

	img := buf.ToImage()
	if got := img.RGBAAt(2, 1); got.R != 10 || got.G != 20 || got.B != 30 || got.A != 255 {
		t.Fatalf("pixel (2,1) = %+v", got)
	}
	if got := img.RGBAAt(0, 0); got.A != 255 {
		t.Fatalf("alpha = %d, want opaque", got.A)
	}

	if !buf.CopyTo(image.NewRGBA(image.Rect(0, 0, 3, 2))) {
		t.Fatal("CopyTo rejected an image of the same size")
	}

	other := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if buf.CopyTo(other) {
		t.Fatal("CopyTo reported success for an image of a different size")
	}
	if other.Pix[3] != 0 {
		t.Fatal("CopyTo wrote into an image of a different size")
	}
}

func TestNewPixelBufferNegative(t *testing.T) {
	buf := NewPixelBuffer(-2, 5)
	if buf.Width != 0 || len(buf.Pix) != 0 {
		t.Fatalf("buffer = %+v", buf)
	}
}
