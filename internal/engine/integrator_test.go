package engine

import (
	"math"
	"testing"

	"github.com/neildanson/sdf/internal/scene"
)

func TestSkyGradient(t *testing.T) {
	sky := newSkyGradient(scene.DefaultSky)
	tests := []struct {
		name string
		dir  vec3
		want vec3
	}{
		{"down the image", v(0, 1, 0), v(1, 1, 1)},
		{"up the image", v(0, -1, 0), v(0.5, 0.7, 1.0)},
		{"forward", v(0, 0, 1), v(0.75, 0.85, 1.0)},
		{"out of range", v(0, 3, 0), v(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sky.color(tt.dir)
			if got.sub(tt.want).length() > eps {
				t.Fatalf("sky(%v) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestRayColorPastMaxDepthIsBlack(t *testing.T) {
	tr := &tracer{sky: newSkyGradient(scene.DefaultSky)}
	rng := newSeededRandSource(1)
	// A miss would return sky; past the ceiling nothing is traced.
	if got := tr.rayColor(ray{dir: v(0, 1, 0)}, defaultMaxBounces+1, defaultMaxBounces, rng); got != (vec3{}) {
		t.Fatalf("color past max depth = %v, want black", got)
	}
	if got := tr.rayColor(ray{dir: v(0, 1, 0)}, 1, 0, rng); got != (vec3{}) {
		t.Fatalf("color with zero bounces at depth 1 = %v, want black", got)
	}
}

func TestRayColorMissReturnsSky(t *testing.T) {
	tr := &tracer{
		marcher: marcher{world: world{sphereField{center: v(0, 0, 3), radius: 1}}},
		sky:     newSkyGradient(scene.DefaultSky),
	}
	rng := newSeededRandSource(1)
	if got := tr.rayColor(ray{dir: v(0, 1, 0)}, 0, defaultMaxBounces, rng); got != v(1, 1, 1) {
		t.Fatalf("miss color = %v, want horizon", got)
	}
	if got := tr.rayColor(ray{dir: v(0, -1, 0)}, 0, defaultMaxBounces, rng); got.sub(v(0.5, 0.7, 1)).length() > eps {
		t.Fatalf("miss color = %v, want zenith", got)
	}
}

func TestRayColorBounce(t *testing.T) {
	tr := &tracer{
		marcher: marcher{world: world{sphereField{center: v(0, 0, 3), radius: 1}}},
		sky:     newSkyGradient(scene.DefaultSky),
	}
	r := ray{dir: v(0, 0, 1)}

	// A hit at the last allowed depth scatters into a black ray.
	if got := tr.rayColor(r, defaultMaxBounces, defaultMaxBounces, newSeededRandSource(7)); got != (vec3{}) {
		t.Fatalf("hit at max depth = %v, want black", got)
	}

	// From the front of a convex sphere every bounce escapes, so the result
	// is half of some sky color.
	for seed := int64(1); seed <= 20; seed++ {
		got := tr.rayColor(r, 0, defaultMaxBounces, newSeededRandSource(seed))
		if math.Abs(got.z-albedo) > eps {
			t.Fatalf("seed %d: blue = %v, want %v", seed, got.z, albedo)
		}
		if got.x < 0.25-eps || got.x > 0.5+eps || got.y < 0.35-eps || got.y > 0.5+eps {
			t.Fatalf("seed %d: color %v outside half sky range", seed, got)
		}
	}
}

func TestRandomInUnitSphere(t *testing.T) {
	rng := newSeededRandSource(3)
	for i := 0; i < 1000; i++ {
		if p := randomInUnitSphere(rng); p.dot(p) >= 1 {
			t.Fatalf("sample %v outside unit ball", p)
		}
	}
}

func TestTileSeedsDiffer(t *testing.T) {
	seen := make(map[int64]int)
	for tile := 0; tile < 1000; tile++ {
		s := tileSeed(42, tile)
		if prev, ok := seen[s]; ok {
			t.Fatalf("tiles %d and %d share seed %d", prev, tile, s)
		}
		seen[s] = tile
	}
	a, b := newSeededRandSource(tileSeed(9, 3)), newSeededRandSource(tileSeed(9, 3))
	for i := 0; i < 10; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("same seed diverged at %d: %v != %v", i, x, y)
		}
	}
	if math.IsNaN(a.Float64()) {
		t.Fatal("NaN from rand source")
	}
}

func TestRayColorContactIsShadowed(t *testing.T) {
	tr := &tracer{
		marcher: marcher{world: sphereOnFloor()},
		sky:     newSkyGradient(scene.DefaultSky),
	}
	r := ray{orig: v(0.02, 1, 3), dir: v(-0.3, -1, 0).unit()}
	// With no bounces left a hit is black and a miss is sky.
	if got := tr.rayColor(r, 0, 0, newSeededRandSource(1)); got != (vec3{}) {
		t.Fatalf("color into the touching sphere = %v, want black", got)
	}
}
