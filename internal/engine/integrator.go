package engine

import "github.com/neildanson/sdf/internal/scene"

// albedo is the fixed fraction of light every surface reflects per bounce.
const albedo = 0.5

// defaultMaxBounces caps the recursion when the scene does not.
const defaultMaxBounces = 5

// skyGradient is returned for rays that escape the scene.
type skyGradient struct {
	horizon vec3 // direction y = +1
	zenith  vec3 // direction y = -1
}

func newSkyGradient(s scene.Sky) skyGradient {
	return skyGradient{
		horizon: v(s.Horizon.R, s.Horizon.G, s.Horizon.B),
		zenith:  v(s.Zenith.R, s.Zenith.G, s.Zenith.B),
	}
}

func (s skyGradient) color(dir vec3) vec3 {
	t := 0.5 * (dir.y + 1)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.zenith.mul(1 - t).add(s.horizon.mul(t))
}

// tracer is the diffuse integrator. It is read-only during a frame and may
// be shared by every worker; randomness comes in through rng.
type tracer struct {
	marcher marcher
	sky     skyGradient
}

// rayColor returns the radiance along r at recursion depth (0 for camera
// rays). Past maxBounces the result is black whatever the scene.
func (tr *tracer) rayColor(r ray, depth, maxBounces int, rng *randSource) vec3 {
	if depth > maxBounces {
		return vec3{}
	}

	var rec hitRecord
	if !tr.marcher.march(r, &rec) {
		return tr.sky.color(r.dir)
	}

	target := rec.p.add(rec.normal).add(randomInUnitSphere(rng))
	dir := target.sub(rec.p).unit()
	if dir == (vec3{}) {
		dir = rec.normal
	}
	// Leave from just above the surface; march skips the field it starts on
	// only while moving away from it.
	scattered := ray{orig: rec.p.add(rec.normal.mul(2 * minDistance)), dir: dir}
	return tr.rayColor(scattered, depth+1, maxBounces, rng).mul(albedo)
}
