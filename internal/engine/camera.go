package engine

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/neildanson/sdf/internal/scene"
)

// camera maps pixel coordinates to primary rays looking down +Z.
type camera struct {
	origin vec3
	width  float64
	height float64
	aspect float64
}

func newCamera(origin scene.Vec3, width, height int) camera {
	w, h := float64(width), float64(height)
	aspect := 1.0
	if h > 0 {
		aspect = w / h
	}
	return camera{origin: toVec(origin), width: w, height: h, aspect: aspect}
}

// getRay takes a continuous pixel position (integer pixel plus jitter).
func (c camera) getRay(px, py float64) ray {
	ndcX := (px/c.width*2 - 1) * c.aspect
	ndcY := py/c.height*2 - 1
	return ray{
		orig: c.origin,
		dir:  v(ndcX, ndcY, 1).unit(),
	}
}

// OrbitOrigin returns the camera origin after elapsed time. Without an
// orbit the origin is the camera position.
func OrbitOrigin(cam scene.Camera, elapsed time.Duration) scene.Vec3 {
	if cam.Orbit == nil || cam.Orbit.Radius == 0 {
		return cam.Position
	}
	angle := cam.Orbit.Speed*elapsed.Seconds() + cam.Orbit.Phase
	offset := mgl64.Rotate3DZ(angle).Mul3x1(mgl64.Vec3{cam.Orbit.Radius, 0, 0})
	return scene.Vec3{
		X: cam.Position.X + offset.X(),
		Y: cam.Position.Y + offset.Y(),
		Z: cam.Position.Z + offset.Z(),
	}
}
