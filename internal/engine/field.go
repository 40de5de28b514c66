package engine

import (
	"math"

	"github.com/neildanson/sdf/internal/scene"
)

// field is a signed distance function. Implementations must be pure and
// Lipschitz-1: no surface lies closer to p than |distance(p)|.
type field interface {
	distance(p vec3) float64
}

type sphereField struct {
	center vec3
	radius float64
}

func (s sphereField) distance(p vec3) float64 {
	return p.sub(s.center).length() - s.radius
}

// cubeField is an axis-aligned cube.
type cubeField struct {
	center   vec3
	halfSize float64
}

func (c cubeField) distance(p vec3) float64 {
	h := c.halfSize
	q := p.sub(c.center).abs().sub(v(h, h, h))
	return q.maxElem(vec3{}).length() + math.Min(q.maxComponent(), 0)
}

// planeField is the half-space below a plane; normal must be unit length.
type planeField struct {
	point  vec3
	normal vec3
}

func (pl planeField) distance(p vec3) float64 {
	return p.sub(pl.point).dot(pl.normal)
}

// intersectField is the "And" combinator: solid only where both operands
// are solid. Despite the name it is not a union.
type intersectField struct {
	a, b field
}

func (f intersectField) distance(p vec3) float64 {
	return math.Max(f.a.distance(p), f.b.distance(p))
}

// subtractField is the "Not" combinator: a with b's solid carved out.
type subtractField struct {
	a, b field
}

func (f subtractField) distance(p vec3) float64 {
	return math.Max(f.a.distance(p), -f.b.distance(p))
}

type unionField struct {
	a, b field
}

func (f unionField) distance(p vec3) float64 {
	return math.Min(f.a.distance(p), f.b.distance(p))
}

// world is the ordered list of top-level fields. It is read-only once built.
type world []field

// nearest returns the minimum distance over all fields and the index of the
// field that produced it. An empty world reports +Inf and -1.
func (w world) nearest(p vec3) (float64, int) {
	best := math.Inf(1)
	idx := -1
	for i := range w {
		if d := w[i].distance(p); d < best {
			best = d
			idx = i
		}
	}
	return best, idx
}

func (w world) distance(p vec3) float64 {
	d, _ := w.nearest(p)
	return d
}

func toVec(p scene.Vec3) vec3 { return v(p.X, p.Y, p.Z) }

// buildField converts a scene field tree. Unknown types become nil, which
// Validate already rejects for loaded scenes.
func buildField(f *scene.Field) field {
	if f == nil {
		return nil
	}
	switch f.Type.Canonical() {
	case scene.FieldSphere:
		return sphereField{center: toVec(f.Center), radius: f.Radius}
	case scene.FieldCube:
		return cubeField{center: toVec(f.Center), halfSize: f.HalfSize}
	case scene.FieldPlane:
		n := toVec(f.Normal).unit()
		if n == (vec3{}) {
			n = v(0, 1, 0)
		}
		return planeField{point: toVec(f.Point), normal: n}
	}

	a, b := buildField(f.Left), buildField(f.Right)
	if a == nil || b == nil {
		return nil
	}
	switch f.Type.Canonical() {
	case scene.FieldIntersect:
		return intersectField{a: a, b: b}
	case scene.FieldSubtract:
		return subtractField{a: a, b: b}
	case scene.FieldUnion:
		return unionField{a: a, b: b}
	}
	return nil
}

// sceneToWorld builds the top-level field list from the scene description.
func sceneToWorld(sc *scene.Scene) world {
	w := make(world, 0, len(sc.Fields))
	for i := range sc.Fields {
		if f := buildField(&sc.Fields[i]); f != nil {
			w = append(w, f)
		}
	}
	return w
}
