package engine

import "math"

type vec3 struct {
	x, y, z float64
}

func v(x, y, z float64) vec3 { return vec3{x, y, z} }

func (a vec3) add(b vec3) vec3    { return vec3{x: a.x + b.x, y: a.y + b.y, z: a.z + b.z} }
func (a vec3) sub(b vec3) vec3    { return vec3{x: a.x - b.x, y: a.y - b.y, z: a.z - b.z} }
func (a vec3) mul(t float64) vec3 { return vec3{x: a.x * t, y: a.y * t, z: a.z * t} }
func (a vec3) div(t float64) vec3 {
	invT := 1.0 / t
	return vec3{x: a.x * invT, y: a.y * invT, z: a.z * invT}
}

func (a vec3) dot(b vec3) float64 { return a.x*b.x + a.y*b.y + a.z*b.z }

func (a vec3) length() float64 { return math.Sqrt(a.dot(a)) }

func (a vec3) unit() vec3 {
	l := a.length()
	if l == 0 {
		return a
	}
	return a.div(l)
}

func (a vec3) abs() vec3 { return vec3{x: math.Abs(a.x), y: math.Abs(a.y), z: math.Abs(a.z)} }

// maxElem is componentwise.
func (a vec3) maxElem(b vec3) vec3 {
	return vec3{x: math.Max(a.x, b.x), y: math.Max(a.y, b.y), z: math.Max(a.z, b.z)}
}

func (a vec3) maxComponent() float64 { return math.Max(a.x, math.Max(a.y, a.z)) }

// randomInUnitSphere rejection-samples the open unit ball.
func randomInUnitSphere(rng *randSource) vec3 {
	for {
		x := rng.Float64()*2 - 1
		y := rng.Float64()*2 - 1
		z := rng.Float64()*2 - 1
		if x*x+y*y+z*z >= 1.0 {
			continue
		}
		return vec3{x: x, y: y, z: z}
	}
}

type ray struct {
	orig vec3
	dir  vec3
}

func (r ray) at(t float64) vec3 {
	return r.orig.add(r.dir.mul(t))
}
