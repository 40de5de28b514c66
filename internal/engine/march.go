package engine

const (
	// minDistance is both the hit threshold and the normal estimation step.
	minDistance = 0.001
	// maxTravel ends a march as a miss once every surface is this far away.
	maxTravel = 100.0
	// maxSteps forces a miss on fields that never converge.
	maxSteps = 256
)

type hitRecord struct {
	t      float64
	p      vec3
	normal vec3
}

// estimateNormal takes central differences of f around p. Where the
// gradient vanishes it returns +Y.
func estimateNormal(f field, p vec3) vec3 {
	const eps = minDistance
	n := v(
		f.distance(v(p.x+eps, p.y, p.z))-f.distance(v(p.x-eps, p.y, p.z)),
		f.distance(v(p.x, p.y+eps, p.z))-f.distance(v(p.x, p.y-eps, p.z)),
		f.distance(v(p.x, p.y, p.z+eps))-f.distance(v(p.x, p.y, p.z-eps)),
	)
	if n.dot(n) < 1e-24 {
		return v(0, 1, 0)
	}
	return n.unit()
}

// marcher walks rays through a world. normalFromFirst reproduces the
// approximation of always taking the normal from world[0].
type marcher struct {
	world           world
	normalFromFirst bool
}

// march sphere-traces r, whose direction must be unit length. A hit is any
// step where the nearest field is closer than minDistance, except that the
// field the ray starts on is ignored while the ray moves away from it. That
// field counts again once the ray is minDistance clear of it or heads back in.
func (m marcher) march(r ray, rec *hitRecord) bool {
	if len(m.world) == 0 {
		return false
	}
	p := r.orig
	t := 0.0
	skip := -1
	var skipFrom float64
	for step := 0; step < maxSteps; step++ {
		d, idx := m.world.nearest(p)
		if d > maxTravel {
			return false
		}
		if step == 0 {
			if d < minDistance {
				skip, skipFrom = idx, d
			}
		} else if skip >= 0 {
			ds := d
			if idx != skip {
				ds = m.world[skip].distance(p)
			}
			if ds >= minDistance || ds <= skipFrom {
				skip = -1
			}
		}
		if d < minDistance && idx != skip {
			if m.normalFromFirst {
				idx = 0
			}
			rec.t = t
			rec.p = p
			rec.normal = estimateNormal(m.world[idx], p)
			return true
		}
		if d < minDistance {
			d = minDistance
		}
		t += d
		p = r.at(t)
	}
	return false
}
