package engine

// samplePixel averages samples jittered rays through pixel (x, y).
func (f *frame) samplePixel(x, y int, rng *randSource) vec3 {
	n := f.samples
	if n < 1 {
		n = 1
	}
	var sum vec3
	fx, fy := float64(x), float64(y)
	for s := 0; s < n; s++ {
		r := f.cam.getRay(fx+rng.Float64(), fy+rng.Float64())
		sum = sum.add(f.tracer.rayColor(r, 0, f.maxBounces, rng))
	}
	return sum.div(float64(n))
}

// centerSample traces a single unjittered ray through the pixel center.
func (f *frame) centerSample(x, y int, rng *randSource) vec3 {
	r := f.cam.getRay(float64(x)+0.5, float64(y)+0.5)
	return f.tracer.rayColor(r, 0, f.maxBounces, rng)
}
