package gpu

import (
	"errors"
	"fmt"
	"math"

	"github.com/neildanson/sdf/internal/scene"
)

// Go-side copies of the opcodes used in GLSL.
// Must stay in sync with values in the compute shader.
const (
	OP_SPHERE    = 0
	OP_CUBE      = 1
	OP_PLANE     = 2
	OP_INTERSECT = 3
	OP_SUBTRACT  = 4
	OP_UNION     = 5
	OP_ROOT      = 6 // pops a finished top-level field
)

// instrStride is the number of float32 per instruction:
// [op, p0, p1, p2, p3, p4, p5, pad].
const instrStride = 8

// maxStack is the evaluation stack size declared in the shader.
const maxStack = 16

// ErrStackTooDeep is returned for field trees the shader stack cannot hold.
var ErrStackTooDeep = errors.New("field tree too deep for gpu stack")

// Program is a scene's field list flattened into postfix instructions.
// Each top-level field ends with OP_ROOT, so Roots equals the field count.
type Program struct {
	Code  []float32
	Roots int
}

// Len returns the number of instructions.
func (p Program) Len() int { return len(p.Code) / instrStride }

// Encode flattens the scene fields, left operand first.
func Encode(fields []scene.Field) (Program, error) {
	var prog Program
	for i := range fields {
		depth, err := prog.emit(&fields[i])
		if err != nil {
			return Program{}, fmt.Errorf("encode fields[%d]: %w", i, err)
		}
		if depth > maxStack {
			return Program{}, fmt.Errorf("encode fields[%d]: %w (%d > %d)", i, ErrStackTooDeep, depth, maxStack)
		}
		prog.push(OP_ROOT)
		prog.Roots++
	}
	return prog, nil
}

func (p *Program) push(op int, params ...float64) {
	var in [instrStride]float32
	in[0] = float32(op)
	for i, v := range params {
		in[i+1] = float32(v)
	}
	p.Code = append(p.Code, in[:]...)
}

// emit appends f and returns the stack depth needed to evaluate it.
func (p *Program) emit(f *scene.Field) (int, error) {
	if f == nil {
		return 0, errors.New("nil field")
	}
	switch f.Type.Canonical() {
	case scene.FieldSphere:
		p.push(OP_SPHERE, f.Center.X, f.Center.Y, f.Center.Z, f.Radius)
		return 1, nil
	case scene.FieldCube:
		p.push(OP_CUBE, f.Center.X, f.Center.Y, f.Center.Z, f.HalfSize)
		return 1, nil
	case scene.FieldPlane:
		n := f.Normal
		l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if l == 0 {
			n, l = scene.Vec3{Y: 1}, 1
		}
		p.push(OP_PLANE, f.Point.X, f.Point.Y, f.Point.Z, n.X/l, n.Y/l, n.Z/l)
		return 1, nil
	}

	var op int
	switch f.Type.Canonical() {
	case scene.FieldIntersect:
		op = OP_INTERSECT
	case scene.FieldSubtract:
		op = OP_SUBTRACT
	case scene.FieldUnion:
		op = OP_UNION
	default:
		return 0, fmt.Errorf("unknown field type %q", f.Type)
	}
	left, err := p.emit(f.Left)
	if err != nil {
		return 0, err
	}
	right, err := p.emit(f.Right)
	if err != nil {
		return 0, err
	}
	p.push(op)
	return max(left, right+1), nil
}

// Evaluate runs the program on the CPU exactly as the shader does, in
// float32. It returns the scene distance and the nearest root index.
func (p Program) Evaluate(x, y, z float32) (float32, int) {
	var stack [maxStack]float32
	sp := 0
	best := float32(math.Inf(1))
	bestRoot := -1
	root := 0
	for i := 0; i+instrStride <= len(p.Code); i += instrStride {
		in := p.Code[i : i+instrStride]
		switch int(in[0]) {
		case OP_SPHERE:
			dx, dy, dz := x-in[1], y-in[2], z-in[3]
			stack[sp] = sqrt32(dx*dx+dy*dy+dz*dz) - in[4]
			sp++
		case OP_CUBE:
			qx := abs32(x-in[1]) - in[4]
			qy := abs32(y-in[2]) - in[4]
			qz := abs32(z-in[3]) - in[4]
			ox, oy, oz := max(qx, 0), max(qy, 0), max(qz, 0)
			stack[sp] = sqrt32(ox*ox+oy*oy+oz*oz) + min(max(qx, max(qy, qz)), 0)
			sp++
		case OP_PLANE:
			stack[sp] = (x-in[1])*in[4] + (y-in[2])*in[5] + (z-in[3])*in[6]
			sp++
		case OP_INTERSECT:
			sp--
			stack[sp-1] = max(stack[sp-1], stack[sp])
		case OP_SUBTRACT:
			sp--
			stack[sp-1] = max(stack[sp-1], -stack[sp])
		case OP_UNION:
			sp--
			stack[sp-1] = min(stack[sp-1], stack[sp])
		case OP_ROOT:
			sp--
			if stack[sp] < best {
				best = stack[sp]
				bestRoot = root
			}
			root++
		}
	}
	return best, bestRoot
}

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
