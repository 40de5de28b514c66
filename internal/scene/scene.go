package scene

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidScene is wrapped by every validation failure.
var ErrInvalidScene = errors.New("invalid scene")

// Vec3 represents a simple 3D vector or point.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is an RGB color in linear space.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Orbit moves the camera origin on a circle of Radius around Position,
// in the plane facing the view direction.
type Orbit struct {
	Radius float64 `json:"radius"`
	Speed  float64 `json:"speed"` // radians per second
	Phase  float64 `json:"phase,omitempty"`
}

// Camera describes the viewpoint. The view direction is fixed along +Z.
type Camera struct {
	Position Vec3   `json:"position"`
	Orbit    *Orbit `json:"orbit,omitempty"`
}

// FieldType enumerates supported distance field variants.
type FieldType string

const (
	FieldSphere    FieldType = "sphere"
	FieldCube      FieldType = "cube"
	FieldPlane     FieldType = "plane"
	FieldIntersect FieldType = "intersect"
	FieldSubtract  FieldType = "subtract"
	FieldUnion     FieldType = "union"
)

// Canonical resolves the historical aliases. "and" is intersection, not union.
func (t FieldType) Canonical() FieldType {
	switch FieldType(strings.ToLower(string(t))) {
	case "and", FieldIntersect:
		return FieldIntersect
	case "not", FieldSubtract:
		return FieldSubtract
	case "or", FieldUnion:
		return FieldUnion
	case "box", FieldCube:
		return FieldCube
	case FieldSphere:
		return FieldSphere
	case FieldPlane:
		return FieldPlane
	}
	return t
}

// IsCombinator reports whether the field has Left and Right operands.
func (t FieldType) IsCombinator() bool {
	switch t.Canonical() {
	case FieldIntersect, FieldSubtract, FieldUnion:
		return true
	}
	return false
}

// Field is a node of a distance field tree.
type Field struct {
	ID   string    `json:"id,omitempty"`
	Type FieldType `json:"type"`

	Center   Vec3    `json:"center"`
	Radius   float64 `json:"radius,omitempty"`    // sphere
	HalfSize float64 `json:"half_size,omitempty"` // cube

	Point  Vec3 `json:"point"`  // plane
	Normal Vec3 `json:"normal"` // plane, normalized by the engine

	Left  *Field `json:"left,omitempty"`
	Right *Field `json:"right,omitempty"`
}

// Sky describes the miss gradient. World +Y points down the image, so
// Horizon is returned for direction (0,1,0) and Zenith for (0,-1,0).
type Sky struct {
	Horizon Color `json:"horizon"`
	Zenith  Color `json:"zenith"`
}

// RenderSettings defines quality/performance parameters.
type RenderSettings struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	SamplesPerPx int `json:"samples_per_px"`
	MaxBounces   int `json:"max_bounces"`
}

// Scene holds everything needed to render an image.
type Scene struct {
	Name     string         `json:"name"`
	Camera   Camera         `json:"camera"`
	Fields   []Field        `json:"fields"`
	Sky      *Sky           `json:"sky,omitempty"`
	Settings RenderSettings `json:"settings"`
}

// DefaultSky fades from a white horizon to a sky blue zenith.
var DefaultSky = Sky{
	Horizon: Color{R: 1, G: 1, B: 1},
	Zenith:  Color{R: 0.5, G: 0.7, B: 1.0},
}

// SkyOrDefault returns the configured sky or DefaultSky.
func (s *Scene) SkyOrDefault() Sky {
	if s.Sky == nil {
		return DefaultSky
	}
	return *s.Sky
}

// Default returns a unit sphere three units in front of a camera at the origin.
func Default() *Scene {
	return &Scene{
		Name: "default",
		Fields: []Field{
			{ID: "ball", Type: FieldSphere, Center: Vec3{Z: 3}, Radius: 1},
		},
		Settings: RenderSettings{Width: 400, Height: 225, SamplesPerPx: 10, MaxBounces: 5},
	}
}

// Validate checks every field tree and the render settings.
func (s *Scene) Validate() error {
	for i := range s.Fields {
		if err := s.Fields[i].validate(fmt.Sprintf("fields[%d]", i)); err != nil {
			return err
		}
	}
	st := s.Settings
	if st.Width < 0 || st.Height < 0 || st.SamplesPerPx < 0 || st.MaxBounces < 0 {
		return fmt.Errorf("%w: negative render settings %+v", ErrInvalidScene, st)
	}
	return nil
}

func (f *Field) validate(path string) error {
	switch f.Type.Canonical() {
	case FieldSphere:
		if f.Radius < 0 {
			return fmt.Errorf("%w: %s: negative radius %g", ErrInvalidScene, path, f.Radius)
		}
	case FieldCube:
		if f.HalfSize < 0 {
			return fmt.Errorf("%w: %s: negative half size %g", ErrInvalidScene, path, f.HalfSize)
		}
	case FieldPlane:
		if f.Normal == (Vec3{}) {
			return fmt.Errorf("%w: %s: zero plane normal", ErrInvalidScene, path)
		}
	case FieldIntersect, FieldSubtract, FieldUnion:
		if f.Left == nil || f.Right == nil {
			return fmt.Errorf("%w: %s: %s needs left and right", ErrInvalidScene, path, f.Type)
		}
		if err := f.Left.validate(path + ".left"); err != nil {
			return err
		}
		return f.Right.validate(path + ".right")
	default:
		return fmt.Errorf("%w: %s: unknown field type %q", ErrInvalidScene, path, f.Type)
	}
	return nil
}
