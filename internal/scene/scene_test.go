package scene

import (
	"errors"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := map[FieldType]FieldType{
		"and":       FieldIntersect,
		"And":       FieldIntersect,
		"intersect": FieldIntersect,
		"not":       FieldSubtract,
		"subtract":  FieldSubtract,
		"or":        FieldUnion,
		"union":     FieldUnion,
		"box":       FieldCube,
		"CUBE":      FieldCube,
		"sphere":    FieldSphere,
		"plane":     FieldPlane,
		"torus":     "torus",
	}
	for in, want := range tests {
		if got := in.Canonical(); got != want {
			t.Errorf("%q.Canonical() = %q, want %q", in, got, want)
		}
	}
	if !FieldType("and").IsCombinator() || FieldSphere.IsCombinator() {
		t.Error("IsCombinator misclassifies")
	}
}

func TestValidate(t *testing.T) {
	ball := &Field{Type: FieldSphere, Radius: 1}
	tests := []struct {
		name    string
		sc      Scene
		wantErr bool
	}{
		{"default", *Default(), false},
		{"empty", Scene{}, false},
		{"csg", Scene{Fields: []Field{{Type: "not", Left: &Field{Type: "box", HalfSize: 1}, Right: ball}}}, false},
		{"negative radius", Scene{Fields: []Field{{Type: FieldSphere, Radius: -1}}}, true},
		{"negative half size", Scene{Fields: []Field{{Type: FieldCube, HalfSize: -0.5}}}, true},
		{"zero plane normal", Scene{Fields: []Field{{Type: FieldPlane}}}, true},
		{"missing operand", Scene{Fields: []Field{{Type: FieldUnion, Left: ball}}}, true},
		{"bad nested operand", Scene{Fields: []Field{{Type: FieldUnion, Left: ball, Right: &Field{Type: "cone"}}}}, true},
		{"unknown type", Scene{Fields: []Field{{Type: "torus"}}}, true},
		{"negative samples", Scene{Settings: RenderSettings{SamplesPerPx: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidScene) {
				t.Fatalf("error %v does not wrap ErrInvalidScene", err)
			}
		})
	}
}

func TestSkyOrDefault(t *testing.T) {
	sc := Default()
	if sc.SkyOrDefault() != DefaultSky {
		t.Fatal("nil sky did not fall back to DefaultSky")
	}
	custom := Sky{Horizon: Color{R: 1}, Zenith: Color{B: 1}}
	sc.Sky = &custom
	if sc.SkyOrDefault() != custom {
		t.Fatal("custom sky ignored")
	}
}
