package scene

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSaveLoad(t *testing.T) {
	sc := Default()
	sc.Camera.Orbit = &Orbit{Radius: 0.5, Speed: 1}
	sc.Sky = &Sky{Horizon: Color{R: 1, G: 0.9, B: 0.8}, Zenith: Color{B: 1}}
	sc.Fields = append(sc.Fields, Field{
		Type:  FieldSubtract,
		Left:  &Field{Type: FieldCube, Center: Vec3{X: 2, Z: 5}, HalfSize: 1},
		Right: &Field{Type: FieldSphere, Center: Vec3{X: 2, Z: 4}, Radius: 0.7},
	})

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := Save(path, sc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, sc) {
		t.Fatalf("Load() = %+v, want %+v", got, sc)
	}
}

func TestDecode(t *testing.T) {
	const src = `{
  "name": "lens",
  "camera": {"position": {"x": 0, "y": 0, "z": 0}},
  "fields": [
    {"type": "and",
     "left":  {"type": "sphere", "center": {"x": -0.5, "y": 0, "z": 3}, "radius": 1},
     "right": {"type": "sphere", "center": {"x": 0.5, "y": 0, "z": 3}, "radius": 1}}
  ]
}`
	sc, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sc.Name != "lens" || len(sc.Fields) != 1 || sc.Fields[0].Type.Canonical() != FieldIntersect {
		t.Fatalf("decoded %+v", sc)
	}
	if sc.Fields[0].Right.Center.X != 0.5 {
		t.Fatalf("right operand = %+v", sc.Fields[0].Right)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(strings.NewReader("{not json")); err == nil {
		t.Fatal("Decode accepted malformed JSON")
	}
	_, err := Decode(strings.NewReader(`{"fields": [{"type": "sphere", "radius": -2}]}`))
	if !errors.Is(err, ErrInvalidScene) {
		t.Fatalf("Decode error = %v, want ErrInvalidScene", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}
