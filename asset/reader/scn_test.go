package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/types"
)

const testMaterial = "Specular: 0.2 0.2 0.2 Diffuse: 0.5 0.6 0.7 Ambient: 0.1 0.1 0.1 SpecularExponent: 32 Reflectivity: 0.25"

func TestScnReader(t *testing.T) {
	payload := `
# test scene
BackgroundColor: 0.1 0.2 0.3
GlobalAmbientColor: 0.2 0.2 0.2
Camera Position: 0 1 5 FOV: 60 LookAt: 0 1 0
DirectionalLight Color: 1 1 1 Direction: 0 -1 -1
PointLight Color: 1 0.5 0.5 Position: -5 10 -8 Falloff: 1 0.1 0.01 Radius: 0.5
PointLight Color: 1 1 1 Position: 5 10 8
Plane Direction: 0 1 0 Point: 0 0 0 ` + testMaterial + ` Texture: checker.png 2 4
Sphere Center: 0 1 -3 Radius: 1 ` + testMaterial + `
Cube Center: -5 -3.5 -22 Scale: 0.5 0.5 0.5 Rotation: 45 0 0 ` + testMaterial + `
Triangle V0: 0 0 0 V1: 1 0 0 V2: 0 1 0 # trailing comment
	` + testMaterial

	sc, err := newScnReader().Read(mockResource("scene.scn", payload))
	if err != nil {
		t.Fatal(err)
	}

	if sc.Background != types.XYZ(0.1, 0.2, 0.3) || sc.Ambient != types.XYZ(0.2, 0.2, 0.2) {
		t.Fatalf("unexpected background/ambient colors: %v, %v", sc.Background, sc.Ambient)
	}

	if sc.Camera == nil || sc.Camera.FOV != 60 || sc.Camera.Position != types.XYZ(0, 1, 5) {
		t.Fatalf("unexpected camera: %+v", sc.Camera)
	}
	if sc.Camera.LookAt == nil || *sc.Camera.LookAt != types.XYZ(0, 1, 0) {
		t.Fatal("expected camera look at point to be set")
	}
	if sc.Camera.Up != nil {
		t.Fatal("expected camera up vector to be unset")
	}

	if len(sc.Lights) != 3 {
		t.Fatalf("expected 3 lights; got %d", len(sc.Lights))
	}
	if sc.Lights[0].Type != input.DirectionalLight || sc.Lights[0].Direction != types.XYZ(0, -1, -1) {
		t.Fatalf("unexpected directional light: %+v", sc.Lights[0])
	}
	pl := sc.Lights[1]
	if pl.Type != input.PointLight || pl.Radius != 0.5 || pl.Falloff == nil || *pl.Falloff != types.XYZ(1, 0.1, 0.01) {
		t.Fatalf("unexpected point light: %+v", pl)
	}
	if sc.Lights[2].Falloff != nil || sc.Lights[2].Radius != 0 {
		t.Fatalf("expected optional point light fields to be unset; got %+v", sc.Lights[2])
	}

	expTypes := []input.PrimitiveType{input.Plane, input.Sphere, input.Cube, input.Triangle}
	if len(sc.Primitives) != len(expTypes) {
		t.Fatalf("expected %d primitives; got %d", len(expTypes), len(sc.Primitives))
	}
	for index, exp := range expTypes {
		if sc.Primitives[index].Type != exp {
			t.Fatalf("[prim %d] expected type %s; got %s", index, exp, sc.Primitives[index].Type)
		}
	}

	plane := sc.Primitives[0]
	if plane.Material.Texture != "checker.png" || plane.Material.UScale != 2 || plane.Material.VScale != 4 {
		t.Fatalf("unexpected plane texture settings: %+v", plane.Material)
	}
	sphere := sc.Primitives[1]
	if sphere.Radius != 1 || sphere.Material.Glossiness != 32 || sphere.Material.Reflectivity != 0.25 {
		t.Fatalf("unexpected sphere: %+v", sphere)
	}
	if sphere.Material.Diffuse != types.XYZ(0.5, 0.6, 0.7) {
		t.Fatalf("unexpected sphere diffuse color: %v", sphere.Material.Diffuse)
	}
	cube := sc.Primitives[2]
	if cube.Scale != types.XYZ(0.5, 0.5, 0.5) || cube.Rotation != types.XYZ(45, 0, 0) {
		t.Fatalf("unexpected cube: %+v", cube)
	}
	tri := sc.Primitives[3]
	if len(tri.Vertices) != 3 || tri.Vertices[1] != types.XYZ(1, 0, 0) {
		t.Fatalf("unexpected triangle vertices: %v", tri.Vertices)
	}

	if sc.AssetRelPath == nil {
		t.Fatal("expected asset relative path to be set")
	}
}

func TestScnReaderErrors(t *testing.T) {
	type spec struct {
		payload string
		expErr  string
	}
	specs := []spec{
		{"Teapot Center: 0 0 0", `[scene.scn: 1] error: Teapot: unknown entry "Teapot"`},
		{"BackgroundColor: 0 0", `[scene.scn: 1] error: BackgroundColor:: expected a number; got end of file`},
		{"\n\nCamera Position: 0 0 0 FOV: wide", `[scene.scn: 3] error: Camera: expected a number; got "wide"`},
		{"Sphere Center: 0 0 0 Radius: 1 Diffuse: 1 1 1", `[scene.scn: 1] error: Sphere: expected "Specular:"; got "Diffuse:"`},
		{"Plane Point: 0 0 0", `[scene.scn: 1] error: Plane: expected "Direction:"; got "Point:"`},
	}

	for specIndex, s := range specs {
		_, err := newScnReader().Read(mockResource("scene.scn", s.payload))
		if err == nil || err.Error() != s.expErr {
			t.Errorf("[spec %d] expected error:\n%s\ngot:\n%v", specIndex, s.expErr, err)
		}
	}
}

func TestScnReaderModels(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "tri.mdl"), "Vertex 1 0 0 0\nVertex 2 1 0 0\nVertex 3 0 1 0\nFace 1 1 2 3\n")
	writeFile(t, filepath.Join(dir, "models", "quad.obj"), "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n")
	scenePath := filepath.Join(dir, "scene.scn")
	writeFile(t, scenePath, `
Model File: models/tri.mdl Translation: 0 0 -5 `+testMaterial+`
Model File: models/quad.obj Translation: 1 1 1 Scale: 2 `+testMaterial)

	sc, err := ReadScene(scenePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Models) != 2 {
		t.Fatalf("expected 2 models; got %d", len(sc.Models))
	}
	if sc.Models[0].Mesh == nil || len(sc.Models[0].Mesh.Triangles) != 1 {
		t.Fatalf("expected tri.mdl to contain 1 triangle")
	}
	if sc.Models[0].Translation != types.XYZ(0, 0, -5) || sc.Models[0].Scale != 0 {
		t.Fatalf("unexpected model placement: %+v", sc.Models[0])
	}
	if len(sc.Models[1].Mesh.Triangles) != 2 || sc.Models[1].Scale != 2 {
		t.Fatalf("expected quad.obj to contain 2 triangles with scale 2; got %d, %f", len(sc.Models[1].Mesh.Triangles), sc.Models[1].Scale)
	}
}

func TestScnReaderModelErrorStack(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "broken.mdl")
	writeFile(t, modelPath, "Vertex 1 0 0 0\nFace 1 1 2 3\n")
	scenePath := filepath.Join(dir, "scene.scn")
	writeFile(t, scenePath, "BackgroundColor: 0 0 0\nModel File: broken.mdl Translation: 0 0 0 "+testMaterial)

	_, err := ReadScene(scenePath)
	if err == nil {
		t.Fatal("expected an error")
	}

	expLines := []string{
		"[" + modelPath + ": 2] error: Face: vertex index 2 out of bounds; 1 vertices defined",
		"referenced from " + scenePath + ":2 [Model]",
	}
	if got := strings.Split(err.Error(), "\n"); len(got) != 2 || got[0] != expLines[0] || got[1] != expLines[1] {
		t.Fatalf("expected error:\n%s\ngot:\n%s", strings.Join(expLines, "\n"), err.Error())
	}

	writeFile(t, scenePath, "Model File: missing.obj Translation: 0 0 0 "+testMaterial)
	if _, err = ReadScene(scenePath); err == nil || !strings.Contains(err.Error(), "referenced from "+scenePath+":1 [Model]") {
		t.Fatalf("expected missing model error to include the reference frame; got %v", err)
	}

	writeFile(t, filepath.Join(dir, "model.3ds"), "")
	writeFile(t, scenePath, "Model File: model.3ds Translation: 0 0 0 "+testMaterial)
	if _, err = ReadScene(scenePath); err == nil || !strings.Contains(err.Error(), `unsupported model format ".3ds"`) {
		t.Fatalf("expected unsupported model format error; got %v", err)
	}
}

func TestReadSceneUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.blend")
	writeFile(t, path, "")
	if _, err := ReadScene(path); err == nil {
		t.Fatal("expected an error for an unsupported scene format")
	}

	if Supported("scene.blend") || !Supported("scene.SCN") || !Supported("scene.yml") {
		t.Fatal("unexpected Supported result")
	}
}

func mockResource(name, payload string) *asset.Resource {
	return asset.NewResourceFromStream(name, strings.NewReader(payload))
}

func writeFile(t *testing.T, path, data string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}
