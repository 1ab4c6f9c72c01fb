package reader

import (
	"strings"
	"testing"

	"github.com/achilleasa/whitted/types"
)

func TestWavefrontReader(t *testing.T) {
	payload := `
# cube corner
o corner
mtllib corner.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1
g front
usemtl white
s off
f 1 2 3
f 1/1 2/2 3/3
f 1//1 2//1 3//1
f 1/1/1 2/2/1 3/3/1
f -4 -3 -2 -1
`
	stack := make(errorStack, 0)
	mesh, err := newWavefrontReader(&stack).Read(mockResource("corner.obj", payload))
	if err != nil {
		t.Fatal(err)
	}

	if mesh.Name != "corner.obj" {
		t.Fatalf("expected mesh name corner.obj; got %s", mesh.Name)
	}
	if len(mesh.Triangles) != 6 {
		t.Fatalf("expected 6 triangles; got %d", len(mesh.Triangles))
	}

	exp := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	for index := 0; index < 5; index++ {
		if mesh.Triangles[index] != exp {
			t.Fatalf("[tri %d] expected %v; got %v", index, exp, mesh.Triangles[index])
		}
	}
	if exp := [3]types.Vec3{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}}; mesh.Triangles[5] != exp {
		t.Fatalf("expected second quad triangle %v; got %v", exp, mesh.Triangles[5])
	}

	bbox := mesh.BBox()
	if bbox.Min != types.XYZ(0, 0, 0) || bbox.Max != types.XYZ(1, 1, 0) {
		t.Fatalf("unexpected mesh bbox %v", bbox)
	}
}

func TestWavefrontReaderErrors(t *testing.T) {
	type spec struct {
		payload string
		expErr  string
	}
	specs := []spec{
		{"v 0 0", `[model.obj: 1] error: unsupported syntax for "v"; expected 3 arguments; got 2`},
		{"v 0 0 0\nv 1 0 0\nf 1 2", `[model.obj: 3] error: unsupported syntax for "f"; expected at least 3 arguments; got 2`},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4", `[model.obj: 4] error: could not parse vertex coord for face argument 2: index out of bounds`},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/2 3/3", `[model.obj: 4] error: could not parse tex coord for face argument 0: index out of bounds`},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2/1 3", `[model.obj: 4] error: expected each face argument to contain 1 indices; arg 1 contains 2 indices`},
		{"v 0 0 0\nv 1 0 0\nv 0 1 0\nf /1 2 3", `[model.obj: 4] error: face argument 0 does not include a vertex index`},
	}

	for specIndex, s := range specs {
		stack := make(errorStack, 0)
		_, err := newWavefrontReader(&stack).Read(mockResource("model.obj", s.payload))
		if err == nil || err.Error() != s.expErr {
			t.Errorf("[spec %d] expected error:\n%s\ngot:\n%v", specIndex, s.expErr, err)
		}
	}
}

func TestMdlReader(t *testing.T) {
	payload := `
Vertex 1 0 0 0
Vertex 2 1 0 0
Vertex 3 0 1 0
Vertex 4 0 0 1
Face 1 1 2 3
Face 2 1 3 4
`
	stack := make(errorStack, 0)
	mesh, err := newMdlReader(&stack).Read(mockResource("model.mdl", payload))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Triangles) != 2 {
		t.Fatalf("expected 2 triangles; got %d", len(mesh.Triangles))
	}
	if exp := [3]types.Vec3{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}}; mesh.Triangles[1] != exp {
		t.Fatalf("expected triangle %v; got %v", exp, mesh.Triangles[1])
	}
}

func TestMdlReaderErrors(t *testing.T) {
	type spec struct {
		payload string
		expErr  string
	}
	specs := []spec{
		{"Vertex 1 0 0", `[model.mdl: 1] error: Vertex: expected a number; got end of file`},
		{"Vertex one 0 0 0", `[model.mdl: 1] error: Vertex: expected an integer; got "one"`},
		{"Vertex 1 0 0 0\nFace 1 1 1 0", `[model.mdl: 2] error: Face: vertex index 0 out of bounds; 1 vertices defined`},
		{"Normal 1 0 0 0", `[model.mdl: 1] error: Normal: unknown entry "Normal"`},
	}

	for specIndex, s := range specs {
		stack := make(errorStack, 0)
		_, err := newMdlReader(&stack).Read(mockResource("model.mdl", s.payload))
		if err == nil || err.Error() != s.expErr {
			t.Errorf("[spec %d] expected error:\n%s\ngot:\n%v", specIndex, s.expErr, err)
		}
	}
}

func TestErrorStack(t *testing.T) {
	stack := make(errorStack, 0)
	stack.pushFrame("referenced from a.scn:1 [Model]")
	stack.pushFrame("referenced from b.scn:2 [Model]")

	err := stack.emitError("c.mdl", 3, "bad %s", "face")
	exp := strings.Join([]string{
		"[c.mdl: 3] error: bad face",
		"referenced from b.scn:2 [Model]",
		"referenced from a.scn:1 [Model]",
	}, "\n")
	if err.Error() != exp {
		t.Fatalf("expected error:\n%s\ngot:\n%s", exp, err.Error())
	}

	stack.popFrame()
	if err = stack.emitError("", 0, "oops"); err.Error() != "error: oops\nreferenced from a.scn:1 [Model]" {
		t.Fatalf("unexpected error: %s", err.Error())
	}
}
