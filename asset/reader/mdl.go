package reader

import (
	"fmt"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/types"
)

// Reader for .mdl models. Models are lists of
//
//	Vertex i x y z
//	Face n a b c
//
// entries where face vertex indices are 1-based and refer to vertices
// defined before the face.
type mdlModelReader struct {
	logger   log.Logger
	errStack *errorStack
}

func newMdlReader(stack *errorStack) *mdlModelReader {
	return &mdlModelReader{
		logger:   log.New("mdl model reader"),
		errStack: stack,
	}
}

// Read model geometry.
func (r *mdlModelReader) Read(res *asset.Resource) (*input.Mesh, error) {
	ts, err := tokenize(res)
	if err != nil {
		return nil, r.errStack.emitError(res.Path(), 0, "%s", err.Error())
	}

	mesh := &input.Mesh{
		Name:      res.Name(),
		Triangles: make([][3]types.Vec3, 0),
	}
	vertices := make([]types.Vec3, 0)
	for {
		tok, ok := ts.next()
		if !ok {
			break
		}

		switch tok.text {
		case "Vertex":
			var v types.Vec3
			if _, err = ts.integer(); err == nil {
				v, err = ts.vec3()
			}
			vertices = append(vertices, v)
		case "Face":
			var tri [3]types.Vec3
			if _, err = ts.integer(); err == nil {
				tri, err = r.parseFace(ts, vertices)
			}
			mesh.Triangles = append(mesh.Triangles, tri)
		default:
			err = fmt.Errorf("unknown entry %q", tok.text)
		}

		if err != nil {
			return nil, r.errStack.emitError(res.Path(), ts.line(), "%s: %s", tok.text, err.Error())
		}
	}

	r.logger.Debugf("%s: %d vertices, %d faces", res.Path(), len(vertices), len(mesh.Triangles))
	return mesh, nil
}

func (r *mdlModelReader) parseFace(ts *tokenStream, vertices []types.Vec3) ([3]types.Vec3, error) {
	var tri [3]types.Vec3
	for i := range tri {
		index, err := ts.integer()
		if err != nil {
			return tri, err
		}
		if index < 1 || index > len(vertices) {
			return tri, fmt.Errorf("vertex index %d out of bounds; %d vertices defined", index, len(vertices))
		}
		tri[i] = vertices[index-1]
	}
	return tri, nil
}
