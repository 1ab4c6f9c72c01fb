package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/types"
)

// Reader for wavefront .obj models. Only geometry is used; materials,
// groups and smoothing directives are ignored.
type wavefrontModelReader struct {
	logger log.Logger

	mesh *input.Mesh

	// List of vertices; uv and normal coordinates are only counted so that
	// face indices can be validated.
	vertexList  []types.Vec3
	uvCount     int
	normalCount int

	errStack *errorStack
}

func newWavefrontReader(stack *errorStack) *wavefrontModelReader {
	return &wavefrontModelReader{
		logger:     log.New("wavefront model reader"),
		vertexList: make([]types.Vec3, 0),
		errStack:   stack,
	}
}

// Read model geometry.
func (r *wavefrontModelReader) Read(res *asset.Resource) (*input.Mesh, error) {
	r.mesh = &input.Mesh{
		Name:      res.Name(),
		Triangles: make([][3]types.Vec3, 0),
	}

	lineNum := 0
	ignored := 0
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, r.errStack.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vt":
			r.uvCount++
		case "vn":
			r.normalCount++
		case "f":
			tris, err := r.parseFace(lineTokens)
			if err != nil {
				return nil, r.errStack.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.mesh.Triangles = append(r.mesh.Triangles, tris...)
		default:
			ignored++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, r.errStack.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	if ignored > 0 {
		r.logger.Debugf("%s: ignored %d unsupported directives", res.Path(), ignored)
	}
	if len(r.mesh.Triangles) == 0 {
		r.logger.Warningf(`model "%s" contains no faces`, res.Path())
	}
	return r.mesh, nil
}

// Parse face definition. Each face argument is comprised of 1, 2 or 3
// indices separated by a slash character. The following formats are
// supported:
//   - vertexIndex
//   - vertexIndex/uvIndex
//   - vertexIndex//normalIndex
//   - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the end
// of the coordinate list. Faces with more than 3 vertices are split into a
// triangle fan.
func (r *wavefrontModelReader) parseFace(lineTokens []string) ([][3]types.Vec3, error) {
	if len(lineTokens) < 4 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	vertices := make([]types.Vec3, 0, len(lineTokens)-1)
	expIndices := 0
	for arg, vToken := range lineTokens[1:] {
		vTokens := strings.Split(vToken, "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
			if expIndices > 3 {
				return nil, fmt.Errorf("face argument %d contains %d indices; expected at most 3", arg, expIndices)
			}
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices = append(vertices, r.vertexList[vOffset])

		if expIndices > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], r.uvCount); err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}
		if expIndices > 2 && vTokens[2] != "" {
			if _, err = selectFaceCoordIndex(vTokens[2], r.normalCount); err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	tris := make([][3]types.Vec3, 0, len(vertices)-2)
	for i := 1; i < len(vertices)-1; i++ {
		tris = append(tris, [3]types.Vec3{vertices[0], vertices[i], vertices[i+1]})
	}
	return tris, nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// offset into the coord list. Negative indices reference elements from the
// end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
