package reader

import (
	"fmt"
	"time"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/types"
)

// Reader for the whitespace separated .scn scene format. Each entry starts
// with an entity keyword followed by "Key: value" pairs in a fixed order:
//
//	BackgroundColor: r g b
//	GlobalAmbientColor: r g b
//	Camera Position: x y z FOV: f [LookAt: x y z] [Up: x y z]
//	DirectionalLight Color: r g b Direction: x y z
//	PointLight Color: r g b Position: x y z [Falloff: c l q] [Radius: r]
//	Plane Direction: x y z Point: x y z <material>
//	Sphere Center: x y z Radius: r <material>
//	Cube Center: x y z Scale: x y z [Rotation: yaw pitch roll] <material>
//	Triangle V0: x y z V1: x y z V2: x y z <material>
//	Model File: path Translation: x y z [Scale: s] <material>
//
// where <material> is:
//
//	Specular: r g b Diffuse: r g b Ambient: r g b SpecularExponent: f
//	Reflectivity: f [Texture: path uScale vScale]
type scnSceneReader struct {
	logger log.Logger

	// The parsed scene.
	rawScene *input.Scene

	errStack errorStack
}

// Create a new .scn scene reader.
func newScnReader() *scnSceneReader {
	return &scnSceneReader{
		logger:   log.New("scn scene reader"),
		rawScene: input.NewScene(),
		errStack: make(errorStack, 0),
	}
}

// Read scene definition.
func (r *scnSceneReader) Read(res *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, res.Path())
	start := time.Now()

	ts, err := tokenize(res)
	if err != nil {
		return nil, r.errStack.emitError(res.Path(), 0, "%s", err.Error())
	}

	if err = r.parse(res, ts); err != nil {
		return nil, err
	}
	r.rawScene.AssetRelPath = res

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.rawScene, nil
}

func (r *scnSceneReader) parse(res *asset.Resource, ts *tokenStream) error {
	for {
		tok, ok := ts.next()
		if !ok {
			return nil
		}

		var err error
		switch tok.text {
		case "BackgroundColor:":
			r.rawScene.Background, err = ts.vec3()
		case "GlobalAmbientColor:":
			r.rawScene.Ambient, err = ts.vec3()
		case "Camera":
			if r.rawScene.Camera != nil {
				r.logger.Warningf("[%s: %d] camera redefined; using last definition", res.Path(), tok.line)
			}
			r.rawScene.Camera, err = parseCamera(ts)
		case "DirectionalLight", "PointLight":
			var light *input.Light
			if light, err = parseLight(tok.text, ts); err == nil {
				r.rawScene.Lights = append(r.rawScene.Lights, light)
			}
		case "Plane", "Sphere", "Cube", "Triangle":
			var prim *input.Primitive
			if prim, err = parsePrimitive(tok.text, ts); err == nil {
				r.rawScene.Primitives = append(r.rawScene.Primitives, prim)
			}
		case "Model":
			var model *input.Model
			if model, err = parseModel(ts); err != nil {
				break
			}
			frame := fmt.Sprintf("referenced from %s:%d [Model]", res.Path(), tok.line)
			if err = loadModel(res, model, frame, &r.errStack); err != nil {
				return err
			}
			r.logger.Infof("loaded model %q (%d triangles)", model.File, len(model.Mesh.Triangles))
			r.rawScene.Models = append(r.rawScene.Models, model)
		default:
			err = fmt.Errorf("unknown entry %q", tok.text)
		}

		if err != nil {
			return r.errStack.emitError(res.Path(), ts.line(), "%s: %s", tok.text, err.Error())
		}
	}
}

func parseCamera(ts *tokenStream) (*input.Camera, error) {
	var err error
	cam := &input.Camera{}
	if cam.Position, err = ts.keyedVec3("Position:"); err != nil {
		return nil, err
	}
	if cam.FOV, err = ts.keyedFloat("FOV:"); err != nil {
		return nil, err
	}
	if ts.optional("LookAt:") {
		v, err := ts.vec3()
		if err != nil {
			return nil, err
		}
		cam.LookAt = &v
	}
	if ts.optional("Up:") {
		v, err := ts.vec3()
		if err != nil {
			return nil, err
		}
		cam.Up = &v
	}
	return cam, nil
}

func parseLight(kind string, ts *tokenStream) (*input.Light, error) {
	var err error
	light := &input.Light{}
	if light.Color, err = ts.keyedVec3("Color:"); err != nil {
		return nil, err
	}

	if kind == "DirectionalLight" {
		light.Type = input.DirectionalLight
		light.Direction, err = ts.keyedVec3("Direction:")
		return light, err
	}

	light.Type = input.PointLight
	if light.Position, err = ts.keyedVec3("Position:"); err != nil {
		return nil, err
	}
	if ts.optional("Falloff:") {
		v, err := ts.vec3()
		if err != nil {
			return nil, err
		}
		light.Falloff = &v
	}
	if ts.optional("Radius:") {
		if light.Radius, err = ts.float(); err != nil {
			return nil, err
		}
	}
	return light, nil
}

func parsePrimitive(kind string, ts *tokenStream) (*input.Primitive, error) {
	var err error
	prim := &input.Primitive{}
	switch kind {
	case "Plane":
		prim.Type = input.Plane
		if prim.Normal, err = ts.keyedVec3("Direction:"); err != nil {
			return nil, err
		}
		if prim.Point, err = ts.keyedVec3("Point:"); err != nil {
			return nil, err
		}
	case "Sphere":
		prim.Type = input.Sphere
		if prim.Center, err = ts.keyedVec3("Center:"); err != nil {
			return nil, err
		}
		if prim.Radius, err = ts.keyedFloat("Radius:"); err != nil {
			return nil, err
		}
	case "Cube":
		prim.Type = input.Cube
		if prim.Center, err = ts.keyedVec3("Center:"); err != nil {
			return nil, err
		}
		if prim.Scale, err = ts.keyedVec3("Scale:"); err != nil {
			return nil, err
		}
		if ts.optional("Rotation:") {
			if prim.Rotation, err = ts.vec3(); err != nil {
				return nil, err
			}
		}
	case "Triangle":
		prim.Type = input.Triangle
		prim.Vertices = make([]types.Vec3, 3)
		for i, key := range []string{"V0:", "V1:", "V2:"} {
			if prim.Vertices[i], err = ts.keyedVec3(key); err != nil {
				return nil, err
			}
		}
	}

	if prim.Material, err = parseMaterial(ts); err != nil {
		return nil, err
	}
	return prim, nil
}

func parseModel(ts *tokenStream) (*input.Model, error) {
	var err error
	model := &input.Model{}
	if err = ts.expect("File:"); err != nil {
		return nil, err
	}
	if model.File, err = ts.str(); err != nil {
		return nil, err
	}
	if model.Translation, err = ts.keyedVec3("Translation:"); err != nil {
		return nil, err
	}
	if ts.optional("Scale:") {
		if model.Scale, err = ts.float(); err != nil {
			return nil, err
		}
	}
	if model.Material, err = parseMaterial(ts); err != nil {
		return nil, err
	}
	return model, nil
}

func parseMaterial(ts *tokenStream) (input.Material, error) {
	var err error
	var mat input.Material
	if mat.Specular, err = ts.keyedVec3("Specular:"); err != nil {
		return mat, err
	}
	if mat.Diffuse, err = ts.keyedVec3("Diffuse:"); err != nil {
		return mat, err
	}
	if mat.Ambient, err = ts.keyedVec3("Ambient:"); err != nil {
		return mat, err
	}
	if mat.Glossiness, err = ts.keyedFloat("SpecularExponent:"); err != nil {
		return mat, err
	}
	if mat.Reflectivity, err = ts.keyedFloat("Reflectivity:"); err != nil {
		return mat, err
	}
	if ts.optional("Texture:") {
		if mat.Texture, err = ts.str(); err != nil {
			return mat, err
		}
		if mat.UScale, err = ts.float(); err != nil {
			return mat, err
		}
		if mat.VScale, err = ts.float(); err != nil {
			return mat, err
		}
	}
	return mat, nil
}
