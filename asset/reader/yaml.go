package reader

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/log"
	"gopkg.in/yaml.v3"
)

// Reader for YAML scene descriptions.
type yamlSceneReader struct {
	logger   log.Logger
	errStack errorStack
}

func newYAMLReader() *yamlSceneReader {
	return &yamlSceneReader{
		logger:   log.New("yaml scene reader"),
		errStack: make(errorStack, 0),
	}
}

// Read scene definition.
func (r *yamlSceneReader) Read(res *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, res.Path())
	start := time.Now()

	rawScene := input.NewScene()
	dec := yaml.NewDecoder(res)
	dec.KnownFields(true)
	if err := dec.Decode(rawScene); err != nil && !errors.Is(err, io.EOF) {
		return nil, r.errStack.emitError(res.Path(), 0, "%s", err.Error())
	}

	for index, light := range rawScene.Lights {
		lt, err := input.ParseLightType(string(light.Type))
		if err != nil {
			return nil, r.errStack.emitError(res.Path(), 0, "lights[%d]: %s", index, err.Error())
		}
		light.Type = lt
	}

	for index, prim := range rawScene.Primitives {
		pt, err := input.ParsePrimitiveType(string(prim.Type))
		if err != nil {
			return nil, r.errStack.emitError(res.Path(), 0, "primitives[%d]: %s", index, err.Error())
		}
		prim.Type = pt
		if pt == input.Triangle && len(prim.Vertices) != 3 {
			return nil, r.errStack.emitError(res.Path(), 0, "primitives[%d]: expected 3 triangle vertices; got %d", index, len(prim.Vertices))
		}
	}

	for index, model := range rawScene.Models {
		if model.File == "" {
			return nil, r.errStack.emitError(res.Path(), 0, "models[%d]: missing model file", index)
		}
		frame := fmt.Sprintf("referenced from %s [models[%d]]", res.Path(), index)
		if err := loadModel(res, model, frame, &r.errStack); err != nil {
			return nil, err
		}
		r.logger.Infof("loaded model %q (%d triangles)", model.File, len(model.Mesh.Triangles))
	}
	rawScene.AssetRelPath = res

	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return rawScene, nil
}
