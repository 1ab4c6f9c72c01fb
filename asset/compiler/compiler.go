package compiler

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/asset/texture"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/types"
)

// Compiler options.
type Options struct {
	// KD-tree build parameters.
	KDTree scene.KDTreeOptions

	// Skip building the KD-tree; the scene can then only be rendered using
	// brute force intersection tests.
	SkipKDTree bool
}

// Get the default compiler options.
func DefaultOptions() Options {
	return Options{KDTree: scene.DefaultKDTreeOptions()}
}

type sceneCompiler struct {
	rawScene *input.Scene
	scene    *scene.Scene
	logger   log.Logger
	opts     Options

	// A map of texture paths to loaded textures. This cache allows us to
	// re-use already loaded textures when referenced by multiple materials.
	texCache map[string]*texture.Texture
}

// Compile a scene description produced by a scene reader into a scene that
// can be rendered. Any invalid entry aborts compilation.
func Compile(rawScene *input.Scene, opts Options) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		rawScene: rawScene,
		scene:    scene.NewScene(),
		logger:   log.New("scene compiler"),
		opts:     opts,
		texCache: make(map[string]*texture.Texture),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	if rawScene.Background.IsInvalid() {
		return nil, fmt.Errorf("compiler: background color contains invalid components: %v", rawScene.Background)
	}
	if rawScene.Ambient.IsInvalid() {
		return nil, fmt.Errorf("compiler: ambient color contains invalid components: %v", rawScene.Ambient)
	}
	compiler.scene.BgColor = rawScene.Background
	compiler.scene.AmbientColor = rawScene.Ambient

	var err error
	if err = compiler.setupCamera(); err != nil {
		return nil, err
	}
	if err = compiler.setupLights(); err != nil {
		return nil, err
	}
	if err = compiler.setupPrimitives(); err != nil {
		return nil, err
	}
	if err = compiler.setupModels(); err != nil {
		return nil, err
	}

	if !opts.SkipKDTree {
		compiler.logger.Infof("building KD-tree for %d primitives", len(compiler.scene.Primitives))
		compiler.scene.Build(opts.KDTree)
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.scene, nil
}

func (sc *sceneCompiler) setupCamera() error {
	rawCam := sc.rawScene.Camera
	if rawCam == nil {
		sc.logger.Warningf("scene does not define a camera")
		return nil
	}

	if !(rawCam.FOV > 0 && rawCam.FOV < 180) {
		return fmt.Errorf("compiler: camera FOV must be in (0, 180); got %f", rawCam.FOV)
	}

	cam := scene.NewCamera(rawCam.FOV)
	cam.Position = rawCam.Position
	if rawCam.LookAt != nil {
		cam.LookAt = *rawCam.LookAt
	} else {
		cam.LookAt = rawCam.Position.Add(types.Vec3{0, 0, -1})
	}
	if rawCam.Up != nil {
		cam.Up = *rawCam.Up
	}
	for _, v := range []types.Vec3{cam.Position, cam.LookAt, cam.Up} {
		if v.IsInvalid() {
			return fmt.Errorf("compiler: camera vectors contain invalid components: %v", v)
		}
	}
	if cam.LookAt.Sub(cam.Position).IsZero() {
		return fmt.Errorf("compiler: camera position and look at point coincide")
	}
	if cam.Up.IsZero() {
		return fmt.Errorf("compiler: camera up vector must be non-zero")
	}

	sc.scene.SetCamera(cam)
	return nil
}

func (sc *sceneCompiler) setupLights() error {
	for index, rawLight := range sc.rawScene.Lights {
		var light *scene.Light
		switch rawLight.Type {
		case input.DirectionalLight:
			light = scene.NewDirectionalLight(rawLight.Color, rawLight.Direction)
		case input.PointLight:
			if !(rawLight.Radius >= 0) || !types.IsFinite(rawLight.Radius) {
				return fmt.Errorf("compiler: light %d: radius must be >= 0; got %f", index, rawLight.Radius)
			}
			falloff := scene.NoFalloff
			if rawLight.Falloff != nil {
				falloff = scene.Falloff{
					Constant:  rawLight.Falloff[0],
					Linear:    rawLight.Falloff[1],
					Quadratic: rawLight.Falloff[2],
				}
				if rawLight.Falloff.IsInvalid() || falloff.Constant < 0 || falloff.Linear < 0 || falloff.Quadratic < 0 {
					return fmt.Errorf("compiler: light %d: falloff coefficients must be >= 0; got %v", index, *rawLight.Falloff)
				}
			}
			light = scene.NewPointLight(rawLight.Color, rawLight.Position, falloff, rawLight.Radius)
		default:
			return fmt.Errorf("compiler: light %d: unsupported light type %q", index, rawLight.Type)
		}

		if err := sc.scene.AddLight(light); err != nil {
			return fmt.Errorf("compiler: light %d: %w", index, err)
		}
	}
	sc.logger.Infof("added %d lights", len(sc.scene.Lights))
	return nil
}

func (sc *sceneCompiler) setupPrimitives() error {
	for index, rawPrim := range sc.rawScene.Primitives {
		mat, err := sc.compileMaterial(rawPrim.Material)
		if err != nil {
			return fmt.Errorf("compiler: primitive %d (%s): %w", index, rawPrim.Type, err)
		}

		if err = validateGeometry(rawPrim); err != nil {
			return fmt.Errorf("compiler: primitive %d (%s): %w", index, rawPrim.Type, err)
		}

		var prim *scene.Primitive
		switch rawPrim.Type {
		case input.Plane:
			prim = scene.NewPlane(rawPrim.Normal, rawPrim.Point, mat)
		case input.Sphere:
			prim = scene.NewSphere(rawPrim.Center, rawPrim.Radius, mat)
		case input.Cube:
			rot := types.QuatFromYawPitchRoll(rawPrim.Rotation[0], rawPrim.Rotation[1], rawPrim.Rotation[2])
			prim = scene.NewBox(rawPrim.Center, rawPrim.Scale, rot, mat)
		case input.Triangle:
			if len(rawPrim.Vertices) != 3 {
				return fmt.Errorf("compiler: primitive %d (%s): expected 3 vertices; got %d", index, rawPrim.Type, len(rawPrim.Vertices))
			}
			prim = scene.NewTriangle([3]types.Vec3{rawPrim.Vertices[0], rawPrim.Vertices[1], rawPrim.Vertices[2]}, mat)
		default:
			return fmt.Errorf("compiler: primitive %d: unsupported primitive type %q", index, rawPrim.Type)
		}

		if prim.Degenerate() {
			sc.logger.Warningf("primitive %d (%s) is degenerate and will never be hit", index, rawPrim.Type)
		}
		if err = sc.scene.AddPrimitive(prim); err != nil {
			return fmt.Errorf("compiler: primitive %d: %w", index, err)
		}
	}
	return nil
}

// Instantiate model triangles. Vertices are scaled and then translated.
func (sc *sceneCompiler) setupModels() error {
	for index, model := range sc.rawScene.Models {
		if model.Mesh == nil {
			return fmt.Errorf("compiler: model %d (%s): mesh has not been loaded", index, model.File)
		}
		if !(model.Scale >= 0) || !types.IsFinite(model.Scale) {
			return fmt.Errorf("compiler: model %d (%s): scale must be > 0; got %f", index, model.File, model.Scale)
		}

		if model.Translation.IsInvalid() {
			return fmt.Errorf("compiler: model %d (%s): translation contains invalid components: %v", index, model.File, model.Translation)
		}

		mat, err := sc.compileMaterial(model.Material)
		if err != nil {
			return fmt.Errorf("compiler: model %d (%s): %w", index, model.File, err)
		}

		scale := model.Scale
		if scale == 0 {
			scale = defaultModelScale(model.File)
		}

		degenerate := 0
		for _, tri := range model.Mesh.Triangles {
			var vertices [3]types.Vec3
			for i, v := range tri {
				if v.IsInvalid() {
					return fmt.Errorf("compiler: model %d (%s): vertex contains invalid components: %v", index, model.File, v)
				}
				vertices[i] = v.Mul(scale).Add(model.Translation)
			}
			prim := scene.NewTriangle(vertices, mat)
			if prim.Degenerate() {
				degenerate++
			}
			if err = sc.scene.AddPrimitive(prim); err != nil {
				return fmt.Errorf("compiler: model %d (%s): %w", index, model.File, err)
			}
		}

		sc.logger.Infof("instantiated model %q (%d triangles)", model.File, len(model.Mesh.Triangles))
		if degenerate > 0 {
			sc.logger.Warningf("model %q contains %d degenerate triangles", model.File, degenerate)
		}
	}
	return nil
}

// Models in the .mdl format are authored at half size and are doubled
// unless an explicit scale is given.
func defaultModelScale(file string) float32 {
	if strings.ToLower(path.Ext(file)) == ".mdl" {
		return 2
	}
	return 1
}

// Reject NaN or infinite geometry parameters. Finite but degenerate
// geometry is allowed and never produces hits.
func validateGeometry(rawPrim *input.Primitive) error {
	vectors := []types.Vec3{rawPrim.Normal, rawPrim.Point, rawPrim.Center, rawPrim.Scale, rawPrim.Rotation}
	vectors = append(vectors, rawPrim.Vertices...)
	for _, v := range vectors {
		if v.IsInvalid() {
			return fmt.Errorf("geometry contains invalid components: %v", v)
		}
	}
	if !types.IsFinite(rawPrim.Radius) {
		return fmt.Errorf("radius must be finite; got %f", rawPrim.Radius)
	}
	return nil
}

func (sc *sceneCompiler) compileMaterial(rawMat input.Material) (*scene.Material, error) {
	mat := &scene.Material{
		Specular:     rawMat.Specular,
		Diffuse:      rawMat.Diffuse,
		Ambient:      rawMat.Ambient,
		Glossiness:   rawMat.Glossiness,
		Reflectivity: rawMat.Reflectivity,
		UScale:       rawMat.UScale,
		VScale:       rawMat.VScale,
	}
	if mat.UScale == 0 {
		mat.UScale = 1
	}
	if mat.VScale == 0 {
		mat.VScale = 1
	}

	if err := mat.Validate(); err != nil {
		return nil, err
	}

	if rawMat.Texture != "" {
		tex, err := sc.loadTexture(rawMat.Texture)
		if err != nil {
			return nil, err
		}
		mat.Texture = tex
	}
	return mat, nil
}

func (sc *sceneCompiler) loadTexture(path string) (*texture.Texture, error) {
	if tex, exists := sc.texCache[path]; exists {
		return tex, nil
	}

	if sc.rawScene.AssetRelPath == nil {
		return nil, fmt.Errorf("compiler: cannot resolve texture %q without a scene location", path)
	}
	res, err := sc.rawScene.AssetRelPath.Open(path)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	tex, err := texture.New(res)
	if err != nil {
		return nil, err
	}

	sc.logger.Infof("loaded %dx%d %s texture %q", tex.Width, tex.Height, tex.Format, path)
	sc.texCache[path] = tex
	return tex, nil
}
