package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrNoSink           = errors.New("renderer: no image sink defined")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
