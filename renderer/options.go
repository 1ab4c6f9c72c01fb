package renderer

import (
	"fmt"
	"os"

	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/tracer"
	"github.com/pelletier/go-toml/v2"
)

// Render options. Options can be populated from a TOML file whose keys
// match the struct tags below.
type Options struct {
	// Frame dims.
	FrameW int `toml:"width"`
	FrameH int `toml:"height"`

	// Maximum recursion depth for primary rays.
	MaxDepth int `toml:"depth"`

	// Number of shadow rays per light with a radius.
	ShadowSamples int `toml:"shadow_samples"`

	// Reflection accumulation mode.
	Reflection tracer.ReflectionMode `toml:"reflection"`

	// Test every primitive instead of querying the KD-tree.
	BruteForce bool `toml:"brute_force"`

	// KD-tree build parameters.
	KDMaxDepth     int `toml:"kd_depth"`
	KDMinLeafItems int `toml:"kd_leaf_items"`

	// Number of goroutines tracing row blocks in parallel.
	Workers int `toml:"workers"`

	// Gamma applied when writing the frame; 1 writes linear values.
	Gamma float64 `toml:"gamma"`

	// Output image file. The extension selects the image format.
	Output string `toml:"output"`
}

// Get the default render options.
func DefaultOptions() Options {
	return Options{
		FrameW:         1024,
		FrameH:         576,
		MaxDepth:       5,
		ShadowSamples:  16,
		Reflection:     tracer.ReflectOnce,
		KDMaxDepth:     scene.DefaultKDMaxDepth,
		KDMinLeafItems: scene.DefaultKDMinLeafItems,
		Workers:        1,
		Gamma:          1.0,
		Output:         "frame.png",
	}
}

// Load options from a TOML file. Keys missing from the file keep their value
// from base. Unknown keys are rejected.
func LoadOptions(path string, base Options) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("renderer: could not open options file: %w", err)
	}
	defer f.Close()

	opts := base
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&opts); err != nil {
		return base, fmt.Errorf("renderer: could not parse options file %q: %w", path, err)
	}
	return opts, opts.Validate()
}

// Check that option values are usable.
func (o Options) Validate() error {
	switch {
	case o.FrameW <= 0 || o.FrameH <= 0:
		return fmt.Errorf("renderer: invalid frame dimensions %dx%d", o.FrameW, o.FrameH)
	case o.MaxDepth < 0:
		return fmt.Errorf("renderer: depth must be >= 0; got %d", o.MaxDepth)
	case o.ShadowSamples < 1:
		return fmt.Errorf("renderer: shadow samples must be >= 1; got %d", o.ShadowSamples)
	case o.KDMaxDepth < 0:
		return fmt.Errorf("renderer: kd-tree depth must be >= 0; got %d", o.KDMaxDepth)
	case o.KDMinLeafItems < 1:
		return fmt.Errorf("renderer: kd-tree leaf items must be >= 1; got %d", o.KDMinLeafItems)
	case o.Workers < 1:
		return fmt.Errorf("renderer: workers must be >= 1; got %d", o.Workers)
	case !(o.Gamma > 0):
		return fmt.Errorf("renderer: gamma must be > 0; got %f", o.Gamma)
	}
	return nil
}

// Get the tracer options.
func (o Options) TracerOptions() tracer.Options {
	return tracer.Options{
		ShadowSamples: o.ShadowSamples,
		Reflection:    o.Reflection,
		BruteForce:    o.BruteForce,
	}
}

// Get the KD-tree build options.
func (o Options) KDTreeOptions() scene.KDTreeOptions {
	return scene.KDTreeOptions{
		MaxDepth:     o.KDMaxDepth,
		MinLeafItems: o.KDMinLeafItems,
	}
}

// Save options to a TOML file.
func (o Options) Save(path string) error {
	data, err := toml.Marshal(o)
	if err != nil {
		return fmt.Errorf("renderer: could not encode options: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
