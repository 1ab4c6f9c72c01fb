package renderer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/achilleasa/whitted/tracer"
)

func TestOptionsValidate(t *testing.T) {
	type spec struct {
		mutate func(*Options)
		expErr bool
	}
	specs := []spec{
		{func(o *Options) {}, false},
		{func(o *Options) { o.MaxDepth = 0 }, false},
		{func(o *Options) { o.FrameW = 0 }, true},
		{func(o *Options) { o.FrameH = -1 }, true},
		{func(o *Options) { o.MaxDepth = -1 }, true},
		{func(o *Options) { o.ShadowSamples = 0 }, true},
		{func(o *Options) { o.KDMaxDepth = -1 }, true},
		{func(o *Options) { o.KDMinLeafItems = 0 }, true},
		{func(o *Options) { o.Workers = 0 }, true},
		{func(o *Options) { o.Workers = 8 }, false},
		{func(o *Options) { o.Gamma = 0 }, true},
	}

	for specIndex, s := range specs {
		opts := DefaultOptions()
		s.mutate(&opts)
		err := opts.Validate()
		if s.expErr && err == nil {
			t.Errorf("[spec %d] expected an error", specIndex)
		} else if !s.expErr && err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
		}
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.toml")
	data := `
width = 320
height = 200
shadow_samples = 4
reflection = "per-light"
gamma = 2.2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	base := DefaultOptions()
	opts, err := LoadOptions(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if opts.FrameW != 320 || opts.FrameH != 200 {
		t.Fatalf("expected frame dims 320x200; got %dx%d", opts.FrameW, opts.FrameH)
	}
	if opts.ShadowSamples != 4 {
		t.Fatalf("expected shadow samples 4; got %d", opts.ShadowSamples)
	}
	if opts.Reflection != tracer.ReflectPerLight {
		t.Fatalf("expected reflection mode per-light; got %s", opts.Reflection)
	}
	if opts.MaxDepth != base.MaxDepth || opts.Output != base.Output {
		t.Fatal("expected keys missing from the file to keep their base values")
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadOptions(filepath.Join(dir, "missing.toml"), DefaultOptions()); err == nil {
		t.Fatal("expected an error for a missing file")
	}

	specs := []string{
		`unknown_key = 1`,
		`reflection = "sideways"`,
		`width = 0`,
		`width = "wide"`,
	}
	for specIndex, data := range specs {
		path := filepath.Join(dir, "render.toml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOptions(path, DefaultOptions()); err == nil {
			t.Errorf("[spec %d] expected an error loading %q", specIndex, data)
		}
	}
}

func TestOptionsSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	opts := DefaultOptions()
	opts.Reflection = tracer.ReflectPerLight
	opts.BruteForce = true
	if err := opts.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadOptions(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if loaded != opts {
		t.Fatalf("expected loaded options %+v; got %+v", opts, loaded)
	}
}

func TestFrameStatsRowTimes(t *testing.T) {
	var fs FrameStats
	fs.setRowTimes([]time.Duration{10, 30, 20, 20})

	if fs.RowTimeMean != 20 {
		t.Fatalf("expected mean row time 20; got %d", fs.RowTimeMean)
	}
	if fs.SlowestRow != 1 || fs.SlowestRowAt != 30 {
		t.Fatalf("expected slowest row 1 at 30; got %d at %d", fs.SlowestRow, fs.SlowestRowAt)
	}
	if fs.RowTimeStdDev <= 0 {
		t.Fatalf("expected a positive row time std dev; got %d", fs.RowTimeStdDev)
	}
	if fs.RowTimeP95 != 30 {
		t.Fatalf("expected p95 row time 30; got %d", fs.RowTimeP95)
	}
}

func TestFrameStatsSkipsUnrenderedRows(t *testing.T) {
	var fs FrameStats
	fs.setRowTimes([]time.Duration{-1, 10, -1, 40, 10})

	if fs.RowTimeMean != 20 {
		t.Fatalf("expected mean row time 20; got %d", fs.RowTimeMean)
	}
	if fs.SlowestRow != 3 || fs.SlowestRowAt != 40 {
		t.Fatalf("expected slowest row 3 at 40; got %d at %d", fs.SlowestRow, fs.SlowestRowAt)
	}

	var empty FrameStats
	empty.setRowTimes([]time.Duration{-1, -1})
	if empty.RowTimeMean != 0 || empty.RowTimeP95 != 0 {
		t.Fatalf("expected zero row time stats; got mean %d and p95 %d", empty.RowTimeMean, empty.RowTimeP95)
	}
}
