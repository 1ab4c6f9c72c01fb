package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/log"
	"gopkg.in/yaml.v3"
)

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition.
	Write(*input.Scene) error
}

// Write scene description to a YAML file.
func WriteScene(sc *input.Scene, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}

	if err = NewYAMLWriter(f).Write(sc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type yamlSceneWriter struct {
	logger log.Logger
	out    io.Writer
}

// Create a writer that encodes scene descriptions as YAML.
func NewYAMLWriter(out io.Writer) Writer {
	return &yamlSceneWriter{
		logger: log.New("yaml scene writer"),
		out:    out,
	}
}

func (w *yamlSceneWriter) Write(sc *input.Scene) error {
	enc := yaml.NewEncoder(w.out)
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return fmt.Errorf("writer: could not encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writer: %w", err)
	}

	w.logger.Infof(
		"wrote scene with %d lights, %d primitives and %d models",
		len(sc.Lights), len(sc.Primitives), len(sc.Models),
	)
	return nil
}
