package reader

import (
	"bufio"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/input"
	"github.com/achilleasa/whitted/types"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*input.Scene, error)
}

// Read scene from a file or URL. The reader is selected by the file extension.
func ReadScene(pathToScene string) (*input.Scene, error) {
	res, err := asset.NewResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	reader, err := newReader(res.Ext())
	if err != nil {
		return nil, err
	}
	return reader.Read(res)
}

// Returns true if there is a scene reader for the given file extension.
func Supported(pathToScene string) bool {
	_, err := newReader(strings.ToLower(path.Ext(pathToScene)))
	return err == nil
}

func newReader(ext string) (Reader, error) {
	switch ext {
	case ".scn":
		return newScnReader(), nil
	case ".yaml", ".yml":
		return newYAMLReader(), nil
	}
	return nil, fmt.Errorf("reader: unsupported scene format %q", ext)
}

// An error stack that provides additional error information when scene
// files reference other files (models).
type errorStack []string

// Generate an error message that also includes any data in the error stack.
func (s errorStack) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var prefix string
	switch {
	case file != "" && line > 0:
		prefix = fmt.Sprintf("[%s: %d] ", file, line)
	case file != "":
		prefix = fmt.Sprintf("[%s] ", file)
	}

	return errors.New(strings.Trim(
		fmt.Sprintf("%serror: %s\n%s", prefix, msg, strings.Join(s, "\n")),
		"\n",
	))
}

// Push a frame to the error stack.
func (s *errorStack) pushFrame(msg string) {
	*s = append([]string{msg}, *s...)
}

// Pop a frame from the error stack.
func (s *errorStack) popFrame() {
	*s = (*s)[1:]
}

// Load the mesh referenced by model. The model file is resolved relative to
// parent. The frame is pushed to the error stack while the model is parsed.
func loadModel(parent *asset.Resource, model *input.Model, frame string, stack *errorStack) error {
	stack.pushFrame(frame)

	modelRes, err := parent.Open(model.File)
	if err != nil {
		return stack.emitError("", 0, "%s", err.Error())
	}
	defer modelRes.Close()

	var reader modelReader
	switch modelRes.Ext() {
	case ".obj":
		reader = newWavefrontReader(stack)
	case ".mdl":
		reader = newMdlReader(stack)
	default:
		return stack.emitError(modelRes.Path(), 0, "unsupported model format %q", modelRes.Ext())
	}

	model.Mesh, err = reader.Read(modelRes)
	if err != nil {
		return err
	}

	stack.popFrame()
	return nil
}

// The modelReader interface is implemented by triangle mesh readers.
type modelReader interface {
	Read(*asset.Resource) (*input.Mesh, error)
}

type token struct {
	text string
	line int
}

// A whitespace separated token stream. A '#' starts a comment that extends to
// the end of the line.
type tokenStream struct {
	tokens []token
	pos    int
	last   int
}

func tokenize(res *asset.Resource) (*tokenStream, error) {
	ts := &tokenStream{tokens: make([]token, 0)}

	lineNum := 0
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		for _, field := range strings.Fields(line) {
			ts.tokens = append(ts.tokens, token{text: field, line: lineNum})
		}
	}
	ts.last = lineNum
	return ts, scanner.Err()
}

// Get the next token.
func (ts *tokenStream) next() (token, bool) {
	if ts.pos >= len(ts.tokens) {
		return token{line: ts.last}, false
	}
	tok := ts.tokens[ts.pos]
	ts.pos++
	return tok, true
}

// Consume the next token if it matches keyword.
func (ts *tokenStream) optional(keyword string) bool {
	if ts.pos < len(ts.tokens) && ts.tokens[ts.pos].text == keyword {
		ts.pos++
		return true
	}
	return false
}

// Line of the last consumed token.
func (ts *tokenStream) line() int {
	if ts.pos == 0 || len(ts.tokens) == 0 {
		return 1
	}
	return ts.tokens[ts.pos-1].line
}

// Consume keyword or fail.
func (ts *tokenStream) expect(keyword string) error {
	tok, ok := ts.next()
	if !ok {
		return fmt.Errorf("expected %q; got end of file", keyword)
	}
	if tok.text != keyword {
		return fmt.Errorf("expected %q; got %q", keyword, tok.text)
	}
	return nil
}

func (ts *tokenStream) str() (string, error) {
	tok, ok := ts.next()
	if !ok {
		return "", errors.New("unexpected end of file")
	}
	return tok.text, nil
}

func (ts *tokenStream) integer() (int, error) {
	tok, ok := ts.next()
	if !ok {
		return 0, errors.New("expected an integer; got end of file")
	}
	v, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, fmt.Errorf("expected an integer; got %q", tok.text)
	}
	return v, nil
}

func (ts *tokenStream) float() (float32, error) {
	tok, ok := ts.next()
	if !ok {
		return 0, errors.New("expected a number; got end of file")
	}
	v, err := strconv.ParseFloat(tok.text, 32)
	if err != nil {
		return 0, fmt.Errorf("expected a number; got %q", tok.text)
	}
	return float32(v), nil
}

func (ts *tokenStream) vec3() (types.Vec3, error) {
	var v types.Vec3
	var err error
	for i := range v {
		if v[i], err = ts.float(); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Parse a "keyword: x y z" entry.
func (ts *tokenStream) keyedVec3(keyword string) (types.Vec3, error) {
	if err := ts.expect(keyword); err != nil {
		return types.Vec3{}, err
	}
	return ts.vec3()
}

// Parse a "keyword: f" entry.
func (ts *tokenStream) keyedFloat(keyword string) (float32, error) {
	if err := ts.expect(keyword); err != nil {
		return 0, err
	}
	return ts.float()
}
