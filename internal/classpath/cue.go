package classpath

import (
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

type cueDocument struct {
	Format string              `json:"format"`
	Class  map[string]classDoc `json:"class"`
}

// ParseCUE compiles a CUE descriptor document. filename is used in error
// positions and may be empty.
func ParseCUE(data []byte, filename string) (*Source, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError(err, filename)
	}
	var doc cueDocument
	if err := v.Decode(&doc); err != nil {
		return nil, cueError(err, filename)
	}
	if err := checkFormat(doc.Format); err != nil {
		le := err.(*LoadError)
		le.Path = filename
		le.Pos = v.LookupPath(cue.ParsePath("format")).Pos()
		return nil, le
	}

	names := make([]string, 0, len(doc.Class))
	for n := range doc.Class {
		names = append(names, n)
	}
	slices.Sort(names)

	src := newSource()
	for _, n := range names {
		c := doc.Class[n]
		if c.Name != "" && c.Name != n {
			return nil, &LoadError{
				Code:    ErrCodeClassName,
				Message: fmt.Sprintf("class %q declares name %q", n, c.Name),
				Path:    filename,
				Pos:     classPos(v, n),
			}
		}
		c.Name = n
		d, err := c.descriptor()
		if err != nil {
			le := err.(*LoadError)
			le.Path = filename
			le.Pos = classPos(v, n)
			return nil, le
		}
		if err := src.add(d, filename); err != nil {
			return nil, err
		}
	}
	if err := checkCycles(src, filename); err != nil {
		return nil, err
	}
	return src, nil
}

// LoadCUE reads and compiles the CUE document at path.
func LoadCUE(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to read descriptor file: %v", err), Path: path}
	}
	return ParseCUE(data, path)
}

func classPos(v cue.Value, name string) token.Pos {
	return v.LookupPath(cue.MakePath(cue.Str("class"), cue.Str(name))).Pos()
}

// cueError converts the first CUE error into a LoadError with its position.
func cueError(err error, filename string) *LoadError {
	le := &LoadError{Code: ErrCodeSyntax, Message: err.Error(), Path: filename}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	le.Message = errs[0].Error()
	if positions := errors.Positions(errs[0]); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
