package classpath

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML descriptor document. Unknown keys are rejected.
func ParseYAML(data []byte) (*Source, error) {
	return parseYAML(data, "")
}

// LoadYAML reads and decodes the YAML document at path.
func LoadYAML(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("failed to read descriptor file: %v", err), Path: path}
	}
	return parseYAML(data, path)
}

func parseYAML(data []byte, path string) (*Source, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("failed to parse YAML: %v", err), Path: path}
	}
	if err := checkFormat(doc.Format); err != nil {
		return nil, withPath(err, path)
	}
	src := newSource()
	for i := range doc.Classes {
		d, err := doc.Classes[i].descriptor()
		if err != nil {
			return nil, withPath(err, path)
		}
		if err := src.add(d, path); err != nil {
			return nil, err
		}
	}
	if err := checkCycles(src, path); err != nil {
		return nil, err
	}
	return src, nil
}
