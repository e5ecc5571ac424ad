package asm

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedFormat is the semver constraint program formats must satisfy.
const SupportedFormat = "^1.0.0"

type program struct {
	Format  string     `yaml:"format"`
	Klasses []klassDoc `yaml:"klasses"`
}

type klassDoc struct {
	Name       string      `yaml:"name"`
	Superclass string      `yaml:"superclass,omitempty"`
	Interfaces []string    `yaml:"interfaces,omitempty"`
	Modifiers  []string    `yaml:"modifiers,omitempty"`
	Fields     []fieldDoc  `yaml:"fields,omitempty"`
	Methods    []methodDoc `yaml:"methods,omitempty"`
}

type fieldDoc struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Modifiers []string `yaml:"modifiers,omitempty"`
}

type methodDoc struct {
	Name       string     `yaml:"name"`
	Descriptor string     `yaml:"descriptor"`
	Modifiers  []string   `yaml:"modifiers,omitempty"`
	Arguments  []string   `yaml:"arguments,omitempty"`
	Locals     []fieldDoc `yaml:"locals,omitempty"`
	Blocks     []blockDoc `yaml:"blocks,omitempty"`
}

type blockDoc struct {
	Name string      `yaml:"name"`
	Code []yaml.Node `yaml:"code"`
}

func decode(data []byte, path string) (*program, error) {
	var p program
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, &Error{Path: path, Message: "failed to parse YAML", Err: err}
	}
	if p.Format == "" {
		return nil, &Error{Path: path, Message: "program does not declare a format version"}
	}
	v, err := semver.NewVersion(p.Format)
	if err != nil {
		return nil, &Error{Path: path, Message: fmt.Sprintf("invalid format version %q", p.Format), Err: err}
	}
	c, err := semver.NewConstraint(SupportedFormat)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return nil, &Error{Path: path, Message: fmt.Sprintf("format %s does not satisfy %s", v, SupportedFormat)}
	}
	return &p, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to read program", Err: err}
	}
	return data, nil
}
