package classpath

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed platform.yaml
var platformYAML []byte

var platform = sync.OnceValue(func() *Source {
	src, err := parseYAML(platformYAML, "platform.yaml")
	if err != nil {
		panic(fmt.Sprintf("classpath: embedded platform is invalid: %v", err))
	}
	return src
})

// Platform returns the embedded platform classes. The classes the ir
// package compiles in are not repeated here.
func Platform() *Source { return platform() }
