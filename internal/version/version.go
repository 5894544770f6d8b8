package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:embed VERSION
var raw string

// Value is the semantic version read from the VERSION file.
var Value = strings.TrimSpace(raw)

// String is the one-line banner printed by `ghorg version`.
func String() string {
	return fmt.Sprintf("ghorg v%s (%s, %s/%s)", Value, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
