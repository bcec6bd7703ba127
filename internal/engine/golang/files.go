package golang

import (
	"fmt"
	"strings"
)

// fileNamer assigns per-type file names for multi-file output. Names are
// unique ignoring case so that case-folding filesystems keep every file.
type fileNamer struct {
	taken map[string]bool
}

// newFileNamer reserves the given names, typically the main source file
// and the metadata copy.
func newFileNamer(reserved ...string) *fileNamer {
	n := &fileNamer{taken: make(map[string]bool, len(reserved))}
	for _, r := range reserved {
		if r != "" {
			n.taken[strings.ToLower(r)] = true
		}
	}
	return n
}

// name returns the file for goName and whether it differs from <goName>.go.
// A reserved name or one the go tool would treat as a test file gets a
// _type suffix; remaining clashes are numbered.
func (n *fileNamer) name(goName string) (string, bool) {
	base := goName
	if n.taken[strings.ToLower(base+".go")] || strings.HasSuffix(strings.ToLower(base), "_test") {
		base += "_type"
	}
	name := base + ".go"
	for i := 2; n.taken[strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s%d.go", base, i)
	}
	n.taken[strings.ToLower(name)] = true
	return name, name != goName+".go"
}
