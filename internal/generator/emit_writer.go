package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/output"
)

// emitWriter hands an engine's emitter the file manager, refusing any
// destination already written in the run. Paths compare case-insensitively.
type emitWriter struct {
	fm      *output.FileManager
	written map[string]bool
}

func newEmitWriter(fm *output.FileManager) *emitWriter {
	w := &emitWriter{fm: fm, written: make(map[string]bool)}
	for _, e := range fm.Ledger() {
		w.written[fileKey(e.Destination)] = true
	}
	return w
}

func (w *emitWriter) WriteBytes(name string, content []byte, destination string) error {
	key := fileKey(destination)
	if w.written[key] {
		return errors.FileWriteError(destination,
			fmt.Errorf("%s would replace a file already written in this run", name)).Build()
	}
	w.written[key] = true
	return w.fm.WriteBytes(name, content, destination)
}

func fileKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
