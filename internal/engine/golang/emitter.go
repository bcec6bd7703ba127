package golang

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/odata4gen/internal/engine"
)

type typeFile struct {
	name    string
	content []byte
}

// fileEmitter writes the per-type files of a multi-file generation.
type fileEmitter struct {
	files []typeFile
}

// Emit writes every file through w, stopping at the first failure.
func (e *fileEmitter) Emit(ctx context.Context, w engine.Writer, outDir string) error {
	for _, f := range e.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.WriteBytes(f.name, f.content, filepath.Join(outDir, f.name)); err != nil {
			return err
		}
	}
	return nil
}
