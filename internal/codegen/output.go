package codegen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OutputPath derives the program file name for a source file when no explicit
// output was requested: "prog.mil" becomes "prog.milvm" (or "prog.yaml").
// A source that already carries the format's extension keeps it and gets a
// second one, so the source is never overwritten.
func OutputPath(sourcePath string, f Format) string {
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	if base+f.Extension() == sourcePath {
		return sourcePath + f.Extension()
	}
	return base + f.Extension()
}

// WriteOutput writes a serialized program to path, creating parent
// directories as needed.
func WriteOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "cannot create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "cannot write %s", path)
	}
	return nil
}
