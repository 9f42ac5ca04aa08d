// writer.go - Output file writing

package gen

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Write stores content at path unless the file already holds it, creating
// missing directories. It reports whether the file changed.
func Write(path string, content []byte) (bool, error) {
	old, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(old, content):
		return false, nil
	case err != nil && !os.IsNotExist(err):
		return false, errors.Wrapf(err, "reading %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return false, errors.Wrap(err, "creating output directory")
	}
	if err := os.WriteFile(path, content, filePerm); err != nil {
		return false, errors.Wrapf(err, "writing %s", path)
	}
	return true, nil
}
