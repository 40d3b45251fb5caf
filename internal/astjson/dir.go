package astjson

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/orizon-lang/astopt/internal/ast"
)

// ReadDir decodes every *.ast.json file under fsys in lexical path order.
func ReadDir(fsys fs.FS) ([]ast.Unit, error) {
	var units []ast.Unit
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, Ext) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		u, err := Unmarshal(path, data)
		if err != nil {
			return err
		}
		units = append(units, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// OutputPath is where WriteDir stores u below dir.
func OutputPath(dir string, u ast.Unit) string {
	rel := filepath.FromSlash(strings.TrimLeft(u.Path, "/"))
	return filepath.Join(dir, rel+Ext)
}

// WriteDir encodes each unit to OutputPath(dir, unit), creating parent
// directories as needed.
func WriteDir(dir string, units []ast.Unit) error {
	for _, u := range units {
		data, err := Marshal(u)
		if err != nil {
			return err
		}
		out := OutputPath(dir, u)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return err
		}
	}
	return nil
}
