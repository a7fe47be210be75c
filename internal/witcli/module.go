package witcli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePath walks up from dir looking for a go.mod file and returns the Go
// module path it declares. It returns an error if no go.mod is found by the
// time the filesystem root is reached. Generated C output is frequently
// vendored into a cgo package, so the CLI uses this, when it succeeds, to
// name the enclosing Go module in the "DO NOT EDIT" banner it writes above
// generated files; failure to find one (output going to a plain C project
// with no go.mod) is not an error for the caller, only a missing label.
func ModulePath(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		file := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(file)
		if err == nil {
			modpath := modfile.ModulePath(data)
			if modpath == "" {
				return "", fmt.Errorf("no module path in %s", file)
			}
			return modpath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("unable to locate a go.mod file")
		}
		dir = parent
	}
}
