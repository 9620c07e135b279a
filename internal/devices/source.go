package devices

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// ErrNotDirectory is the cause carried by RootUnreadableError when a root exists
// but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// ListCandidateDirs lists the immediate children of every root and merges them
// into one sequence: root order first, then listing order within a root.
// Every root is listed before anything is merged, and the first unreadable root
// aborts the whole call.
func ListCandidateDirs(fsys afero.Fs, roots []string) ([]string, error) {
	listings := make([][]string, 0, len(roots))

	for _, root := range roots {
		children, err := listRoot(fsys, root)
		if err != nil {
			return nil, err
		}
		listings = append(listings, children)
	}

	return lo.Flatten(listings), nil
}

func listRoot(fsys afero.Fs, root string) ([]string, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, &RootUnreadableError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &RootUnreadableError{Root: root, Err: ErrNotDirectory}
	}

	// afero.ReadDir returns entries sorted by name
	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, &RootUnreadableError{Root: root, Err: err}
	}

	return lo.Map(entries, func(entry os.FileInfo, _ int) string {
		return filepath.Join(root, entry.Name())
	}), nil
}
