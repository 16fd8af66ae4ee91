package optimizer

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
)

// Discover lazily walks root in lexical order yielding regular files. An
// unreadable entry yields its path with the error and the walk continues; a
// root that cannot be walked yields a single error. Ranging again restarts
// the walk.
func Discover(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				if !yield(path, err) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !errors.Is(err, filepath.SkipAll) {
			yield(root, &RootError{Root: root, Err: err})
		}
	}
}

// RootError means the asset root itself could not be walked.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return "cannot walk " + e.Root + ": " + e.Err.Error()
}

func (e *RootError) Unwrap() error {
	return e.Err
}
