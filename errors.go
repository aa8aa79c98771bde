package merklesync

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrMissingKey     = errors.New("merklesync: record has no key")
	ErrMissingContent = errors.New("merklesync: record has no content")
	ErrDuplicateKey   = errors.New("merklesync: duplicate key in collection")
	ErrStale          = errors.New("merklesync: edit script is stale")
	ErrUnknownSide    = errors.New("merklesync: unknown side")
	ErrRecordNotFound = errors.New("merklesync: record not found")
)

// BuildError reports the record that made a tree build fail.
type BuildError struct {
	Index int
	Key   Key
	Err   error
}

func (e *BuildError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("build tree: record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("build tree: record %d (key %q): %v", e.Index, e.Key, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
