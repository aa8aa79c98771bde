package merklesync

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// EditKind is the operation an Edit performs on the target collection.
type EditKind uint8

const (
	Modified EditKind = iota + 1
	Added
	Deleted
)

func (k EditKind) String() string {
	switch k {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("EditKind(%d)", uint8(k))
	}
}

func (k EditKind) MarshalText() ([]byte, error) {
	switch k {
	case Modified, Added, Deleted:
		return []byte(k.String()), nil
	}
	return nil, errors.Newf("invalid edit kind %d", uint8(k))
}

func (k *EditKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "modified":
		*k = Modified
	case "added":
		*k = Added
	case "deleted":
		*k = Deleted
	default:
		return errors.Newf("invalid edit kind %q", text)
	}
	return nil
}

// Edit is one step of an edit script. It holds record snapshots, not
// references into the trees it was computed from.
type Edit struct {
	Kind       EditKind `json:"kind" yaml:"kind"`
	Key        Key      `json:"key" yaml:"key"`
	NewContent string   `json:"new_content,omitempty" yaml:"new_content,omitempty"`
	OldContent string   `json:"old_content,omitempty" yaml:"old_content,omitempty"`
}

func (e Edit) String() string {
	switch e.Kind {
	case Modified:
		return fmt.Sprintf("Modified %s: %q → %q", e.Key, e.OldContent, e.NewContent)
	case Added:
		return fmt.Sprintf("Added %s (%s)", e.Key, e.NewContent)
	case Deleted:
		return fmt.Sprintf("Deleted %s (%s)", e.Key, e.OldContent)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Key)
	}
}

// EditScript transforms one collection into agreement with another:
// modifications first, then additions, then deletions.
type EditScript []Edit

// Empty reports whether the script has no edits.
func (s EditScript) Empty() bool { return len(s) == 0 }

// Count returns the number of edits of the given kind.
func (s EditScript) Count(kind EditKind) int {
	n := 0
	for _, e := range s {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Keys returns the keys of edits of the given kind, in script order.
func (s EditScript) Keys(kind EditKind) []Key {
	var keys []Key
	for _, e := range s {
		if e.Kind == kind {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

type leafEntry struct {
	fingerprint Fingerprint
	content     string
}

// leafIndex maps keys to leaves, keeping first-seen order.
type leafIndex struct {
	order   []Key
	entries map[Key]leafEntry
}

func indexLeaves(t *Tree) leafIndex {
	idx := leafIndex{entries: make(map[Key]leafEntry, t.LeafCount())}
	for leaf := range t.Leaves() {
		r := leaf.Record()
		if _, ok := idx.entries[r.Key]; ok {
			continue
		}
		idx.order = append(idx.order, r.Key)
		idx.entries[r.Key] = leafEntry{fingerprint: leaf.Fingerprint(), content: r.Content}
	}
	return idx
}

// Diff compares the leaves of a and b by key and returns the script that
// brings b into agreement with a. Keys only in a are Added, keys only in
// b are Deleted, and keys in both with different fingerprints are
// Modified. Tree shapes do not matter; an absent tree has no leaves.
func Diff(a, b *Tree) EditScript {
	ia, ib := indexLeaves(a), indexLeaves(b)

	var modified, added, deleted EditScript
	for _, key := range ia.order {
		ea := ia.entries[key]
		eb, ok := ib.entries[key]
		switch {
		case !ok:
			added = append(added, Edit{Kind: Added, Key: key, NewContent: ea.content})
		case ea.fingerprint != eb.fingerprint:
			modified = append(modified, Edit{Kind: Modified, Key: key, NewContent: ea.content, OldContent: eb.content})
		}
	}
	for _, key := range ib.order {
		if _, ok := ia.entries[key]; !ok {
			deleted = append(deleted, Edit{Kind: Deleted, Key: key, OldContent: ib.entries[key].content})
		}
	}

	script := make(EditScript, 0, len(modified)+len(added)+len(deleted))
	script = append(script, modified...)
	script = append(script, added...)
	return append(script, deleted...)
}
