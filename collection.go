package merklesync

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
)

// Key identifies a record within a collection.
type Key string

// UnmarshalJSON accepts both strings and numbers, so files keyed by
// numeric ids load as-is.
func (k *Key) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = Key(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(err, "key must be a string or number, got %s", data)
	}
	*k = Key(n.String())
	return nil
}

// Record is one keyed entry. Identity is the key; content is mutable.
type Record struct {
	Key     Key    `json:"key" yaml:"key"`
	Content string `json:"content" yaml:"content"`
}

// Collection is an ordered sequence of records with unique keys.
// Order is insertion order and determines the tree shape.
type Collection []Record

// Clone returns an independent copy.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	return slices.Clone(c)
}

// Index returns the position of key, or -1.
func (c Collection) Index(key Key) int {
	return slices.IndexFunc(c, func(r Record) bool { return r.Key == key })
}

// Get returns the record stored under key.
func (c Collection) Get(key Key) (Record, bool) {
	if i := c.Index(key); i >= 0 {
		return c[i], true
	}
	return Record{}, false
}

// Keys returns the keys in collection order.
func (c Collection) Keys() []Key {
	keys := make([]Key, len(c))
	for i, r := range c {
		keys[i] = r.Key
	}
	return keys
}

// Validate checks every record has a key and content and that keys are
// unique. The first offending record is reported as a *BuildError.
func (c Collection) Validate() error {
	seen := make(map[Key]int, len(c))
	for i, r := range c {
		if r.Key == "" {
			return &BuildError{Index: i, Err: ErrMissingKey}
		}
		if r.Content == "" {
			return &BuildError{Index: i, Key: r.Key, Err: ErrMissingContent}
		}
		if first, ok := seen[r.Key]; ok {
			return &BuildError{
				Index: i,
				Key:   r.Key,
				Err:   errors.WithDetailf(ErrDuplicateKey, "first seen at record %d", first),
			}
		}
		seen[r.Key] = i
	}
	return nil
}

// sortedByKey returns a copy ordered by key, for canonical tree shapes.
func (c Collection) sortedByKey() Collection {
	out := c.Clone()
	slices.SortStableFunc(out, func(a, b Record) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
