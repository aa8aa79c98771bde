package merklesync

import (
	"iter"

	"github.com/sourcegraph/conc/pool"
)

// Tree is a Merkle tree over a collection snapshot. It is never mutated;
// any change to the collection requires a new Build.
//
// A nil *Tree stands for the tree of an empty collection. All accessors
// accept a nil receiver.
type Tree struct {
	root       Node
	collection Collection
	canonical  bool
}

// Build hashes every record and pairs nodes bottom-up until one root
// remains. An odd node at the end of a level is paired with a Sentinel.
//
// An empty collection yields (nil, nil). Malformed records and duplicate
// keys fail the whole build with a *BuildError before anything is hashed.
func Build(c Collection, opts ...BuildOption) (*Tree, error) {
	options := defaultBuildOptions()
	for _, opt := range opts {
		opt(options)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, nil
	}

	records := c.Clone()
	if options.Canonical {
		records = records.sortedByKey()
	}

	leaves, err := hashLeaves(records, options)
	if err != nil {
		return nil, err
	}

	level := leaves
	for len(level) > 1 {
		next := make([]Node, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			var right Node
			if i+1 < len(level) {
				right = level[i+1]
			} else {
				right = &Sentinel{level: left.Level()}
			}
			next = append(next, newInternal(options.Hasher, left, right))
		}
		level = next
	}

	return &Tree{root: level[0], collection: records, canonical: options.Canonical}, nil
}

func hashLeaves(records Collection, options *BuildOptions) ([]Node, error) {
	leaves := make([]Node, len(records))
	hashOne := func(i int) error {
		fp, err := options.Hasher.Sum(records[i].Content)
		if err != nil {
			return &BuildError{Index: i, Key: records[i].Key, Err: err}
		}
		leaves[i] = newLeaf(records[i], fp)
		return nil
	}

	if options.Workers <= 1 || len(records) < options.Workers {
		for i := range records {
			if err := hashOne(i); err != nil {
				return nil, err
			}
		}
		return leaves, nil
	}

	p := pool.New().WithErrors().WithMaxGoroutines(options.Workers)
	for i := range records {
		p.Go(func() error { return hashOne(i) })
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// Root returns the root node, or nil for an absent tree.
func (t *Tree) Root() Node {
	if t == nil {
		return nil
	}
	return t.root
}

// RootFingerprint returns the root fingerprint; zero for an absent tree.
func (t *Tree) RootFingerprint() Fingerprint {
	if t == nil {
		return Fingerprint{}
	}
	return t.root.Fingerprint()
}

// Height is the number of levels above the leaves.
func (t *Tree) Height() int {
	if t == nil {
		return 0
	}
	return t.root.Level()
}

// NodeCount counts every node including sentinels.
func (t *Tree) NodeCount() int {
	if t == nil {
		return 0
	}
	return countNodes(t.root)
}

// LeafCount is the number of records in the tree.
func (t *Tree) LeafCount() int {
	if t == nil {
		return 0
	}
	return len(t.collection)
}

// Canonical reports whether leaves were sorted by key.
func (t *Tree) Canonical() bool {
	return t != nil && t.canonical
}

// Collection returns a copy of the records in leaf order.
func (t *Tree) Collection() Collection {
	if t == nil {
		return nil
	}
	return t.collection.Clone()
}

// Leaves yields leaves left to right.
func (t *Tree) Leaves() iter.Seq[*Leaf] {
	return func(yield func(*Leaf) bool) {
		if t == nil {
			return
		}
		walkLeaves(t.root, yield)
	}
}
