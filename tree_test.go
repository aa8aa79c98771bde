package merklesync

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() Collection {
	return Collection{
		{Key: "1", Content: "alice"},
		{Key: "2", Content: "bob"},
		{Key: "3", Content: "charlie"},
		{Key: "4", Content: "diana"},
	}
}

func mustHash(t *testing.T, content string) Fingerprint {
	t.Helper()
	fp, err := Hash(content)
	require.NoError(t, err)
	return fp
}

func mustBuild(t *testing.T, c Collection, opts ...BuildOption) *Tree {
	t.Helper()
	tree, err := Build(c, opts...)
	require.NoError(t, err)
	return tree
}

// checkInvariants verifies the structural rules of every node below n.
func checkInvariants(t *testing.T, n Node) {
	t.Helper()
	var h *Hasher
	switch v := n.(type) {
	case *Leaf:
		assert.Equal(t, 0, v.Level())
		assert.Nil(t, v.Children())
		assert.NotEmpty(t, v.Record().Key)
		assert.Equal(t, mustHash(t, v.Record().Content), v.Fingerprint())
	case *Internal:
		children := v.Children()
		require.Len(t, children, 2)
		assert.Equal(t, h.Combine(children[0].Fingerprint(), children[1].Fingerprint()), v.Fingerprint())
		assert.Equal(t, max(children[0].Level(), children[1].Level())+1, v.Level())
		assert.Equal(t, children[0].Level(), children[1].Level())
		checkInvariants(t, children[0])
		checkInvariants(t, children[1])
	case *Sentinel:
		assert.True(t, v.Fingerprint().IsZero())
		assert.Nil(t, v.Children())
	default:
		t.Fatalf("unexpected node %T", n)
	}
}

func TestBuildEmpty(t *testing.T) {
	tree, err := Build(nil)
	require.NoError(t, err)
	assert.Nil(t, tree)

	assert.Nil(t, tree.Root())
	assert.True(t, tree.RootFingerprint().IsZero())
	assert.Equal(t, 0, tree.Height())
	assert.Equal(t, 0, tree.NodeCount())
	assert.Equal(t, 0, tree.LeafCount())
	assert.Nil(t, tree.Collection())
	for range tree.Leaves() {
		t.Fatal("absent tree has no leaves")
	}
}

func TestBuildSingleRecord(t *testing.T) {
	tree := mustBuild(t, Collection{{Key: "1", Content: "alice"}})

	leaf, ok := tree.Root().(*Leaf)
	require.True(t, ok)
	assert.Equal(t, mustHash(t, "alice"), leaf.Fingerprint())
	assert.Equal(t, 0, tree.Height())
	assert.Equal(t, 1, tree.NodeCount())
}

func TestBuildEvenLeaves(t *testing.T) {
	tree := mustBuild(t, people())
	var h *Hasher

	want := h.Combine(
		h.Combine(mustHash(t, "alice"), mustHash(t, "bob")),
		h.Combine(mustHash(t, "charlie"), mustHash(t, "diana")),
	)
	assert.Equal(t, want, tree.RootFingerprint())
	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, 7, tree.NodeCount())
	assert.Equal(t, 4, tree.LeafCount())
	checkInvariants(t, tree.Root())
}

func TestBuildOddLeavesUsesSentinel(t *testing.T) {
	tree := mustBuild(t, people()[:3])
	var h *Hasher

	want := h.Combine(
		h.Combine(mustHash(t, "alice"), mustHash(t, "bob")),
		h.Combine(mustHash(t, "charlie"), Fingerprint{}),
	)
	assert.Equal(t, want, tree.RootFingerprint())
	assert.Equal(t, 7, tree.NodeCount())

	right := tree.Root().(*Internal).Right().(*Internal)
	assert.Equal(t, KindSentinel, right.Right().Kind())
	assert.Equal(t, 0, right.Right().Level())
	checkInvariants(t, tree.Root())
}

func TestBuildShape(t *testing.T) {
	tests := []struct {
		records int
		height  int
		nodes   int
	}{
		{1, 0, 1},
		{2, 1, 3},
		{3, 2, 7},
		{4, 2, 7},
		{5, 3, 13},
		{8, 3, 15},
		{9, 4, 23},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d records", tt.records), func(t *testing.T) {
			c := make(Collection, tt.records)
			for i := range c {
				c[i] = Record{Key: Key(fmt.Sprint(i + 1)), Content: fmt.Sprintf("record %d", i+1)}
			}
			tree := mustBuild(t, c)
			assert.Equal(t, tt.height, tree.Height())
			assert.Equal(t, tt.nodes, tree.NodeCount())
			checkInvariants(t, tree.Root())

			var keys []Key
			for leaf := range tree.Leaves() {
				keys = append(keys, leaf.Record().Key)
			}
			assert.Equal(t, c.Keys(), keys)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		records Collection
		want    error
		index   int
	}{
		{"missing key", Collection{{Key: "1", Content: "a"}, {Content: "b"}}, ErrMissingKey, 1},
		{"missing content", Collection{{Key: "1", Content: "a"}, {Key: "2", Content: "b"}, {Key: "3"}}, ErrMissingContent, 2},
		{"duplicate key", Collection{{Key: "1", Content: "a"}, {Key: "2", Content: "b"}, {Key: "1", Content: "c"}}, ErrDuplicateKey, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(tt.records)
			assert.Nil(t, tree)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))

			var be *BuildError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.index, be.Index)
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := mustBuild(t, people())
	b := mustBuild(t, people())
	assert.Equal(t, a.RootFingerprint(), b.RootFingerprint())
}

func TestBuildContentSensitive(t *testing.T) {
	base := mustBuild(t, people()).RootFingerprint()
	for i := range people() {
		c := people()
		c[i].Content += "-updated"
		assert.NotEqual(t, base, mustBuild(t, c).RootFingerprint(), "record %d", i)
	}
}

func TestBuildOrderDependent(t *testing.T) {
	c := people()
	reversed := Collection{c[3], c[2], c[1], c[0]}

	assert.NotEqual(t,
		mustBuild(t, c).RootFingerprint(),
		mustBuild(t, reversed).RootFingerprint())

	assert.Equal(t,
		mustBuild(t, c, WithCanonicalOrder(true)).RootFingerprint(),
		mustBuild(t, reversed, WithCanonicalOrder(true)).RootFingerprint())

	canonical := mustBuild(t, reversed, WithCanonicalOrder(true))
	assert.True(t, canonical.Canonical())
	assert.Equal(t, []Key{"1", "2", "3", "4"}, canonical.Collection().Keys())
}

func TestBuildIgnoresKeysInLeafHash(t *testing.T) {
	a := mustBuild(t, Collection{{Key: "1", Content: "same"}})
	b := mustBuild(t, Collection{{Key: "2", Content: "same"}})
	assert.Equal(t, a.RootFingerprint(), b.RootFingerprint())
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	c := make(Collection, 100)
	for i := range c {
		c[i] = Record{Key: Key(fmt.Sprint(i)), Content: fmt.Sprintf("content %d", i)}
	}
	h, err := NewHasher(16)
	require.NoError(t, err)

	seq := mustBuild(t, c)
	par := mustBuild(t, c, WithWorkers(8), WithHasher(h))
	assert.Equal(t, seq.RootFingerprint(), par.RootFingerprint())
	assert.Equal(t, seq.NodeCount(), par.NodeCount())
}

func TestBuildDoesNotAliasInput(t *testing.T) {
	c := people()
	tree := mustBuild(t, c)
	c[0].Content = "mallory"

	leaf := tree.Root().Children()[0].Children()[0].(*Leaf)
	assert.Equal(t, "alice", leaf.Record().Content)
	assert.Equal(t, "alice", tree.Collection()[0].Content)
}
