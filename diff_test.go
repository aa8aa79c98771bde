package merklesync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffIdentical(t *testing.T) {
	a := mustBuild(t, people())
	b := mustBuild(t, people())

	assert.Empty(t, Diff(a, b))
	assert.Empty(t, Diff(a, a))
	assert.Equal(t, a.RootFingerprint(), b.RootFingerprint())
}

func TestDiffModifiedAndAdded(t *testing.T) {
	src := people()
	src[2].Content = "charlie-updated"
	src = append(src, Record{Key: "5", Content: "eve"})

	script := Diff(mustBuild(t, src), mustBuild(t, people()))

	require.Len(t, script, 2)
	assert.Equal(t, Edit{Kind: Modified, Key: "3", NewContent: "charlie-updated", OldContent: "charlie"}, script[0])
	assert.Equal(t, Edit{Kind: Added, Key: "5", NewContent: "eve"}, script[1])
	assert.Equal(t, 0, script.Count(Deleted))
}

func TestDiffDeleted(t *testing.T) {
	rep := people()
	rep = append(rep[:1], rep[2:]...)

	script := Diff(mustBuild(t, rep), mustBuild(t, people()))

	require.Len(t, script, 1)
	assert.Equal(t, Edit{Kind: Deleted, Key: "2", OldContent: "bob"}, script[0])
}

func TestDiffAbsentTrees(t *testing.T) {
	b := mustBuild(t, people()[:3])

	script := Diff(nil, b)
	assert.Equal(t, 3, script.Count(Deleted))
	assert.Equal(t, 0, script.Count(Added))
	assert.Equal(t, 0, script.Count(Modified))
	assert.Equal(t, []Key{"1", "2", "3"}, script.Keys(Deleted))

	script = Diff(b, nil)
	assert.Equal(t, []Key{"1", "2", "3"}, script.Keys(Added))
	assert.Len(t, script, 3)

	assert.Empty(t, Diff(nil, nil))
}

func TestDiffOrdering(t *testing.T) {
	src := Collection{
		{Key: "9", Content: "new nine"},
		{Key: "2", Content: "bob-updated"},
		{Key: "8", Content: "new eight"},
		{Key: "1", Content: "alice-updated"},
	}
	rep := Collection{
		{Key: "1", Content: "alice"},
		{Key: "7", Content: "old seven"},
		{Key: "2", Content: "bob"},
		{Key: "6", Content: "old six"},
	}

	script := Diff(mustBuild(t, src), mustBuild(t, rep))

	var kinds []EditKind
	var keys []Key
	for _, e := range script {
		kinds = append(kinds, e.Kind)
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []EditKind{Modified, Modified, Added, Added, Deleted, Deleted}, kinds)
	assert.Equal(t, []Key{"2", "1", "9", "8", "7", "6"}, keys)
}

func TestDiffIgnoresOrder(t *testing.T) {
	c := people()
	shuffled := Collection{c[2], c[0], c[3], c[1]}

	a := mustBuild(t, c)
	b := mustBuild(t, shuffled)

	assert.NotEqual(t, a.RootFingerprint(), b.RootFingerprint())
	assert.Empty(t, Diff(a, b))
}

func TestDiffIdentityDivergence(t *testing.T) {
	a := mustBuild(t, Collection{{Key: "1", Content: "same"}})
	b := mustBuild(t, Collection{{Key: "2", Content: "same"}})

	// Equal roots, different keys: only the key check notices.
	require.True(t, CompareRoots(a, b))
	script := Diff(a, b)
	assert.Equal(t, []Key{"1"}, script.Keys(Added))
	assert.Equal(t, []Key{"2"}, script.Keys(Deleted))
}

func TestEditString(t *testing.T) {
	tests := []struct {
		edit Edit
		want string
	}{
		{Edit{Kind: Modified, Key: "3", OldContent: "charlie", NewContent: "charlie-updated"}, `Modified 3: "charlie" → "charlie-updated"`},
		{Edit{Kind: Added, Key: "5", NewContent: "eve"}, "Added 5 (eve)"},
		{Edit{Kind: Deleted, Key: "2", OldContent: "bob"}, "Deleted 2 (bob)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.edit.String())
	}
}

func TestEditKindText(t *testing.T) {
	for _, k := range []EditKind{Modified, Added, Deleted} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got EditKind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	_, err := EditKind(0).MarshalText()
	assert.Error(t, err)

	var k EditKind
	assert.Error(t, k.UnmarshalText([]byte("renamed")))
}
