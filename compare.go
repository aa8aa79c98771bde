package merklesync

// Divergence is a pair of nodes at the same level and position whose
// fingerprints differ. Path spells the route from the root, one L or R
// per step.
type Divergence struct {
	A, B Node
	Path string
}

// LevelDivergences groups the divergences found at one level.
type LevelDivergences struct {
	Level       int
	Divergences []Divergence
}

// CompareRoots reports whether two trees have the same root fingerprint.
// Two absent trees are equal; an absent tree never equals a present one.
func CompareRoots(a, b *Tree) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.RootFingerprint() == b.RootFingerprint()
}

// CompareLevel walks both trees from the root in lockstep and returns the
// node pairs at level that differ. Subtrees whose fingerprints match are
// not descended into.
//
// The walk assumes both trees have the same shape down to level. Where
// shapes diverge (different heights, a sentinel against an internal node)
// that branch yields nothing; use Diff for a result that is correct for
// any shapes.
func CompareLevel(a, b *Tree, level int) []Divergence {
	if a == nil || b == nil || level < 0 {
		return nil
	}
	return compareNodes(a.root, b.root, level, "", nil)
}

func compareNodes(a, b Node, target int, path string, out []Divergence) []Divergence {
	if a == nil || b == nil {
		return out
	}

	la, lb := a.Level(), b.Level()
	if la == target && lb == target {
		if a.Fingerprint() != b.Fingerprint() {
			out = append(out, Divergence{A: a, B: b, Path: path})
		}
		return out
	}
	if la <= target || lb <= target {
		return out
	}
	if a.Fingerprint() == b.Fingerprint() {
		return out
	}

	ca, cb := a.Children(), b.Children()
	for i := 0; i < min(len(ca), len(cb)); i++ {
		out = compareNodes(ca[i], cb[i], target, path+branch(i), out)
	}
	return out
}

func branch(i int) string {
	if i == 0 {
		return "L"
	}
	return "R"
}

// DescendLevels runs CompareLevel from the top level down to the leaves,
// the way a step-by-step drill-down would. It stops at the first level
// with no divergences, since nothing below it can be reached.
func DescendLevels(a, b *Tree) []LevelDivergences {
	if a == nil || b == nil || CompareRoots(a, b) {
		return nil
	}

	var out []LevelDivergences
	for level := max(a.Height(), b.Height()); level >= 0; level-- {
		found := CompareLevel(a, b, level)
		if len(found) == 0 {
			break
		}
		out = append(out, LevelDivergences{Level: level, Divergences: found})
	}
	return out
}
