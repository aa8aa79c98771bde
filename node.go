package merklesync

// NodeKind tags the three node variants.
type NodeKind uint8

const (
	KindLeaf NodeKind = iota
	KindInternal
	KindSentinel
)

func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindInternal:
		return "internal"
	case KindSentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// Node is a vertex of a Merkle tree: a *Leaf, an *Internal or a *Sentinel.
type Node interface {
	Kind() NodeKind
	Fingerprint() Fingerprint
	// Level is 0 for leaves and grows towards the root.
	Level() int
	// Children returns [left, right] for internal nodes and nil otherwise.
	Children() []Node
}

// Leaf represents one record.
type Leaf struct {
	fingerprint Fingerprint
	record      Record
}

func (n *Leaf) Kind() NodeKind           { return KindLeaf }
func (n *Leaf) Fingerprint() Fingerprint { return n.fingerprint }
func (n *Leaf) Level() int               { return 0 }
func (n *Leaf) Children() []Node         { return nil }

// Record returns a copy of the record the leaf was built from.
func (n *Leaf) Record() Record { return n.record }

// Internal joins exactly two children.
type Internal struct {
	fingerprint Fingerprint
	level       int
	left, right Node
}

func (n *Internal) Kind() NodeKind           { return KindInternal }
func (n *Internal) Fingerprint() Fingerprint { return n.fingerprint }
func (n *Internal) Level() int               { return n.level }
func (n *Internal) Children() []Node         { return []Node{n.left, n.right} }

// Left returns the left child.
func (n *Internal) Left() Node { return n.left }

// Right returns the right child.
func (n *Internal) Right() Node { return n.right }

// Sentinel pads the last node of an odd-sized level. Its fingerprint is
// all zeros; it sits at the level of the node it pairs with.
type Sentinel struct {
	level int
}

func (n *Sentinel) Kind() NodeKind           { return KindSentinel }
func (n *Sentinel) Fingerprint() Fingerprint { return Fingerprint{} }
func (n *Sentinel) Level() int               { return n.level }
func (n *Sentinel) Children() []Node         { return nil }

func newLeaf(r Record, fp Fingerprint) *Leaf {
	return &Leaf{fingerprint: fp, record: r}
}

func newInternal(h *Hasher, left, right Node) *Internal {
	return &Internal{
		fingerprint: h.Combine(left.Fingerprint(), right.Fingerprint()),
		level:       max(left.Level(), right.Level()) + 1,
		left:        left,
		right:       right,
	}
}

// countNodes counts n and every node below it, sentinels included.
func countNodes(n Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}

// walkLeaves visits leaves left to right. It stops when yield returns false.
func walkLeaves(n Node, yield func(*Leaf) bool) bool {
	switch v := n.(type) {
	case *Leaf:
		return yield(v)
	case *Internal:
		return walkLeaves(v.left, yield) && walkLeaves(v.right, yield)
	default:
		return true
	}
}
