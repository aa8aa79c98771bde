package merklesync

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Canonical sorts leaves by key before building, so the root depends
	// only on content and not on insertion history.
	Canonical bool
	Hasher    *Hasher
	// Workers bounds parallel leaf hashing. Values <= 1 hash sequentially.
	Workers int
}

// BuildOption is a functional option for configuring Build.
type BuildOption func(*BuildOptions)

func defaultBuildOptions() *BuildOptions {
	return &BuildOptions{Workers: 1}
}

// WithCanonicalOrder orders leaves by key instead of insertion order.
func WithCanonicalOrder(canonical bool) BuildOption {
	return func(o *BuildOptions) { o.Canonical = canonical }
}

// WithHasher sets the hasher used for leaves and internal nodes.
func WithHasher(h *Hasher) BuildOption {
	return func(o *BuildOptions) { o.Hasher = h }
}

// WithWorkers sets the number of goroutines hashing leaves.
func WithWorkers(n int) BuildOption {
	return func(o *BuildOptions) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// KeyGenerator produces the key of a new record. seq is the store's
// monotonically increasing record counter.
type KeyGenerator func(seq uint64) Key

// SequentialKeys uses the counter itself: "1", "2", ...
func SequentialKeys(seq uint64) Key {
	return Key(strconv.FormatUint(seq, 10))
}

// UUIDKeys ignores the counter and returns a random UUID.
func UUIDKeys(uint64) Key {
	return Key(uuid.NewString())
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Logger *zap.Logger
	Keys   KeyGenerator
	Build  []BuildOption
}

// StoreOption is a functional option for configuring NewStore.
type StoreOption func(*StoreOptions)

func defaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		Logger: zap.NewNop(),
		Keys:   SequentialKeys,
	}
}

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(o *StoreOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithKeyGenerator sets how new records are keyed.
func WithKeyGenerator(g KeyGenerator) StoreOption {
	return func(o *StoreOptions) {
		if g != nil {
			o.Keys = g
		}
	}
}

// WithBuildOptions sets the options used whenever the store builds trees.
func WithBuildOptions(opts ...BuildOption) StoreOption {
	return func(o *StoreOptions) { o.Build = append(o.Build, opts...) }
}
