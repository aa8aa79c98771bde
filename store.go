package merklesync

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Side names one of the two collections a Store owns.
type Side uint8

const (
	Source Side = iota
	Replica
)

func (s Side) String() string {
	switch s {
	case Source:
		return "source"
	case Replica:
		return "replica"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// ParseSide parses "source" or "replica".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "source":
		return Source, nil
	case "replica":
		return Replica, nil
	}
	return 0, errors.Wrapf(ErrUnknownSide, "%q", s)
}

// maxSyncAttempts bounds how often Sync re-diffs after losing a race.
const maxSyncAttempts = 3

type side struct {
	records Collection
	version uint64
}

// Store owns the source and replica collections. Every mutation goes
// through its lock and bumps the version of the side it touches, so edit
// scripts computed from an older Snapshot can be detected and refused.
type Store struct {
	mu     sync.Mutex
	sides  [2]side
	nextID uint64

	keys      KeyGenerator
	buildOpts []BuildOption
	logger    *zap.Logger
}

// NewStore creates a store with two empty collections.
func NewStore(opts ...StoreOption) *Store {
	options := defaultStoreOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Store{
		nextID:    1,
		keys:      options.Keys,
		buildOpts: options.Build,
		logger:    options.Logger,
	}
}

// Snapshot is a consistent copy of both collections and their versions.
type Snapshot struct {
	Source         Collection
	Replica        Collection
	SourceVersion  uint64
	ReplicaVersion uint64
}

// Snapshot copies both collections under the lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Source:         s.sides[Source].records.Clone(),
		Replica:        s.sides[Replica].records.Clone(),
		SourceVersion:  s.sides[Source].version,
		ReplicaVersion: s.sides[Replica].version,
	}
}

// Collection returns a copy of one side.
func (s *Store) Collection(sd Side) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.side(sd)
	if err != nil {
		return nil, err
	}
	return st.records.Clone(), nil
}

// Version returns the mutation counter of one side.
func (s *Store) Version(sd Side) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.side(sd)
	if err != nil {
		return 0, err
	}
	return st.version, nil
}

func (s *Store) side(sd Side) (*side, error) {
	if sd != Source && sd != Replica {
		return nil, errors.Wrapf(ErrUnknownSide, "%d", uint8(sd))
	}
	return &s.sides[sd], nil
}

// Update runs a read-modify-write step on one side. fn receives a copy;
// its result replaces the side only if it validates.
func (s *Store) Update(sd Side, fn func(Collection) (Collection, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.side(sd)
	if err != nil {
		return err
	}
	next, err := fn(st.records.Clone())
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return errors.Wrapf(err, "update %s", sd)
	}
	s.replaceLocked(st, next)
	return nil
}

// Load replaces one side with c.
func (s *Store) Load(sd Side, c Collection) error {
	return s.Update(sd, func(Collection) (Collection, error) { return c.Clone(), nil })
}

func (s *Store) replaceLocked(st *side, c Collection) {
	st.records = c
	st.version++
	for _, r := range c {
		n, err := strconv.ParseUint(string(r.Key), 10, 64)
		if err != nil || n == math.MaxUint64 {
			continue
		}
		if n >= s.nextID {
			s.nextID = n + 1
		}
	}
}

// Add appends a record with a freshly assigned key.
func (s *Store) Add(sd Side, content string) (Key, error) {
	if content == "" {
		return "", ErrMissingContent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(sd, content)
}

// AddRow appends a placeholder record, like adding an empty table row.
func (s *Store) AddRow(sd Side) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(sd, fmt.Sprintf("New data %d", s.nextID))
}

func (s *Store) addLocked(sd Side, content string) (Key, error) {
	st, err := s.side(sd)
	if err != nil {
		return "", err
	}
	key, err := s.newKeyLocked(st)
	if err != nil {
		return "", err
	}
	s.appendLocked(sd, st, Record{Key: key, Content: content})
	return key, nil
}

// newKeyLocked generates the next key for st without consuming it.
func (s *Store) newKeyLocked(st *side) (Key, error) {
	key := s.keys(s.nextID)
	if key == "" {
		return "", errors.Wrapf(ErrMissingKey, "generated key for id %d", s.nextID)
	}
	if st.records.Index(key) >= 0 {
		return "", errors.Wrapf(ErrDuplicateKey, "generated key %s", key)
	}
	return key, nil
}

func (s *Store) appendLocked(sd Side, st *side, r Record) {
	s.nextID++
	st.records = append(st.records, r)
	st.version++
	s.logger.Debug("record added", zap.Stringer("side", sd), zap.String("key", string(r.Key)))
}

// Put replaces the content of an existing record.
func (s *Store) Put(sd Side, key Key, content string) error {
	if content == "" {
		return ErrMissingContent
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.side(sd)
	if err != nil {
		return err
	}
	i := st.records.Index(key)
	if i < 0 {
		return errors.Wrapf(ErrRecordNotFound, "%s key %s", sd, key)
	}
	st.records[i].Content = content
	st.version++
	return nil
}

// Remove deletes a record and returns it.
func (s *Store) Remove(sd Side, key Key) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.side(sd)
	if err != nil {
		return Record{}, err
	}
	i := st.records.Index(key)
	if i < 0 {
		return Record{}, errors.Wrapf(ErrRecordNotFound, "%s key %s", sd, key)
	}
	removed := st.records[i]
	st.records = append(st.records[:i:i], st.records[i+1:]...)
	st.version++
	s.logger.Debug("record removed", zap.Stringer("side", sd), zap.String("key", string(key)))
	return removed, nil
}

// Reset empties both sides and restarts key assignment.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sides {
		s.sides[i].records = nil
		s.sides[i].version++
	}
	s.nextID = 1
}

// View is a snapshot together with the trees built from it.
type View struct {
	Snapshot Snapshot
	Source   *Tree
	Replica  *Tree
}

// View snapshots the store and builds both trees concurrently.
func (s *Store) View() (*View, error) {
	snap := s.Snapshot()

	var (
		wg             conc.WaitGroup
		src, rep       *Tree
		srcErr, repErr error
	)
	wg.Go(func() { src, srcErr = Build(snap.Source, s.buildOpts...) })
	wg.Go(func() { rep, repErr = Build(snap.Replica, s.buildOpts...) })
	wg.Wait()

	if srcErr != nil {
		return nil, errors.Wrap(srcErr, "build source tree")
	}
	if repErr != nil {
		return nil, errors.Wrap(repErr, "build replica tree")
	}

	s.logger.Debug("trees built",
		zap.String("source_root", src.RootFingerprint().Short()),
		zap.String("replica_root", rep.RootFingerprint().Short()),
		zap.Int("source_nodes", src.NodeCount()),
		zap.Int("replica_nodes", rep.NodeCount()),
	)
	return &View{Snapshot: snap, Source: src, Replica: rep}, nil
}

// Diff builds both trees and returns the script that brings the replica
// into agreement with the source.
func (s *Store) Diff() (*View, EditScript, error) {
	v, err := s.View()
	if err != nil {
		return nil, nil, err
	}
	script := Diff(v.Source, v.Replica)
	s.logger.Debug("diff computed",
		zap.Int("modified", script.Count(Modified)),
		zap.Int("added", script.Count(Added)),
		zap.Int("deleted", script.Count(Deleted)),
	)
	return v, script, nil
}

// Apply reconciles the replica with script. It fails with ErrStale if
// either side changed since snap was taken; the caller must re-diff.
func (s *Store) Apply(snap Snapshot, script EditScript) ([]Warning, error) {
	_, warnings, err := s.apply(snap, script)
	return warnings, err
}

func (s *Store) apply(snap Snapshot, script EditScript) (Collection, []Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sides[Source].version != snap.SourceVersion || s.sides[Replica].version != snap.ReplicaVersion {
		return nil, nil, errors.WithDetailf(ErrStale,
			"snapshot source v%d replica v%d, store source v%d replica v%d",
			snap.SourceVersion, snap.ReplicaVersion,
			s.sides[Source].version, s.sides[Replica].version)
	}

	next, warnings := Apply(s.sides[Replica].records, script)
	for _, w := range warnings {
		s.logger.Warn("reconcile edit skipped",
			zap.Stringer("kind", w.Kind),
			zap.String("key", string(w.Edit.Key)),
			zap.String("message", w.Message),
		)
	}
	s.replaceLocked(&s.sides[Replica], next)
	return next.Clone(), warnings, nil
}

// SyncReport summarizes one Sync.
type SyncReport struct {
	SourceRoot        Fingerprint
	ReplicaRootBefore Fingerprint
	ReplicaRootAfter  Fingerprint
	Script            EditScript
	Warnings          []Warning
	// InSync is set when nothing had to be applied.
	InSync bool
	// Verified is set when re-diffing after the apply found no edits.
	Verified bool
	// RootsMatch is set when the replica root equals the source root
	// afterwards. With insertion-ordered trees it can stay false after a
	// verified sync if the replica holds the same records in another order.
	RootsMatch bool
	Attempts   int
}

// Sync brings the replica into agreement with the source: build both
// trees, diff, apply, then rebuild the replica and verify. If a writer
// slips in between diff and apply, the whole sequence is retried.
func (s *Store) Sync() (*SyncReport, error) {
	for attempt := 1; attempt <= maxSyncAttempts; attempt++ {
		report, err := s.syncOnce()
		if errors.Is(err, ErrStale) {
			s.logger.Debug("sync lost a race, re-diffing", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Attempts = attempt
		return report, nil
	}
	return nil, errors.WithHint(
		errors.Wrapf(ErrStale, "sync gave up after %d attempts", maxSyncAttempts),
		"collections are being modified faster than they can be reconciled")
}

func (s *Store) syncOnce() (*SyncReport, error) {
	v, script, err := s.Diff()
	if err != nil {
		return nil, err
	}

	report := &SyncReport{
		SourceRoot:        v.Source.RootFingerprint(),
		ReplicaRootBefore: v.Replica.RootFingerprint(),
		Script:            script,
	}
	if script.Empty() {
		report.InSync = true
		report.Verified = true
		report.ReplicaRootAfter = report.ReplicaRootBefore
		report.RootsMatch = CompareRoots(v.Source, v.Replica)
		s.logger.Debug("replica already in sync")
		return report, nil
	}

	replica, warnings, err := s.apply(v.Snapshot, script)
	if err != nil {
		return nil, err
	}
	report.Warnings = warnings

	after, err := Build(replica, s.buildOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "rebuild replica tree")
	}
	report.ReplicaRootAfter = after.RootFingerprint()
	report.Verified = Diff(v.Source, after).Empty()
	report.RootsMatch = CompareRoots(v.Source, after)

	s.logger.Info("replica reconciled",
		zap.Int("edits", len(script)),
		zap.Int("warnings", len(warnings)),
		zap.Bool("verified", report.Verified),
		zap.Bool("roots_match", report.RootsMatch),
		zap.String("source_root", report.SourceRoot.Short()),
		zap.String("replica_root", report.ReplicaRootAfter.Short()),
	)
	return report, nil
}
