// Package merklesync reconciles two keyed collections with Merkle trees.
//
// Each collection is hashed into a binary tree: one leaf per record in
// collection order, adjacent nodes paired level by level, and an all-zero
// sentinel padding any odd node out. Equal root fingerprints mean equal
// content; when they differ, the trees locate the records that changed and
// an edit script brings the replica into agreement with the source.
//
// Basic usage:
//
//	src, _ := merklesync.Build(source)
//	rep, _ := merklesync.Build(replica)
//
//	if !merklesync.CompareRoots(src, rep) {
//	    // Drill down level by level (same-shaped trees only)
//	    for _, lvl := range merklesync.DescendLevels(src, rep) {
//	        fmt.Println(lvl.Level, len(lvl.Divergences))
//	    }
//
//	    // Authoritative key-based diff
//	    script := merklesync.Diff(src, rep)
//	    replica, warnings := merklesync.Apply(replica, script)
//	}
//
// With a store owning both sides:
//
//	store := merklesync.NewStore(merklesync.WithLogger(logger))
//	_ = store.GenerateSample()
//	_ = store.CreateDifferences()
//
//	report, _ := store.Sync()
//	fmt.Println(report.Verified, report.SourceRoot.Short())
//
// Trees are immutable snapshots. An edit script is only valid against the
// collections it was computed from; Store.Apply refuses stale scripts with
// ErrStale.
package merklesync
