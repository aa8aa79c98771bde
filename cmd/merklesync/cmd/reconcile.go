package cmd

import (
	"fmt"

	"github.com/aweris/merklesync"
	"github.com/aweris/merklesync/internal/codec"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <source> <replica>",
	Short: "Bring a replica into agreement with its source",
	Long:  "Diff the two collections, apply the edit script to the replica, rebuild its tree and verify it matches the source.",
	Args:  cobra.ExactArgs(2),
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().StringP("output", "o", "", "write the reconciled replica here instead of overwriting it")
	reconcileCmd.Flags().Bool("dry-run", false, "report the edits without writing anything")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	store, done, err := loadStore(args[0], args[1])
	if err != nil {
		return err
	}
	defer done()

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		_, script, err := store.Diff()
		if err != nil {
			return err
		}
		printScript(cmd, script)
		return nil
	}

	report, err := store.Sync()
	if err != nil {
		return err
	}
	printReport(cmd, report)

	if report.InSync {
		return nil
	}
	replica, err := store.Collection(merklesync.Replica)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = args[1]
	}
	if err := codec.WriteCollection(path, replica); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(replica), path)
	return nil
}

func printReport(cmd *cobra.Command, r *merklesync.SyncReport) {
	out := cmd.OutOrStdout()
	if r.InSync {
		fmt.Fprintln(out, "Replica already in sync, nothing to do.")
		if !r.RootsMatch {
			fmt.Fprintln(out, "Note: same records in a different order, root fingerprints differ.")
		}
		return
	}

	printScript(cmd, r.Script)
	printWarnings(cmd, r.Warnings)
	fmt.Fprintf(out, "Source root:  %s\n", r.SourceRoot)
	fmt.Fprintf(out, "Replica root: %s -> %s\n", r.ReplicaRootBefore, r.ReplicaRootAfter)
	switch {
	case r.Verified && r.RootsMatch:
		fmt.Fprintln(out, "Synchronization complete, replica matches source.")
	case r.Verified:
		fmt.Fprintln(out, "Synchronization complete, records match but order differs (root fingerprints differ).")
	default:
		fmt.Fprintln(out, "Synchronization incomplete, replica still differs from source.")
	}
}
