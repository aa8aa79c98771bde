package cmd

import (
	"fmt"

	"github.com/aweris/merklesync"
	"github.com/aweris/merklesync/internal/codec"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <source> <replica>",
	Short: "Compute the edit script between two collections",
	Long:  "Compare two collection files by key and print the edits that bring the replica into agreement with the source.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringP("output", "o", "", "write the edit script to this file (.json, .yaml, optionally .zst)")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	store, done, err := loadStore(args[0], args[1])
	if err != nil {
		return err
	}
	defer done()

	v, script, err := store.Diff()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printStats(cmd, "source", v.Source)
	printStats(cmd, "replica", v.Replica)
	printScript(cmd, script)

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := codec.WriteScript(path, script); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d edits to %s\n", len(script), path)
	}
	return nil
}

func printScript(cmd *cobra.Command, script merklesync.EditScript) {
	out := cmd.OutOrStdout()
	if script.Empty() {
		fmt.Fprintln(out, "No differences.")
		return
	}
	fmt.Fprintf(out, "%d edits (%d modified, %d added, %d deleted):\n", len(script),
		script.Count(merklesync.Modified), script.Count(merklesync.Added), script.Count(merklesync.Deleted))
	for _, e := range script {
		fmt.Fprintf(out, "  - %s\n", e)
	}
}

// loadStore reads the source and replica files into a new store.
func loadStore(sourcePath, replicaPath string) (*merklesync.Store, func(), error) {
	store, done, err := newStore()
	if err != nil {
		return nil, nil, err
	}
	for sd, path := range map[merklesync.Side]string{merklesync.Source: sourcePath, merklesync.Replica: replicaPath} {
		c, err := codec.ReadCollection(path)
		if err != nil {
			done()
			return nil, nil, err
		}
		if err := store.Load(sd, c); err != nil {
			done()
			return nil, nil, err
		}
	}
	return store, done, nil
}
