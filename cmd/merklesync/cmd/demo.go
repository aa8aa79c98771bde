package cmd

import (
	"fmt"

	"github.com/aweris/merklesync"
	"github.com/aweris/merklesync/internal/fakedata"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through a full reconciliation",
	Long: `Generate sample data, introduce differences in the source, drill down
through the trees, compute the edit script and synchronize the replica.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().Int("records", 0, "use this many random records instead of the built-in sample")
	demoCmd.Flags().Int64("seed", 1, "random seed for --records")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	store, done, err := newStore()
	if err != nil {
		return err
	}
	defer done()

	out := cmd.OutOrStdout()
	records, _ := cmd.Flags().GetInt("records")
	if records > 0 {
		seed, _ := cmd.Flags().GetInt64("seed")
		g := fakedata.New(seed)
		replica := g.Collection(records)
		source := g.Diverge(replica, fakedata.Changes{
			Modify: max(1, records/10),
			Add:    max(1, records/20),
			Delete: records / 20,
		})
		if err := store.Load(merklesync.Source, source); err != nil {
			return err
		}
		if err := store.Load(merklesync.Replica, replica); err != nil {
			return err
		}
		fmt.Fprintf(out, "Generated %d random records, source diverged from replica\n", records)
	} else {
		if err := store.GenerateSample(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Generated identical sample data for both sides (4 records each)")
		if err := store.CreateDifferences(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Created 2 differences in source: 1 modification, 1 addition")
	}

	v, err := store.View()
	if err != nil {
		return err
	}
	printStats(cmd, "source", v.Source)
	printStats(cmd, "replica", v.Replica)

	if merklesync.CompareRoots(v.Source, v.Replica) {
		fmt.Fprintln(out, "Root fingerprints match, no synchronization needed.")
	} else {
		fmt.Fprintf(out, "Root fingerprints differ: source=%s replica=%s\n",
			v.Source.RootFingerprint().Short(), v.Replica.RootFingerprint().Short())
		levels := merklesync.DescendLevels(v.Source, v.Replica)
		if len(levels) == 0 {
			fmt.Fprintln(out, "Tree shapes differ, skipping drill-down.")
		}
		for _, lvl := range levels {
			printLevel(cmd, lvl)
		}
	}

	report, err := store.Sync()
	if err != nil {
		return err
	}
	printReport(cmd, report)
	return nil
}
