package cmd

import (
	"fmt"

	"github.com/aweris/merklesync"
	"github.com/aweris/merklesync/internal/codec"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <collection> <script>",
	Short: "Apply an edit script to a collection",
	Long:  "Apply a previously computed edit script to a collection file. Skipped edits are reported as warnings.",
	Args:  cobra.ExactArgs(2),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringP("output", "o", "", "write the result here instead of overwriting the collection")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	target, err := codec.ReadCollection(args[0])
	if err != nil {
		return err
	}
	script, err := codec.ReadScript(args[1])
	if err != nil {
		return err
	}

	next, warnings := merklesync.Apply(target, script)
	printWarnings(cmd, warnings)

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = args[0]
	}
	if err := codec.WriteCollection(path, next); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d of %d edits, wrote %d records to %s\n",
		len(script)-len(warnings), len(script), len(next), path)
	return nil
}

func printWarnings(cmd *cobra.Command, warnings []merklesync.Warning) {
	out := cmd.OutOrStdout()
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}
