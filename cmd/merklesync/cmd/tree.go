package cmd

import (
	"fmt"

	"github.com/aweris/merklesync"
	"github.com/aweris/merklesync/internal/codec"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

var treeCmd = &cobra.Command{
	Use:   "tree <collection>",
	Short: "Build and print a Merkle tree",
	Long:  "Build the Merkle tree of a collection file and print its statistics and shape.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().Bool("stats", false, "print statistics only")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	c, err := codec.ReadCollection(args[0])
	if err != nil {
		return err
	}
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	tree, err := merklesync.Build(c, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printStats(cmd, args[0], tree)
	if stats, _ := cmd.Flags().GetBool("stats"); stats || tree == nil {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderTree(tree))
	return nil
}

func printStats(cmd *cobra.Command, name string, tree *merklesync.Tree) {
	out := cmd.OutOrStdout()
	if tree == nil {
		fmt.Fprintf(out, "%s: empty collection, no tree\n", name)
		return
	}
	fmt.Fprintf(out, "%s: %d records, %d nodes, height %d, root %s\n",
		name, tree.LeafCount(), tree.NodeCount(), tree.Height(), tree.RootFingerprint())
}

// renderTree draws the tree with the root at the top.
func renderTree(tree *merklesync.Tree) string {
	root := tree.Root()
	printer := treeprint.NewWithRoot(nodeLabel(root))
	addChildren(printer, root)
	return printer.String()
}

func addChildren(branch treeprint.Tree, n merklesync.Node) {
	for _, child := range n.Children() {
		if child.Kind() == merklesync.KindInternal {
			addChildren(branch.AddBranch(nodeLabel(child)), child)
			continue
		}
		branch.AddNode(nodeLabel(child))
	}
}

func nodeLabel(n merklesync.Node) string {
	switch v := n.(type) {
	case *merklesync.Leaf:
		r := v.Record()
		return fmt.Sprintf("%s %s = %q", v.Fingerprint().Short(), r.Key, r.Content)
	case *merklesync.Sentinel:
		return "0000000000000000 (sentinel)"
	default:
		return fmt.Sprintf("%s L%d", n.Fingerprint().Short(), n.Level())
	}
}
