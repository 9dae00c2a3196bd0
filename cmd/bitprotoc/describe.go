package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/bitproto/pkg/bitproto"
)

func newDescribeCmd() *cobra.Command {
	var defPath, inPath string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print a bit-offset table for a protocol, from its literals or a decoded input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProtocol(defPath)
			if err != nil {
				return err
			}

			var tree *bitproto.DecodedTree
			if inPath != "" {
				data, err := os.ReadFile(inPath)
				if err != nil {
					return fmt.Errorf("bitprotoc: reading %s: %w", inPath, err)
				}
				tree, err = p.Decode(data)
				if err != nil {
					return err
				}
			} else {
				if _, err := p.Encode(); err != nil {
					return err
				}
				tree = bitproto.BuildDecodedTree(p.Tree)
			}

			printBitOffsets(tree.Header, 0)
			printBitOffsets(tree.Body, 0)
			printBitOffsets(tree.Tail, 0)
			return nil
		},
	}
	cmd.Flags().StringVarP(&defPath, "def", "d", "", "path to the JSON protocol definition (required)")
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "optional wire bytes to decode for real offsets instead of encoding the literals")
	cmd.MarkFlagRequired("def")
	return cmd
}

func printBitOffsets(n *bitproto.DecodedNode, depth int) {
	if n == nil {
		return
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	status := "enabled"
	if !n.Enabled {
		status = "disabled"
	}
	fmt.Printf("%s[%5d,%5d) %-24s %-10s %-8s %s\n", indent, n.StartBit, n.EndBit, n.ID, n.ValueKind, status, n.Value)
	for _, c := range n.Children {
		printBitOffsets(c, depth+1)
	}
}
