package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var defPath, outPath string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a protocol definition's literal/forward-expression values to bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProtocol(defPath)
			if err != nil {
				return err
			}
			data, err := p.Encode()
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("bitprotoc: writing %s: %w", outPath, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&defPath, "def", "d", "", "path to the JSON protocol definition (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file for the encoded bytes, \"-\" for stdout")
	cmd.MarkFlagRequired("def")
	return cmd
}
