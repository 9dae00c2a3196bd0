package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var defPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a protocol definition's structure without encoding or decoding",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProtocol(defPath)
			if err != nil {
				return err
			}
			if err := validateFormat(p); err != nil {
				return err
			}
			fmt.Printf("%s: ok\n", defPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&defPath, "def", "d", "", "path to the JSON protocol definition (required)")
	cmd.MarkFlagRequired("def")
	return cmd
}
