// Command bitprotoc is the reference CLI for the bitproto codec engine:
// encode, decode, validate, describe, and watch a JSON protocol definition
// (internal/protojson) against raw wire bytes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bitprotoc",
		Short:         "Encode, decode, and inspect bitproto wire protocols",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional YAML config file")

	rootCmd.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newValidateCmd(),
		newDescribeCmd(),
		newWatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bitprotoc: %v\n", err)
		os.Exit(1)
	}
}
