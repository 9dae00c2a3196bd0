package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var defPath, inPath, format string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode wire bytes against a protocol definition and print the diagnostic tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProtocol(defPath)
			if err != nil {
				return err
			}
			var data []byte
			if inPath == "" || inPath == "-" {
				data, err = readAllStdin()
			} else {
				data, err = os.ReadFile(inPath)
			}
			if err != nil {
				return fmt.Errorf("bitprotoc: reading input: %w", err)
			}

			tree, err := p.Decode(data)
			if err != nil {
				return err
			}
			return printDecodedTree(tree, outputFormat(format))
		},
	}
	cmd.Flags().StringVarP(&defPath, "def", "d", "", "path to the JSON protocol definition (required)")
	cmd.Flags().StringVarP(&inPath, "in", "i", "-", "input file with the wire bytes, \"-\" for stdin")
	cmd.Flags().StringVar(&format, "format", "", "output format: json or cbor (defaults to config output_format)")
	cmd.MarkFlagRequired("def")
	return cmd
}

func readAllStdin() ([]byte, error) {
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no input piped on stdin; pass --in <file>")
	}
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			break
		}
	}
	return buf, nil
}

func outputFormat(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.OutputFormat
}

func printDecodedTree(tree interface {
	MarshalJSON() ([]byte, error)
	MarshalCBOR() ([]byte, error)
}, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "cbor":
		data, err = tree.MarshalCBOR()
	default:
		data, err = tree.MarshalJSON()
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	if err == nil && format != "cbor" {
		fmt.Println()
	}
	return err
}
