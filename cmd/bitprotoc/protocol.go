package main

import (
	"fmt"
	"os"

	"github.com/aledsdavies/bitproto/internal/builtins"
	"github.com/aledsdavies/bitproto/internal/eval"
	"github.com/aledsdavies/bitproto/internal/protojson"
	"github.com/aledsdavies/bitproto/internal/validate"
	"github.com/aledsdavies/bitproto/pkg/bitproto"
)

// loadProtocol reads and parses a JSON protocol definition from path,
// expanding node groups and registering the reference builtin function set.
func loadProtocol(path string) (*bitproto.Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bitprotoc: reading %s: %w", path, err)
	}
	reg := eval.NewRegistry()
	builtins.Register(reg)

	tree, err := protojson.Load(data, reg)
	if err != nil {
		return nil, fmt.Errorf("bitprotoc: %w", err)
	}
	p, err := bitproto.New(tree, reg, nil)
	if err != nil {
		return nil, fmt.Errorf("bitprotoc: %w", err)
	}
	return p, nil
}

// validateFormat runs the structural pre-flight checks (§4.1) over p's
// expanded tree without performing a full encode.
func validateFormat(p *bitproto.Protocol) error {
	return (validate.FormatValidator{}).Validate(p.Tree)
}
