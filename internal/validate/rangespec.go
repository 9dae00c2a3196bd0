// Package validate implements range-spec parsing, enum/range validation,
// and the pre-flight FormatValidator pass over a protocol tree (§4.8, §4.1
// invariant 3).
package validate

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/bitproto/internal/node"
	"github.com/aledsdavies/bitproto/internal/valuefmt"
)

// ParseRangeSpec parses a "||"-separated union of intervals such as
// "[0,10] || (20,30) || [100]" into a node.RangeSpec.
func ParseRangeSpec(src string) (*node.RangeSpec, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, fmt.Errorf("validate: empty range spec")
	}
	if strings.HasSuffix(trimmed, "||") {
		return nil, fmt.Errorf("validate: trailing '||' in range spec %q", src)
	}
	parts := strings.Split(trimmed, "||")
	spec := &node.RangeSpec{Source: src}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("validate: empty interval in range spec %q", src)
		}
		iv, err := parseInterval(p)
		if err != nil {
			return nil, fmt.Errorf("validate: range spec %q: %w", src, err)
		}
		spec.Intervals = append(spec.Intervals, iv)
	}
	return spec, nil
}

func parseInterval(s string) (node.Interval, error) {
	if len(s) < 3 {
		return node.Interval{}, fmt.Errorf("malformed interval %q", s)
	}
	open := s[0]
	closeCh := s[len(s)-1]

	// Singleton "[a]"
	if open == '[' && closeCh == ']' && !strings.Contains(s[1:len(s)-1], ",") {
		v, err := parseEndpoint(s[1 : len(s)-1])
		if err != nil {
			return node.Interval{}, err
		}
		return node.Interval{Singleton: true, Lo: v, Hi: v}, nil
	}

	var loIncl, hiIncl bool
	switch open {
	case '[':
		loIncl = true
	case '(':
		loIncl = false
	default:
		return node.Interval{}, fmt.Errorf("interval %q must start with '[' or '('", s)
	}
	switch closeCh {
	case ']':
		hiIncl = true
	case ')':
		hiIncl = false
	default:
		return node.Interval{}, fmt.Errorf("interval %q must end with ']' or ')'", s)
	}

	body := s[1 : len(s)-1]
	comma := strings.Index(body, ",")
	if comma < 0 {
		return node.Interval{}, fmt.Errorf("interval %q missing ','", s)
	}
	loStr := strings.TrimSpace(body[:comma])
	hiStr := strings.TrimSpace(body[comma+1:])
	lo, err := parseEndpoint(loStr)
	if err != nil {
		return node.Interval{}, err
	}
	hi, err := parseEndpoint(hiStr)
	if err != nil {
		return node.Interval{}, err
	}
	if lo > hi {
		return node.Interval{}, fmt.Errorf("interval %q has lo > hi", s)
	}
	return node.Interval{Lo: lo, Hi: hi, LoInclusive: loIncl, HiInclusive: hiIncl}, nil
}

func parseEndpoint(s string) (int64, error) {
	v, err := valuefmt.ParseInt(s)
	if err != nil {
		return 0, fmt.Errorf("bad interval endpoint %q: %w", s, err)
	}
	return v, nil
}

// RangeValidator checks a value against a node's declared range_spec. For
// numeric kinds the value itself is tested; for STRING the character length
// is tested instead.
type RangeValidator struct{}

// CheckNumeric validates a numeric value against spec.
func (RangeValidator) CheckNumeric(spec *node.RangeSpec, v int64) error {
	if spec == nil {
		return nil
	}
	if !spec.Contains(v) {
		return fmt.Errorf("validate: value %d outside range %q", v, spec.Source)
	}
	return nil
}

// CheckStringLength validates a string's character length against spec.
func (RangeValidator) CheckStringLength(spec *node.RangeSpec, s string) error {
	if spec == nil {
		return nil
	}
	n := int64(len([]rune(s)))
	if !spec.Contains(n) {
		return fmt.Errorf("validate: string length %d outside range %q", n, spec.Source)
	}
	return nil
}

// EnumValidator maps between display text and wire literals declared on a
// node's Enumerants list.
type EnumValidator struct{}

// WireFor returns the wire literal paired with display, or an error if no
// enumerant has that display text.
func (EnumValidator) WireFor(enums []node.Enumerant, display string) (string, error) {
	for _, e := range enums {
		if e.Display == display {
			return e.Wire, nil
		}
	}
	return "", fmt.Errorf("validate: %q is not a declared enumerant", display)
}

// DisplayFor returns the display text paired with a decoded wire literal, or
// an error if the wire value is not declared.
func (EnumValidator) DisplayFor(enums []node.Enumerant, wire string) (string, error) {
	for _, e := range enums {
		if e.Wire == wire {
			return e.Display, nil
		}
	}
	return "", fmt.Errorf("validate: wire value %q is not a declared enumerant", wire)
}
