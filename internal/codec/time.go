package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
)

// timeLayouts are tried in order when a TIME node's source looks like a
// datetime literal rather than a hex or numeric one.
var timeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

// EncodeTime is a thin delegate to UINT (§4.2): the codec only resolves a
// datetime literal (or hex/numeric literal) down to a plain integer and
// hands off to EncodeUint. Any bit-layout beyond "this many bits, this
// endian" — week+seconds splits, millis-since-epoch, and so on — is the
// forward expression author's responsibility, not the codec's.
func EncodeTime(width int, endian node.Endian, source string, buf *bitbuf.BitBuffer) error {
	resolved, err := resolveTimeSource(source)
	if err != nil {
		return fmt.Errorf("time codec: %w", err)
	}
	return EncodeUint(width, endian, resolved, buf)
}

// DecodeTime is the inverse delegate: read as UINT, render the numeric
// value as a decimal string. Formatting back to a calendar representation,
// if wanted, is the backward expression's job.
func DecodeTime(width int, endian node.Endian, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	return DecodeUint(width, endian, buf, startBit)
}

// resolveTimeSource accepts a hex literal, a decimal literal, or a
// "yyyy-MM-dd HH:mm:ss[.SSS]" datetime literal for EncodeUint. Hex and
// decimal literals pass through unchanged; a datetime literal is read as UTC
// and becomes its Unix seconds as a decimal string (milliseconds dropped).
func resolveTimeSource(source string) (string, error) {
	s := strings.TrimSpace(source)
	if s == "" {
		return "", fmt.Errorf("empty time literal")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || isAllDigits(s) {
		return s, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fmt.Sprintf("%d", t.Unix()), nil
		}
	}
	return "", fmt.Errorf("unrecognized time literal %q (want hex, decimal, or yyyy-MM-dd HH:mm:ss[.SSS])", source)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
