package codec

import (
	"fmt"
	"strconv"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/valuefmt"
)

// EncodeBit writes a width-bit bit-field value, always MSB-first regardless
// of the node's declared endian (§9: sub-byte fields are endian-agnostic).
func EncodeBit(width int, source string, buf *bitbuf.BitBuffer) error {
	v, err := valuefmt.ParseUint(source)
	if err != nil {
		return fmt.Errorf("bit codec: %w", err)
	}
	if err := valuefmt.CheckUintWidth(v, width); err != nil {
		return fmt.Errorf("bit codec: %w", err)
	}
	return buf.AppendBits(v, width, bitbuf.BigEndian)
}

// DecodeBit reads a width-bit bit-field and renders it as "0b<width-wide
// binary>", except width==1 which renders as a bare "0" or "1" digit.
func DecodeBit(width int, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	v, err := buf.ReadBits(startBit, width, bitbuf.BigEndian)
	if err != nil {
		return "", fmt.Errorf("bit codec: %w", err)
	}
	if width == 1 {
		return strconv.FormatUint(v, 10), nil
	}
	bin := strconv.FormatUint(v, 2)
	for len(bin) < width {
		bin = "0" + bin
	}
	return "0b" + bin, nil
}
