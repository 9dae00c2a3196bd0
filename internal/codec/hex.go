package codec

import (
	"fmt"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
	"github.com/aledsdavies/bitproto/internal/valuefmt"
)

// ResolveHexWidthBits returns the wire width of a HEX field: widthBits if
// declared (>0), otherwise the literal's own byte length * 8 (width==0
// means "take the literal's byte length", per §4.2).
func ResolveHexWidthBits(widthBits int, source string) (int, error) {
	if widthBits > 0 {
		return widthBits, nil
	}
	raw, err := valuefmt.ParseHexBytes(source)
	if err != nil {
		return 0, fmt.Errorf("hex codec: %w", err)
	}
	return len(raw) * 8, nil
}

// EncodeHex writes a byte string. widthBits must already be resolved (see
// ResolveHexWidthBits) and be a multiple of 8. Per the Open Question
// recommendation in the specification, under/over-sized padding is applied
// to the natural big-endian representation first, then the whole byte
// string is reversed if endian is LITTLE.
func EncodeHex(widthBits int, endian node.Endian, source string, buf *bitbuf.BitBuffer) error {
	if widthBits%8 != 0 {
		return fmt.Errorf("hex codec: width %d is not a multiple of 8", widthBits)
	}
	raw, err := valuefmt.ParseHexBytes(source)
	if err != nil {
		return fmt.Errorf("hex codec: %w", err)
	}
	widthBytes := widthBits / 8

	var wire []byte
	switch {
	case len(raw) == widthBytes:
		wire = raw
	case len(raw) < widthBytes:
		wire = make([]byte, widthBytes)
		copy(wire[widthBytes-len(raw):], raw)
	default: // len(raw) > widthBytes: high (leading) bytes must be zero
		extra := raw[:len(raw)-widthBytes]
		for _, b := range extra {
			if b != 0 {
				return fmt.Errorf("hex codec: value %q does not fit in %d bytes (non-zero high bytes)", source, widthBytes)
			}
		}
		wire = raw[len(raw)-widthBytes:]
	}

	if endian == node.LittleEndian {
		wire = append([]byte(nil), wire...)
		for i, j := 0, len(wire)-1; i < j; i, j = i+1, j-1 {
			wire[i], wire[j] = wire[j], wire[i]
		}
	}
	return buf.AppendByteAligned(wire)
}

// DecodeHex reads widthBits (a multiple of 8) worth of raw bytes and renders
// them "0x"-prefixed, reversing first if endian is LITTLE so the returned
// literal is always in natural big-endian byte order.
func DecodeHex(widthBits int, endian node.Endian, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	if widthBits%8 != 0 {
		return "", fmt.Errorf("hex codec: width %d is not a multiple of 8", widthBits)
	}
	raw, err := buf.ReadByteAligned(startBit, widthBits/8)
	if err != nil {
		return "", fmt.Errorf("hex codec: %w", err)
	}
	if endian == node.LittleEndian {
		raw = append([]byte(nil), raw...)
		for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
			raw[i], raw[j] = raw[j], raw[i]
		}
	}
	return valuefmt.FormatHexBytes(raw), nil
}
