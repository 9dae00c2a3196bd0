// Package codec implements the per-value-kind type codecs: each one
// encodes a resolved source value to bits and decodes bits back to a
// canonical string value, per §4.2. Enum mapping, forward/backward
// expressions, and literal-vs-computed resolution are the scheduler's job;
// a codec only ever sees the final value it must serialize.
package codec

import (
	"fmt"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
	"github.com/aledsdavies/bitproto/internal/valuefmt"
)

func toBitbufEndian(e node.Endian) bitbuf.Endian {
	if e == node.LittleEndian {
		return bitbuf.LittleEndian
	}
	return bitbuf.BigEndian
}

// EncodeUint writes a declared-width unsigned integer. source accepts
// decimal, "0x…", or "0b…" literals; negative or out-of-width values are
// rejected.
func EncodeUint(width int, endian node.Endian, source string, buf *bitbuf.BitBuffer) error {
	v, err := valuefmt.ParseUint(source)
	if err != nil {
		return fmt.Errorf("uint codec: %w", err)
	}
	if err := valuefmt.CheckUintWidth(v, width); err != nil {
		return fmt.Errorf("uint codec: %w", err)
	}
	return buf.AppendBits(v, width, toBitbufEndian(endian))
}

// DecodeUint reads a declared-width unsigned integer and renders it as a
// base-10 string.
func DecodeUint(width int, endian node.Endian, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	v, err := buf.ReadBits(startBit, width, toBitbufEndian(endian))
	if err != nil {
		return "", fmt.Errorf("uint codec: %w", err)
	}
	return fmt.Sprintf("%d", v), nil
}

// EncodeInt writes a declared-width two's-complement signed integer.
func EncodeInt(width int, endian node.Endian, source string, buf *bitbuf.BitBuffer) error {
	v, err := valuefmt.ParseInt(source)
	if err != nil {
		return fmt.Errorf("int codec: %w", err)
	}
	if err := valuefmt.CheckIntWidth(v, width); err != nil {
		return fmt.Errorf("int codec: %w", err)
	}
	raw := valuefmt.ToTwosComplement(v, width)
	return buf.AppendBits(raw, width, toBitbufEndian(endian))
}

// DecodeInt reads a declared-width two's-complement signed integer and
// renders it as a base-10 string.
func DecodeInt(width int, endian node.Endian, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	raw, err := buf.ReadBits(startBit, width, toBitbufEndian(endian))
	if err != nil {
		return "", fmt.Errorf("int codec: %w", err)
	}
	v := valuefmt.FromTwosComplement(raw, width)
	return fmt.Sprintf("%d", v), nil
}
