package codec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
	"github.com/aledsdavies/bitproto/internal/node"
)

// EncodeFloat writes an IEEE 754 value, 32 or 64 bits only.
func EncodeFloat(widthBits int, endian node.Endian, source string, buf *bitbuf.BitBuffer) error {
	v, err := strconv.ParseFloat(source, 64)
	if err != nil {
		return fmt.Errorf("float codec: invalid literal %q: %w", source, err)
	}
	be := toBitbufEndian(endian)
	switch widthBits {
	case 32:
		bits := math.Float32bits(float32(v))
		return buf.AppendBits(uint64(bits), 32, be)
	case 64:
		bits := math.Float64bits(v)
		return buf.AppendBits(bits, 64, be)
	default:
		return fmt.Errorf("float codec: width must be 32 or 64, got %d", widthBits)
	}
}

// DecodeFloat reads an IEEE 754 value and renders it with the shortest
// round-trippable decimal representation.
func DecodeFloat(widthBits int, endian node.Endian, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	be := toBitbufEndian(endian)
	switch widthBits {
	case 32:
		raw, err := buf.ReadBits(startBit, 32, be)
		if err != nil {
			return "", fmt.Errorf("float codec: %w", err)
		}
		v := math.Float32frombits(uint32(raw))
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case 64:
		raw, err := buf.ReadBits(startBit, 64, be)
		if err != nil {
			return "", fmt.Errorf("float codec: %w", err)
		}
		v := math.Float64frombits(raw)
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("float codec: width must be 32 or 64, got %d", widthBits)
	}
}
