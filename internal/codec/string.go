package codec

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/aledsdavies/bitproto/internal/bitbuf"
)

// charsetFor resolves a node's declared charset name to a golang.org/x/text
// encoding.Encoding. "utf-8" (the default) passes bytes through unchanged;
// other names are looked up against a small table of the encodings the
// specification's charset field is expected to name.
func charsetFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return encoding.Nop, nil
	case "ascii", "us-ascii":
		return encoding.Nop, nil // ASCII is a subset of UTF-8 byte-for-byte
	case "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	default:
		return nil, fmt.Errorf("string codec: unknown charset %q", name)
	}
}

// EncodeString writes source encoded in charset, truncated or zero-padded
// to exactly widthBits/8 bytes.
func EncodeString(widthBits int, charset, source string, buf *bitbuf.BitBuffer) error {
	if widthBits <= 0 || widthBits%8 != 0 {
		return fmt.Errorf("string codec: width %d must be a positive multiple of 8", widthBits)
	}
	enc, err := charsetFor(charset)
	if err != nil {
		return err
	}
	raw, err := enc.NewEncoder().Bytes([]byte(source))
	if err != nil {
		return fmt.Errorf("string codec: encoding to %q failed: %w", charset, err)
	}
	widthBytes := widthBits / 8
	out := make([]byte, widthBytes)
	n := copy(out, raw)
	_ = n // truncation is intentional when raw is longer than widthBytes
	return buf.AppendByteAligned(out)
}

// DecodeString reads widthBits/8 raw bytes, decodes them from charset, and
// trims trailing zero bytes only when trimZeros is set (never by default,
// per §4.2).
func DecodeString(widthBits int, charset string, trimZeros bool, buf *bitbuf.BitBuffer, startBit int) (string, error) {
	if widthBits <= 0 || widthBits%8 != 0 {
		return "", fmt.Errorf("string codec: width %d must be a positive multiple of 8", widthBits)
	}
	raw, err := buf.ReadByteAligned(startBit, widthBits/8)
	if err != nil {
		return "", fmt.Errorf("string codec: %w", err)
	}
	if trimZeros {
		raw = bytes.TrimRight(raw, "\x00")
	}
	enc, err := charsetFor(charset)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("string codec: decoding from %q failed: %w", charset, err)
	}
	return string(out), nil
}
