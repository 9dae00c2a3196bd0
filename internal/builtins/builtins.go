// Package builtins is the reference function registry for the expression
// evaluator contract in internal/eval. Per the specification's scope (§1),
// the library of expression helper functions is an external collaborator —
// this package is a minimal, concrete implementation of that collaborator
// so the evaluator and dependency-graph contracts can be exercised end to
// end, not "the" production helper library.
package builtins

import (
	"hash/crc32"

	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/bitproto/internal/eval"
)

// Register installs the reference builtins into reg. Call once at startup;
// the registry is read-mostly thereafter (§5).
func Register(reg *eval.Registry) {
	reg.Register(eval.FuncDef{Name: "length", Arity: 1, Call: lengthFn})

	reg.Register(eval.FuncDef{Name: "lengthBetween", Arity: 2, IsRangeFunction: true, CallRange: lengthBetweenFn})
	reg.Register(eval.FuncDef{Name: "checksumBetween", Arity: 2, IsRangeFunction: true, CallRange: checksumBetweenFn})
	reg.Register(eval.FuncDef{Name: "crc16Between", Arity: 2, IsRangeFunction: true, CallRange: crc16BetweenFn})
	reg.Register(eval.FuncDef{Name: "crc32Between", Arity: 2, IsRangeFunction: true, CallRange: crc32BetweenFn})
	reg.Register(eval.FuncDef{Name: "blake2bBetween", Arity: 2, IsRangeFunction: true, CallRange: blake2bBetweenFn})
}

func lengthFn(args []eval.Value) (eval.Value, error) {
	v := args[0]
	switch v.Kind {
	case eval.KBytes:
		return eval.IntOf(int64(len(v.Bytes))), nil
	case eval.KString:
		return eval.IntOf(int64(len(v.Str))), nil
	default:
		return eval.Value{}, &eval.ExprError{Message: "length() requires a bytes or string operand"}
	}
}

func lengthBetweenFn(span []byte) (eval.Value, error) {
	return eval.IntOf(int64(len(span))), nil
}

// checksumBetweenFn implements the simple additive byte checksum used in
// the specification's worked example (§8 scenario 3): sum of bytes mod 256.
func checksumBetweenFn(span []byte) (eval.Value, error) {
	var sum byte
	for _, b := range span {
		sum += b
	}
	return eval.IntOf(int64(sum)), nil
}

// crc16BetweenFn computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF, no
// reflection, no final xor) over the span.
func crc16BetweenFn(span []byte) (eval.Value, error) {
	const poly = 0x1021
	crc := uint16(0xFFFF)
	for _, b := range span {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return eval.IntOf(int64(crc)), nil
}

func crc32BetweenFn(span []byte) (eval.Value, error) {
	return eval.IntOf(int64(crc32.ChecksumIEEE(span))), nil
}

// blake2bBetweenFn hashes the span with BLAKE2b-256, returning the digest as
// a bytes value so it can be assigned directly to a HEX-kinded field.
func blake2bBetweenFn(span []byte) (eval.Value, error) {
	sum := blake2b.Sum256(span)
	return eval.BytesOf(sum[:]), nil
}
