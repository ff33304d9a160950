// Package keys encodes benchmark indices into the fixed-width
// keys and values stored in the engine.
package keys

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// KeySize is the length of every key handed to the store.
	KeySize = 32
	// ValueSize is the length of every value handed to the store.
	ValueSize = 4
	// ValueMask is XORed into the index to derive its value.
	ValueMask uint32 = 0xBADC0DE

	// lastDigit is the offset of the least significant digit. The
	// final byte of a key is never written.
	lastDigit = KeySize - 2
	maxDigits = KeySize - 2
	digits    = "0123456789abcdef"
)

// ErrMalformedKey is returned when a key does not hold a
// hex encoded integer.
var ErrMalformedKey = errors.New("malformed benchmark key")

// Key is a 32 byte, zero padded, base-16 rendering of an index.
type Key [KeySize]byte

// Value is the 4 byte payload stored against a Key.
type Value [ValueSize]byte

// Bytes returns a copy of the key as a slice.
func (k Key) Bytes() []byte {
	return k[:]
}

// Bytes returns a copy of the value as a slice.
func (v Value) Bytes() []byte {
	return v[:]
}

// Encode renders val in base 16.
func Encode(val uint32) Key {
	return EncodeBase(val, 16)
}

// EncodeBase writes the digits of val right aligned at offset 30,
// leaving every other byte zero. Zero has no digits at all and so
// encodes to a key of 32 zero bytes.
func EncodeBase(val, base uint32) Key {
	if base < 2 || base > uint32(len(digits)) {
		panic(fmt.Sprintf("unsupported key base: %d", base))
	}
	var k Key
	for i := lastDigit; val != 0 && i > lastDigit-maxDigits; i, val = i-1, val/base {
		k[i] = digits[val%base]
	}
	return k
}

// Decode parses a base 16 key produced by Encode.
func Decode(k Key) (uint32, error) {
	if k[KeySize-1] != 0 {
		return 0, fmt.Errorf("%w: trailing byte is %#x", ErrMalformedKey, k[KeySize-1])
	}
	start := lastDigit + 1
	for start > 0 && k[start-1] != 0 {
		start--
	}
	for i := 0; i < start; i++ {
		if k[i] != 0 {
			return 0, fmt.Errorf("%w: unexpected byte %#x at offset %d", ErrMalformedKey, k[i], i)
		}
	}
	if start > lastDigit {
		return 0, nil
	}
	val, err := strconv.ParseUint(string(k[start:lastDigit+1]), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return uint32(val), nil
}

// EncodeValue derives the value stored for index i. The layout is
// that of snprintf(buf, 4, "%04x", i^ValueMask): only the leading
// three hex characters fit, followed by the terminating zero byte.
func EncodeValue(i uint32) Value {
	var v Value
	copy(v[:ValueSize-1], fmt.Sprintf("%04x", i^ValueMask))
	return v
}
