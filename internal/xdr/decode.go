package xdr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// DecodeUint32 decodes an unsigned 32-bit integer (RFC 4506 §4.1).
func DecodeUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

// DecodeInt32 decodes a signed 32-bit integer (RFC 4506 §4.1).
func DecodeInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return v, nil
}

// DecodeUint64 decodes an unsigned 64-bit integer (RFC 4506 §4.5, hyper).
func DecodeUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// DecodeInt64 decodes a signed 64-bit integer (RFC 4506 §4.5, hyper).
func DecodeInt64(r io.Reader) (int64, error) {
	var v int64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}
	return v, nil
}

// DecodeFloat32 decodes an IEEE-754 single-precision float (RFC 4506 §4.6).
func DecodeFloat32(r io.Reader) (float32, error) {
	v, err := DecodeUint32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// DecodeFloat64 decodes an IEEE-754 double-precision float (RFC 4506 §4.7).
func DecodeFloat64(r io.Reader) (float64, error) {
	v, err := DecodeUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// DecodeBool decodes a boolean; any non-zero word decodes true (RFC 4506
// §4.4 permits only 0/1 on the wire, but decode is lenient on input).
func DecodeBool(r io.Reader) (bool, error) {
	v, err := DecodeUint32(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// skipPadding discards the 0-3 padding bytes following a variable-length
// field of the given length.
func skipPadding(r io.Reader, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding == 0 {
		return nil
	}
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:padding]); err != nil {
		return fmt.Errorf("read padding: %w", err)
	}
	return nil
}

// DecodeFixedOpaque reads n raw bytes plus padding to the next 4-byte
// boundary (RFC 4506 §4.9); there is no length prefix to validate.
func DecodeFixedOpaque(r io.Reader, n int) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read fixed opaque: %w", err)
	}
	if err := skipPadding(r, uint32(n)); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeOpaque reads variable-length opaque data: a uint32 length, that
// many bytes, then padding (RFC 4506 §4.10). Rejects lengths larger than
// MaxOpaqueLength to bound allocation from a hostile or corrupt length
// prefix.
func DecodeOpaque(r io.Reader) ([]byte, error) {
	length, err := DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read opaque length: %w", err)
	}
	if length > MaxOpaqueLength {
		return nil, fmt.Errorf("opaque length %d exceeds maximum %d", length, MaxOpaqueLength)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read opaque data: %w", err)
	}
	if err := skipPadding(r, length); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeString reads a variable-length string using the same layout as
// DecodeOpaque (RFC 4506 §4.11). The reference implementation accepts any
// byte sequence rather than rejecting non-ASCII; NFSv3 path components are
// frequently non-ASCII in the wild and rejecting them would only break
// otherwise-valid requests.
func DecodeString(r io.Reader) (string, error) {
	data, err := DecodeOpaque(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeOptional reads a boolean discriminant, then decode(r) when it is
// true.
func DecodeOptional(r io.Reader, decode func(io.Reader) error) (bool, error) {
	present, err := DecodeBool(r)
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}
	return true, decode(r)
}

// DecodeUnionDiscriminant reads the uint32 arm selector of a discriminated
// union (RFC 4506 §4.15).
func DecodeUnionDiscriminant(r io.Reader) (uint32, error) {
	return DecodeUint32(r)
}
