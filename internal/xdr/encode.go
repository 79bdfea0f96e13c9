package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// WriteUint32 encodes an unsigned 32-bit integer (RFC 4506 §4.1).
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteInt32 encodes a signed 32-bit integer (RFC 4506 §4.1).
func WriteInt32(buf *bytes.Buffer, v int32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int32: %w", err)
	}
	return nil
}

// WriteUint64 encodes an unsigned 64-bit integer (RFC 4506 §4.5, hyper).
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteInt64 encodes a signed 64-bit integer (RFC 4506 §4.5, hyper).
func WriteInt64(buf *bytes.Buffer, v int64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int64: %w", err)
	}
	return nil
}

// WriteFloat32 encodes an IEEE-754 single-precision float (RFC 4506 §4.6).
func WriteFloat32(buf *bytes.Buffer, v float32) error {
	return WriteUint32(buf, math.Float32bits(v))
}

// WriteFloat64 encodes an IEEE-754 double-precision float (RFC 4506 §4.7).
func WriteFloat64(buf *bytes.Buffer, v float64) error {
	return WriteUint64(buf, math.Float64bits(v))
}

// WriteBool encodes a boolean as a 4-byte 0/1 (RFC 4506 §4.4).
func WriteBool(buf *bytes.Buffer, v bool) error {
	var val uint32
	if v {
		val = 1
	}
	return WriteUint32(buf, val)
}

// WritePadding pads to a 4-byte boundary given the just-written length.
// padding = (4 - dataLen%4) % 4: zero when dataLen is already a multiple
// of 4, never four.
func WritePadding(buf *bytes.Buffer, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding == 0 {
		return nil
	}
	var zero [3]byte
	if _, err := buf.Write(zero[:padding]); err != nil {
		return fmt.Errorf("write padding: %w", err)
	}
	return nil
}

// WriteFixedOpaque encodes a fixed-length opaque field: N raw bytes plus
// padding to the next 4-byte boundary (RFC 4506 §4.9). No length prefix.
func WriteFixedOpaque(buf *bytes.Buffer, data []byte) error {
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write fixed opaque: %w", err)
	}
	return WritePadding(buf, uint32(len(data)))
}

// WriteOpaque encodes variable-length opaque data: a uint32 length, the
// bytes, then padding to a 4-byte boundary (RFC 4506 §4.10).
func WriteOpaque(buf *bytes.Buffer, data []byte) error {
	length := uint32(len(data))
	if err := WriteUint32(buf, length); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return WritePadding(buf, length)
}

// WriteString encodes a variable-length string using the same layout as
// WriteOpaque (RFC 4506 §4.11).
func WriteString(buf *bytes.Buffer, s string) error {
	return WriteOpaque(buf, []byte(s))
}

// WriteOptional encodes an optional value: a boolean discriminant, then
// write(v) when present is true, nothing otherwise.
func WriteOptional(buf *bytes.Buffer, present bool, write func(*bytes.Buffer) error) error {
	if err := WriteBool(buf, present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return write(buf)
}

// WriteUnionDiscriminant writes the uint32 arm selector of a discriminated
// union (RFC 4506 §4.15). The selected arm's own encoding follows.
func WriteUnionDiscriminant(buf *bytes.Buffer, disc uint32) error {
	return WriteUint32(buf, disc)
}
