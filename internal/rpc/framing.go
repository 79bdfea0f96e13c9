package rpc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Record Marking Standard (RFC 5531, Appendix): every fragment is preceded
// by a 4-byte big-endian header whose top bit marks it as the last fragment
// of the record and whose remaining 31 bits give the fragment's length.
const lastFragmentBit uint32 = 1 << 31

const fragmentLengthMask uint32 = lastFragmentBit - 1

// DefaultMaxRecordSize bounds the total size of a single reassembled
// record. A hostile or corrupt sequence of fragment headers could otherwise
// force unbounded buffering.
const DefaultMaxRecordSize = 4 * 1024 * 1024

// ReadRecord reassembles one complete record from a stream of one or more
// record-marking fragments, enforcing maxSize on the running total.
func ReadRecord(r io.Reader, maxSize int) ([]byte, error) {
	var record []byte
	for {
		var headerBuf [4]byte
		if _, err := io.ReadFull(r, headerBuf[:]); err != nil {
			return nil, err
		}
		header := binary.BigEndian.Uint32(headerBuf[:])
		length := header & fragmentLengthMask
		last := header&lastFragmentBit != 0

		if len(record)+int(length) > maxSize {
			return nil, fmt.Errorf("record exceeds maximum size %d", maxSize)
		}

		fragment := make([]byte, length)
		if _, err := io.ReadFull(r, fragment); err != nil {
			return nil, fmt.Errorf("read fragment body: %w", err)
		}
		record = append(record, fragment...)

		if last {
			return record, nil
		}
	}
}

// maxFragmentSize is the largest fragment body the 31-bit length field can
// carry in one piece.
const maxFragmentSize = int(fragmentLengthMask)

// WriteRecord writes data as one or more record-marking fragments, setting
// the last-fragment bit only on the final fragment. A single write call is
// issued per fragment so a slow client cannot hold a torn header.
func WriteRecord(w io.Writer, data []byte) error {
	if len(data) == 0 {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], lastFragmentBit)
		_, err := w.Write(header[:])
		return err
	}

	for offset := 0; offset < len(data); {
		end := offset + maxFragmentSize
		last := end >= len(data)
		if last {
			end = len(data)
		}
		chunk := data[offset:end]

		header := uint32(len(chunk))
		if last {
			header |= lastFragmentBit
		}

		frame := make([]byte, 4+len(chunk))
		binary.BigEndian.PutUint32(frame[:4], header)
		copy(frame[4:], chunk)
		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("write fragment: %w", err)
		}
		offset = end
	}
	return nil
}
