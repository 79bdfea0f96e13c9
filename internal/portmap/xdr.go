package portmap

import (
	"encoding/binary"
	"fmt"
)

// MappingSize is the XDR-encoded size of a single mapping: 4 fixed-size
// uint32 fields, so plain encoding/binary is simpler and faster than going
// through the general xdr package's struct reflection.
const MappingSize = 16

// DecodeMapping decodes the 16-byte mapping struct that SET, UNSET, and
// GETPORT all send as their sole argument. Trailing bytes are ignored.
func DecodeMapping(data []byte) (Mapping, error) {
	if len(data) < MappingSize {
		return Mapping{}, fmt.Errorf("portmap mapping too short: got %d bytes, need %d", len(data), MappingSize)
	}

	return Mapping{
		Prog: binary.BigEndian.Uint32(data[0:4]),
		Vers: binary.BigEndian.Uint32(data[4:8]),
		Prot: binary.BigEndian.Uint32(data[8:12]),
		Port: binary.BigEndian.Uint32(data[12:16]),
	}, nil
}

// encodeMapping encodes a single mapping to its 16-byte wire form.
func encodeMapping(m Mapping) []byte {
	buf := make([]byte, MappingSize)
	binary.BigEndian.PutUint32(buf[0:4], m.Prog)
	binary.BigEndian.PutUint32(buf[4:8], m.Vers)
	binary.BigEndian.PutUint32(buf[8:12], m.Prot)
	binary.BigEndian.PutUint32(buf[12:16], m.Port)
	return buf
}

// EncodeGetportResponse encodes a GETPORT reply: a bare uint32 port, 0 if
// the queried tuple is unregistered.
func EncodeGetportResponse(port uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, port)
	return buf
}

// EncodeBoolResponse encodes the XDR boolean SET and UNSET reply with.
func EncodeBoolResponse(v bool) []byte {
	buf := make([]byte, 4)
	if v {
		binary.BigEndian.PutUint32(buf, 1)
	}
	return buf
}

// EncodeDumpResponse encodes the DUMP reply as the RFC 1057 optional-data
// linked list: each entry is a uint32(1) "more" flag followed by a 16-byte
// mapping, and the list is terminated by a final uint32(0). An empty
// registry therefore still produces the 4-byte terminator alone.
func EncodeDumpResponse(mappings []Mapping) []byte {
	entrySize := 4 + MappingSize
	buf := make([]byte, len(mappings)*entrySize+4)

	offset := 0
	for _, m := range mappings {
		binary.BigEndian.PutUint32(buf[offset:offset+4], 1)
		offset += 4
		copy(buf[offset:offset+MappingSize], encodeMapping(m))
		offset += MappingSize
	}
	binary.BigEndian.PutUint32(buf[offset:offset+4], 0)

	return buf
}
