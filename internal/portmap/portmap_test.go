package portmap

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySetGetport(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, uint32(0), r.Getport(100003, 3, ProtoTCP), "missing key returns 0")

	assert.True(t, r.Set(Mapping{Prog: 100003, Vers: 3, Prot: ProtoTCP, Port: 2049}))
	assert.Equal(t, uint32(2049), r.Getport(100003, 3, ProtoTCP))

	assert.False(t, r.Set(Mapping{Prog: 100003, Vers: 3, Prot: ProtoTCP, Port: 9999}), "re-registering an existing key fails")
	assert.Equal(t, uint32(2049), r.Getport(100003, 3, ProtoTCP), "existing mapping is untouched")
}

func TestRegistryUnsetRemovesBothProtocols(t *testing.T) {
	r := NewRegistry()
	r.Set(Mapping{Prog: 100000, Vers: 2, Prot: ProtoTCP, Port: 111})
	r.Set(Mapping{Prog: 100000, Vers: 2, Prot: ProtoUDP, Port: 111})

	assert.True(t, r.Unset(100000, 2))
	assert.Equal(t, uint32(0), r.Getport(100000, 2, ProtoTCP))
	assert.Equal(t, uint32(0), r.Getport(100000, 2, ProtoUDP))

	assert.False(t, r.Unset(100000, 2), "unsetting an absent key returns false")
}

func TestRegistryDumpSortedAndComplete(t *testing.T) {
	r := NewRegistry()
	r.Set(Mapping{Prog: 100005, Vers: 3, Prot: ProtoTCP, Port: 20048})
	r.Set(Mapping{Prog: 100003, Vers: 3, Prot: ProtoTCP, Port: 2049})
	r.Set(Mapping{Prog: 100000, Vers: 2, Prot: ProtoUDP, Port: 111})

	dump := r.Dump()
	require.Len(t, dump, 3)
	assert.Equal(t, uint32(100000), dump[0].Prog)
	assert.Equal(t, uint32(100003), dump[1].Prog)
	assert.Equal(t, uint32(100005), dump[2].Prog)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m := Mapping{Prog: uint32(100000 + n), Vers: 1, Prot: ProtoTCP, Port: uint32(n)}
			r.Set(m)
			r.Getport(m.Prog, m.Vers, m.Prot)
			r.Dump()
			r.Unset(m.Prog, m.Vers)
		}(i)
	}
	wg.Wait()
}

func TestDecodeMapping(t *testing.T) {
	data := make([]byte, MappingSize)
	binary.BigEndian.PutUint32(data[0:4], 100003)
	binary.BigEndian.PutUint32(data[4:8], 3)
	binary.BigEndian.PutUint32(data[8:12], ProtoTCP)
	binary.BigEndian.PutUint32(data[12:16], 12049)

	m, err := DecodeMapping(data)
	require.NoError(t, err)
	assert.Equal(t, Mapping{Prog: 100003, Vers: 3, Prot: ProtoTCP, Port: 12049}, m)

	_, err = DecodeMapping(data[:12])
	assert.Error(t, err)
}

func TestEncodeDumpResponse(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got := EncodeDumpResponse(nil)
		assert.Equal(t, []byte{0, 0, 0, 0}, got)
	})

	t.Run("SingleMapping", func(t *testing.T) {
		got := EncodeDumpResponse([]Mapping{{Prog: 100003, Vers: 3, Prot: ProtoTCP, Port: 2049}})
		assert.Len(t, got, 4+MappingSize+4)
		assert.Equal(t, uint32(1), binary.BigEndian.Uint32(got[0:4]), "more-flag precedes the entry")
		assert.Equal(t, uint32(0), binary.BigEndian.Uint32(got[len(got)-4:]), "terminator ends the list")
	})

	t.Run("ThreeMappings", func(t *testing.T) {
		mappings := []Mapping{
			{Prog: 100000, Vers: 2, Prot: ProtoUDP, Port: 111},
			{Prog: 100003, Vers: 3, Prot: ProtoTCP, Port: 2049},
			{Prog: 100005, Vers: 3, Prot: ProtoTCP, Port: 20048},
		}
		got := EncodeDumpResponse(mappings)
		assert.Len(t, got, 3*(4+MappingSize)+4)
	})
}

func TestEncodeBoolResponse(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 1}, EncodeBoolResponse(true))
	assert.Equal(t, []byte{0, 0, 0, 0}, EncodeBoolResponse(false))
}

func TestHandlerDispatch(t *testing.T) {
	h := NewHandler(NewRegistry())

	t.Run("Null", func(t *testing.T) {
		reply, err := h.Handle(ProcNull, nil)
		require.NoError(t, err)
		assert.Nil(t, reply)
	})

	t.Run("SetThenGetport", func(t *testing.T) {
		data := make([]byte, MappingSize)
		binary.BigEndian.PutUint32(data[0:4], 100003)
		binary.BigEndian.PutUint32(data[4:8], 3)
		binary.BigEndian.PutUint32(data[8:12], ProtoTCP)
		binary.BigEndian.PutUint32(data[12:16], 2049)

		reply, err := h.Handle(ProcSet, data)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 1}, reply)

		reply, err = h.Handle(ProcGetport, data)
		require.NoError(t, err)
		assert.Equal(t, uint32(2049), binary.BigEndian.Uint32(reply))
	})

	t.Run("GarbageArgs", func(t *testing.T) {
		_, err := h.Handle(ProcSet, []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrGarbageArgs)
	})

	t.Run("CallitUnimplemented", func(t *testing.T) {
		_, err := h.Handle(ProcCallit, nil)
		assert.ErrorIs(t, err, ErrProcUnavail)
	})
}
