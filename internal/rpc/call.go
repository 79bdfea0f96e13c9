package rpc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lunixbochs/gonfsd/internal/xdr"
)

// CallMessage is a decoded rpc_msg whose body is a CALL (call_body, RFC
// 5531 §9). Procedure argument bytes are not decoded here; Data holds the
// remaining, still-XDR-encoded bytes for the program-specific dispatcher to
// consume.
type CallMessage struct {
	XID       uint32
	RPCVers   uint32
	Program   uint32
	Version   uint32
	Procedure uint32
	Cred      OpaqueAuth
	Verf      OpaqueAuth
	Data      []byte
}

// GetAuthFlavor returns the credential flavor the client asserted.
func (c *CallMessage) GetAuthFlavor() uint32 { return c.Cred.Flavor }

// GetAuthBody returns the raw (still-encoded) credential body.
func (c *CallMessage) GetAuthBody() []byte { return c.Cred.Body }

// ReadCall decodes an rpc_msg from a complete, de-framed RPC message and
// requires that its body be a CALL. Decode failures collapse to a single
// error; callers that need GARBAGE_ARGS semantics construct that reply
// themselves from the error.
func ReadCall(data []byte) (*CallMessage, error) {
	r := bytes.NewReader(data)

	xidVal, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read xid: %w", err)
	}
	mtype, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read msg_type: %w", err)
	}
	if mtype != Call {
		return nil, fmt.Errorf("expected CALL message, got msg_type %d", mtype)
	}

	call := &CallMessage{XID: xidVal}

	if call.RPCVers, err = xdr.DecodeUint32(r); err != nil {
		return nil, fmt.Errorf("read rpcvers: %w", err)
	}
	if call.Program, err = xdr.DecodeUint32(r); err != nil {
		return nil, fmt.Errorf("read prog: %w", err)
	}
	if call.Version, err = xdr.DecodeUint32(r); err != nil {
		return nil, fmt.Errorf("read vers: %w", err)
	}
	if call.Procedure, err = xdr.DecodeUint32(r); err != nil {
		return nil, fmt.Errorf("read proc: %w", err)
	}
	if call.Cred, err = decodeOpaqueAuth(r); err != nil {
		return nil, fmt.Errorf("read cred: %w", err)
	}
	if call.Verf, err = decodeOpaqueAuth(r); err != nil {
		return nil, fmt.Errorf("read verf: %w", err)
	}

	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("read procedure args: %w", err)
	}
	call.Data = rest

	return call, nil
}

// ReadData returns the procedure-specific argument bytes of a decoded call.
// It exists alongside ReadCall to mirror the two-step decode/extract shape
// callers expect: decode the envelope once, then hand the remaining bytes
// to whichever program's argument decoder applies.
func ReadData(data []byte, call *CallMessage) ([]byte, error) {
	return call.Data, nil
}

func decodeOpaqueAuth(r *bytes.Reader) (OpaqueAuth, error) {
	flavor, err := xdr.DecodeUint32(r)
	if err != nil {
		return OpaqueAuth{}, fmt.Errorf("read flavor: %w", err)
	}
	body, err := xdr.DecodeOpaque(r)
	if err != nil {
		return OpaqueAuth{}, fmt.Errorf("read body: %w", err)
	}
	return OpaqueAuth{Flavor: flavor, Body: body}, nil
}

// ParseUnixAuth decodes an AUTH_UNIX credential body (RFC 5531 §8.2):
// stamp, machine name (opaque<255>), uid, gid, gids (opaque array<16>).
func ParseUnixAuth(body []byte) (*UnixAuth, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty AUTH_UNIX body")
	}
	r := bytes.NewReader(body)

	stamp, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read stamp: %w", err)
	}

	nameLen, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read machine name length: %w", err)
	}
	if nameLen > maxMachineNameLen {
		return nil, fmt.Errorf("machine name too long: %d > %d", nameLen, maxMachineNameLen)
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, fmt.Errorf("read machine name: %w", err)
	}
	if err := skipAuthPadding(r, nameLen); err != nil {
		return nil, err
	}

	uid, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read uid: %w", err)
	}
	gid, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read gid: %w", err)
	}

	ngids, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read gids count: %w", err)
	}
	if ngids > maxGIDs {
		return nil, fmt.Errorf("too many gids: %d > %d", ngids, maxGIDs)
	}
	gids := make([]uint32, ngids)
	for i := range gids {
		if gids[i], err = xdr.DecodeUint32(r); err != nil {
			return nil, fmt.Errorf("read gid[%d]: %w", i, err)
		}
	}

	return &UnixAuth{
		Stamp:       stamp,
		MachineName: string(nameBytes),
		UID:         uid,
		GID:         gid,
		GIDs:        gids,
	}, nil
}

func skipAuthPadding(r *bytes.Reader, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	for i := uint32(0); i < padding; i++ {
		if _, err := r.ReadByte(); err != nil {
			return fmt.Errorf("read padding: %w", err)
		}
	}
	return nil
}
