package rpc

import (
	"bytes"
	"fmt"

	"github.com/lunixbochs/gonfsd/internal/xdr"
)

// Every constructor in this file returns a complete, record-marked wire
// message (fragment header already prepended) ready for an unbuffered
// socket write. This keeps framing decisions for these small, fixed-shape
// replies out of the dispatcher.

// MakeSuccessReply builds an accepted reply carrying the given
// already-encoded procedure result.
func MakeSuccessReply(xid uint32, data []byte) ([]byte, error) {
	return makeAcceptedReply(xid, Success, data)
}

// ProcUnavailReply builds an accepted reply with accept_stat PROC_UNAVAIL.
func ProcUnavailReply(xid uint32) ([]byte, error) {
	return makeAcceptedReply(xid, ProcUnavail, nil)
}

// ProgUnavailReply builds an accepted reply with accept_stat PROG_UNAVAIL.
func ProgUnavailReply(xid uint32) ([]byte, error) {
	return makeAcceptedReply(xid, ProgUnavail, nil)
}

// GarbageArgsReply builds an accepted reply with accept_stat GARBAGE_ARGS.
func GarbageArgsReply(xid uint32) ([]byte, error) {
	return makeAcceptedReply(xid, GarbageArgs, nil)
}

// SystemErrReply builds an accepted reply with accept_stat SYSTEM_ERR.
func SystemErrReply(xid uint32) ([]byte, error) {
	return makeAcceptedReply(xid, SystemErr, nil)
}

// MakeProgMismatchReply builds an accepted reply with accept_stat
// PROG_MISMATCH, carrying the [low, high] supported version range.
func MakeProgMismatchReply(xid, low, high uint32) ([]byte, error) {
	if low > high {
		return nil, fmt.Errorf("invalid version range: low (%d) > high (%d)", low, high)
	}
	var payload bytes.Buffer
	if err := xdr.WriteUint32(&payload, low); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&payload, high); err != nil {
		return nil, err
	}
	return makeAcceptedReply(xid, ProgMismatch, payload.Bytes())
}

// RPCVersMismatchReply builds a MSG_DENIED/RPC_MISMATCH reply naming the
// only RPC version this server accepts (2) as both low and high.
func RPCVersMismatchReply(xid uint32) ([]byte, error) {
	var body bytes.Buffer
	if err := writeReplyHeader(&body, xid, MsgDenied); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&body, RPCMismatch); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&body, RPCVersion); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&body, RPCVersion); err != nil {
		return nil, err
	}
	return frameReply(body.Bytes()), nil
}

// MakeAuthErrorReply builds a MSG_DENIED/AUTH_ERROR reply with the given
// auth_stat.
func MakeAuthErrorReply(xid uint32, authStat uint32) ([]byte, error) {
	var body bytes.Buffer
	if err := writeReplyHeader(&body, xid, MsgDenied); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&body, AuthError); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&body, authStat); err != nil {
		return nil, err
	}
	return frameReply(body.Bytes()), nil
}

// makeAcceptedReply builds a full MSG_ACCEPTED reply: xid, msg_type=REPLY,
// reply_state=MSG_ACCEPTED, a null verifier, the accept_stat, then payload
// (present only for SUCCESS and PROG_MISMATCH).
func makeAcceptedReply(xid, acceptStat uint32, payload []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := writeReplyHeader(&body, xid, MsgAccepted); err != nil {
		return nil, err
	}
	if err := xdr.WriteUint32(&body, acceptStat); err != nil {
		return nil, err
	}
	if _, err := body.Write(payload); err != nil {
		return nil, fmt.Errorf("write payload: %w", err)
	}
	return frameReply(body.Bytes()), nil
}

// writeReplyHeader writes xid, msg_type=REPLY, the reply_state discriminant,
// and — for MSG_ACCEPTED only — a null verifier (AUTH_NONE, zero length).
// MSG_DENIED carries no verifier; its own discriminant follows immediately.
func writeReplyHeader(buf *bytes.Buffer, xid, replyState uint32) error {
	if err := xdr.WriteUint32(buf, xid); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, Reply); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, replyState); err != nil {
		return err
	}
	if replyState == MsgAccepted {
		if err := xdr.WriteUint32(buf, AuthNull); err != nil {
			return err
		}
		if err := xdr.WriteUint32(buf, 0); err != nil {
			return err
		}
	}
	return nil
}

// frameReply prepends a record-marking fragment header (RFC 5531, Record
// Marking Standard) marking body as the single, last fragment of the
// record.
func frameReply(body []byte) []byte {
	out := make([]byte, 4+len(body))
	header := lastFragmentBit | uint32(len(body))
	out[0] = byte(header >> 24)
	out[1] = byte(header >> 16)
	out[2] = byte(header >> 8)
	out[3] = byte(header)
	copy(out[4:], body)
	return out
}
