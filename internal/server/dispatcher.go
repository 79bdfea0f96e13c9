package server

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/lunixbochs/gonfsd/internal/mount"
	"github.com/lunixbochs/gonfsd/internal/nfs3"
	"github.com/lunixbochs/gonfsd/internal/portmap"
	"github.com/lunixbochs/gonfsd/internal/rpc"
	"github.com/lunixbochs/gonfsd/internal/vfs"
)

// Dispatcher routes one decoded RPC call to the right program handler. It
// carries no state of its own — everything it needs travels in the
// Context attached to each Command — so a single Dispatcher value is
// shared (or, equivalently, a zero value constructed fresh) across every
// connection's queue.
type Dispatcher struct{}

// Handle is the dispatch function an internal/rpc.Queue[*Context] drives:
// one Command in, one Result out.
//
//  1. Decode the rpc_msg envelope. A REPLY body, or any envelope that fails
//     to decode, is reported as Close — the connection cannot be trusted.
//  2. An AUTH_UNIX credential is parsed and attached to the request's
//     Context clone.
//  3. An RPC version other than 2 gets rpc_vers_mismatch and nothing else.
//  4. A retransmitted (xid, client address) produces no reply at all.
//  5. The call is routed on (program, version) to PORTMAP, MOUNT, or NFSv3;
//     a known-but-unserved program number, or a version mismatch on a
//     program this server does implement, gets prog_mismatch/prog_unavail.
//  6. A handler's own decode failure becomes garbage_args.
//  7. The transaction tracker is told the call completed, starting its
//     retransmission-suppression window.
//
// Result.Reply is the bare rpc_msg: the record-marking header the reply
// constructors prepend is stripped, since the connection writer frames
// each reply itself.
func (d *Dispatcher) Handle(cmd rpc.Command[*Context]) rpc.Result {
	ctx := cmd.Ctx

	call, err := rpc.ReadCall(cmd.Record)
	if err != nil {
		return rpc.Result{Close: true}
	}

	if call.Cred.Flavor == rpc.AuthUnix {
		if auth, err := rpc.ParseUnixAuth(call.Cred.Body); err == nil {
			ctx.Auth = auth
		}
	}

	if call.RPCVers != rpc.RPCVersion {
		reply, err := rpc.RPCVersMismatchReply(call.XID)
		if err != nil {
			return rpc.Result{Close: true}
		}
		return rpc.Result{Reply: reply[4:]}
	}

	if ctx.tracker.IsRetransmission(call.XID, ctx.ClientAddr) {
		return rpc.Result{}
	}

	reply := d.route(ctx, call)
	ctx.tracker.MarkProcessed(call.XID, ctx.ClientAddr)
	if len(reply) < 4 {
		return rpc.Result{}
	}
	return rpc.Result{Reply: reply[4:]}
}

func (d *Dispatcher) route(ctx *Context, call *rpc.CallMessage) []byte {
	switch call.Program {
	case nfs3Program:
		if call.Version != nfs3Version {
			return mustReply(rpc.MakeProgMismatchReply(call.XID, nfs3Version, nfs3Version))
		}
		return d.dispatchNFS3(ctx, call)

	case mountProgram:
		if call.Version != mountVersion {
			return mustReply(rpc.MakeProgMismatchReply(call.XID, mountVersion, mountVersion))
		}
		return dispatchProgram(call, func(data []byte) ([]byte, error) {
			return ctx.mount.Handle(context.Background(), call.Procedure, ctx.ClientAddr, data)
		})

	case portmapProgram:
		if call.Version != portmapVersion {
			return mustReply(rpc.MakeProgMismatchReply(call.XID, portmapVersion, portmapVersion))
		}
		return dispatchProgram(call, func(data []byte) ([]byte, error) {
			return ctx.portmap.Handle(call.Procedure, data)
		})

	case nfsACLProgram, nfsIDMapProgram, nfsLocalIOProgram, nfsMetadataProgram:
		return mustReply(rpc.ProgUnavailReply(call.XID))

	default:
		return mustReply(rpc.ProgUnavailReply(call.XID))
	}
}

// dispatchNFS3 wraps the NFSv3 program dispatch with request metrics: an
// in-flight gauge around the call, and on completion a counter/histogram
// observation labeled with the procedure name, the export being served,
// and the outcome the reply carries. ctx.metrics is nil unless the server
// was started with metrics enabled, and every NFS method tolerates a nil
// receiver, so no enabled check is needed here.
func (d *Dispatcher) dispatchNFS3(ctx *Context, call *rpc.CallMessage) []byte {
	procedure := procedureName(call.Procedure)
	ctx.metrics.RequestStarted(procedure)
	start := time.Now()

	reply := dispatchProgram(call, func(data []byte) ([]byte, error) {
		return ctx.nfs3.Handle(context.Background(), call.Procedure, data)
	})

	ctx.metrics.RequestCompleted(procedure, ctx.ExportName, replyStatusLabel(reply), time.Since(start))
	return reply
}

// replyFrameHeaderSize is the record-marking fragment header every reply
// constructor in internal/rpc prepends, followed by the fixed rpc_msg
// accepted-reply header up to and including accept_stat: xid, mtype,
// reply_stat, verf flavor, verf length, accept_stat — six uint32 fields.
const replyFrameHeaderSize = 4 + 6*4

// replyStatusLabel renders the outcome of one NFSv3 dispatch as a metrics
// label. An RPC-level rejection (garbage_args, system_err, …) is labeled by
// its accept_stat name; an accepted call is labeled by the nfsstat3 value
// in the first four bytes of its result union (RFC 1813 §2.6). A reply too
// short to carry either is labeled "UNKNOWN" rather than guessed at.
func replyStatusLabel(reply []byte) string {
	if len(reply) < replyFrameHeaderSize {
		return "UNKNOWN"
	}
	acceptStat := binary.BigEndian.Uint32(reply[replyFrameHeaderSize-4 : replyFrameHeaderSize])
	if acceptStat != rpc.Success {
		return acceptStatName(acceptStat)
	}
	if len(reply) < replyFrameHeaderSize+4 {
		return "UNKNOWN"
	}
	status := vfs.Status(binary.BigEndian.Uint32(reply[replyFrameHeaderSize : replyFrameHeaderSize+4]))
	return nfsStatusName(status)
}

// dispatchProgram runs one program handler and turns its result into
// reply bytes, translating each handler's decode/unavailable sentinels
// into the matching RPC accept_stat.
func dispatchProgram(call *rpc.CallMessage, fn func([]byte) ([]byte, error)) []byte {
	data, err := fn(call.Data)
	switch {
	case err == nil:
		return mustReply(rpc.MakeSuccessReply(call.XID, data))
	case errors.Is(err, nfs3.ErrGarbageArgs),
		errors.Is(err, mount.ErrGarbageArgs),
		errors.Is(err, portmap.ErrGarbageArgs):
		return mustReply(rpc.GarbageArgsReply(call.XID))
	case errors.Is(err, mount.ErrProcUnavail),
		errors.Is(err, portmap.ErrProcUnavail):
		return mustReply(rpc.ProcUnavailReply(call.XID))
	default:
		return mustReply(rpc.SystemErrReply(call.XID))
	}
}

// mustReply unwraps a reply constructor's error, which only occurs for
// programmer mistakes (e.g. an invalid version range) that a running
// dispatcher cannot recover from gracefully; falling back to a nil reply
// drops the call rather than writing a malformed one to the wire.
func mustReply(reply []byte, err error) []byte {
	if err != nil {
		return nil
	}
	return reply
}
