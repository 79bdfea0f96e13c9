// Package server wires the RPC program handlers (PORTMAP, MOUNT, NFSv3)
// into one TCP-facing dispatcher and acceptor: the per-connection context,
// the RPC dispatcher that routes a decoded call to the right program, and
// the listener that turns accepted sockets into ordered command queues.
package server

import (
	"github.com/lunixbochs/gonfsd/internal/metrics"
	"github.com/lunixbochs/gonfsd/internal/mount"
	"github.com/lunixbochs/gonfsd/internal/nfs3"
	"github.com/lunixbochs/gonfsd/internal/portmap"
	"github.com/lunixbochs/gonfsd/internal/rpc"
)

// Context is the connection state carried through the command queue (spec
// §3): a clone travels with every queued command so a slow handler never
// races a later request's mutation of the same fields. ListenPort and
// ClientAddr identify the connection to the transaction tracker; Auth holds
// whatever AUTH_UNIX credential the dispatcher parsed from the request
// currently in flight. ExportName labels metrics with the share a request
// was served from.
//
// The program handlers, the transaction tracker, and the metrics recorder
// are shared across every connection and every clone — the "shared
// interior" a Clone keeps pointing at, rather than copying.
type Context struct {
	ListenPort int
	ClientAddr string
	ExportName string
	Auth       *rpc.UnixAuth

	tracker *rpc.Tracker
	nfs3    *nfs3.Handler
	mount   *mount.Handler
	portmap *portmap.Handler
	metrics *metrics.NFS
}

// NewContext builds the shared state one TCP acceptor hands to every
// connection it accepts: the three program handlers it routes to, the
// transaction tracker they all report through, the export name requests
// are labeled with, and an optional metrics recorder (nil disables
// instrumentation entirely).
func NewContext(listenPort int, exportName string, nfsHandler *nfs3.Handler, mountHandler *mount.Handler, portmapHandler *portmap.Handler, tracker *rpc.Tracker, nfsMetrics *metrics.NFS) *Context {
	return &Context{
		ListenPort: listenPort,
		ExportName: exportName,
		tracker:    tracker,
		nfs3:       nfsHandler,
		mount:      mountHandler,
		portmap:    portmapHandler,
		metrics:    nfsMetrics,
	}
}

// Clone scopes a Context to one accepted connection: ClientAddr is filled
// in and Auth starts nil, since no request has been read yet.
func (c *Context) Clone(clientAddr string) *Context {
	clone := *c
	clone.ClientAddr = clientAddr
	clone.Auth = nil
	return &clone
}

// ForRequest scopes a Context to one queued command, so the dispatcher can
// set Auth from that request's credentials without affecting the
// connection-level Context or any other request already in flight on the
// same connection.
func (c *Context) ForRequest() *Context {
	clone := *c
	return &clone
}
