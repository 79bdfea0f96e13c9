package server

import (
	"context"
	"net"

	"github.com/lunixbochs/gonfsd/internal/rpc"
)

// queueBufferSize bounds how many decoded-but-not-yet-dispatched commands
// a connection's queue holds before Submit blocks, which in turn applies
// TCP back-pressure to that connection's reader.
const queueBufferSize = 16

// Acceptor serves one TCP listener: one per configured export. It is the
// only component in this server that touches net-level syscalls directly.
type Acceptor struct {
	listener                    net.Listener
	shared                      *Context
	dispatcher                  *Dispatcher
	requirePrivilegedSourcePort bool
}

// Listen binds addr (host:port, port 0 picks an ephemeral port) and returns
// an Acceptor ready to Serve. shared carries the program handlers and
// transaction tracker every accepted connection will dispatch through.
// requirePrivilegedSourcePort rejects client connections whose source port
// is not below 1024, the traditional "trusted host" signal some NFS
// deployments still require.
func Listen(addr string, shared *Context, requirePrivilegedSourcePort bool) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Acceptor{
		listener:                    ln,
		shared:                      shared,
		dispatcher:                  &Dispatcher{},
		requirePrivilegedSourcePort: requirePrivilegedSourcePort,
	}, nil
}

// Addr returns the listener's bound (ip, port), observable for tests that
// need to dial back into a Serve loop started with port 0.
func (a *Acceptor) Addr() net.Addr { return a.listener.Addr() }

// Close stops accepting new connections. Connections already being served
// run to completion of their current Serve loop iteration.
func (a *Acceptor) Close() error { return a.listener.Close() }

// Serve accepts connections until ctx is cancelled or the listener is
// closed, spawning one independent command-queue pipeline per connection.
// It returns nil when ctx is the reason the accept loop stopped, and the
// Accept error otherwise.
func (a *Acceptor) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		a.listener.Close()
	}()

	for {
		conn, err := a.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if a.requirePrivilegedSourcePort && !sourceIsPrivileged(conn) {
			conn.Close()
			continue
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}

		go serveConn(ctx, conn, a.shared, a.dispatcher)
	}
}

func sourceIsPrivileged(conn net.Conn) bool {
	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	return ok && addr.Port < 1024
}

// serveConn runs the two-task pipeline for one accepted connection: a
// reader that frames records off the socket and submits them to a Queue in
// receive order, and a writer that drains the Queue's results in that same
// order. Either side failing tears down the whole connection; in-flight
// handler calls are not cancelled, only their eventual reply is discarded.
func serveConn(ctx context.Context, conn net.Conn, shared *Context, dispatcher *Dispatcher) {
	defer conn.Close()

	connCtx := shared.Clone(conn.RemoteAddr().String())
	queue := rpc.NewQueue[*Context](queueBufferSize, dispatcher.Handle)
	go queue.Run()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for result := range queue.Results() {
			if result.Close {
				conn.Close()
				continue
			}
			if result.Reply == nil {
				continue
			}
			if err := rpc.WriteRecord(conn, result.Reply); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			queue.Close()
			<-writerDone
			return
		default:
		}

		record, err := rpc.ReadRecord(conn, rpc.DefaultMaxRecordSize)
		if err != nil {
			queue.Close()
			<-writerDone
			return
		}
		queue.Submit(rpc.Command[*Context]{Record: record, Ctx: connCtx.ForRequest()})
	}
}
