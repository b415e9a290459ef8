package gateway

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// tcpLink is a Link over a TCP stream, either dialled out to the gateway
// or accepted from the controller.
//
// Clones share the net.Conn; net.Conn supports one concurrent reader and
// one concurrent writer, which is exactly how the supervisor uses it.
type tcpLink struct {
	addr string
	conn net.Conn

	// timeout, when non-zero, re-arms the read deadline before every read
	// so an idle peer eventually surfaces as a timeout.
	timeout atomic.Int64
}

// openTCPClient dials the gateway once; the retry loop lives in Open.
func openTCPClient(ctx context.Context, desc Descriptor) (Link, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", desc.Port)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", desc.Port, err)
	}
	return newTCPLink(desc, conn), nil
}

// openTCPServer listens on the configured address and accepts exactly one
// inbound connection, then stops listening. The controller is a single
// peer; a second connection attempt simply fails until the first is gone
// and the supervisor listens again.
func openTCPServer(ctx context.Context, desc Descriptor) (Link, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", desc.Port)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", desc.Port, err)
	}
	defer listener.Close()

	// Unblock Accept when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accepting on %s: %w", desc.Port, err)
	}
	return newTCPLink(desc, conn), nil
}

func newTCPLink(desc Descriptor, conn net.Conn) *tcpLink {
	l := &tcpLink{addr: desc.Port, conn: conn}
	if desc.TimeoutEnabled {
		l.timeout.Store(int64(tcpReadTimeout))
	}
	return l
}

func (l *tcpLink) ReadLine() (string, error) {
	return readLine(l.conn, l.rearmDeadline)
}

// rearmDeadline pushes the read deadline forward before each byte read.
func (l *tcpLink) rearmDeadline() {
	if d := time.Duration(l.timeout.Load()); d > 0 {
		_ = l.conn.SetReadDeadline(time.Now().Add(d))
	}
}

func (l *tcpLink) WriteLine(line string) (int, error) {
	return l.conn.Write([]byte(line))
}

func (l *tcpLink) SetTimeout(d time.Duration) {
	l.timeout.Store(int64(d))
}

func (l *tcpLink) Clone() (Link, error) {
	clone := &tcpLink{addr: l.addr, conn: l.conn}
	clone.timeout.Store(l.timeout.Load())
	return clone, nil
}

func (l *tcpLink) Host() string {
	return l.addr
}

func (l *tcpLink) Close() error {
	return l.conn.Close()
}
