package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/config"
)

// Link timing constants, shared by all transports.
const (
	// openRetryInterval is the delay between connection attempts while a
	// link's peer is unreachable.
	openRetryInterval = 10 * time.Second

	// serialReadTimeout is the small poll timeout on serial reads, so the
	// byte loop stays responsive without spinning.
	serialReadTimeout = 10 * time.Millisecond

	// tcpReadTimeout is the read deadline applied to TCP links when
	// timeout_enabled is set; a gateway silent for longer than this is
	// assumed gone.
	tcpReadTimeout = 40 * time.Second
)

// Kind identifies a link transport.
type Kind string

// Link transports.
const (
	KindSerial    Kind = "serial"
	KindTCPClient Kind = "tcp-client"
	KindTCPServer Kind = "tcp-server"
	KindMQTT      Kind = "mqtt"
)

// Descriptor is the connection description for one link.
type Descriptor struct {
	Kind           Kind
	Port           string // device path or host:port
	BaudRate       int
	TimeoutEnabled bool

	// MQTT fields.
	Broker      string
	BrokerPort  int
	TopicPrefix string
	ClientID    string
}

// DescriptorFromConfig maps a config section to a Descriptor. A bare "TCP"
// type means client for the gateway and server for the controller: the
// proxy dials the gateway but listens for the controller.
func DescriptorFromConfig(c config.ConnectionConfig, controller bool) (Descriptor, error) {
	switch c.Type {
	case config.TypeSerial:
		return Descriptor{Kind: KindSerial, Port: c.Port, BaudRate: c.BaudRate}, nil
	case config.TypeTCP:
		kind := KindTCPClient
		if controller {
			kind = KindTCPServer
		}
		return Descriptor{Kind: kind, Port: c.Port, TimeoutEnabled: c.TimeoutEnabled}, nil
	case config.TypeTCPServer:
		return Descriptor{Kind: KindTCPServer, Port: c.Port, TimeoutEnabled: c.TimeoutEnabled}, nil
	case config.TypeMQTT:
		clientID := "myscontroller-gateway"
		if controller {
			clientID = "myscontroller-controller"
		}
		return Descriptor{
			Kind:        KindMQTT,
			Broker:      c.Broker,
			BrokerPort:  c.BrokerPort,
			TopicPrefix: c.PublishTopicPrefix,
			ClientID:    clientID,
		}, nil
	default:
		return Descriptor{}, fmt.Errorf("unknown connection type %q", c.Type)
	}
}

// Logger is the minimal logging interface the transport layer needs.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards everything; used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Link is one bidirectional line channel.
//
// ReadLine blocks until a complete newline-terminated line is available
// and returns it including the newline. It returns ErrLinkEOF when the
// peer is gone, and any other error for unrecoverable I/O failures;
// timeouts are retried internally.
//
// Clone returns a second independent handle addressing the same peer, so
// the supervisor can read, write and probe concurrently.
type Link interface {
	ReadLine() (string, error)
	WriteLine(line string) (int, error)
	SetTimeout(d time.Duration)
	Clone() (Link, error)
	Host() string
	Close() error
}

// Open blocks until the described link is connected, retrying every
// openRetryInterval, or until ctx is cancelled.
//
// EOF detection note: for stream transports a read of a single 0x00 byte
// is treated as end-of-stream, inherited from the gateways this proxy
// fronts. The frames of this protocol are ASCII so a NUL can only come
// from a dying peer, but a binary-clean transport would need this
// narrowed to zero-length reads only.
func Open(ctx context.Context, desc Descriptor, logger Logger) (Link, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	for {
		link, err := openOnce(ctx, desc, logger)
		if err == nil {
			logger.Info("connected", "host", link.Host())
			return link, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("connection failed, retrying", "host", desc.hostLabel(), "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(openRetryInterval):
		}
	}
}

// openOnce attempts a single connection for the descriptor's transport.
func openOnce(ctx context.Context, desc Descriptor, logger Logger) (Link, error) {
	switch desc.Kind {
	case KindSerial:
		return openSerial(desc)
	case KindTCPClient:
		return openTCPClient(ctx, desc)
	case KindTCPServer:
		return openTCPServer(ctx, desc)
	case KindMQTT:
		return openMQTT(desc, logger)
	default:
		return nil, fmt.Errorf("unknown link kind %q", desc.Kind)
	}
}

// hostLabel is the human label for log lines before a connection exists.
func (d Descriptor) hostLabel() string {
	if d.Kind == KindMQTT {
		return fmt.Sprintf("%s:%d", d.Broker, d.BrokerPort)
	}
	return d.Port
}

// byteReader is the common surface of serial ports and TCP connections the
// line assembler reads from.
type byteReader interface {
	Read(p []byte) (int, error)
}

// readLine assembles one newline-terminated line by single-byte reads.
//
// A single NUL byte ends the stream (see Open). Timeouts — deadline
// expiry on TCP, the zero-byte poll return on serial — are retried in
// place. Anything else is a fatal read error.
func readLine(r byteReader, rearm func()) (string, error) {
	var line strings.Builder
	buf := make([]byte, 1)

	for {
		if rearm != nil {
			rearm()
		}
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == 0x00 {
				return "", ErrLinkEOF
			}
			line.WriteByte(buf[0])
			if buf[0] == '\n' {
				return line.String(), nil
			}
			continue
		}
		if err == nil {
			// Zero-byte read without error: the serial poll timeout.
			continue
		}
		if isTimeout(err) {
			continue
		}
		if errors.Is(err, net.ErrClosed) {
			return "", ErrLinkClosed
		}
		if errors.Is(err, os.ErrClosed) {
			return "", ErrLinkClosed
		}
		if errors.Is(err, io.EOF) {
			return "", ErrLinkEOF
		}
		return "", err
	}
}

// isTimeout reports whether err is a read-deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
