package gateway

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// serialLink is a Link over a local serial port.
//
// Clones share the underlying port: a serial device cannot be opened
// twice, and reads and writes are independent syscalls, so the reader,
// writer and heartbeat goroutines can safely share one handle.
type serialLink struct {
	port   string
	stream serial.Port

	// mu serialises SetReadTimeout calls across the clones sharing the
	// port.
	mu *sync.Mutex
}

// openSerial opens the device once; the retry loop lives in Open.
func openSerial(desc Descriptor) (Link, error) {
	mode := &serial.Mode{
		BaudRate: desc.BaudRate,
	}
	stream, err := serial.Open(desc.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", desc.Port, err)
	}
	if err := stream.SetReadTimeout(serialReadTimeout); err != nil {
		stream.Close()
		return nil, fmt.Errorf("setting serial read timeout: %w", err)
	}
	return &serialLink{
		port:   desc.Port,
		stream: stream,
		mu:     &sync.Mutex{},
	}, nil
}

func (l *serialLink) ReadLine() (string, error) {
	return readLine(l.stream, nil)
}

func (l *serialLink) WriteLine(line string) (int, error) {
	return l.stream.Write([]byte(line))
}

// SetTimeout adjusts the port read timeout. The port is shared by every
// clone, so the value also sets the poll interval of the byte loop, which
// retries timed-out reads.
func (l *serialLink) SetTimeout(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.stream.SetReadTimeout(d)
}

func (l *serialLink) Clone() (Link, error) {
	return &serialLink{port: l.port, stream: l.stream, mu: l.mu}, nil
}

func (l *serialLink) Host() string {
	return l.port
}

func (l *serialLink) Close() error {
	return l.stream.Close()
}
