package gateway

import (
	"context"
	"sync"
	"time"
)

// Supervisor timing constants.
const (
	// heartbeatInterval is how often the liveness probe frame is written.
	heartbeatInterval = 30 * time.Second

	// heartbeatLine is the probe: an INTERNAL Version request. Gateways
	// answer it; the answer is ordinary inbound traffic. What matters is
	// that the write fails fast when the link is dead.
	heartbeatLine = "0;255;3;0;2;\n"

	// drainPoll bounds the latency of the orphan-drain phase: messages
	// queued while the link was down are consumed and discarded until the
	// link is open again.
	drainPoll = 500 * time.Millisecond

	// writeIdlePoll is how long the writer waits for an outbound frame
	// before re-checking its stop token.
	writeIdlePoll = 5 * time.Second
)

// Supervisor runs the reconnect loop for one link: open, fan out into
// reader/writer/heartbeat, wait for the reader to die, tear down, reopen.
//
// Within one connection, outbound frames are written in the order they
// were queued and inbound lines are delivered in arrival order. No
// ordering holds across a reconnect, and outbound frames queued during
// the outage are deliberately discarded — by the time the link is back
// they are stale commands.
type Supervisor struct {
	desc     Descriptor
	outbound chan string
	inbound  chan<- string
	logger   Logger
}

// NewSupervisor creates a supervisor for the described link. Frames sent
// to outbound are written to the link; lines read from the link are
// delivered to inbound.
func NewSupervisor(desc Descriptor, outbound chan string, inbound chan<- string, logger Logger) *Supervisor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Supervisor{
		desc:     desc,
		outbound: outbound,
		inbound:  inbound,
		logger:   logger,
	}
}

// Run loops until ctx is cancelled:
//
//  1. Open the link, retrying while unreachable. The outbound queue is
//     drained concurrently so stale frames do not survive the outage.
//  2. Clone the link for the writer and the heartbeat probe.
//  3. Run the reader, writer and heartbeat loops.
//  4. When the reader exits — EOF, broken pipe, any fatal read error —
//     stop the other two, close the link and start over.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		stopDrain := make(chan struct{})
		var drainWG sync.WaitGroup
		drainWG.Add(1)
		go func() {
			defer drainWG.Done()
			s.drain(stopDrain)
		}()

		link, err := Open(ctx, s.desc, s.logger)
		close(stopDrain)
		drainWG.Wait()
		if err != nil {
			return // context cancelled while opening
		}

		s.serve(ctx, link)

		if ctx.Err() != nil {
			return
		}
		s.logger.Info("link lost, reconnecting", "host", s.desc.hostLabel())
	}
}

// drain consumes and discards outbound frames until told to stop.
func (s *Supervisor) drain(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case line := <-s.outbound:
			s.logger.Debug("discarding frame queued while disconnected", "line", line)
		case <-time.After(drainPoll):
		}
	}
}

// serve fans one open link out into the three per-connection loops and
// blocks until the reader dies.
func (s *Supervisor) serve(ctx context.Context, link Link) {
	writeLink, err := link.Clone()
	if err != nil {
		s.logger.Error("cloning link for writer", "error", err)
		link.Close()
		return
	}
	healthLink, err := link.Clone()
	if err != nil {
		s.logger.Error("cloning link for health checker", "error", err)
		writeLink.Close()
		link.Close()
		return
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeLoop(writeLink, stop)
	}()
	go func() {
		defer wg.Done()
		s.healthCheckLoop(healthLink, stop)
	}()

	// Close the link on cancellation so the reader unblocks.
	cancelClose := context.AfterFunc(ctx, func() { link.Close() })

	s.readLoop(ctx, link)

	cancelClose()
	close(stop)
	wg.Wait()
	writeLink.Close()
	healthLink.Close()
	link.Close()
}

// readLoop delivers inbound lines until the first fatal read error.
func (s *Supervisor) readLoop(ctx context.Context, link Link) {
	for {
		line, err := link.ReadLine()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("read failed", "host", link.Host(), "error", err)
			}
			return
		}
		s.logger.Debug("received", "host", link.Host(), "line", line)

		select {
		case s.inbound <- line:
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop writes queued outbound frames until a write fails or the stop
// token is signalled. The idle poll bounds how long a stop can go
// unnoticed while no traffic flows.
func (s *Supervisor) writeLoop(link Link, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case line := <-s.outbound:
			if _, err := link.WriteLine(line); err != nil {
				s.logger.Error("write failed", "host", link.Host(), "error", err)
				return
			}
			s.logger.Debug("sent", "host", link.Host(), "line", line)
		case <-time.After(writeIdlePoll):
		}
	}
}

// healthCheckLoop writes the heartbeat probe every heartbeatInterval until
// a write fails or the stop token is signalled.
func (s *Supervisor) healthCheckLoop(link Link, stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		if _, err := link.WriteLine(heartbeatLine); err != nil {
			s.logger.Error("heartbeat failed", "host", link.Host(), "error", err)
			return
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
