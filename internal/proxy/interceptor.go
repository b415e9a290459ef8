package proxy

import (
	"context"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
)

// Interceptor demultiplexes raw gateway lines to the per-family handler
// channels. It performs no state mutation of its own. A slow handler delays
// only its own family's channel until that channel's buffer is full; the
// interceptor then blocks on it and every family waits.
type Interceptor struct {
	gatewayIn      <-chan string
	internalCh     chan<- message.InternalMessage
	presentationCh chan<- message.PresentationMessage
	setCh          chan<- message.SetMessage
	streamCh       chan<- message.StreamMessage
	controllerOut  chan<- string
	logger         Logger
}

// NewInterceptor creates the interceptor for the given channel graph.
func NewInterceptor(
	gatewayIn <-chan string,
	internalCh chan<- message.InternalMessage,
	presentationCh chan<- message.PresentationMessage,
	setCh chan<- message.SetMessage,
	streamCh chan<- message.StreamMessage,
	controllerOut chan<- string,
	logger Logger,
) *Interceptor {
	return &Interceptor{
		gatewayIn:      gatewayIn,
		internalCh:     internalCh,
		presentationCh: presentationCh,
		setCh:          setCh,
		streamCh:       streamCh,
		controllerOut:  controllerOut,
		logger:         logger,
	}
}

// Run consumes gateway lines until ctx is cancelled.
//
// The broadcast id-request line is matched literally before parsing — the
// single hottest frame during network bring-up. Everything else goes
// through the codec; parse failures are forwarded to the controller
// verbatim so an upstream that understands more than we do still sees
// the traffic.
func (i *Interceptor) Run(ctx context.Context) {
	for {
		var line string
		select {
		case <-ctx.Done():
			return
		case line = <-i.gatewayIn:
		}

		if line == message.IdRequestLine {
			if msg, err := message.Parse(line); err == nil {
				select {
				case i.internalCh <- msg.(message.InternalMessage):
				case <-ctx.Done():
					return
				}
			}
			continue
		}

		msg, err := message.Parse(line)
		if err != nil {
			i.logger.Warn("unparseable frame, forwarding to controller", "line", line, "error", err)
			select {
			case i.controllerOut <- line:
			case <-ctx.Done():
				return
			}
			continue
		}

		switch m := msg.(type) {
		case message.StreamMessage:
			select {
			case i.streamCh <- m:
			case <-ctx.Done():
				return
			}
		case message.PresentationMessage:
			select {
			case i.presentationCh <- m:
			case <-ctx.Done():
				return
			}
		case message.SetMessage:
			select {
			case i.setCh <- m:
			case <-ctx.Done():
				return
			}
		case message.InternalMessage:
			select {
			case i.internalCh <- m:
			case <-ctx.Done():
				return
			}
		default:
			select {
			case i.controllerOut <- line:
			case <-ctx.Done():
				return
			}
		}
	}
}
