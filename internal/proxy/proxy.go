package proxy

import (
	"context"
	"sync"

	"github.com/tsathishkumar/myscontroller-go/internal/firmware"
	"github.com/tsathishkumar/myscontroller-go/internal/gateway"
	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
)

// Logger is the minimal logging interface the pipeline needs.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// channelBuffer sizes the pipeline channels. Consumers normally outrun
// producers; the buffer absorbs bursts such as a whole network
// re-presenting after a gateway restart.
const channelBuffer = 256

// Deps holds the dependencies required by the proxy pipeline.
type Deps struct {
	Gateway    gateway.Descriptor
	Controller *gateway.Descriptor // nil when no upstream is configured
	Nodes      node.Repository
	Sensors    node.SensorRepository
	Firmwares  firmware.Repository
	Recorder   Recorder // optional telemetry sink for state reports
	Logger     Logger
}

// Proxy owns the channel graph and the goroutines of the message
// pipeline: two link supervisors, the interceptor and the four handlers.
type Proxy struct {
	deps Deps

	gatewayIn      chan string
	gatewayOut     chan string
	controllerOut  chan string
	internalCh     chan message.InternalMessage
	presentationCh chan message.PresentationMessage
	setFromGateway chan message.SetMessage
	setFromWoT     chan message.SetMessage
	streamCh       chan message.StreamMessage
	newSensors     chan NewSensorEvent
	propertyNotify chan message.SetMessage
}

// New creates the proxy and its channel graph. Nothing runs until Run.
func New(deps Deps) *Proxy {
	return &Proxy{
		deps:           deps,
		gatewayIn:      make(chan string, channelBuffer),
		gatewayOut:     make(chan string, channelBuffer),
		controllerOut:  make(chan string, channelBuffer),
		internalCh:     make(chan message.InternalMessage, channelBuffer),
		presentationCh: make(chan message.PresentationMessage, channelBuffer),
		setFromGateway: make(chan message.SetMessage, channelBuffer),
		setFromWoT:     make(chan message.SetMessage, channelBuffer),
		streamCh:       make(chan message.StreamMessage, channelBuffer),
		newSensors:     make(chan NewSensorEvent, channelBuffer),
		propertyNotify: make(chan message.SetMessage, channelBuffer),
	}
}

// GatewayOut is the merge channel feeding the gateway writer. The reboot
// endpoint and the WoT bridge inject frames here.
func (p *Proxy) GatewayOut() chan<- string { return p.gatewayOut }

// SetFromWoT accepts property writes from the WoT bridge.
func (p *Proxy) SetFromWoT() chan<- message.SetMessage { return p.setFromWoT }

// NewSensors delivers sensors first seen in presentations.
func (p *Proxy) NewSensors() <-chan NewSensorEvent { return p.newSensors }

// PropertyNotify delivers sensor state reports for the WoT bridge.
func (p *Proxy) PropertyNotify() <-chan message.SetMessage { return p.propertyNotify }

// Run starts every goroutine of the pipeline and blocks until ctx is
// cancelled and they have all stopped.
//
// The controller link's reader feeds the gateway outbound channel
// directly — upstream commands need no interception — and its writer is
// fed by the forwarding side of the handlers. Without a controller the
// forwards are consumed and discarded so the pipeline never blocks on an
// absent upstream.
func (p *Proxy) Run(ctx context.Context) {
	log := p.deps.Logger

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
			log.Debug("pipeline goroutine stopped", "name", name)
		}()
	}

	gatewaySup := gateway.NewSupervisor(p.deps.Gateway, p.gatewayOut, p.gatewayIn, log)
	run("gateway-link", gatewaySup.Run)

	if p.deps.Controller != nil {
		controllerSup := gateway.NewSupervisor(*p.deps.Controller, p.controllerOut, p.gatewayOut, log)
		run("controller-link", controllerSup.Run)
	} else {
		run("controller-discard", p.discardControllerForwards)
	}

	interceptor := NewInterceptor(p.gatewayIn, p.internalCh, p.presentationCh,
		p.setFromGateway, p.streamCh, p.controllerOut, log)
	run("interceptor", interceptor.Run)

	internalHandler := NewInternalHandler(p.internalCh, p.gatewayOut, p.controllerOut,
		p.deps.Nodes, log)
	run("internal-handler", internalHandler.Run)

	presentationHandler := NewPresentationHandler(p.presentationCh, p.controllerOut,
		p.newSensors, p.deps.Nodes, p.deps.Sensors, log)
	run("presentation-handler", presentationHandler.Run)

	setHandler := NewSetHandler(p.setFromGateway, p.setFromWoT, p.gatewayOut,
		p.controllerOut, p.propertyNotify, p.deps.Recorder, log)
	run("set-from-gateway", setHandler.RunFromGateway)
	run("set-from-wot", setHandler.RunFromWoT)

	streamHandler := NewStreamHandler(p.streamCh, p.gatewayOut,
		p.deps.Nodes, p.deps.Firmwares, log)
	run("stream-handler", streamHandler.Run)

	wg.Wait()
}

// discardControllerForwards drains controller-bound traffic when no
// controller link is configured.
func (p *Proxy) discardControllerForwards(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.controllerOut:
		}
	}
}
