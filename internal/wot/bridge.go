package wot

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/proxy"
)

// Logger is the minimal logging interface the bridge needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PropertyEvent is one property change fanned out to subscribers.
type PropertyEvent struct {
	ThingID  string `json:"thing"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// subscriberBuffer bounds each subscriber's event queue; a stalled
// websocket drops events rather than blocking the bridge.
const subscriberBuffer = 16

// Bridge keeps the Thing registry in sync with the sensor network and
// routes property traffic in both directions.
type Bridge struct {
	registry   *Registry
	newSensors <-chan proxy.NewSensorEvent
	notify     <-chan message.SetMessage
	setOut     chan<- message.SetMessage
	logger     Logger

	subMu       sync.Mutex
	subscribers map[chan PropertyEvent]struct{}
}

// NewBridge creates the bridge around an existing registry.
func NewBridge(
	registry *Registry,
	newSensors <-chan proxy.NewSensorEvent,
	notify <-chan message.SetMessage,
	setOut chan<- message.SetMessage,
	logger Logger,
) *Bridge {
	return &Bridge{
		registry:    registry,
		newSensors:  newSensors,
		notify:      notify,
		setOut:      setOut,
		logger:      logger,
		subscribers: make(map[chan PropertyEvent]struct{}),
	}
}

// Registry returns the shared Thing registry.
func (b *Bridge) Registry() *Registry { return b.registry }

// Run consumes new-sensor and property-notify events until ctx is
// cancelled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.newSensors:
			b.addSensor(event)
		case msg := <-b.notify:
			b.applyNotification(msg)
		}
	}
}

// addSensor builds and registers a Thing for a newly presented sensor.
func (b *Bridge) addSensor(event proxy.NewSensorEvent) {
	thing := BuildThing(event.NodeName, event.Sensor)
	if thing == nil {
		b.logger.Warn("presentation type has no thing mapping",
			"type", uint8(event.Sensor.Type),
			"node_id", event.Sensor.NodeID,
			"child_sensor_id", event.Sensor.ChildSensorID)
		return
	}
	b.registry.Add(thing)
	b.logger.Info("thing registered", "id", thing.ID, "title", thing.Title)
}

// applyNotification folds a sensor state report into the registry and
// fans the change out to subscribers.
func (b *Bridge) applyNotification(msg message.SetMessage) {
	property := msg.Value.Type.PropertyName()
	if property == "" {
		return
	}
	value, ok := msg.Value.JSON()
	if !ok {
		b.logger.Warn("unconvertible property value",
			"type", uint8(msg.Value.Type), "value", msg.Value.Value)
		return
	}

	id := ThingID(msg.NodeID, msg.ChildSensorID)
	if !b.registry.UpdateProperty(id, property, value) {
		// State for a sensor that never presented (or is unsupported);
		// nothing to notify.
		return
	}

	b.broadcast(PropertyEvent{ThingID: id, Property: property, Value: value})
}

// SetProperty converts a property write into a SET frame toward the
// gateway. The registry value is not updated here; it changes when the
// sensor reports back.
func (b *Bridge) SetProperty(ctx context.Context, thingID, property string, value any) error {
	prop, ok := b.registry.property(thingID, property)
	if !ok {
		return fmt.Errorf("unknown property %s/%s", thingID, property)
	}

	setValue, ok := message.ValueFromJSON(prop.setType, value)
	if !ok {
		return fmt.Errorf("property %s/%s cannot carry %v", thingID, property, value)
	}

	thing := b.registry.Get(thingID)
	if thing == nil {
		return fmt.Errorf("unknown thing %s", thingID)
	}

	msg := message.SetMessage{
		NodeID:        thing.NodeID,
		ChildSensorID: thing.ChildSensorID,
		Value:         setValue,
	}
	select {
	case b.setOut <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a property-event listener. The returned cancel
// function must be called to release it.
func (b *Bridge) Subscribe() (<-chan PropertyEvent, func()) {
	ch := make(chan PropertyEvent, subscriberBuffer)

	b.subMu.Lock()
	b.subscribers[ch] = struct{}{}
	b.subMu.Unlock()

	cancel := func() {
		b.subMu.Lock()
		delete(b.subscribers, ch)
		b.subMu.Unlock()
	}
	return ch, cancel
}

// broadcast delivers an event to every subscriber, dropping it for any
// whose buffer is full.
func (b *Bridge) broadcast(event PropertyEvent) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber buffer full, dropping event",
				"thing", event.ThingID, "property", event.Property)
		}
	}
}
