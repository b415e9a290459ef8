package wot

import (
	"context"
	"testing"
	"time"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
	"github.com/tsathishkumar/myscontroller-go/internal/proxy"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...any) { l.t.Logf("DEBUG %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...any)  { l.t.Logf("INFO %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...any)  { l.t.Logf("WARN %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...any) { l.t.Logf("ERROR %s %v", msg, args) }

func newTestBridge(t *testing.T) (*Bridge, chan proxy.NewSensorEvent, chan message.SetMessage, chan message.SetMessage) {
	t.Helper()

	newSensors := make(chan proxy.NewSensorEvent, 8)
	notify := make(chan message.SetMessage, 8)
	setOut := make(chan message.SetMessage, 8)

	b := NewBridge(NewRegistry(), newSensors, notify, setOut, testLogger{t})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("bridge did not stop")
		}
	})

	return b, newSensors, notify, setOut
}

func binarySensor(nodeID, childID uint8) proxy.NewSensorEvent {
	return proxy.NewSensorEvent{
		NodeName: "Garage Node",
		Sensor: node.Sensor{
			NodeID:        nodeID,
			ChildSensorID: childID,
			Type:          message.SBinary,
			Description:   "Relay",
		},
	}
}

func waitForThing(t *testing.T, b *Bridge, id string) *Thing {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if thing := b.Registry().Get(id); thing != nil {
			return thing
		}
		if time.Now().After(deadline) {
			t.Fatalf("thing %s never registered", id)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBridge_BuildsThingForSupportedSensor(t *testing.T) {
	b, newSensors, _, _ := newTestBridge(t)

	newSensors <- binarySensor(2, 1)

	thing := waitForThing(t, b, "2-1")
	if thing.Title != "Garage Node - Relay" {
		t.Errorf("Title = %q", thing.Title)
	}
	if thing.AtType != "onOffLight" {
		t.Errorf("AtType = %q", thing.AtType)
	}
	prop, ok := thing.Properties["on"]
	if !ok {
		t.Fatalf("missing on property: %+v", thing.Properties)
	}
	if prop.Type != "boolean" {
		t.Errorf("property type = %q", prop.Type)
	}
}

func TestBridge_IgnoresUnsupportedSensor(t *testing.T) {
	b, newSensors, _, _ := newTestBridge(t)

	event := binarySensor(3, 0)
	event.Sensor.Type = message.SDust
	newSensors <- event

	time.Sleep(100 * time.Millisecond)
	if thing := b.Registry().Get("3-0"); thing != nil {
		t.Errorf("unexpected thing %+v", thing)
	}
}

func TestBridge_NotificationUpdatesPropertyAndBroadcasts(t *testing.T) {
	b, newSensors, notify, _ := newTestBridge(t)

	newSensors <- binarySensor(2, 1)
	waitForThing(t, b, "2-1")

	events, cancel := b.Subscribe()
	defer cancel()

	set, err := message.Parse("2;1;1;0;2;1\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	notify <- set.(message.SetMessage)

	select {
	case event := <-events:
		if event.ThingID != "2-1" || event.Property != "on" || event.Value != true {
			t.Errorf("event = %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("property event not broadcast")
	}

	thing := b.Registry().Get("2-1")
	if thing.Properties["on"].Value != true {
		t.Errorf("property value = %v", thing.Properties["on"].Value)
	}
}

func TestBridge_SetPropertyInjectsSetMessage(t *testing.T) {
	b, newSensors, _, setOut := newTestBridge(t)

	newSensors <- binarySensor(2, 1)
	waitForThing(t, b, "2-1")

	if err := b.SetProperty(context.Background(), "2-1", "on", true); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	select {
	case msg := <-setOut:
		if msg.String() != "2;1;1;0;2;1\n" {
			t.Errorf("injected frame = %q", msg.String())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("set message not injected")
	}
}

func TestBridge_SetPropertyUnknownThing(t *testing.T) {
	b, _, _, _ := newTestBridge(t)

	if err := b.SetProperty(context.Background(), "9-9", "on", true); err == nil {
		t.Error("SetProperty expected error for unknown thing")
	}
}
