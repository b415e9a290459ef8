package proxy

import (
	"context"
	"testing"

	"github.com/tsathishkumar/myscontroller-go/internal/message"
)

func TestInternalHandler_AllocatesFirstFreeID(t *testing.T) {
	store := newTestStore(t)
	in := make(chan message.InternalMessage, 8)
	gatewayOut := make(chan string, 8)
	controllerOut := make(chan string, 8)

	h := NewInternalHandler(in, gatewayOut, controllerOut, store.nodes, testLogger{t})
	runLoop(t, h.Run)

	request, err := message.Parse(message.IdRequestLine)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	in <- request.(message.InternalMessage)

	expectLine(t, gatewayOut, "255;255;3;0;4;1\n")

	created, err := store.nodes.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("node not created: %v", err)
	}
	if created.Name != "New Node" || created.AutoUpdate || created.Scheduled {
		t.Errorf("created node = %+v", created)
	}

	// A second request gets the next id.
	in <- request.(message.InternalMessage)
	expectLine(t, gatewayOut, "255;255;3;0;4;2\n")
}

func TestInternalHandler_DiscoverResponseUpdatesTopology(t *testing.T) {
	store := newTestStore(t)
	in := make(chan message.InternalMessage, 8)
	gatewayOut := make(chan string, 8)
	controllerOut := make(chan string, 8)

	ctx := context.Background()
	seeded := nodeWithID(7)
	if err := store.nodes.Create(ctx, &seeded); err != nil {
		t.Fatalf("Create: %v", err)
	}

	h := NewInternalHandler(in, gatewayOut, controllerOut, store.nodes, testLogger{t})
	runLoop(t, h.Run)

	msg, err := message.Parse("7;255;3;0;21;3\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	in <- msg.(message.InternalMessage)

	waitFor(t, func() bool {
		n, err := store.nodes.Get(ctx, 7)
		return err == nil && n.ParentNodeID == 3
	}, "parent node id not updated")
}

func TestInternalHandler_ForwardsOtherTraffic(t *testing.T) {
	store := newTestStore(t)
	in := make(chan message.InternalMessage, 8)
	gatewayOut := make(chan string, 8)
	controllerOut := make(chan string, 8)

	h := NewInternalHandler(in, gatewayOut, controllerOut, store.nodes, testLogger{t})
	runLoop(t, h.Run)

	msg, err := message.Parse("5;255;3;0;11;Light Sketch\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	in <- msg.(message.InternalMessage)

	expectLine(t, controllerOut, "5;255;3;0;11;Light Sketch\n")
	expectNoLine(t, gatewayOut)
}
