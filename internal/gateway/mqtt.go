package gateway

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT link constants.
const (
	// mqttConnectTimeout is the maximum wait for the initial broker
	// connection of one open attempt.
	mqttConnectTimeout = 10 * time.Second

	// mqttKeepAlive is the broker keep-alive interval.
	mqttKeepAlive = 10 * time.Second

	// mqttDisconnectQuiesce is the milliseconds given to in-flight
	// publishes on Close.
	mqttDisconnectQuiesce = 250

	// mqttLineQueueSize bounds the queue of reassembled inbound lines.
	// The interceptor normally drains far faster than sensors publish;
	// overflow drops the line rather than stalling the paho router.
	mqttLineQueueSize = 100

	// messageParts is the field count of a MySensors frame.
	messageParts = 6
)

// mqttLink is a Link over an MQTT broker session.
//
// The MySensors MQTT gateway maps frames onto topics: it publishes sensor
// traffic under <prefix>-out/<node>/<child>/<cmd>/<ack>/<type> with the
// payload as the message body, and listens under <prefix>-in/ with the
// same shape. ReadLine reassembles the canonical ;-separated line from
// the topic suffix and body; WriteLine splits it back out.
type mqttLink struct {
	broker string
	prefix string
	client pahomqtt.Client
	lines  chan string
	done   chan struct{}
	logger Logger

	closed atomic.Bool
}

// cloneCounter disambiguates the client ids of cloned sessions; a broker
// drops the older session when two clients share an id.
var cloneCounter atomic.Uint32

// openMQTT starts a broker session and subscribes to the gateway's
// outbound topic tree.
func openMQTT(desc Descriptor, logger Logger) (Link, error) {
	l := &mqttLink{
		broker: fmt.Sprintf("%s:%d", desc.Broker, desc.BrokerPort),
		prefix: desc.TopicPrefix,
		lines:  make(chan string, mqttLineQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", desc.Broker, desc.BrokerPort)).
		SetClientID(desc.ClientID).
		SetKeepAlive(mqttKeepAlive).
		SetAutoReconnect(true).
		SetCleanSession(false)

	// Subscribe from the connect handler so the subscription is restored
	// on every reconnect, not just the first connection.
	opts.SetOnConnectHandler(func(client pahomqtt.Client) {
		topic := desc.TopicPrefix + "-out/#"
		token := client.Subscribe(topic, 1, l.handleMessage)
		if token.WaitTimeout(mqttConnectTimeout) && token.Error() != nil {
			l.logWarn("subscribe failed", "topic", topic, "error", token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		l.logWarn("broker connection lost", "broker", l.broker, "error", err)
	})

	l.client = pahomqtt.NewClient(opts)
	token := l.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("%w: connect timeout after %v", ErrNotConnected, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}

	return l, nil
}

// handleMessage reassembles a canonical frame from a publish and queues it
// for ReadLine.
func (l *mqttLink) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	parts := strings.Split(strings.TrimSpace(msg.Topic()), "/")
	if len(parts) != messageParts {
		l.logWarn("unexpected topic shape", "topic", msg.Topic())
		return
	}
	// Drop the "<prefix>-out" segment, keep the five frame fields, append
	// the body as the payload field. The trailing newline normalises MQTT
	// frames to the same shape the stream transports produce.
	fields := append(parts[1:], string(msg.Payload()))
	line := strings.Join(fields, ";") + "\n"

	select {
	case l.lines <- line:
	case <-l.done:
	default:
		l.logWarn("inbound queue full, dropping frame", "topic", msg.Topic())
	}
}

// ReadLine blocks until a publish arrives and returns the reassembled
// frame.
func (l *mqttLink) ReadLine() (string, error) {
	select {
	case line := <-l.lines:
		return line, nil
	case <-l.done:
		return "", ErrLinkClosed
	}
}

// WriteLine publishes a frame: the first five fields become the topic
// suffix, the payload becomes the message body.
func (l *mqttLink) WriteLine(line string) (int, error) {
	parts := strings.Split(strings.TrimSpace(line), ";")
	if len(parts) != messageParts {
		l.logWarn("not publishing malformed frame", "line", line)
		return len(line), nil
	}
	payload := parts[messageParts-1]
	topic := l.prefix + "-in/" + strings.Join(parts[:messageParts-1], "/")

	token := l.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(mqttConnectTimeout) {
		return 0, fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return 0, fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return len(line), nil
}

// SetTimeout is a no-op: the broker session has its own keep-alive.
func (l *mqttLink) SetTimeout(time.Duration) {}

// Clone opens a second broker session with a distinct client id. MQTT has
// no OS-level handle to duplicate, so a clone is a full sibling session
// addressing the same broker and topic tree.
func (l *mqttLink) Clone() (Link, error) {
	host, port := splitBroker(l.broker)
	return openMQTT(Descriptor{
		Kind:        KindMQTT,
		Broker:      host,
		BrokerPort:  port,
		TopicPrefix: l.prefix,
		ClientID:    fmt.Sprintf("myscontroller-clone-%d", cloneCounter.Add(1)),
	}, l.logger)
}

func (l *mqttLink) Host() string {
	return l.broker
}

func (l *mqttLink) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	close(l.done)
	l.client.Disconnect(mqttDisconnectQuiesce)
	return nil
}

func (l *mqttLink) logWarn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

// splitBroker reverses the host:port label built in openMQTT.
func splitBroker(broker string) (string, int) {
	host := broker
	port := 1883
	if i := strings.LastIndex(broker, ":"); i >= 0 {
		host = broker[:i]
		fmt.Sscanf(broker[i+1:], "%d", &port)
	}
	return host, port
}
