package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/config"
	"github.com/tsathishkumar/myscontroller-go/internal/message"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the
	// client options API.
	millisecondsPerSecond = 1000
)

// Client wraps the InfluxDB v2 client for sensor telemetry.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Writes are non-blocking and batched by the underlying WriteAPI.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	connected bool
	mu        sync.RWMutex

	// onError receives async write failures; optional.
	onError func(err error)

	done chan struct{}
}

// Connect creates the client, verifies the server with a ping and
// configures the batching write API. Returns ErrDisabled when telemetry
// is off in config.
func Connect(ctx context.Context, cfg config.TelemetryConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		connected: true,
		done:      make(chan struct{}),
	}

	go c.handleWriteErrors(c.writeAPI.Errors())

	return c, nil
}

// handleWriteErrors forwards async write failures to the error callback.
func (c *Client) handleWriteErrors(errorsCh <-chan error) {
	for {
		select {
		case <-c.done:
			return
		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			c.mu.RLock()
			callback := c.onError
			c.mu.RUnlock()
			if callback != nil {
				callback(err)
			}
		}
	}
}

// SetOnError sets the callback for async write failures.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	c.onError = callback
	c.mu.Unlock()
}

// IsConnected returns the connection state recorded at Connect/Close.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RecordSet writes one sensor state report as a point. Values without a
// numeric or boolean interpretation are skipped.
func (c *Client) RecordSet(msg message.SetMessage) {
	if !c.IsConnected() {
		return
	}

	value, ok := msg.Value.JSON()
	if !ok {
		return
	}
	// Booleans become 0/1 so every series is numeric.
	var numeric float64
	switch v := value.(type) {
	case bool:
		if v {
			numeric = 1
		}
	case float64:
		numeric = v
	default:
		return
	}

	point := write.NewPoint(
		"sensor_state",
		map[string]string{
			"node_id":         strconv.Itoa(int(msg.NodeID)),
			"child_sensor_id": strconv.Itoa(int(msg.ChildSensorID)),
			"type":            strconv.Itoa(int(msg.Value.Type)),
		},
		map[string]interface{}{
			"value": numeric,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// Close flushes pending points and shuts the client down.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	c.mu.Unlock()

	close(c.done)
	c.writeAPI.Flush()
	c.client.Close()
}
