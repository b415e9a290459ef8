package telemetry

import "errors"

var (
	// ErrDisabled indicates the telemetry sink is not enabled in config.
	ErrDisabled = errors.New("telemetry disabled")

	// ErrConnectionFailed indicates the InfluxDB server could not be
	// reached or is unhealthy.
	ErrConnectionFailed = errors.New("influxdb connection failed")
)
