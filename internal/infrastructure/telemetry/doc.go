// Package telemetry records sensor state values to InfluxDB.
//
// It is an optional sink: when enabled, every SET frame whose sub-type has
// a numeric or boolean interpretation becomes one point in the configured
// bucket, tagged with the sensor's address. Writes are batched and
// non-blocking; a slow or absent InfluxDB never backpressures the relay
// path.
package telemetry
