// Package node holds the registry of radio nodes and their child sensors.
//
// Nodes are auto-created when the proxy allocates an id for them and track
// both the firmware they last reported and the firmware they should be
// running. Sensors are created from presentation frames and belong to an
// existing node; presentations for unknown nodes are rejected.
package node
