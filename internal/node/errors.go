package node

import "errors"

var (
	// ErrNodeNotFound indicates no node exists with the requested id.
	ErrNodeNotFound = errors.New("node not found")

	// ErrSensorNotFound indicates no sensor exists with the requested
	// (node id, child sensor id) pair.
	ErrSensorNotFound = errors.New("sensor not found")

	// ErrNoFreeNodeID indicates every id in [1,254] is already reserved.
	ErrNoFreeNodeID = errors.New("no free node id")
)
