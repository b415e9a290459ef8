// Package message implements the MySensors serial protocol wire codec.
//
// A frame is a single newline-terminated ASCII line:
//
//	node-id ; child-sensor-id ; command ; ack ; type ; payload \n
//
// The first five fields are decimal integers. The payload is opaque text for
// most command families; for the STREAM family it is an upper-case hex
// encoding of a little-endian packed firmware-protocol structure.
//
// Parse produces a typed Message for the families this proxy understands
// (PRESENTATION, SET, INTERNAL, STREAM); everything else is retained as an
// OtherMessage and re-emitted verbatim. String renders the exact wire form,
// always with a trailing newline, so render(parse(line)) == line for every
// canonical frame.
package message
