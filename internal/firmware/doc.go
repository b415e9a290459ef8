// Package firmware holds the content-addressed store of firmware images
// served to nodes over the air.
//
// An image is identified by (type, version). Its data is ingested from an
// Intel HEX file, padded with 0xFF to a whole number of 128-byte flash
// pages, and checksummed with the MODBUS variant of CRC-16 — the same
// parameters the MySensors bootloader uses to verify a flashed image.
// Nodes fetch the image 16 bytes at a time via the STREAM command family.
package firmware
