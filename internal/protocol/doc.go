// Package protocol owns the soil power sensor message contract.
//
// Ownership boundary:
// - Measurement, Response and UserConfiguration types
// - per-kind encoders producing canonical proto3 bytes
// - structural parse and invariant-checking projection
//
// Field numbering lives in schema; wire primitives live in wire; the
// Esp32Command codec lives in command.
package protocol
