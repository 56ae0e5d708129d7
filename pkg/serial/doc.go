// Package serial provides the byte-level transport between the device
// daemon and its peer.
package serial

// The link is a dedicated point-to-point 8N1 stream at a fixed baud rate.
// There is no framing: the transport only moves single bytes. Writes block
// until the port accepts the byte and reads block until a byte arrives,
// both without timeout. A stuck link hangs the caller, which is accepted
// for a single dedicated device. The only way to unblock a pending read is
// closing the port.
//
// Besides OS serial ports, a few stream substitutes are supported so the
// daemon can be driven without hardware (tcp, websocket, stdio).
