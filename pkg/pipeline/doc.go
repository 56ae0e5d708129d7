// Package pipeline runs the device main loop.
package pipeline

// Booting constructs the classifier and announces readiness. A boot
// failure is reported once on the channel and the server never serves.
//
// Once ready, every iteration reads a full window, encodes it, classifies
// it and transmits exactly one verdict before the next window is read.
// There is a single thread of control; the window and feature buffers are
// allocated once and reused.
