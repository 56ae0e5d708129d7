// Package device is the composition root of the sentence boundary daemon.
package device
