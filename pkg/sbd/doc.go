// Package sbd provides the character pipeline of the sentence boundary
// classifier: window assembly, feature encoding and the final decision.
package sbd

// A classification request is exactly WindowLen raw bytes. Each byte is
// mapped to a character class and one-hot encoded into a flat vector of
// WindowLen*VocabSize features which is handed to the classifier. The
// classifier returns a quantized score and its zero-point; the score must
// strictly exceed the zero-point to be reported as a boundary.
//
// Producer: host peer
// Consumer: device daemon
