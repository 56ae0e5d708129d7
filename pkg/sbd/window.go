package sbd

import "io"

const (
	// WindowLen is the number of characters in a classification window.
	WindowLen = 21
	// WindowRadius is the number of characters on each side of the
	// candidate punctuation in a centered window.
	WindowRadius = (WindowLen - 1) / 2
	// VocabSize is the number of character classes the classifier accepts.
	VocabSize = 97
	// FeatureLen is the length of an encoded window.
	FeatureLen = WindowLen * VocabSize
)

// Fill performs exactly len(buf) blocking reads from r, storing bytes left
// to right. It never returns a partially filled buffer as success: if any
// read fails the error is returned and the buffer content must be discarded.
func Fill(r io.ByteReader, buf []byte) error {
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		buf[i] = b
	}
	return nil
}
