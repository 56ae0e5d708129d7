package sbd

import "fmt"

// Encode writes the one-hot encoding of window into dst using vocabSize
// classes per row. dst is cleared first so nothing from a previous window
// survives. Characters whose class is not below vocabSize leave their row
// all zero. Encode panics if len(dst) != len(window)*vocabSize.
func Encode(dst []int8, window []byte, vocabSize int) {
	if len(dst) != len(window)*vocabSize {
		panic(fmt.Sprintf("feature vector length %d, expect %d", len(dst), len(window)*vocabSize))
	}
	for i := range dst {
		dst[i] = 0
	}
	for i, c := range window {
		if id := CharID(c); id < vocabSize {
			dst[i*vocabSize+id] = 1
		}
	}
}

// EncodeWindow is Encode with the build's VocabSize.
func EncodeWindow(dst []int8, window []byte) {
	Encode(dst, window, VocabSize)
}
