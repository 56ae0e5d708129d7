package sbd

// Character class ranges.
const (
	// PadID is the class of unknown characters and padding.
	PadID = 0
	// LetterBase is the class of 'a' (and 'A').
	LetterBase = 1
	// DigitBase is the class of '0'.
	DigitBase = 27
	// PunctBase is the class of the first character in Punctuation.
	PunctBase = 37
)

// Punctuation lists the recognized symbols in class order starting from
// PunctBase. It must match the mapping the classifier was trained with.
const Punctuation = " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	charIDs    [256]uint8
	classChars [VocabSize]byte
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		charIDs[c] = uint8(c-'a') + LetterBase
		charIDs[c-'a'+'A'] = uint8(c-'a') + LetterBase
	}
	for c := '0'; c <= '9'; c++ {
		charIDs[c] = uint8(c-'0') + DigitBase
	}
	for n := 0; n < len(Punctuation); n++ {
		charIDs[Punctuation[n]] = uint8(n) + PunctBase
	}
	for c := 1; c < len(charIDs); c++ {
		if id := charIDs[c]; id != PadID {
			classChars[id] = byte(c)
		}
	}
}

// CharID maps a byte to its character class. Letters are case-insensitive.
// Anything outside the alphabet maps to PadID.
func CharID(c byte) int {
	return int(charIDs[c])
}

// ClassChar returns the character of a class, lowercase for letters. It
// returns 0 for PadID and classes no character maps to.
func ClassChar(id int) byte {
	if id < 0 || id >= len(classChars) {
		return 0
	}
	return classChars[id]
}
