package host

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/golang/glog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/robotalks/sbd.go/pkg/sbd"
)

// Substitute replaces characters without an ASCII form. The device encodes
// it as the pad class.
const Substitute = 0x1a

func asciiRune(r rune) rune {
	if r < utf8.RuneSelf {
		return r
	}
	return Substitute
}

// Fold maps text to ASCII: compatibility decomposition, combining marks
// removed, other non-ASCII runes replaced by Substitute.
func Fold(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), runes.Map(asciiRune))
	folded, _, err := transform.String(t, text)
	if err != nil {
		return strings.Map(asciiRune, text)
	}
	return folded
}

// FoldRune maps a rune to exactly one ASCII byte.
func FoldRune(r rune) byte {
	if r < utf8.RuneSelf {
		return byte(r)
	}
	for _, d := range norm.NFKD.String(string(r)) {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		if d < utf8.RuneSelf {
			return byte(d)
		}
		break
	}
	return Substitute
}

// Candidate is a window around a terminal punctuation.
type Candidate struct {
	// Offset is the byte offset of the punctuation in the source text.
	Offset int
	// End is the byte offset just past the punctuation rune.
	End int
	// Window is the folded window sent to the device.
	Window string
}

// IsTerminal reports whether b may end a sentence.
func IsTerminal(b byte) bool {
	return b == '.' || b == '?' || b == '!'
}

// Windows returns a candidate for each terminal punctuation. The window
// spans WindowRadius characters before and after the punctuation, clipped
// to the text and right-padded with spaces. Each rune counts as one
// character.
func Windows(text string) []Candidate {
	folded := make([]byte, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for off, r := range text {
		folded = append(folded, FoldRune(r))
		offsets = append(offsets, off)
	}
	offsets = append(offsets, len(text))
	var res []Candidate
	for i, b := range folded {
		if !IsTerminal(b) {
			continue
		}
		start, end := i-sbd.WindowRadius, i+sbd.WindowRadius+1
		if start < 0 {
			start = 0
		}
		if end > len(folded) {
			end = len(folded)
		}
		res = append(res, Candidate{
			Offset: offsets[i],
			End:    offsets[i+1],
			Window: PadWindow(string(folded[start:end])),
		})
	}
	return res
}

// Segment splits text into sentences at the punctuation the classifier
// decides as boundaries. A window the device fails to classify is not a
// boundary. Sentences are trimmed of surrounding white space.
func Segment(c Classifier, text string) ([]string, error) {
	var sentences []string
	start := 0
	for _, cand := range Windows(text) {
		v, err := c.Classify(cand.Window)
		if errors.Is(err, ErrRemote) {
			glog.Warningf("window %q: %v", cand.Window, err)
			continue
		}
		if err != nil {
			return sentences, err
		}
		if v != sbd.Boundary {
			continue
		}
		end := cand.End
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences, nil
}
