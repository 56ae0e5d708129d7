package host

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sbd.go/pkg/sbd"
)

type scripted struct {
	verdicts []sbd.Verdict
	errs     []error
	windows  []string
}

func (s *scripted) Classify(window string) (sbd.Verdict, error) {
	n := len(s.windows)
	s.windows = append(s.windows, window)
	var err error
	if n < len(s.errs) {
		err = s.errs[n]
	}
	return s.verdicts[n], err
}

func TestFold(t *testing.T) {
	cases := map[string]string{
		"plain. text":  "plain. text",
		"café":         "cafe",
		"naïve ﬁsh":    "naive fish",
		"日本":           "\x1a\x1a",
		"Ångström!":    "Angstrom!",
		"“quoted” end": "\x1aquoted\x1a end",
	}
	for in, out := range cases {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, out, Fold(in))
		})
	}
}

func TestFoldRune(t *testing.T) {
	require.Equal(t, byte('e'), FoldRune('é'))
	require.Equal(t, byte('f'), FoldRune('ﬁ'))
	require.Equal(t, byte(Substitute), FoldRune('日'))
	require.Equal(t, byte('?'), FoldRune('?'))
}

func TestWindows(t *testing.T) {
	cands := Windows("Hi. How are you? Fine")
	require.Len(t, cands, 2)
	require.Equal(t, 2, cands[0].Offset)
	require.Equal(t, PadWindow("Hi. How are y"), cands[0].Window)
	require.Equal(t, 15, cands[1].Offset)
	require.Equal(t, PadWindow("ow are you? Fine"), cands[1].Window)

	cands = Windows("Café. Ok")
	require.Len(t, cands, 1)
	require.Equal(t, 5, cands[0].Offset)
	require.Equal(t, 6, cands[0].End)
	require.Equal(t, PadWindow("Cafe. Ok"), cands[0].Window)

	long := "aaaaaaaaaaaaaaa. bbbbbbbbbbbbbbb"
	cands = Windows(long)
	require.Len(t, cands, 1)
	require.Equal(t, "aaaaaaaaaa. bbbbbbbbb", cands[0].Window)
	require.Equal(t, byte('.'), cands[0].Window[sbd.WindowRadius])

	require.Empty(t, Windows("no terminal here"))
}

func TestSegment(t *testing.T) {
	text := "I met Mr. Smith. He waved! Bye"
	c := &scripted{verdicts: []sbd.Verdict{sbd.NotBoundary, sbd.Boundary, sbd.Boundary}}
	sentences, err := Segment(c, text)
	require.NoError(t, err)
	require.Equal(t, []string{"I met Mr. Smith.", "He waved!", "Bye"}, sentences)
	require.Len(t, c.windows, 3)
	for _, w := range c.windows {
		require.Len(t, w, sbd.WindowLen)
	}
}

type alwaysBoundary struct{}

func (alwaysBoundary) Classify(string) (sbd.Verdict, error) {
	return sbd.Boundary, nil
}

func TestSegmentMultiByteTerminals(t *testing.T) {
	text := "Wait… What！ Yes."
	cands := Windows(text)
	require.Len(t, cands, 3)
	require.Equal(t, "…", text[cands[0].Offset:cands[0].End])
	require.Equal(t, "！", text[cands[1].Offset:cands[1].End])

	sentences, err := Segment(alwaysBoundary{}, text)
	require.NoError(t, err)
	require.Equal(t, []string{"Wait…", "What！", "Yes."}, sentences)
	for _, s := range sentences {
		require.True(t, utf8.ValidString(s))
	}
}

func TestSegmentRemoteErrorIsNotBoundary(t *testing.T) {
	c := &scripted{
		verdicts: []sbd.Verdict{sbd.Error, sbd.Boundary},
		errs:     []error{ErrRemote},
	}
	sentences, err := Segment(c, "One. Two.")
	require.NoError(t, err)
	require.Equal(t, []string{"One. Two."}, sentences)
}

func TestSegmentTransportError(t *testing.T) {
	broken := errors.New("link down")
	c := &scripted{
		verdicts: []sbd.Verdict{sbd.Boundary, sbd.Error},
		errs:     []error{nil, broken},
	}
	sentences, err := Segment(c, "One. Two. Three")
	require.Equal(t, broken, err)
	require.Equal(t, []string{"One."}, sentences)
}
