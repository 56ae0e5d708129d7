package heuristic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/sbd"
)

func classify(t *testing.T, c *Classifier, text string) sbd.Verdict {
	win := bytes.Repeat([]byte{' '}, sbd.WindowLen)
	copy(win, text)
	features := make([]int8, sbd.FeatureLen)
	sbd.EncodeWindow(features, win)
	res, err := c.Classify(features)
	require.NoError(t, err)
	require.Zero(t, res.Threshold)
	return sbd.Decide(res.Score, res.Threshold)
}

func TestHeuristic(t *testing.T) {
	c, err := New(classifier.Options{FeatureLen: sbd.FeatureLen})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		window string
		expect sbd.Verdict
	}{
		{"sentence end", "on the mat. Then she", sbd.Boundary},
		{"question", "are you ok? I am", sbd.Boundary},
		{"quoted", "he shouted.\" She ran", sbd.Boundary},
		{"abbreviation", "I asked Mr. Smith", sbd.NotBoundary},
		{"initial", "novel by J. Tolkien", sbd.NotBoundary},
		{"decimal", "it equal 3.14 ok", sbd.NotBoundary},
		{"dotted", "stuff, e.g. this one", sbd.NotBoundary},
		{"start of text", "Hi. How are y", sbd.Boundary},
		{"no punctuation", "no punctuation here", sbd.NotBoundary},
		{"unknown bytes", "\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a", sbd.NotBoundary},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, classify(t, c, tc.window))
		})
	}
}

func TestHeuristicInputLength(t *testing.T) {
	c, err := New(classifier.Options{FeatureLen: sbd.FeatureLen})
	require.NoError(t, err)
	_, err = c.Classify(make([]int8, 5))
	require.Equal(t, classifier.ErrInputLength, err)

	_, err = New(classifier.Options{FeatureLen: 100})
	require.Error(t, err)
}

func TestRegistered(t *testing.T) {
	c, err := classifier.New(BackendName, classifier.Options{FeatureLen: sbd.FeatureLen})
	require.NoError(t, err)
	require.IsType(t, &Classifier{}, c)
}
