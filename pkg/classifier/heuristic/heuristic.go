// Package heuristic provides a model-free classifier backend.
//
// It decodes the one-hot window back to characters and applies the rule
// the training labels were derived from: a terminal punctuation mark ends a
// sentence unless it is part of a token (numbers, dotted abbreviations) or
// follows a known abbreviation or a single initial.
package heuristic

import (
	"fmt"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/sbd"
)

// BackendName is the name the backend is registered with.
const BackendName = "heuristic"

func init() {
	classifier.Register(BackendName, func(opts classifier.Options) (classifier.Classifier, error) {
		return New(opts)
	})
}

var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"inc": true, "ltd": true, "co": true, "no": true, "fig": true,
}

// Classifier is the heuristic classifier.
type Classifier struct {
	window []byte
}

// New creates a Classifier for windows of opts.FeatureLen/sbd.VocabSize
// characters.
func New(opts classifier.Options) (*Classifier, error) {
	if opts.FeatureLen <= 0 || opts.FeatureLen%sbd.VocabSize != 0 {
		return nil, fmt.Errorf("heuristic: feature length %d is not a multiple of %d", opts.FeatureLen, sbd.VocabSize)
	}
	return &Classifier{window: make([]byte, opts.FeatureLen/sbd.VocabSize)}, nil
}

// Classify implements classifier.Classifier.
func (c *Classifier) Classify(features []int8) (classifier.Result, error) {
	if len(features) != len(c.window)*sbd.VocabSize {
		return classifier.Result{}, classifier.ErrInputLength
	}
	c.decode(features)
	if c.isBoundary() {
		return classifier.Result{Score: 127}, nil
	}
	return classifier.Result{Score: -128}, nil
}

func (c *Classifier) decode(features []int8) {
	for i := range c.window {
		c.window[i] = 0
		row := features[i*sbd.VocabSize : (i+1)*sbd.VocabSize]
		for id, v := range row {
			if v != 0 {
				c.window[i] = sbd.ClassChar(id)
				break
			}
		}
	}
}

// candidate finds the punctuation the window was built around: the center
// or, for windows cut at the start of a text, the last one left of it.
func (c *Classifier) candidate() int {
	for p := len(c.window) / 2; p >= 0; p-- {
		if isTerminal(c.window[p]) {
			return p
		}
	}
	return -1
}

func (c *Classifier) isBoundary() bool {
	p := c.candidate()
	if p < 0 {
		return false
	}
	if next := p + 1; next < len(c.window) {
		if ch := c.window[next]; ch != ' ' && ch != 0 && !isTerminal(ch) && ch != '"' && ch != '\'' && ch != ')' {
			return false
		}
	}
	start := p
	for start > 0 && isLetter(c.window[start-1]) {
		start--
	}
	word := string(c.window[start:p])
	if c.window[p] == '.' {
		if len(word) == 1 || abbreviations[word] {
			return false
		}
		if start > 0 && c.window[start-1] == '.' {
			return false
		}
	}
	return true
}

func isTerminal(ch byte) bool {
	return ch == '.' || ch == '?' || ch == '!'
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z'
}
