// Package host is the peer side of the sentence boundary device: it sends
// windows, reads verdicts and segments text into sentences.
package host
