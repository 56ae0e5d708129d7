package sbd

// Verdict is the result of classifying one window. Its value is the symbol
// transmitted to the peer.
type Verdict byte

const (
	// NotBoundary means the window is not a sentence boundary.
	NotBoundary Verdict = '0'
	// Boundary means the window is a sentence boundary.
	Boundary Verdict = '1'
	// Error means the classifier failed on the window.
	Error Verdict = 'E'
)

// Decide compares a quantized score against its threshold. Ties are not
// boundaries.
func Decide(score, threshold int8) Verdict {
	if score > threshold {
		return Boundary
	}
	return NotBoundary
}

// Symbol returns the byte sent on the wire.
func (v Verdict) Symbol() byte {
	return byte(v)
}

// IsValid indicates v is one of the defined verdicts.
func (v Verdict) IsValid() bool {
	return v == NotBoundary || v == Boundary || v == Error
}

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case NotBoundary:
		return "not-boundary"
	case Boundary:
		return "boundary"
	case Error:
		return "error"
	}
	return "unknown"
}
