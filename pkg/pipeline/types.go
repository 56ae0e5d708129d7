package pipeline

import (
	"errors"
	"time"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/sbd"
)

// DefaultBanner is written when the server becomes ready.
const DefaultBanner = "SBD Model Ready.\n"

var (
	// ErrNotReady indicates Serve is called before a successful Boot.
	ErrNotReady = errors.New("not ready")
)

// Reporter consumes a diagnostic line.
type Reporter func(msg string)

// State is the state of the server.
type State int

// States
const (
	StateBooting State = iota
	StateReady
	StateFilling
	StateEncoding
	StateClassifying
	StateEmitting
	StateHalted
)

var stateNames = [...]string{
	StateBooting:     "booting",
	StateReady:       "ready",
	StateFilling:     "filling",
	StateEncoding:    "encoding",
	StateClassifying: "classifying",
	StateEmitting:    "emitting",
	StateHalted:      "halted",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Event describes one served window.
type Event struct {
	// Seq counts windows served since boot, starting from 1.
	Seq uint64
	// Window is only valid during Observe.
	Window  []byte
	Result  classifier.Result
	Verdict sbd.Verdict
	Err     error
	Time    time.Time
}

// Observer is notified after each verdict has been transmitted.
type Observer interface {
	Observe(*Event)
}

// BootObserver is optionally implemented by Observers to learn the boot
// outcome. err is nil when the server became ready.
type BootObserver interface {
	Booted(err error)
}
