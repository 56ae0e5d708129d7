package serial

import (
	"errors"
	"io"
	"os"
	"time"
)

// Channel is a byte-oriented duplex channel over a port.
// It is not safe for concurrent use: a single goroutine owns it.
type Channel struct {
	rw   io.ReadWriter
	rbuf [1]byte
	wbuf [1]byte
}

// PollWindow bounds how long TryReadByte waits on ports that only support
// deadlines. Ports with SetReadTimeout are polled with a zero timeout.
var PollWindow = time.Millisecond

// readTimeouter is implemented by OS serial ports.
type readTimeouter interface {
	SetReadTimeout(time.Duration) error
}

// readDeadliner is implemented by network connections.
type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

// blockingTimeout restores blocking reads on readTimeouter ports.
const blockingTimeout time.Duration = -1

// NewChannel creates a Channel over rw.
func NewChannel(rw io.ReadWriter) *Channel {
	return &Channel{rw: rw}
}

// WriteByte blocks until the port accepts b.
func (c *Channel) WriteByte(b byte) error {
	c.wbuf[0] = b
	for {
		n, err := c.rw.Write(c.wbuf[:])
		if err != nil {
			return err
		}
		if n == 1 {
			return nil
		}
	}
}

// WriteString writes s byte by byte, inserting '\r' before every '\n'.
func (c *Channel) WriteString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if err := c.WriteByte('\r'); err != nil {
				return err
			}
		}
		if err := c.WriteByte(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadByte blocks until a byte is received. Empty reads are retried.
func (c *Channel) ReadByte() (byte, error) {
	for {
		n, err := c.rw.Read(c.rbuf[:])
		if n == 1 {
			return c.rbuf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// TryReadByte polls the port once. ok is false if no byte is available.
func (c *Channel) TryReadByte() (b byte, ok bool, err error) {
	var n int
	switch p := c.rw.(type) {
	case readTimeouter:
		if err = p.SetReadTimeout(0); err != nil {
			return
		}
		n, err = c.rw.Read(c.rbuf[:])
		if e := p.SetReadTimeout(blockingTimeout); err == nil {
			err = e
		}
	case readDeadliner:
		if err = p.SetReadDeadline(time.Now().Add(PollWindow)); err != nil {
			return
		}
		n, err = c.rw.Read(c.rbuf[:])
		if e := p.SetReadDeadline(time.Time{}); err == nil {
			err = e
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			err = nil
		}
	default:
		return 0, false, ErrNotPollable
	}
	if n == 1 {
		return c.rbuf[0], true, nil
	}
	return 0, false, err
}
