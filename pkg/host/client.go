package host

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/sbd.go/pkg/pipeline"
	"github.com/robotalks/sbd.go/pkg/sbd"
	"github.com/robotalks/sbd.go/pkg/serial"
)

var (
	// ErrRemote indicates the device answered a window with an error.
	ErrRemote = errors.New("device failed to classify window")
	// ErrBootFailed indicates the device reported a diagnostic instead of
	// the banner.
	ErrBootFailed = errors.New("device boot failed")
)

// ProtocolError is an unexpected byte in place of a verdict.
type ProtocolError struct {
	Got byte
}

// Error implements error.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected verdict byte 0x%02x", e.Got)
}

// Classifier classifies one window.
type Classifier interface {
	Classify(window string) (sbd.Verdict, error)
}

// Client speaks the device wire protocol.
type Client struct {
	Banner string

	ch   *serial.Channel
	port io.ReadWriter
}

// NewClient creates a Client over an established link.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{
		Banner: pipeline.DefaultBanner,
		ch:     serial.NewChannel(rw),
		port:   rw,
	}
}

// Dial opens a link by URL, see serial.Open.
func Dial(portURL string) (*Client, error) {
	port, err := serial.Open(portURL)
	if err != nil {
		return nil, err
	}
	return NewClient(port), nil
}

// Close closes the link if it is closable.
func (c *Client) Close() error {
	if closer, ok := c.port.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ReadLine reads a line terminated by LF, without the line terminator.
func (c *Client) ReadLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := c.ch.ReadByte()
		if err != nil {
			return sb.String(), err
		}
		if b == '\n' {
			return strings.TrimSuffix(sb.String(), "\r"), nil
		}
		sb.WriteByte(b)
	}
}

// WaitReady reads lines until the banner. Any other non-empty line is a
// boot diagnostic.
func (c *Client) WaitReady() error {
	banner := strings.TrimRight(c.Banner, "\r\n")
	for {
		line, err := c.ReadLine()
		if err != nil {
			return err
		}
		switch line {
		case banner:
			return nil
		case "":
			continue
		default:
			return fmt.Errorf("%w: %s", ErrBootFailed, line)
		}
	}
}

// Classify sends a window, padded with spaces or truncated to the window
// length, and reads the verdict.
func (c *Client) Classify(window string) (sbd.Verdict, error) {
	if err := c.Send(PadWindow(window)); err != nil {
		return sbd.Error, err
	}
	return c.ReadVerdict()
}

// Send writes raw bytes without line translation.
func (c *Client) Send(data string) error {
	for i := 0; i < len(data); i++ {
		if err := c.ch.WriteByte(data[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadVerdict reads one verdict. An error verdict consumes its line
// terminator and returns ErrRemote.
func (c *Client) ReadVerdict() (sbd.Verdict, error) {
	b, err := c.ch.ReadByte()
	if err != nil {
		return sbd.Error, err
	}
	v := sbd.Verdict(b)
	if !v.IsValid() {
		return sbd.Error, &ProtocolError{Got: b}
	}
	if v != sbd.Error {
		return v, nil
	}
	if rest, err := c.ReadLine(); err != nil {
		return v, err
	} else if rest != "" {
		glog.Warningf("trailing bytes after error verdict: %q", rest)
	}
	return v, ErrRemote
}

// PadWindow right-pads with spaces or truncates s to the window length.
func PadWindow(s string) string {
	if len(s) >= sbd.WindowLen {
		return s[:sbd.WindowLen]
	}
	return s + strings.Repeat(" ", sbd.WindowLen-len(s))
}

// Echo sends data to a device in echo mode and reads the same number of
// bytes back.
func (c *Client) Echo(data string) (string, error) {
	if err := c.Send(data); err != nil {
		return "", err
	}
	buf := make([]byte, len(data))
	if err := sbd.Fill(c.ch, buf); err != nil {
		return string(buf), err
	}
	return string(buf), nil
}
