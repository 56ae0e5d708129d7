package serial

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"

	"github.com/golang/glog"
	bugst "go.bug.st/serial"
	"golang.org/x/net/websocket"
)

// Port is an opened duplex byte stream.
type Port interface {
	io.ReadWriteCloser
}

// Open opens a port by URL:
//
//	/dev/ttyUSB0, serial:///dev/ttyUSB0  OS serial port, BaudRate 8N1
//	tcp://host:port                       dial a TCP peer
//	tcp-listen://addr                     accept exactly one TCP peer
//	ws://host/path, wss://host/path       dial a websocket peer
//	stdio:                                process stdin/stdout
func Open(portURL string) (Port, error) {
	u, err := url.Parse(portURL)
	if err != nil {
		return nil, fmt.Errorf("invalid port URL: %w", err)
	}
	switch u.Scheme {
	case "", "serial", "file":
		name := u.Path
		if name == "" {
			name = u.Opaque
		}
		return OpenSerial(name)
	case "tcp":
		glog.Infof("dial %s", u.Host)
		return net.Dial("tcp", u.Host)
	case "tcp-listen":
		return acceptOne(u.Host)
	case "ws", "wss":
		return dialWebsocket(u)
	case "stdio":
		return &stdioPort{Reader: os.Stdin, Writer: os.Stdout}, nil
	default:
		return nil, &ErrUnknownScheme{Scheme: u.Scheme}
	}
}

// OpenSerial opens an OS serial port with the fixed link settings.
func OpenSerial(name string) (Port, error) {
	mode := &bugst.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := bugst.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	div := Divisor(ReferenceClock, BaudRate)
	glog.Infof("serial %s: %d baud 8N1 (divisor %d, effective %d)",
		name, BaudRate, div, ActualBaud(ReferenceClock, div))
	return port, nil
}

func acceptOne(addr string) (Port, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	glog.Infof("waiting for peer on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	glog.Infof("peer %s connected", conn.RemoteAddr())
	return conn, nil
}

func dialWebsocket(u *url.URL) (Port, error) {
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(u.String(), "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

type stdioPort struct {
	io.Reader
	io.Writer
}

// Close implements io.Closer. The process streams are left open.
func (p *stdioPort) Close() error {
	return nil
}
