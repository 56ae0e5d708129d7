package serial

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivisor(t *testing.T) {
	div := Divisor(ReferenceClock, BaudRate)
	require.Equal(t, 138, div)
	require.Equal(t, 115107, ActualBaud(ReferenceClock, div))
	require.Equal(t, 15, Divisor(16000000, 1000000))
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("carrier-pigeon://coop")
	require.Error(t, err)
	require.IsType(t, &ErrUnknownScheme{}, err)
	require.Contains(t, err.Error(), "carrier-pigeon")
}

func TestOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	port, err := Open("tcp://" + ln.Addr().String())
	require.NoError(t, err)
	defer port.Close()
	peer := <-accepted
	defer peer.Close()

	c := NewChannel(port)
	require.NoError(t, c.WriteString("hi\n"))
	buf := make([]byte, 4)
	_, err = peer.Read(buf[:1])
	require.NoError(t, err)
	require.Equal(t, byte('h'), buf[0])
}
