package pipeline

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sbd.go/pkg/serial"
)

func TestEcho(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	srv := NewServer(serial.NewChannel(local), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Echo(ctx)
	}()

	buf := make([]byte, 64)
	expect := "UART0 echo ready\r\n"
	var got []byte
	for len(got) < len(expect) {
		n, err := remote.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	require.Equal(t, expect, string(got))

	go remote.Write([]byte("hi"))
	got = got[:0]
	for len(got) < 2 {
		n, err := remote.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	require.Equal(t, "hi", string(got))

	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("echo didn't stop")
	}
	local.Close()
}
