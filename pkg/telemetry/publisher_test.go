package telemetry

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialUnreachableBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	pub, err := Dial("mqtt://"+addr+"/sbd/", "dev1")
	require.Error(t, err)
	require.Nil(t, pub)
}

func TestPublisherTopic(t *testing.T) {
	p := NewPublisher(&fakeSink{}, "dev1")
	require.Equal(t, "dev1/status", p.Topic(TopicStatus))
	require.Equal(t, "dev1/verdict", p.Topic(TopicVerdict))
	require.NoError(t, p.Close())
}
