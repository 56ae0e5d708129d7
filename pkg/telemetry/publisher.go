package telemetry

import (
	"errors"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/google/uuid"

	"github.com/robotalks/sbd.go/pkg/pipeline"
)

// DefaultConnectTimeout bounds the initial broker connection.
const DefaultConnectTimeout = 5 * time.Second

// ErrConnectTimeout indicates the broker did not accept the connection in
// time.
var ErrConnectTimeout = errors.New("mqtt connect timeout")

// Sink publishes a payload to a topic.
type Sink interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher publishes boot status and verdicts of one device. Publishing
// never blocks the serving loop: tokens are not awaited.
type Publisher struct {
	DeviceID string
	BootID   string

	sink  Sink
	queue *Queue
}

// NewPublisher creates a Publisher on sink with a fresh boot id.
func NewPublisher(sink Sink, deviceID string) *Publisher {
	return &Publisher{
		DeviceID: deviceID,
		BootID:   uuid.New().String(),
		sink:     sink,
	}
}

// Dial connects to the broker and creates a Publisher. The broker
// publishes an offline status for the device if the connection drops.
func Dial(brokerURL, deviceID string) (*Publisher, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	bootID := uuid.New().String()
	will, err := Encode((&Status{State: StatusOffline, BootID: bootID}).Struct())
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+deviceID+"/"+TopicStatus, will, 1, true)
	q := NewQueue(opts, prefix)
	token := q.Connect()
	if !token.WaitTimeout(DefaultConnectTimeout) {
		q.Close()
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		q.Close()
		return nil, err
	}
	glog.Infof("telemetry: %s as %s (boot %s)", brokerURL, deviceID, bootID)
	return &Publisher{DeviceID: deviceID, BootID: bootID, sink: q, queue: q}, nil
}

// Topic returns the full topic (without the queue prefix) for suffix.
func (p *Publisher) Topic(suffix string) string {
	return p.DeviceID + "/" + suffix
}

// Booted implements pipeline.BootObserver.
func (p *Publisher) Booted(err error) {
	st := &Status{State: StatusReady, BootID: p.BootID}
	if err != nil {
		st.State, st.Error = StatusHalted, err.Error()
	}
	p.publish(TopicStatus, st.Struct(), 1, true)
}

// Observe implements pipeline.Observer.
func (p *Publisher) Observe(ev *pipeline.Event) {
	p.publish(TopicVerdict, VerdictFromEvent(p.BootID, ev).Struct(), 0, false)
}

func (p *Publisher) publish(suffix string, msg *structpb.Struct, qos byte, retain bool) {
	payload, err := Encode(msg)
	if err != nil {
		glog.Warningf("telemetry: encode %s: %v", suffix, err)
		return
	}
	p.sink.PubWith(p.Topic(suffix), payload, qos, retain)
}

// Close publishes the offline status and disconnects when the Publisher
// owns the connection.
func (p *Publisher) Close() error {
	if p.queue == nil {
		return nil
	}
	st := &Status{State: StatusOffline, BootID: p.BootID}
	if payload, err := Encode(st.Struct()); err == nil {
		p.queue.PubWith(p.Topic(TopicStatus), payload, 1, true).WaitTimeout(time.Second)
	}
	return p.queue.Close()
}
