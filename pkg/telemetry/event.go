package telemetry

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/sbd.go/pkg/host"
	"github.com/robotalks/sbd.go/pkg/pipeline"
)

// Topic suffixes under <device-id>/.
const (
	TopicStatus  = "status"
	TopicVerdict = "verdict"
)

// Status values published on the status topic.
const (
	StatusReady   = "ready"
	StatusHalted  = "halted"
	StatusOffline = "offline"
)

// Status is the device status message.
type Status struct {
	State  string
	BootID string
	Error  string
}

// Verdict is the telemetry form of a served window.
type Verdict struct {
	BootID    string
	Seq       uint64
	Window    string
	Verdict   string
	Score     int
	Threshold int
	Error     string
	Time      time.Time
}

// windowText copies a raw window into a valid UTF-8 string: bytes outside
// ASCII become host.Substitute, which the device encodes as padding too.
func windowText(window []byte) string {
	buf := make([]byte, len(window))
	for i, b := range window {
		if b >= utf8.RuneSelf {
			b = host.Substitute
		}
		buf[i] = b
	}
	return string(buf)
}

// VerdictFromEvent converts a pipeline event. The window is copied.
func VerdictFromEvent(bootID string, ev *pipeline.Event) *Verdict {
	v := &Verdict{
		BootID:    bootID,
		Seq:       ev.Seq,
		Window:    windowText(ev.Window),
		Verdict:   string(rune(ev.Verdict.Symbol())),
		Score:     int(ev.Result.Score),
		Threshold: int(ev.Result.Threshold),
		Time:      ev.Time,
	}
	if ev.Err != nil {
		v.Error = ev.Err.Error()
	}
	return v
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}

// Struct converts the status to a protobuf Struct.
func (s *Status) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"state":   stringValue(s.State),
		"boot_id": stringValue(s.BootID),
	}
	if s.Error != "" {
		fields["error"] = stringValue(s.Error)
	}
	return &structpb.Struct{Fields: fields}
}

// Struct converts the verdict to a protobuf Struct.
func (v *Verdict) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"boot_id":   stringValue(v.BootID),
		"seq":       numberValue(float64(v.Seq)),
		"window":    stringValue(v.Window),
		"verdict":   stringValue(v.Verdict),
		"score":     numberValue(float64(v.Score)),
		"threshold": numberValue(float64(v.Threshold)),
		"time":      stringValue(v.Time.UTC().Format(time.RFC3339Nano)),
	}
	if v.Error != "" {
		fields["error"] = stringValue(v.Error)
	}
	return &structpb.Struct{Fields: fields}
}

// Encode serializes a Struct in protobuf wire format.
func Encode(s *structpb.Struct) ([]byte, error) {
	return proto.Marshal(s)
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(payload, s); err != nil {
		return nil, fmt.Errorf("decode telemetry: %w", err)
	}
	return s, nil
}

// DecodeStatus parses a status payload.
func DecodeStatus(payload []byte) (*Status, error) {
	s, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return &Status{
		State:  fieldString(s, "state"),
		BootID: fieldString(s, "boot_id"),
		Error:  fieldString(s, "error"),
	}, nil
}

// DecodeVerdict parses a verdict payload.
func DecodeVerdict(payload []byte) (*Verdict, error) {
	s, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	v := &Verdict{
		BootID:    fieldString(s, "boot_id"),
		Seq:       uint64(fieldNumber(s, "seq")),
		Window:    fieldString(s, "window"),
		Verdict:   fieldString(s, "verdict"),
		Score:     int(fieldNumber(s, "score")),
		Threshold: int(fieldNumber(s, "threshold")),
		Error:     fieldString(s, "error"),
	}
	if ts := fieldString(s, "time"); ts != "" {
		if v.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("decode telemetry time: %w", err)
		}
	}
	return v, nil
}

// JSON renders a payload for display.
func JSON(payload []byte) (string, error) {
	s, err := Decode(payload)
	if err != nil {
		return "", err
	}
	return (&jsonpb.Marshaler{}).MarshalToString(s)
}

func fieldString(s *structpb.Struct, name string) string {
	if v, ok := s.Fields[name].GetKind().(*structpb.Value_StringValue); ok {
		return v.StringValue
	}
	return ""
}

func fieldNumber(s *structpb.Struct, name string) float64 {
	if v, ok := s.Fields[name].GetKind().(*structpb.Value_NumberValue); ok {
		return v.NumberValue
	}
	return 0
}
