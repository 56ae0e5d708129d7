package pipeline

import (
	"github.com/golang/glog"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/sbd"
	"github.com/robotalks/sbd.go/pkg/serial"
)

// Context owns the resources of the pipeline. It is constructed once and
// passed through every stage.
type Context struct {
	Channel    *serial.Channel
	Window     []byte
	Features   []int8
	Classifier classifier.Classifier
	Report     Reporter
}

// NewContext allocates the window and feature buffers. Diagnostics are
// reported on the channel.
func NewContext(ch *serial.Channel) *Context {
	return &Context{
		Channel:  ch,
		Window:   make([]byte, sbd.WindowLen),
		Features: make([]int8, sbd.FeatureLen),
		Report:   ChannelReporter(ch),
	}
}

// ChannelReporter writes each diagnostic as a line on the channel.
func ChannelReporter(ch *serial.Channel) Reporter {
	return func(msg string) {
		if err := ch.WriteString(msg + "\n"); err != nil {
			glog.Errorf("report %q error: %v", msg, err)
		}
	}
}
