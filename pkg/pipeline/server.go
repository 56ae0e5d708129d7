package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/sbd"
	"github.com/robotalks/sbd.go/pkg/serial"
)

// Factory constructs the classifier during boot.
type Factory func() (classifier.Classifier, error)

// Server drives the pipeline.
type Server struct {
	Factory   Factory
	Banner    string
	Observers []Observer

	ctx   *Context
	state State
	seq   uint64
}

// NewServer creates a Server over the channel.
func NewServer(ch *serial.Channel, factory Factory) *Server {
	return &Server{
		Factory: factory,
		Banner:  DefaultBanner,
		ctx:     NewContext(ch),
	}
}

// State returns the current state.
func (s *Server) State() State {
	return s.state
}

// AddObservers registers observers.
func (s *Server) AddObservers(observers ...Observer) *Server {
	s.Observers = append(s.Observers, observers...)
	return s
}

// Boot constructs the classifier. On failure the diagnostic is reported
// once and the server halts.
func (s *Server) Boot() error {
	s.state = StateBooting
	glog.Infof("boot: window %d, vocabulary %d, features %d", sbd.WindowLen, sbd.VocabSize, sbd.FeatureLen)
	c, err := s.Factory()
	if err != nil {
		s.state = StateHalted
		glog.Errorf("boot failed: %v", err)
		s.ctx.Report(err.Error())
		s.booted(err)
		return fmt.Errorf("boot: %w", err)
	}
	s.ctx.Classifier = c
	if err = s.ctx.Channel.WriteString(s.Banner); err != nil {
		s.state = StateHalted
		s.booted(err)
		return err
	}
	s.state = StateReady
	s.booted(nil)
	return nil
}

func (s *Server) booted(err error) {
	for _, o := range s.Observers {
		if bo, ok := o.(BootObserver); ok {
			bo.Booted(err)
		}
	}
}

// Step serves exactly one window. A classifier failure is answered with an
// error symbol and is not returned; only transport errors are.
func (s *Server) Step() error {
	if s.state != StateReady {
		return ErrNotReady
	}
	c := s.ctx
	s.state = StateFilling
	if err := sbd.Fill(c.Channel, c.Window); err != nil {
		s.state = StateReady
		return err
	}

	s.state = StateEncoding
	sbd.EncodeWindow(c.Features, c.Window)

	s.state = StateClassifying
	res, err := c.Classifier.Classify(c.Features)

	s.state = StateEmitting
	s.seq++
	ev := &Event{Seq: s.seq, Window: c.Window, Result: res, Err: err}
	if err != nil {
		glog.Warningf("window %d: classify failed: %v", s.seq, err)
		ev.Verdict = sbd.Error
		err = c.Channel.WriteString(string(sbd.Error.Symbol()) + "\n")
	} else {
		ev.Verdict = sbd.Decide(res.Score, res.Threshold)
		err = c.Channel.WriteByte(ev.Verdict.Symbol())
		if glog.V(2) {
			glog.Infof("window %d %q: score %d threshold %d: %s",
				s.seq, c.Window, res.Score, res.Threshold, ev.Verdict)
		}
	}
	s.state = StateReady
	if err != nil {
		return err
	}

	ev.Time = time.Now()
	for _, o := range s.Observers {
		o.Observe(ev)
	}
	return nil
}

// Serve serves windows until the context is done or the transport fails.
// The end of the peer stream (io.EOF) ends serving without error; a
// partially received window is discarded.
func (s *Server) Serve(ctx context.Context) error {
	if s.state != StateReady {
		return ErrNotReady
	}
	glog.Info("serving")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			if err == io.EOF {
				glog.Info("peer closed")
				return nil
			}
			return err
		}
	}
}

// Run boots and serves. After a boot failure the server stays halted,
// serving nothing, until the context is done and then returns the boot
// error.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Boot(); err != nil {
		<-ctx.Done()
		return err
	}
	return s.Serve(ctx)
}

// Echo writes back every received byte until the context is done. It polls
// the channel without blocking and doesn't need a classifier.
func (s *Server) Echo(ctx context.Context) error {
	ch := s.ctx.Channel
	if err := ch.WriteString("UART0 echo ready\n"); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b, ok, err := ch.TryReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !ok {
			runtime.Gosched()
			continue
		}
		if err = ch.WriteByte(b); err != nil {
			return err
		}
	}
}

// Close releases the classifier.
func (s *Server) Close() error {
	if c := s.ctx.Classifier; c != nil {
		return classifier.Close(c)
	}
	return nil
}
