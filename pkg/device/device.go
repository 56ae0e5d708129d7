package device

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/framework"
	"github.com/robotalks/sbd.go/pkg/pipeline"
	"github.com/robotalks/sbd.go/pkg/sbd"
	"github.com/robotalks/sbd.go/pkg/serial"
	"github.com/robotalks/sbd.go/pkg/telemetry"
)

// Device composes the serial link, the pipeline server and telemetry.
type Device struct {
	Config    *Config
	Port      serial.Port
	Server    *pipeline.Server
	Telemetry *telemetry.Publisher
}

// NewDevice validates the config, opens the port and prepares the server.
// The classifier is constructed later, when the server boots. Telemetry is
// best effort: an unreachable broker is logged and skipped.
func (c *Config) NewDevice() (*Device, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	port, err := serial.Open(c.Port)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Port, err)
	}
	dev := &Device{Config: c, Port: port}
	dev.Server = pipeline.NewServer(serial.NewChannel(port), dev.newClassifier)
	dev.Server.Banner = c.Banner

	if c.MQTTBrokerURL != "" {
		pub, err := telemetry.Dial(c.MQTTBrokerURL, c.ID)
		if err != nil {
			glog.Warningf("telemetry disabled: %v", err)
		} else {
			dev.Telemetry = pub
			dev.Server.AddObservers(pub)
		}
	}
	glog.Infof("device: %s", c)
	return dev, nil
}

func (d *Device) newClassifier() (classifier.Classifier, error) {
	return classifier.New(d.Config.Classifier, d.Config.ClassifierOptions(sbd.FeatureLen))
}

// Name implements framework.Named.
func (d *Device) Name() string {
	return "device-" + d.Config.ID
}

// Run implements framework.Runnable. The port is closed when ctx is done,
// which unblocks a pending read.
func (d *Device) Run(ctx context.Context) error {
	run := d.Server.Run
	if d.Config.Mode == ModeEcho {
		run = d.Server.Echo
	}
	return framework.RunWithContextCloser(ctx, d.Port, func() error {
		return run(ctx)
	})
}

// Close releases the classifier and telemetry. The port is closed by Run.
func (d *Device) Close() error {
	var errs *multierror.Error
	if err := d.Server.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if d.Telemetry != nil {
		if err := d.Telemetry.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
