package device

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/denisbrodbeck/machineid"
	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/sbd.go/pkg/classifier"
	"github.com/robotalks/sbd.go/pkg/pipeline"
)

// Modes
const (
	ModeServe = "serve"
	ModeEcho  = "echo"
)

// Config provides options to set up a device.
type Config struct {
	// Port is the URL of the serial link, see serial.Open.
	Port string `yaml:"port" validate:"required"`
	// Mode is either serve or echo.
	Mode string `yaml:"mode" validate:"oneof=serve echo"`
	// Classifier names the registered backend.
	Classifier    string  `yaml:"classifier" validate:"required"`
	Model         string  `yaml:"model" validate:"required_if=Classifier onnx"`
	ORTLibrary    string  `yaml:"ortLibrary"`
	ZeroPoint     int     `yaml:"zeroPoint" validate:"min=-128,max=127"`
	OutputScale   float64 `yaml:"outputScale" validate:"gt=0"`
	WorkspaceSize int     `yaml:"workspaceSize" validate:"min=0"`
	Banner        string  `yaml:"banner" validate:"required"`

	// MQTTBrokerURL enables telemetry when set.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt" validate:"omitempty,url"`
	// ID identifies the device in telemetry topics.
	ID string `yaml:"id" validate:"required,excludesall=+#/"`
}

var defaultConfig = Config{
	Port:          "/dev/ttyUSB0",
	Mode:          ModeServe,
	Classifier:    "onnx",
	Model:         "sbd_model.onnx",
	OutputScale:   1.0 / 256,
	ZeroPoint:     -128,
	WorkspaceSize: classifier.DefaultWorkspaceSize,
	Banner:        pipeline.DefaultBanner,
}

func init() {
	if val := os.Getenv("SBD_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("SBD_CLASSIFIER"); val != "" {
		defaultConfig.Classifier = val
	}
	if val := os.Getenv("SBD_MODEL"); val != "" {
		defaultConfig.Model = val
	}
	if val := os.Getenv("SBD_ORT_LIB"); val != "" {
		defaultConfig.ORTLibrary = val
	}
	if val := os.Getenv("SBD_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("SBD_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = MachineID()
	}
}

// MachineID returns an app-specific id of the machine, or "sbd" when the
// machine id is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID("sbd")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "sbd"
	}
	return id[:16]
}

// SetupFlags sets command line flags. -config loads a YAML file at the
// position it appears, so later flags override the file.
func SetupFlags() {
	flag.Func("config", "YAML config file", func(path string) error {
		return defaultConfig.LoadFile(path)
	})
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial link URL: device path, tcp://, tcp-listen://, ws://, stdio:")
	flag.StringVar(&defaultConfig.Mode, "mode", defaultConfig.Mode, "serve or echo")
	flag.StringVar(&defaultConfig.Classifier, "classifier", defaultConfig.Classifier, "Classifier backend")
	flag.StringVar(&defaultConfig.Model, "model", defaultConfig.Model, "Model file")
	flag.StringVar(&defaultConfig.ORTLibrary, "ort-lib", defaultConfig.ORTLibrary, "onnxruntime shared library")
	flag.IntVar(&defaultConfig.ZeroPoint, "zero-point", defaultConfig.ZeroPoint, "Output quantization zero-point")
	flag.Float64Var(&defaultConfig.OutputScale, "output-scale", defaultConfig.OutputScale, "Output quantization scale")
	flag.IntVar(&defaultConfig.WorkspaceSize, "workspace", defaultConfig.WorkspaceSize, "Classifier workspace in bytes")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for telemetry")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Device ID")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile overlays settings from a YAML file. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Validate checks the config.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ClassifierOptions builds the backend options.
func (c *Config) ClassifierOptions(featureLen int) classifier.Options {
	return classifier.Options{
		FeatureLen:    featureLen,
		WorkspaceSize: c.WorkspaceSize,
		ModelPath:     c.Model,
		LibraryPath:   c.ORTLibrary,
		ZeroPoint:     int8(c.ZeroPoint),
		OutputScale:   float32(c.OutputScale),
	}
}

// MustNewDevice creates a Device and fails on error.
func (c *Config) MustNewDevice() *Device {
	dev, err := c.NewDevice()
	if err != nil {
		log.Fatalln(err)
	}
	return dev
}

// String renders the effective settings for logging.
func (c *Config) String() string {
	return "port=" + c.Port + " mode=" + c.Mode + " classifier=" + c.Classifier +
		" model=" + strconv.Quote(c.Model) + " id=" + c.ID
}
