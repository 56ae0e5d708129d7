package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sbd.go/pkg/host"
)

// Config provides options of the shell.
type Config struct {
	// Port is the URL of the link to the device, see serial.Open.
	Port string
	// WaitReady waits for the boot banner after connecting.
	WaitReady bool
	// ReadyTimeout bounds WaitReady.
	ReadyTimeout time.Duration
}

var defaultConfig = Config{
	WaitReady:    true,
	ReadyTimeout: 10 * time.Second,
}

func init() {
	if val := os.Getenv("SBD_PORT"); val != "" {
		defaultConfig.Port = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Device link URL to connect on start.")
	flag.BoolVar(&defaultConfig.WaitReady, "wait", defaultConfig.WaitReady, "Wait for the device banner after connecting.")
	flag.DurationVar(&defaultConfig.ReadyTimeout, "ready-timeout", defaultConfig.ReadyTimeout, "Timeout waiting for the device banner.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *Config
	Client *host.Client
	URL    string
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Client == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Print prints v as JSON in JSON mode, or the text otherwise.
func Print(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Connect opens the link and optionally waits for the device banner.
func (s *Shell) Connect(portURL string) error {
	client, err := host.Dial(portURL)
	if err != nil {
		return err
	}
	if s.Config.WaitReady {
		errCh := make(chan error, 1)
		go func() { errCh <- client.WaitReady() }()
		select {
		case err = <-errCh:
		case <-time.After(s.Config.ReadyTimeout):
			err = fmt.Errorf("timeout waiting for device banner")
		}
		if err != nil {
			client.Close()
			return err
		}
	}
	s.Disconnect()
	s.Client, s.URL = client, portURL
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", portURL))
	return nil
}

// Disconnect closes the current link.
func (s *Shell) Disconnect() {
	if s.Client != nil {
		s.Client.Close()
		s.Client, s.URL = nil, ""
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(s.Config.Port); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("URL expected"))
				return
			}
			if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}
