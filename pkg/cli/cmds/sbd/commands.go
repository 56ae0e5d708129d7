package sbd

import (
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sbd.go/pkg/cli/sh"
	"github.com/robotalks/sbd.go/pkg/host"
)

type verdictOutput struct {
	Window  string `json:"window"`
	Verdict string `json:"verdict"`
	Error   string `json:"error,omitempty"`
}

var (
	// ClassifyCmd sends one window and prints the verdict.
	ClassifyCmd = ishell.Cmd{
		Name:    "classify",
		Aliases: []string{"cl"},
		Help:    "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			window := host.PadWindow(host.Fold(strings.Join(c.Args, " ")))
			v, err := sh.ShellFrom(c).Client.Classify(window)
			out := verdictOutput{Window: window, Verdict: v.String()}
			if err != nil {
				out.Error = err.Error()
			}
			sh.Print(c, &out, "["+window+"] "+out.Verdict)
		}),
	}

	// SegmentCmd splits text into sentences.
	SegmentCmd = ishell.Cmd{
		Name:    "segment",
		Aliases: []string{"seg"},
		Help:    "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sentences, err := host.Segment(sh.ShellFrom(c).Client, strings.Join(c.Args, " "))
			if err != nil {
				c.Err(err)
				return
			}
			if sentences == nil {
				sentences = []string{}
			}
			sh.Print(c, sentences, strings.Join(sentences, "\n"))
		}),
	}

	// EchoCmd round-trips text through a device in echo mode.
	EchoCmd = ishell.Cmd{
		Name: "echo",
		Help: "TEXT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			out, err := sh.ShellFrom(c).Client.Echo(strings.Join(c.Args, " "))
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, out, out)
		}),
	}

	// FoldCmd shows the text as the device sees it.
	FoldCmd = ishell.Cmd{
		Name: "fold",
		Help: "TEXT",
		Func: func(c *ishell.Context) {
			out := host.Fold(strings.Join(c.Args, " "))
			sh.Print(c, out, out)
		},
	}

	// WindowsCmd lists the candidate windows of text.
	WindowsCmd = ishell.Cmd{
		Name:    "windows",
		Aliases: []string{"w"},
		Help:    "TEXT",
		Func: func(c *ishell.Context) {
			cands := host.Windows(strings.Join(c.Args, " "))
			if cands == nil {
				cands = []host.Candidate{}
			}
			lines := make([]string, len(cands))
			for n, cand := range cands {
				lines[n] = "[" + cand.Window + "]"
			}
			sh.Print(c, cands, strings.Join(lines, "\n"))
		},
	}
)

func init() {
	sh.AddCmds(
		&ClassifyCmd,
		&SegmentCmd,
		&EchoCmd,
		&FoldCmd,
		&WindowsCmd,
	)
}
