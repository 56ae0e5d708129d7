package main

import (
	"github.com/robotalks/sbd.go/pkg/cli/sh"

	_ "github.com/robotalks/sbd.go/pkg/cli/cmds/sbd"
)

//go-build: CGO_ENABLED=0

func init() {
	sh.SetupFlags()
}

func main() {
	sh.Main()
}
