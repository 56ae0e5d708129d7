package main

import (
	"flag"
	"log"

	"github.com/robotalks/sbd.go/pkg/device"
	"github.com/robotalks/sbd.go/pkg/framework"

	_ "github.com/robotalks/sbd.go/pkg/classifier/heuristic"
	_ "github.com/robotalks/sbd.go/pkg/classifier/onnx"
)

func init() {
	device.SetupFlags()
}

func main() {
	flag.Parse()

	dev := device.Default().MustNewDevice()
	err := framework.NewRunner().
		HandleSignals().
		Go(dev).
		Wait()
	if cerr := dev.Close(); cerr != nil {
		log.Println(cerr)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
